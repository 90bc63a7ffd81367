package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/taskify/taskify-api/internal/core/domain"
	"github.com/taskify/taskify-api/internal/core/ports"
)

type taskRow struct {
	bun.BaseModel `bun:"table:tasks,alias:t"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Title       string    `bun:"title"`
	Description string    `bun:"description"`
	Priority    int       `bun:"priority"`
	Completed   bool      `bun:"completed"`
	OwnerID     int64     `bun:"owner_id"`
	CreatedAt   time.Time `bun:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at"`
}

// TaskRepository is the relational task store.
type TaskRepository struct {
	db *bun.DB
}

func NewTaskRepository(db *bun.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	row := &taskRow{
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Completed:   task.Completed,
		OwnerID:     task.OwnerID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return row.toDomain(), nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id int64, filter ports.TaskFilter) (*domain.Task, error) {
	row := new(taskRow)
	err := r.db.NewSelect().
		Model(row).
		Where("id = ?", id).
		Apply(ownedBy(filter)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return row.toDomain(), nil
}

func (r *TaskRepository) List(ctx context.Context, filter ports.TaskFilter) ([]*domain.Task, error) {
	var rows []taskRow
	err := r.db.NewSelect().
		Model(&rows).
		Apply(ownedBy(filter)).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(rows))
	for i := range rows {
		tasks = append(tasks, rows[i].toDomain())
	}
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	res, err := r.db.NewUpdate().
		Model((*taskRow)(nil)).
		Set("title = ?", task.Title).
		Set("description = ?", task.Description).
		Set("priority = ?", task.Priority).
		Set("completed = ?", task.Completed).
		Set("updated_at = ?", task.UpdatedAt).
		Where("id = ?", task.ID).
		Where("owner_id = ?", task.OwnerID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return expectOne(res, domain.ErrTaskNotFound)
}

func (r *TaskRepository) Delete(ctx context.Context, id int64, filter ports.TaskFilter) error {
	q := r.db.NewDelete().
		Model((*taskRow)(nil)).
		Where("id = ?", id)
	if filter.OwnerID != 0 {
		q = q.Where("owner_id = ?", filter.OwnerID)
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return expectOne(res, domain.ErrTaskNotFound)
}

func ownedBy(filter ports.TaskFilter) func(*bun.SelectQuery) *bun.SelectQuery {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		if filter.OwnerID != 0 {
			return q.Where("owner_id = ?", filter.OwnerID)
		}
		return q
	}
}

func (row *taskRow) toDomain() *domain.Task {
	return &domain.Task{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Priority:    row.Priority,
		Completed:   row.Completed,
		OwnerID:     row.OwnerID,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}
