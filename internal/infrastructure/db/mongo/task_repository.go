package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskify/taskify-api/internal/core/domain"
	"github.com/taskify/taskify-api/internal/core/ports"
)

const tasksCollection = "tasks"

type TaskRepository struct {
	coll *mongo.Collection
	seq  *sequence
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{
		coll: db.Collection(tasksCollection),
		seq:  newSequence(db, tasksCollection),
	}
}

type mongoTask struct {
	ID          int64  `bson:"id"`
	Title       string `bson:"title"`
	Description string `bson:"description"`
	Priority    int    `bson:"priority"`
	Completed   bool   `bson:"completed"`
	OwnerID     int64  `bson:"owner_id"`
	CreatedAt   int64  `bson:"created_at"`
	UpdatedAt   int64  `bson:"updated_at"`
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	id, err := r.seq.next(ctx)
	if err != nil {
		return nil, err
	}
	doc := fromDomainTask(task)
	doc.ID = id

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id int64, filter ports.TaskFilter) (*domain.Task, error) {
	var mt mongoTask
	if err := r.coll.FindOne(ctx, scoped(id, filter)).Decode(&mt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return mt.toDomain(), nil
}

func (r *TaskRepository) List(ctx context.Context, filter ports.TaskFilter) ([]*domain.Task, error) {
	query := bson.M{}
	if filter.OwnerID != 0 {
		query["owner_id"] = filter.OwnerID
	}

	cur, err := r.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoTask
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(docs))
	for i := range docs {
		tasks = append(tasks, docs[i].toDomain())
	}
	return tasks, nil
}

// Update rewrites the mutable task fields. Ownership is part of the filter so
// a task can never be moved to another owner through this path.
func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	set := bson.M{
		"title":       task.Title,
		"description": task.Description,
		"priority":    task.Priority,
		"completed":   task.Completed,
		"updated_at":  task.UpdatedAt.Unix(),
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": task.ID, "owner_id": task.OwnerID},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64, filter ports.TaskFilter) error {
	res, err := r.coll.DeleteOne(ctx, scoped(id, filter))
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scoped(id int64, filter ports.TaskFilter) bson.M {
	q := bson.M{"id": id}
	if filter.OwnerID != 0 {
		q["owner_id"] = filter.OwnerID
	}
	return q
}

func fromDomainTask(t *domain.Task) mongoTask {
	return mongoTask{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Completed:   t.Completed,
		OwnerID:     t.OwnerID,
		CreatedAt:   t.CreatedAt.Unix(),
		UpdatedAt:   t.UpdatedAt.Unix(),
	}
}

func (mt *mongoTask) toDomain() *domain.Task {
	return &domain.Task{
		ID:          mt.ID,
		Title:       mt.Title,
		Description: mt.Description,
		Priority:    mt.Priority,
		Completed:   mt.Completed,
		OwnerID:     mt.OwnerID,
		CreatedAt:   unixToTime(mt.CreatedAt),
		UpdatedAt:   unixToTime(mt.UpdatedAt),
	}
}
