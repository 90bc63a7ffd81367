package ports

import (
	"context"

	"github.com/taskify/taskify-api/internal/core/domain"
)

// TaskFilter scopes task queries. OwnerID zero means no owner filter, which
// only the manager paths use.
type TaskFilter struct {
	OwnerID int64
}

// TaskRepository defines persistence operations for tasks. Lookups that do not
// match the filter fail with domain.ErrTaskNotFound.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, id int64, filter TaskFilter) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id int64, filter TaskFilter) error
}
