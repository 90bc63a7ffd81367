package ports

import (
	"context"

	"github.com/taskify/taskify-api/internal/core/domain"
)

// CreateTaskInput carries the data needed to create a task.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    int
	Completed   bool
}

// TaskService defines task use cases. Owner-scoped methods only ever touch
// the caller's tasks; the manager methods require the manager role.
type TaskService interface {
	List(ctx context.Context, identity *domain.ResolvedIdentity) ([]*domain.Task, error)
	Get(ctx context.Context, identity *domain.ResolvedIdentity, taskID int64) (*domain.Task, error)
	Create(ctx context.Context, identity *domain.ResolvedIdentity, input CreateTaskInput) (*domain.Task, error)
	Update(ctx context.Context, identity *domain.ResolvedIdentity, taskID int64, update domain.TaskUpdate) (*domain.Task, error)
	Delete(ctx context.Context, identity *domain.ResolvedIdentity, taskID int64) error

	ListAll(ctx context.Context, identity *domain.ResolvedIdentity) ([]*domain.Task, error)
	DeleteAny(ctx context.Context, identity *domain.ResolvedIdentity, taskID int64) error
}
