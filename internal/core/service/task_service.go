package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskify/taskify-api/internal/core/domain"
	"github.com/taskify/taskify-api/internal/core/ports"
	"github.com/taskify/taskify-api/internal/pkg/metrics"
)

const (
	minPriority = 1
	maxPriority = 5
)

type taskService struct {
	repo ports.TaskRepository
	log  zerolog.Logger
}

// NewTaskService returns a TaskService implementation.
func NewTaskService(repo ports.TaskRepository, log zerolog.Logger) ports.TaskService {
	return &taskService{repo: repo, log: log}
}

func (s *taskService) List(ctx context.Context, identity *domain.ResolvedIdentity) ([]*domain.Task, error) {
	filter, err := ownerFilter(identity)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, filter)
}

func (s *taskService) Get(ctx context.Context, identity *domain.ResolvedIdentity, taskID int64) (*domain.Task, error) {
	filter, err := ownerFilter(identity)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, taskID, filter)
}

func (s *taskService) Create(ctx context.Context, identity *domain.ResolvedIdentity, in ports.CreateTaskInput) (*domain.Task, error) {
	filter, err := ownerFilter(identity)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &domain.Task{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Priority:    in.Priority,
		Completed:   in.Completed,
		OwnerID:     filter.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	metrics.TasksCreatedTotal.Inc()
	return created, nil
}

// Update applies only the whitelisted fields in update; ownership and
// timestamps are never taken from the caller.
func (s *taskService) Update(ctx context.Context, identity *domain.ResolvedIdentity, taskID int64, update domain.TaskUpdate) (*domain.Task, error) {
	filter, err := ownerFilter(identity)
	if err != nil {
		return nil, err
	}

	task, err := s.repo.FindByID(ctx, taskID, filter)
	if err != nil {
		return nil, err
	}
	if !trimUpdate(update).Apply(task) {
		return task, nil
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}

	task.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, identity *domain.ResolvedIdentity, taskID int64) error {
	filter, err := ownerFilter(identity)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, taskID, filter); err != nil {
		return err
	}
	metrics.TasksDeletedTotal.WithLabelValues("owner").Inc()
	return nil
}

func (s *taskService) ListAll(ctx context.Context, identity *domain.ResolvedIdentity) ([]*domain.Task, error) {
	if err := s.requireManager(identity); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, ports.TaskFilter{})
}

func (s *taskService) DeleteAny(ctx context.Context, identity *domain.ResolvedIdentity, taskID int64) error {
	if err := s.requireManager(identity); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, taskID, ports.TaskFilter{}); err != nil {
		return err
	}
	metrics.TasksDeletedTotal.WithLabelValues("manager").Inc()
	s.log.Info().Int64("task_id", taskID).Str("manager", identity.Username).Msg("task deleted by manager")
	return nil
}

func (s *taskService) requireManager(identity *domain.ResolvedIdentity) error {
	if identity == nil {
		return domain.ErrUnauthenticated
	}
	if err := domain.RequireRole(identity, domain.RoleManager); err != nil {
		metrics.AccessDeniedTotal.Inc()
		return err
	}
	return nil
}

func trimUpdate(u domain.TaskUpdate) domain.TaskUpdate {
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		u.Title = &title
	}
	if u.Description != nil {
		desc := strings.TrimSpace(*u.Description)
		u.Description = &desc
	}
	return u
}

// ownerFilter scopes a query to the caller. A zero ID would mean "all
// owners" to the repository, so it is rejected here.
func ownerFilter(identity *domain.ResolvedIdentity) (ports.TaskFilter, error) {
	if identity == nil || identity.ID <= 0 {
		return ports.TaskFilter{}, domain.ErrUnauthenticated
	}
	return ports.TaskFilter{OwnerID: identity.ID}, nil
}

func validateTask(t *domain.Task) error {
	if t.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if t.Priority < minPriority || t.Priority > maxPriority {
		return fmt.Errorf("%w: priority must be between %d and %d", domain.ErrInvalidInput, minPriority, maxPriority)
	}
	return nil
}
