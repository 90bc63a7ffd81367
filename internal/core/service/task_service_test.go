package service

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/rs/zerolog"

	"github.com/taskify/taskify-api/internal/core/domain"
	"github.com/taskify/taskify-api/internal/core/ports"
)

type stubTaskRepo struct {
	tasks  map[int64]*domain.Task
	nextID int64
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{tasks: make(map[int64]*domain.Task)}
}

func (r *stubTaskRepo) visible(t *domain.Task, f ports.TaskFilter) bool {
	return f.OwnerID == 0 || t.OwnerID == f.OwnerID
}

func (r *stubTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.nextID++
	stored := *task
	stored.ID = r.nextID
	r.tasks[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *stubTaskRepo) FindByID(_ context.Context, id int64, f ports.TaskFilter) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok || !r.visible(t, f) {
		return nil, domain.ErrTaskNotFound
	}
	out := *t
	return &out, nil
}

func (r *stubTaskRepo) List(_ context.Context, f ports.TaskFilter) ([]*domain.Task, error) {
	out := make([]*domain.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if r.visible(t, f) {
			c := *t
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubTaskRepo) Update(_ context.Context, task *domain.Task) error {
	existing, ok := r.tasks[task.ID]
	if !ok || existing.OwnerID != task.OwnerID {
		return domain.ErrTaskNotFound
	}
	c := *task
	r.tasks[task.ID] = &c
	return nil
}

func (r *stubTaskRepo) Delete(_ context.Context, id int64, f ports.TaskFilter) error {
	t, ok := r.tasks[id]
	if !ok || !r.visible(t, f) {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

var (
	bobID   = &domain.ResolvedIdentity{ID: 1, Username: "bob", Role: domain.RoleUser}
	aliceID = &domain.ResolvedIdentity{ID: 2, Username: "alice", Role: domain.RoleUser}
	carolID = &domain.ResolvedIdentity{ID: 3, Username: "carol", Role: domain.RoleManager}
)

func newTestTaskService() (ports.TaskService, *stubTaskRepo) {
	repo := newStubTaskRepo()
	return NewTaskService(repo, zerolog.Nop()), repo
}

func mustCreateTask(t *testing.T, svc ports.TaskService, id *domain.ResolvedIdentity, title string) *domain.Task {
	t.Helper()
	task, err := svc.Create(context.Background(), id, ports.CreateTaskInput{Title: title, Priority: 3})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func TestTaskService_Create(t *testing.T) {
	svc, _ := newTestTaskService()
	ctx := context.Background()

	task, err := svc.Create(ctx, bobID, ports.CreateTaskInput{Title: "  write report ", Description: "q3", Priority: 2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID == 0 || task.OwnerID != bobID.ID {
		t.Fatalf("unexpected task: %+v", task)
	}
	if task.Title != "write report" {
		t.Fatalf("title not trimmed: %q", task.Title)
	}

	if _, err := svc.Create(ctx, bobID, ports.CreateTaskInput{Title: "", Priority: 2}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty title, got %v", err)
	}
	if _, err := svc.Create(ctx, bobID, ports.CreateTaskInput{Title: "x", Priority: 9}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad priority, got %v", err)
	}
	if _, err := svc.Create(ctx, nil, ports.CreateTaskInput{Title: "x", Priority: 1}); err != domain.ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestTaskService_OwnerScoping(t *testing.T) {
	svc, _ := newTestTaskService()
	ctx := context.Background()

	bobTask := mustCreateTask(t, svc, bobID, "bob's")
	mustCreateTask(t, svc, aliceID, "alice's")

	list, err := svc.List(ctx, bobID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != bobTask.ID {
		t.Fatalf("bob should only see his task, got %+v", list)
	}

	if _, err := svc.Get(ctx, aliceID, bobTask.ID); err != domain.ErrTaskNotFound {
		t.Fatalf("expected ErrTaskNotFound for another user's task, got %v", err)
	}
	title := "hijacked"
	if _, err := svc.Update(ctx, aliceID, bobTask.ID, domain.TaskUpdate{Title: &title}); err != domain.ErrTaskNotFound {
		t.Fatalf("expected ErrTaskNotFound on foreign update, got %v", err)
	}
	if err := svc.Delete(ctx, aliceID, bobTask.ID); err != domain.ErrTaskNotFound {
		t.Fatalf("expected ErrTaskNotFound on foreign delete, got %v", err)
	}

	got, err := svc.Get(ctx, bobID, bobTask.ID)
	if err != nil || got.Title != "bob's" {
		t.Fatalf("bob's task should be untouched, got %+v, %v", got, err)
	}
}

func TestTaskService_ZeroIdentityRejected(t *testing.T) {
	svc, _ := newTestTaskService()
	mustCreateTask(t, svc, bobID, "bob's")

	if _, err := svc.List(context.Background(), &domain.ResolvedIdentity{Username: "nobody"}); err != domain.ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestTaskService_Update(t *testing.T) {
	svc, _ := newTestTaskService()
	ctx := context.Background()
	task := mustCreateTask(t, svc, bobID, "draft")

	done := true
	prio := 5
	updated, err := svc.Update(ctx, bobID, task.ID, domain.TaskUpdate{Completed: &done, Priority: &prio})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Completed || updated.Priority != 5 || updated.OwnerID != bobID.ID {
		t.Fatalf("unexpected task after update: %+v", updated)
	}

	bad := 0
	if _, err := svc.Update(ctx, bobID, task.ID, domain.TaskUpdate{Priority: &bad}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestTaskService_Update_TrimsText(t *testing.T) {
	svc, _ := newTestTaskService()
	ctx := context.Background()
	task := mustCreateTask(t, svc, bobID, "draft")

	blank := "   "
	if _, err := svc.Update(ctx, bobID, task.ID, domain.TaskUpdate{Title: &blank}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank title, got %v", err)
	}

	title := "  final  "
	desc := " notes "
	updated, err := svc.Update(ctx, bobID, task.ID, domain.TaskUpdate{Title: &title, Description: &desc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "final" || updated.Description != "notes" {
		t.Fatalf("text not trimmed: %q %q", updated.Title, updated.Description)
	}
}

func TestTaskService_ManagerOperations(t *testing.T) {
	svc, repo := newTestTaskService()
	ctx := context.Background()
	bobTask := mustCreateTask(t, svc, bobID, "bob's")
	mustCreateTask(t, svc, aliceID, "alice's")

	if _, err := svc.ListAll(ctx, bobID); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden for user role, got %v", err)
	}
	if err := svc.DeleteAny(ctx, bobID, bobTask.ID); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden for user role, got %v", err)
	}
	if _, err := svc.ListAll(ctx, nil); err != domain.ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	all, err := svc.ListAll(ctx, carolID)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("manager should see every task, got %d", len(all))
	}

	if err := svc.DeleteAny(ctx, carolID, bobTask.ID); err != nil {
		t.Fatalf("delete any: %v", err)
	}
	if _, ok := repo.tasks[bobTask.ID]; ok {
		t.Fatalf("task should be gone")
	}
	if err := svc.DeleteAny(ctx, carolID, 999); err != domain.ErrTaskNotFound {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}
