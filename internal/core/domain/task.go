package domain

import "time"

// Task is a unit of work owned by a single user.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    int       `json:"priority"`
	Completed   bool      `json:"completed"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskUpdate lists the fields a task update may touch. Nil means unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *int
	Completed   *bool
}

// Apply copies the whitelisted fields onto t and reports whether anything changed.
func (u TaskUpdate) Apply(t *Task) bool {
	changed := false
	if u.Title != nil && *u.Title != t.Title {
		t.Title = *u.Title
		changed = true
	}
	if u.Description != nil && *u.Description != t.Description {
		t.Description = *u.Description
		changed = true
	}
	if u.Priority != nil && *u.Priority != t.Priority {
		t.Priority = *u.Priority
		changed = true
	}
	if u.Completed != nil && *u.Completed != t.Completed {
		t.Completed = *u.Completed
		changed = true
	}
	return changed
}
