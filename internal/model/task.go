package model

import "time"

// Task is a local task item owned by the store.
type Task struct {
	// ID is the internal unique identifier, assigned at creation and never
	// reused from the remote source.
	ID string `json:"id" db:"id"`

	// Title is the human-readable summary of the task.
	Title string `json:"title" db:"title"`

	// Description is the optional free-form body text.
	Description string `json:"description" db:"description"`

	// Completed marks the task as done.
	Completed bool `json:"completed" db:"completed"`

	// CreatedAt is set once when the task is created and never changes.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RemoteTask is a task record as delivered by the remote seed endpoint,
// before it is converted into a local Task.
type RemoteTask struct {
	ID        int    `json:"id"`
	Text      string `json:"todo"`
	Completed bool   `json:"completed"`
	OwnerID   int    `json:"userId"`
}

// NewTaskFromRemote converts a remote record into a new local task.
// The caller assigns ID and CreatedAt.
func NewTaskFromRemote(r RemoteTask) Task {
	return Task{
		Title:     r.Text,
		Completed: r.Completed,
	}
}
