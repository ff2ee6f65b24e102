package store

import (
	"context"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/query"
)

// Store defines the persistence interface for local tasks and the
// remote-import latch.
type Store interface {
	// === Reads ===

	GetTasks(ctx context.Context, spec query.Spec) ([]model.Task, error)
	GetTaskByID(ctx context.Context, id string) (*model.Task, error)
	CountTasks(ctx context.Context, spec query.Spec) (int, error)

	// === Writes ===

	CreateEmptyTask(ctx context.Context) (model.Task, error)
	UpdateTask(ctx context.Context, task model.Task) error
	DeleteTasks(ctx context.Context, tasks []model.Task) error

	// === Remote import ===

	// ImportTasks appends one task per record and clears the import flag,
	// all in a single transaction. An empty batch is a no-op.
	ImportTasks(ctx context.Context, records []model.RemoteTask) error
	NeedsRemoteImport(ctx context.Context) (bool, error)
	ResetRemoteImport(ctx context.Context) error
}

var _ Store = (*SQLiteStore)(nil)
