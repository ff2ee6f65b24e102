package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// AddTask creates a task in s and saves the given fields onto it.
func AddTask(t *testing.T, s store.Store, title, description string, completed bool) model.Task {
	t.Helper()

	ctx := context.Background()
	task, err := s.CreateEmptyTask(ctx)
	if err != nil {
		t.Fatalf("creating task: %v", err)
	}

	task.Title = title
	task.Description = description
	task.Completed = completed
	if err := s.UpdateTask(ctx, task); err != nil {
		t.Fatalf("updating task: %v", err)
	}

	return task
}

// RemoteTasks returns n distinct remote records.
func RemoteTasks(n int) []model.RemoteTask {
	records := make([]model.RemoteTask, n)
	for i := range records {
		records[i] = model.RemoteTask{
			ID:        i + 1,
			Text:      "Remote task " + string(rune('A'+i%26)),
			Completed: i%3 == 0,
			OwnerID:   100 + i,
		}
	}
	return records
}

// LockedDatabaseError returns the error a writer gets from a database file
// whose write lock is held by another connection.
func LockedDatabaseError(t *testing.T) error {
	t.Helper()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "locked.db")
	NewFileStore(t, path)

	holder, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("opening lock holder: %v", err)
	}
	t.Cleanup(func() { _ = holder.Close() })

	conn, err := holder.Conn(ctx)
	if err != nil {
		t.Fatalf("acquiring lock holder connection: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		t.Fatalf("taking write lock: %v", err)
	}
	t.Cleanup(func() { _, _ = conn.ExecContext(ctx, "ROLLBACK") })

	writer, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("opening writer: %v", err)
	}
	writer.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = writer.Close() })

	if _, err := writer.ExecContext(ctx, "PRAGMA busy_timeout=0"); err != nil {
		t.Fatalf("clearing busy timeout: %v", err)
	}
	_, err = writer.ExecContext(ctx, "INSERT INTO settings (key, value, updated_at) VALUES ('lock', 'x', 0)")
	if err == nil {
		t.Fatal("expected the write to fail while the lock is held")
	}
	return err
}

// NewFileStore creates a SQLiteStore backed by the file at path and closes
// it when the test completes.
func NewFileStore(t *testing.T, path string) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("creating file store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	return s
}
