package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/query"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// steppedClock returns a clock that advances by one second per call.
func steppedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := cur
		cur = cur.Add(time.Second)
		return t
	}
}

func addTask(t *testing.T, s *SQLiteStore, title, description string, completed bool) model.Task {
	t.Helper()

	ctx := context.Background()
	task, err := s.CreateEmptyTask(ctx)
	require.NoError(t, err)

	task.Title = title
	task.Description = description
	task.Completed = completed
	require.NoError(t, s.UpdateTask(ctx, task))
	return task
}

func ids(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestSQLiteStore_Migrations(t *testing.T) {
	s := newTestStore(t)

	v, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)

	// Re-running is a no-op.
	require.NoError(t, s.runMigrations())
	v, err = s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)
}

func TestCreateEmptyTask(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	fixed := time.Date(2024, 11, 18, 9, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	task, err := s.CreateEmptyTask(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Empty(t, task.Title)
	assert.Empty(t, task.Description)
	assert.False(t, task.Completed)
	assert.True(t, fixed.Equal(task.CreatedAt))

	got, err := s.GetTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
	assert.True(t, fixed.Equal(got.CreatedAt))

	other, err := s.CreateEmptyTask(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, task.ID, other.ID)
}

func TestUpdateTask(t *testing.T) {
	ctx := context.Background()

	t.Run("write then read", func(t *testing.T) {
		s := newTestStore(t)
		task, err := s.CreateEmptyTask(ctx)
		require.NoError(t, err)

		task.Title = "Buy milk"
		task.Description = "Two litres"
		task.Completed = true
		require.NoError(t, s.UpdateTask(ctx, task))

		tasks, err := s.GetTasks(ctx, query.Spec{Filter: query.FilterDone, SearchText: "milk"})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "Buy milk", tasks[0].Title)
		assert.Equal(t, "Two litres", tasks[0].Description)
		assert.True(t, tasks[0].Completed)
	})

	t.Run("created_at is never changed", func(t *testing.T) {
		s := newTestStore(t)
		s.now = steppedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		task, err := s.CreateEmptyTask(ctx)
		require.NoError(t, err)

		task.Title = "changed"
		task.CreatedAt = task.CreatedAt.Add(48 * time.Hour)
		require.NoError(t, s.UpdateTask(ctx, task))

		got, err := s.GetTaskByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "changed", got.Title)
		assert.True(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Equal(got.CreatedAt))
	})

	t.Run("unchanged task is a no-op", func(t *testing.T) {
		s := newTestStore(t)
		task := addTask(t, s, "same", "", false)
		require.NoError(t, s.UpdateTask(ctx, task))
	})

	t.Run("missing task fails with write failed", func(t *testing.T) {
		s := newTestStore(t)
		err := s.UpdateTask(ctx, model.Task{ID: "nope", Title: "x"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrWriteFailed)
		assert.ErrorIs(t, err, ErrTaskNotFound)
		assert.True(t, IsNotFoundError(err))
	})
}

func TestGetTaskByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetTaskByID(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReadFailed)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestGetTasks_SortByDate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.now = steppedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	t1 := addTask(t, s, "first", "", false)
	t2 := addTask(t, s, "second", "", false)
	t3 := addTask(t, s, "third", "", false)

	asc, err := s.GetTasks(ctx, query.Spec{SortField: query.SortByDate, SortOrder: query.Ascending})
	require.NoError(t, err)
	assert.Equal(t, []string{t1.ID, t2.ID, t3.ID}, ids(asc))

	desc, err := s.GetTasks(ctx, query.Spec{SortField: query.SortByDate, SortOrder: query.Descending})
	require.NoError(t, err)
	assert.Equal(t, []string{t3.ID, t2.ID, t1.ID}, ids(desc))
}

func TestGetTasks_TiesFollowInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	a := addTask(t, s, "a", "", false)
	b := addTask(t, s, "b", "", false)
	c := addTask(t, s, "c", "", false)

	for range 3 {
		asc, err := s.GetTasks(ctx, query.Spec{SortField: query.SortByDate, SortOrder: query.Ascending})
		require.NoError(t, err)
		assert.Equal(t, []string{a.ID, b.ID, c.ID}, ids(asc))
	}

	desc, err := s.GetTasks(ctx, query.Spec{SortField: query.SortByDate, SortOrder: query.Descending})
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, b.ID, a.ID}, ids(desc))
}

func TestGetTasks_SortByTitleIgnoresCaseAndDiacritics(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	addTask(t, s, "banana", "", false)
	addTask(t, s, "Éclair", "", false)
	addTask(t, s, "apple", "", false)
	addTask(t, s, "Cherry", "", false)

	tasks, err := s.GetTasks(ctx, query.Spec{SortField: query.SortByTitle, SortOrder: query.Ascending})
	require.NoError(t, err)

	titles := make([]string, len(tasks))
	for i, task := range tasks {
		titles[i] = task.Title
	}
	assert.Equal(t, []string{"apple", "banana", "Cherry", "Éclair"}, titles)
}

func TestGetTasks_Filter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	addTask(t, s, "done 1", "", true)
	addTask(t, s, "done 2", "", true)
	addTask(t, s, "open 1", "", false)
	addTask(t, s, "open 2", "", false)
	addTask(t, s, "open 3", "", false)

	tests := []struct {
		filter query.Filter
		want   int
	}{
		{query.FilterDone, 2},
		{query.FilterUndone, 3},
		{query.FilterAll, 5},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			spec := query.Spec{Filter: tt.filter}

			tasks, err := s.GetTasks(ctx, spec)
			require.NoError(t, err)
			assert.Len(t, tasks, tt.want)

			count, err := s.CountTasks(ctx, spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, count)
		})
	}
}

func TestGetTasks_Search(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	milk := addTask(t, s, "Buy milk", "", false)
	route := addTask(t, s, "Errands", "milk route", true)
	addTask(t, s, "Call bob", "", false)
	cafe := addTask(t, s, "Café visit", "", false)

	t.Run("title or description, case-insensitive", func(t *testing.T) {
		tasks, err := s.GetTasks(ctx, query.Spec{SortOrder: query.Ascending, SearchText: "MILK"})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{milk.ID, route.ID}, ids(tasks))
	})

	t.Run("diacritic-insensitive both ways", func(t *testing.T) {
		tasks, err := s.GetTasks(ctx, query.Spec{SearchText: "cafe"})
		require.NoError(t, err)
		assert.Equal(t, []string{cafe.ID}, ids(tasks))

		tasks, err = s.GetTasks(ctx, query.Spec{SearchText: "CAFÉ"})
		require.NoError(t, err)
		assert.Equal(t, []string{cafe.ID}, ids(tasks))
	})

	t.Run("anded with filter", func(t *testing.T) {
		tasks, err := s.GetTasks(ctx, query.Spec{Filter: query.FilterUndone, SearchText: "milk"})
		require.NoError(t, err)
		assert.Equal(t, []string{milk.ID}, ids(tasks))
	})

	t.Run("wildcards match literally", func(t *testing.T) {
		tasks, err := s.GetTasks(ctx, query.Spec{SearchText: "%"})
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("empty search matches everything", func(t *testing.T) {
		tasks, err := s.GetTasks(ctx, query.Spec{SearchText: "   "})
		require.NoError(t, err)
		assert.Len(t, tasks, 4)
	})

	t.Run("no results is empty, not an error", func(t *testing.T) {
		tasks, err := s.GetTasks(ctx, query.Spec{SearchText: "zebra"})
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})
}

func TestDeleteTasks(t *testing.T) {
	ctx := context.Background()

	t.Run("removes all given tasks", func(t *testing.T) {
		s := newTestStore(t)
		t1 := addTask(t, s, "one", "", false)
		t2 := addTask(t, s, "two", "", false)
		t3 := addTask(t, s, "three", "", false)

		require.NoError(t, s.DeleteTasks(ctx, []model.Task{t1, t2}))

		tasks, err := s.GetTasks(ctx, query.DefaultSpec())
		require.NoError(t, err)
		assert.Equal(t, []string{t3.ID}, ids(tasks))
	})

	t.Run("already deleted tasks are ignored", func(t *testing.T) {
		s := newTestStore(t)
		t1 := addTask(t, s, "one", "", false)
		t2 := addTask(t, s, "two", "", false)

		require.NoError(t, s.DeleteTasks(ctx, []model.Task{t1}))
		require.NoError(t, s.DeleteTasks(ctx, []model.Task{t1, t2}))

		tasks, err := s.GetTasks(ctx, query.DefaultSpec())
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("empty batch", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.DeleteTasks(ctx, nil))
	})

	t.Run("batches larger than one chunk", func(t *testing.T) {
		s := newTestStore(t)
		seeded, err := s.SeedDemoTasks(ctx, deleteChunkSize+10)
		require.NoError(t, err)

		require.NoError(t, s.DeleteTasks(ctx, seeded))

		count, err := s.CountTasks(ctx, query.DefaultSpec())
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestImportTasks(t *testing.T) {
	ctx := context.Background()

	records := []model.RemoteTask{
		{ID: 1, Text: "Do something nice", Completed: false, OwnerID: 152},
		{ID: 2, Text: "Memorize a poem", Completed: true, OwnerID: 13},
		{ID: 3, Text: "Watch a classic movie", Completed: true, OwnerID: 68},
	}

	t.Run("imports all records and clears the flag", func(t *testing.T) {
		s := newTestStore(t)

		needs, err := s.NeedsRemoteImport(ctx)
		require.NoError(t, err)
		assert.True(t, needs)

		require.NoError(t, s.ImportTasks(ctx, records))

		tasks, err := s.GetTasks(ctx, query.Spec{SortField: query.SortByDate, SortOrder: query.Ascending})
		require.NoError(t, err)
		require.Len(t, tasks, 3)
		for i, task := range tasks {
			assert.Equal(t, records[i].Text, task.Title)
			assert.Equal(t, records[i].Completed, task.Completed)
			assert.Empty(t, task.Description)
			assert.NotEqual(t, "1", task.ID)
		}

		needs, err = s.NeedsRemoteImport(ctx)
		require.NoError(t, err)
		assert.False(t, needs)
	})

	t.Run("appends to existing tasks", func(t *testing.T) {
		s := newTestStore(t)
		local := addTask(t, s, "local edit", "kept", false)

		require.NoError(t, s.ImportTasks(ctx, records))

		got, err := s.GetTaskByID(ctx, local.ID)
		require.NoError(t, err)
		assert.Equal(t, "local edit", got.Title)
		assert.Equal(t, "kept", got.Description)

		count, err := s.CountTasks(ctx, query.DefaultSpec())
		require.NoError(t, err)
		assert.Equal(t, 4, count)
	})

	t.Run("failure midway leaves nothing behind", func(t *testing.T) {
		s := newTestStore(t)
		boom := errors.New("disk full")
		s.importHook = func(i int) error {
			if i == 2 {
				return boom
			}
			return nil
		}

		err := s.ImportTasks(ctx, records)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrBatchWriteFailed)
		assert.ErrorIs(t, err, boom)

		count, err := s.CountTasks(ctx, query.DefaultSpec())
		require.NoError(t, err)
		assert.Zero(t, count)

		needs, err := s.NeedsRemoteImport(ctx)
		require.NoError(t, err)
		assert.True(t, needs)

		// Retry succeeds once the fault is gone.
		s.importHook = nil
		require.NoError(t, s.ImportTasks(ctx, records))
		count, err = s.CountTasks(ctx, query.DefaultSpec())
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("empty batch keeps the flag", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.ImportTasks(ctx, nil))

		needs, err := s.NeedsRemoteImport(ctx)
		require.NoError(t, err)
		assert.True(t, needs)
	})

	t.Run("queries never observe a partial batch", func(t *testing.T) {
		s := newTestStore(t)
		big := make([]model.RemoteTask, 200)
		for i := range big {
			big[i] = model.RemoteTask{ID: i, Text: "bulk"}
		}

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.ImportTasks(ctx, big))
		}()

		for range 20 {
			count, err := s.CountTasks(ctx, query.DefaultSpec())
			require.NoError(t, err)
			assert.Contains(t, []int{0, len(big)}, count)
		}
		wg.Wait()
	})
}

func TestRemoteImportFlag(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.ImportTasks(ctx, []model.RemoteTask{{ID: 1, Text: "x"}}))
	needs, err := s.NeedsRemoteImport(ctx)
	require.NoError(t, err)
	assert.False(t, needs)

	require.NoError(t, s.ResetRemoteImport(ctx))
	needs, err = s.NeedsRemoteImport(ctx)
	require.NoError(t, err)
	assert.True(t, needs)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "todolist.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	task := addTask(t, s, "survives", "restart", true)
	require.NoError(t, s.ImportTasks(ctx, []model.RemoteTask{{ID: 7, Text: "remote"}}))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	got, err := s.GetTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "survives", got.Title)
	assert.True(t, got.Completed)

	needs, err := s.NeedsRemoteImport(ctx)
	require.NoError(t, err)
	assert.False(t, needs)
}

func TestSeedDemoTasks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	tasks, err := s.SeedDemoTasks(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, tasks, 10)

	count, err := s.CountTasks(ctx, query.DefaultSpec())
	require.NoError(t, err)
	assert.Equal(t, 10, count)

	needs, err := s.NeedsRemoteImport(ctx)
	require.NoError(t, err)
	assert.True(t, needs)

	none, err := s.SeedDemoTasks(ctx, 0)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestStorageError(t *testing.T) {
	cause := errors.New("cause")
	err := storageErr("doing thing", ErrWriteFailed, cause)

	assert.Equal(t, "doing thing: write failed: cause", err.Error())
	assert.ErrorIs(t, err, ErrWriteFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrReadFailed)

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "doing thing", se.Op)

	assert.False(t, IsBusyError(err))
}
