package store

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/query"
)

// deleteChunkSize bounds the number of ids bound into a single DELETE.
const deleteChunkSize = 500

const taskColumns = "id, title, description, completed, created_at"

const insertTaskSQL = `
	INSERT INTO tasks (
		id, title, description, completed, created_at,
		title_key, description_key
	) VALUES (?, ?, ?, ?, ?, ?, ?)`

// taskRow mirrors a tasks row as stored.
type taskRow struct {
	ID          string `db:"id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Completed   int    `db:"completed"`
	CreatedAt   int64  `db:"created_at"`
}

func (r taskRow) toModel() model.Task {
	return model.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed != 0,
		CreatedAt:   time.Unix(0, r.CreatedAt).UTC(),
	}
}

// GetTasks retrieves tasks matching spec. No match is an empty slice,
// not an error.
func (s *SQLiteStore) GetTasks(ctx context.Context, spec query.Spec) ([]model.Task, error) {
	clause := query.Build(spec)

	var rows []taskRow
	err := s.db.SelectContext(ctx, &rows,
		clause.SQL("SELECT "+taskColumns+" FROM tasks"), clause.Args...)
	if err != nil {
		return nil, storageErr("querying tasks", ErrReadFailed, err)
	}

	tasks := make([]model.Task, len(rows))
	for i, r := range rows {
		tasks[i] = r.toModel()
	}
	return tasks, nil
}

// CountTasks returns the number of tasks matching spec.
func (s *SQLiteStore) CountTasks(ctx context.Context, spec query.Spec) (int, error) {
	clause := query.Build(spec)
	clause.OrderBy = ""

	var count int
	if err := s.db.GetContext(ctx, &count, clause.SQL("SELECT COUNT(*) FROM tasks"), clause.Args...); err != nil {
		return 0, storageErr("counting tasks", ErrReadFailed, err)
	}
	return count, nil
}

// GetTaskByID retrieves a single task by its ID.
func (s *SQLiteStore) GetTaskByID(ctx context.Context, id string) (*model.Task, error) {
	var rows []taskRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	if err != nil {
		return nil, storageErr("getting task "+id, ErrReadFailed, err)
	}
	if len(rows) == 0 {
		return nil, storageErr("getting task "+id, ErrReadFailed, ErrTaskNotFound)
	}

	task := rows[0].toModel()
	return &task, nil
}

// CreateEmptyTask inserts a new task with empty title and description.
func (s *SQLiteStore) CreateEmptyTask(ctx context.Context) (model.Task, error) {
	task := model.Task{
		ID:        uuid.New().String(),
		CreatedAt: s.clock(),
	}

	if err := insertTask(ctx, s.db, task); err != nil {
		return model.Task{}, storageErr("creating task", ErrWriteFailed, err)
	}
	return task, nil
}

// UpdateTask persists the title, description and completed state of an
// existing task. Nothing is written when the stored values already match.
// CreatedAt is never updated.
func (s *SQLiteStore) UpdateTask(ctx context.Context, task model.Task) error {
	op := "updating task " + task.ID

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET
			title = ?, description = ?, completed = ?,
			title_key = ?, description_key = ?
		WHERE id = ? AND (title <> ? OR description <> ? OR completed <> ?)`,
		task.Title, task.Description, boolToInt(task.Completed),
		query.Fold(task.Title), query.Fold(task.Description),
		task.ID, task.Title, task.Description, boolToInt(task.Completed),
	)
	if err != nil {
		return storageErr(op, ErrWriteFailed, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return storageErr(op, ErrWriteFailed, err)
	}
	if affected > 0 {
		return nil
	}

	// Either unchanged or gone.
	var exists int
	if err := s.db.GetContext(ctx, &exists, "SELECT COUNT(*) FROM tasks WHERE id = ?", task.ID); err != nil {
		return storageErr(op, ErrWriteFailed, err)
	}
	if exists == 0 {
		return storageErr(op, ErrWriteFailed, ErrTaskNotFound)
	}
	return nil
}

// DeleteTasks removes the given tasks in one transaction. Tasks that no
// longer exist are ignored.
func (s *SQLiteStore) DeleteTasks(ctx context.Context, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return storageErr("deleting tasks", ErrBatchDeleteFailed, err)
	}
	defer tx.Rollback()

	for start := 0; start < len(ids); start += deleteChunkSize {
		end := min(start+deleteChunkSize, len(ids))

		q, args, err := sqlx.In("DELETE FROM tasks WHERE id IN (?)", ids[start:end])
		if err != nil {
			return storageErr("deleting tasks", ErrBatchDeleteFailed, err)
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return storageErr("deleting tasks", ErrBatchDeleteFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("deleting tasks", ErrBatchDeleteFailed, err)
	}
	return nil
}

// ImportTasks converts remote records into new local tasks and inserts them
// in one transaction, clearing the remote-import flag in the same
// transaction. Existing tasks are never touched. All imported tasks share
// one creation time; their insertion order follows the records.
func (s *SQLiteStore) ImportTasks(ctx context.Context, records []model.RemoteTask) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return storageErr("importing tasks", ErrBatchWriteFailed, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, insertTaskSQL)
	if err != nil {
		return storageErr("importing tasks", ErrBatchWriteFailed, err)
	}
	defer stmt.Close()

	now := s.clock()
	for i, r := range records {
		if s.importHook != nil {
			if err := s.importHook(i); err != nil {
				return storageErr("importing tasks", ErrBatchWriteFailed, err)
			}
		}

		task := model.NewTaskFromRemote(r)
		task.ID = uuid.New().String()
		task.CreatedAt = now

		if _, err := stmt.ExecContext(ctx, insertArgs(task)...); err != nil {
			return storageErr(
				fmt.Sprintf("importing remote task %d", r.ID),
				ErrBatchWriteFailed, err,
			)
		}
	}

	if err := setSetting(ctx, tx, settingNeedsRemoteImport, "false", now); err != nil {
		return storageErr("importing tasks", ErrBatchWriteFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return storageErr("importing tasks", ErrBatchWriteFailed, err)
	}
	return nil
}

// SeedDemoTasks inserts n sample tasks in one transaction. It does not
// affect the remote-import flag.
func (s *SQLiteStore) SeedDemoTasks(ctx context.Context, n int) ([]model.Task, error) {
	if n <= 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, storageErr("seeding tasks", ErrBatchWriteFailed, err)
	}
	defer tx.Rollback()

	now := s.clock()
	tasks := make([]model.Task, n)
	for i := range tasks {
		tasks[i] = model.Task{
			ID:          uuid.New().String(),
			Title:       fmt.Sprintf("Sample task %d", i+1),
			Description: fmt.Sprintf("Description for sample task %d", i+1),
			Completed:   rand.IntN(2) == 1,
			CreatedAt:   now,
		}
		if err := insertTask(ctx, tx, tasks[i]); err != nil {
			return nil, storageErr("seeding tasks", ErrBatchWriteFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("seeding tasks", ErrBatchWriteFailed, err)
	}
	return tasks, nil
}

func insertTask(ctx context.Context, db sqlx.ExecerContext, task model.Task) error {
	if strings.TrimSpace(task.ID) == "" {
		return fmt.Errorf("task id must not be empty")
	}
	_, err := db.ExecContext(ctx, insertTaskSQL, insertArgs(task)...)
	return err
}

func insertArgs(task model.Task) []any {
	return []any{
		task.ID, task.Title, task.Description,
		boolToInt(task.Completed), task.CreatedAt.UnixNano(),
		query.Fold(task.Title), query.Fold(task.Description),
	}
}
