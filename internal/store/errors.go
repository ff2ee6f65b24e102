package store

import (
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Storage error kinds. Every error returned by SQLiteStore wraps exactly one
// of these, so callers can branch with errors.Is.
var (
	ErrWriteFailed       = errors.New("write failed")
	ErrBatchWriteFailed  = errors.New("batch write failed")
	ErrBatchDeleteFailed = errors.New("batch delete failed")
	ErrReadFailed        = errors.New("read failed")
)

// ErrTaskNotFound is wrapped by lookups and updates of a missing task.
var ErrTaskNotFound = errors.New("task not found")

// StorageError reports a failed store operation together with its kind and
// underlying cause.
type StorageError struct {
	Op   string
	Kind error
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *StorageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func storageErr(op string, kind error, err error) error {
	return &StorageError{Op: op, Kind: kind, Err: err}
}

// IsBusyError returns true if the error is a SQLITE_BUSY error, including
// its extended codes.
func IsBusyError(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xff == sqlite3.SQLITE_BUSY
	}
	return false
}

// IsNotFoundError returns true if err reports a missing task.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrTaskNotFound) || errors.Is(err, sql.ErrNoRows)
}
