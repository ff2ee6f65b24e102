package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
)

// settingNeedsRemoteImport is the key of the persisted import latch.
// An absent row means the import has not happened yet.
const settingNeedsRemoteImport = "needs_remote_import"

// NeedsRemoteImport reports whether the one-time remote import is still
// pending.
func (s *SQLiteStore) NeedsRemoteImport(ctx context.Context) (bool, error) {
	value, ok, err := getSetting(ctx, s.db, settingNeedsRemoteImport)
	if err != nil {
		return true, storageErr("reading import flag", ErrReadFailed, err)
	}
	if !ok {
		return true, nil
	}

	needs, err := strconv.ParseBool(value)
	if err != nil {
		return true, storageErr("reading import flag", ErrReadFailed,
			fmt.Errorf("parsing %q: %w", value, err))
	}
	return needs, nil
}

// ResetRemoteImport re-arms the import latch so the next refresh fetches
// from the remote source again.
func (s *SQLiteStore) ResetRemoteImport(ctx context.Context) error {
	if err := setSetting(ctx, s.db, settingNeedsRemoteImport, "true", s.clock()); err != nil {
		return storageErr("resetting import flag", ErrWriteFailed, err)
	}
	return nil
}

func getSetting(ctx context.Context, db sqlx.QueryerContext, key string) (string, bool, error) {
	var value string
	err := sqlx.GetContext(ctx, db, &value, "SELECT value FROM settings WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting setting %q: %w", key, err)
	}
	return value, true, nil
}

func setSetting(ctx context.Context, db sqlx.ExecerContext, key, value string, now time.Time) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("setting %q: %w", key, err)
	}
	return nil
}
