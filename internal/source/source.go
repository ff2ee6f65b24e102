package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/todolist/internal/model"
)

// Fetch error kinds. Every error returned by a Source wraps exactly one of
// these.
var (
	// ErrNetwork covers transport failures, including timeouts.
	ErrNetwork = errors.New("network error")

	// ErrInvalidResponse covers non-2xx statuses and empty bodies.
	ErrInvalidResponse = errors.New("invalid response")

	// ErrDecode covers malformed JSON and records with missing fields.
	ErrDecode = errors.New("decode error")
)

// FetchError reports a failed fetch from a remote source.
type FetchError struct {
	Source string
	Kind   error
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch from %s: %v: %v", e.Source, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *FetchError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// NewFetchError builds a FetchError of the given kind.
func NewFetchError(source string, kind error, err error) error {
	return &FetchError{Source: source, Kind: kind, Err: err}
}

// IsNetworkError reports whether err (or any error in its chain) is a
// transport-level fetch failure.
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// Source is a read-only remote provider of seed tasks.
type Source interface {
	// Name identifies the source in logs and errors.
	Name() string

	// FetchAll performs a single request and returns every record it
	// delivered. It does not retry and does not cache.
	FetchAll(ctx context.Context) ([]model.RemoteTask, error)
}
