package dummyjson

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/source"
)

// Adapter implements source.Source for the dummyjson todos endpoint.
type Adapter struct {
	client *Client
}

var _ source.Source = (*Adapter)(nil)

// NewAdapter creates an adapter fetching from endpoint with the given
// per-request timeout.
func NewAdapter(endpoint string, timeout time.Duration) *Adapter {
	return &Adapter{client: NewClient(endpoint, timeout)}
}

// Name returns the source identifier.
func (a *Adapter) Name() string {
	return sourceName
}

// Endpoint returns the URL the adapter fetches from.
func (a *Adapter) Endpoint() string {
	return a.client.Endpoint()
}

// FetchAll retrieves the todos array. The total/skip/limit fields are
// ignored; whatever the single response contains is returned.
func (a *Adapter) FetchAll(ctx context.Context) ([]model.RemoteTask, error) {
	var resp TodosResponse
	if err := a.client.Get(ctx, &resp); err != nil {
		return nil, err
	}

	if resp.Todos == nil {
		return nil, source.NewFetchError(sourceName, source.ErrDecode,
			errors.New(`response has no "todos" array`))
	}

	records := make([]model.RemoteTask, 0, len(*resp.Todos))
	for i, t := range *resp.Todos {
		rec, err := toRemoteTask(t)
		if err != nil {
			return nil, source.NewFetchError(sourceName, source.ErrDecode,
				fmt.Errorf("todos[%d]: %w", i, err))
		}
		records = append(records, rec)
	}

	return records, nil
}

// toRemoteTask validates that every field is present and converts.
func toRemoteTask(t Todo) (model.RemoteTask, error) {
	var missing []string
	if t.ID == nil {
		missing = append(missing, "id")
	}
	if t.Todo == nil {
		missing = append(missing, "todo")
	}
	if t.Completed == nil {
		missing = append(missing, "completed")
	}
	if t.UserID == nil {
		missing = append(missing, "userId")
	}
	if len(missing) > 0 {
		return model.RemoteTask{}, fmt.Errorf("missing fields %v", missing)
	}

	return model.RemoteTask{
		ID:        *t.ID,
		Text:      *t.Todo,
		Completed: *t.Completed,
		OwnerID:   *t.UserID,
	}, nil
}
