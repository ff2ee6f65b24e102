package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/query"
	"github.com/nhle/todolist/internal/source/dummyjson"
	"github.com/nhle/todolist/internal/store"
	"github.com/nhle/todolist/internal/sync"
)

// minPrefixLen is the shortest id prefix accepted in place of a full id.
const minPrefixLen = 4

// App bundles the services the commands operate on. It is populated in the
// root command's Before hook; commands hold a pointer to it from the start.
type App struct {
	Config *model.AppConfig
	Store  *store.SQLiteStore
	Tasks  *sync.Controller
	Logger zerolog.Logger
}

// Open builds an App from cfg, creating dataDir and the database if needed.
func Open(cfg *model.AppConfig, dataDir string, logger zerolog.Logger) (*App, error) {
	spec, err := DisplaySpec(cfg.Display)
	if err != nil {
		return nil, fmt.Errorf("display config: %w", err)
	}

	dbPath := cfg.DatabasePath(dataDir)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	src := dummyjson.NewAdapter(cfg.Remote.URL, cfg.Remote.Timeout)
	tasks := sync.New(s, src, sync.Config{
		FetchTimeout: cfg.Remote.Timeout,
		Spec:         spec,
		Logger:       logger.With().Str("component", "sync").Logger(),
	})

	logger.Debug().Str("db", dbPath).Str("remote", src.Endpoint()).Msg("app opened")

	return &App{
		Config: cfg,
		Store:  s,
		Tasks:  tasks,
		Logger: logger,
	}, nil
}

// Close releases the database.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

// DisplaySpec converts the display config into a query spec.
func DisplaySpec(d model.DisplayConfig) (query.Spec, error) {
	spec := query.DefaultSpec()

	var err error
	if d.SortBy != "" {
		if spec.SortField, err = query.ParseSortField(d.SortBy); err != nil {
			return spec, err
		}
	}
	if d.Order != "" {
		if spec.SortOrder, err = query.ParseSortOrder(d.Order); err != nil {
			return spec, err
		}
	}
	if spec.Filter, err = query.ParseFilter(d.Filter); err != nil {
		return spec, err
	}
	return spec, nil
}

// ResolveTask finds a task by full id or by a unique id prefix of at least
// minPrefixLen characters.
func (a *App) ResolveTask(ctx context.Context, id string) (model.Task, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Task{}, errors.New("task id is required")
	}

	task, err := a.Store.GetTaskByID(ctx, id)
	if err == nil {
		return *task, nil
	}
	if !store.IsNotFoundError(err) || len(id) < minPrefixLen {
		return model.Task{}, err
	}

	all, err := a.Store.GetTasks(ctx, query.DefaultSpec())
	if err != nil {
		return model.Task{}, err
	}

	var matches []model.Task
	for _, t := range all {
		if strings.HasPrefix(t.ID, id) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return model.Task{}, fmt.Errorf("task %q: %w", id, store.ErrTaskNotFound)
	case 1:
		return matches[0], nil
	default:
		return model.Task{}, fmt.Errorf("task id prefix %q is ambiguous (%d matches)", id, len(matches))
	}
}

// ResolveTasks resolves every id, stopping at the first failure.
func (a *App) ResolveTasks(ctx context.Context, ids []string) ([]model.Task, error) {
	if len(ids) == 0 {
		return nil, errors.New("at least one task id is required")
	}

	tasks := make([]model.Task, 0, len(ids))
	for _, id := range ids {
		t, err := a.ResolveTask(ctx, id)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
