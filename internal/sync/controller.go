// Package sync owns the import-once policy and the observable task list
// that the command line and terminal UI render.
package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/query"
	"github.com/nhle/todolist/internal/source"
	"github.com/nhle/todolist/internal/store"
)

// State reports whether the remote seed is still pending.
type State int

const (
	// StateNeedsRemoteImport means no successful import has happened yet.
	StateNeedsRemoteImport State = iota
	// StateLocalOnly means the remote has been imported and is never
	// contacted again unless a refresh is forced.
	StateLocalOnly
)

func (s State) String() string {
	switch s {
	case StateNeedsRemoteImport:
		return "needs-remote-import"
	case StateLocalOnly:
		return "local-only"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// DefaultFetchTimeout bounds a single remote import.
const DefaultFetchTimeout = 30 * time.Second

// Snapshot is the observable state of the controller.
type Snapshot struct {
	Tasks     []model.Task
	IsLoading bool
	LastError error
	State     State
	Spec      query.Spec
}

// Config configures a Controller.
type Config struct {
	// FetchTimeout bounds fetch plus import. Zero means DefaultFetchTimeout.
	FetchTimeout time.Duration
	// Spec is the initial query. Invalid values are normalized.
	Spec   query.Spec
	Logger zerolog.Logger
}

type refreshMode int

const (
	refreshAuto refreshMode = iota
	refreshForce
	refreshLocal
)

// Controller mediates between the presentation layer, the local store and
// the remote source.
type Controller struct {
	store        store.Store
	src          source.Source
	log          zerolog.Logger
	fetchTimeout time.Duration
	flight       singleflight.Group

	mu       gosync.Mutex
	spec     query.Spec
	tasks    []model.Task
	lastErr  error
	state    State
	issued   uint64
	applied  uint64
	inflight int

	// importGen counts committed imports. A refresh result is ordered by
	// the generation it queried under first and by its sequence number
	// second, so a query taken before an import committed never replaces
	// one taken after it.
	importGen  uint64
	appliedGen uint64
	subs     map[int]func(Snapshot)
	nextSub  int
}

// New creates a Controller. The state starts as StateNeedsRemoteImport
// until the first refresh reads the persisted flag.
func New(s store.Store, src source.Source, cfg Config) *Controller {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Controller{
		store:        s,
		src:          src,
		log:          cfg.Logger,
		fetchTimeout: timeout,
		spec:         cfg.Spec.Normalize(),
		state:        StateNeedsRemoteImport,
		subs:         make(map[int]func(Snapshot)),
	}
}

// Refresh imports from the remote source when the import flag is set (or
// when forceRemote is true), then queries the store with the current spec.
// A failed fetch or import does not prevent the local query; both errors
// are joined into the returned error. The caller always receives the result
// of its own query even when a later refresh has already been applied.
func (c *Controller) Refresh(ctx context.Context, forceRemote bool) ([]model.Task, error) {
	mode := refreshAuto
	if forceRemote {
		mode = refreshForce
	}
	return c.refresh(ctx, mode)
}

func (c *Controller) refresh(ctx context.Context, mode refreshMode) ([]model.Task, error) {
	seq := c.begin()

	var syncErr error
	if mode != refreshLocal {
		syncErr = c.syncRemote(ctx, mode == refreshForce)
	}

	gen, spec := c.generation()
	tasks, queryErr := c.store.GetTasks(ctx, spec)
	if queryErr != nil {
		c.log.Error().Err(queryErr).Msg("querying tasks")
	}

	state, ok := c.readState(ctx)
	err := errors.Join(syncErr, queryErr)
	c.finish(seq, gen, tasks, queryErr == nil, state, ok, err)

	return tasks, err
}

// syncRemote runs the import flight when it is needed. Concurrent callers
// share one flight; a non-forced flight re-checks the flag before fetching
// so an import that completed in between is not repeated.
func (c *Controller) syncRemote(ctx context.Context, force bool) error {
	if !force {
		need, err := c.store.NeedsRemoteImport(ctx)
		if err != nil {
			return err
		}
		if !need {
			return nil
		}
	}

	key := "import"
	if force {
		key = "import-force"
	}

	flightCtx := context.WithoutCancel(ctx)
	_, err, shared := c.flight.Do(key, func() (any, error) {
		return nil, c.importRemote(flightCtx, force)
	})
	if shared {
		c.log.Debug().Str("flight", key).Msg("joined in-flight import")
	}
	return err
}

func (c *Controller) importRemote(ctx context.Context, force bool) error {
	ctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	if !force {
		need, err := c.store.NeedsRemoteImport(ctx)
		if err != nil {
			return err
		}
		if !need {
			return nil
		}
	}

	if c.src == nil {
		return errors.New("no remote source configured")
	}

	start := time.Now()
	records, err := c.src.FetchAll(ctx)
	if err != nil {
		c.log.Warn().Err(err).Str("source", c.src.Name()).Msg("remote fetch failed")
		return err
	}

	if len(records) == 0 {
		c.log.Info().Str("source", c.src.Name()).Msg("remote returned no tasks, import stays pending")
		return nil
	}

	if err := c.store.ImportTasks(ctx, records); err != nil {
		c.log.Error().Err(err).Int("records", len(records)).Msg("import failed")
		return err
	}

	c.mu.Lock()
	c.importGen++
	c.mu.Unlock()

	c.log.Info().
		Str("source", c.src.Name()).
		Int("records", len(records)).
		Dur("took", time.Since(start)).
		Msg("imported remote tasks")
	return nil
}

func (c *Controller) readState(ctx context.Context) (State, bool) {
	need, err := c.store.NeedsRemoteImport(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("reading import flag")
		return 0, false
	}
	if need {
		return StateNeedsRemoteImport, true
	}
	return StateLocalOnly, true
}

func (c *Controller) begin() uint64 {
	c.mu.Lock()
	c.issued++
	seq := c.issued
	c.inflight++
	snap, subs := c.snapshotLocked(), c.subscribersLocked()
	c.mu.Unlock()

	notify(subs, snap)
	return seq
}

// generation returns the import generation and the spec a query is about
// to run under.
func (c *Controller) generation() (uint64, query.Spec) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.importGen, c.spec
}

func (c *Controller) finish(seq, gen uint64, tasks []model.Task, tasksOK bool, state State, stateOK bool, err error) {
	c.mu.Lock()
	c.inflight--
	if stateOK && gen >= c.appliedGen {
		c.state = state
	}
	if gen > c.appliedGen || (gen == c.appliedGen && seq > c.applied) {
		c.applied = max(c.applied, seq)
		c.appliedGen = gen
		if tasksOK {
			c.tasks = tasks
		}
		c.lastErr = err
	} else {
		c.log.Debug().
			Uint64("seq", seq).
			Uint64("gen", gen).
			Uint64("applied", c.applied).
			Uint64("applied_gen", c.appliedGen).
			Msg("discarding stale refresh")
	}
	snap, subs := c.snapshotLocked(), c.subscribersLocked()
	c.mu.Unlock()

	notify(subs, snap)
}

// AddNew creates an empty task and re-queries. The new task is returned
// even if the re-query fails.
func (c *Controller) AddNew(ctx context.Context) (model.Task, error) {
	task, err := c.store.CreateEmptyTask(ctx)
	if err != nil {
		c.recordError(err)
		return model.Task{}, err
	}
	_, err = c.refresh(ctx, refreshLocal)
	return task, err
}

// Remove deletes the given tasks in one batch and re-queries.
func (c *Controller) Remove(ctx context.Context, tasks ...model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	if err := c.store.DeleteTasks(ctx, tasks); err != nil {
		c.recordError(err)
		return err
	}
	_, err := c.refresh(ctx, refreshLocal)
	return err
}

// Save persists the task's fields. It does not re-query.
func (c *Controller) Save(ctx context.Context, task model.Task) error {
	if err := c.store.UpdateTask(ctx, task); err != nil {
		c.recordError(err)
		return err
	}
	return nil
}

// Toggle flips the completion state, saves it and re-queries. The updated
// task is returned.
func (c *Controller) Toggle(ctx context.Context, task model.Task) (model.Task, error) {
	task.Completed = !task.Completed
	if err := c.Save(ctx, task); err != nil {
		return model.Task{}, err
	}
	_, err := c.refresh(ctx, refreshLocal)
	return task, err
}

// Edit saves the task and re-queries.
func (c *Controller) Edit(ctx context.Context, task model.Task) error {
	if err := c.Save(ctx, task); err != nil {
		return err
	}
	_, err := c.refresh(ctx, refreshLocal)
	return err
}

// SetSpec replaces the current query. It takes effect on the next refresh.
func (c *Controller) SetSpec(spec query.Spec) {
	c.mu.Lock()
	c.spec = spec.Normalize()
	snap, subs := c.snapshotLocked(), c.subscribersLocked()
	c.mu.Unlock()

	notify(subs, snap)
}

// Spec returns the current query.
func (c *Controller) Spec() query.Spec {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spec
}

// Snapshot returns a copy of the observable state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn to be called after every state change. Callbacks
// run outside the controller's lock, on the goroutine that caused the
// change. The returned function removes the subscription.
func (c *Controller) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	var once gosync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

func (c *Controller) recordError(err error) {
	c.mu.Lock()
	c.lastErr = err
	snap, subs := c.snapshotLocked(), c.subscribersLocked()
	c.mu.Unlock()

	notify(subs, snap)
}

func (c *Controller) snapshotLocked() Snapshot {
	tasks := make([]model.Task, len(c.tasks))
	copy(tasks, c.tasks)
	return Snapshot{
		Tasks:     tasks,
		IsLoading: c.inflight > 0,
		LastError: c.lastErr,
		State:     c.state,
		Spec:      c.spec,
	}
}

func (c *Controller) subscribersLocked() []func(Snapshot) {
	subs := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
