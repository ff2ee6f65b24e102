package app

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/todolist/internal/model"
)

// changedMsg signals that the controller snapshot changed.
type changedMsg struct{}

// opResultMsg is sent after a controller operation finishes.
type opResultMsg struct {
	op  string
	err error
}

// taskCreatedMsg carries a freshly created empty task to open in the form.
type taskCreatedMsg struct {
	task model.Task
	err  error
}

// changeFeed coalesces controller notifications into a one-slot channel so
// a slow UI never blocks the controller. Closing it is idempotent and later
// notifications are dropped.
type changeFeed struct {
	mu     sync.Mutex
	ch     chan struct{}
	closed bool
}

func newChangeFeed() *changeFeed {
	return &changeFeed{ch: make(chan struct{}, 1)}
}

func (f *changeFeed) notify() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case f.ch <- struct{}{}:
	default:
	}
}

func (f *changeFeed) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.ch)
	}
}

// watch subscribes to controller changes.
func (m *Model) watch() {
	feed := newChangeFeed()
	m.changes = feed
	m.unsubscribe = m.tasks.Subscribe(func(_ Snapshot) {
		feed.notify()
	})
}

// waitForChange returns a tea.Cmd that blocks until the next controller
// change. It must be re-issued after every changedMsg. Once the model is
// closed the command returns nil.
func (m Model) waitForChange() tea.Cmd {
	ch := m.changes.ch
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func (m Model) refreshTasks(force bool) tea.Cmd {
	c := m.tasks
	return func() tea.Msg {
		_, err := c.Refresh(context.Background(), force)
		return opResultMsg{op: "refresh", err: err}
	}
}

func (m Model) addTask() tea.Cmd {
	c := m.tasks
	return func() tea.Msg {
		task, err := c.AddNew(context.Background())
		return taskCreatedMsg{task: task, err: err}
	}
}

func (m Model) toggleTask(task model.Task) tea.Cmd {
	c := m.tasks
	return func() tea.Msg {
		_, err := c.Toggle(context.Background(), task)
		return opResultMsg{op: "toggle", err: err}
	}
}

func (m Model) editTask(task model.Task) tea.Cmd {
	c := m.tasks
	return func() tea.Msg {
		err := c.Edit(context.Background(), task)
		return opResultMsg{op: "edit", err: err}
	}
}

func (m Model) removeTasks(tasks []model.Task) tea.Cmd {
	c := m.tasks
	return func() tea.Msg {
		err := c.Remove(context.Background(), tasks...)
		return opResultMsg{op: "delete", err: err}
	}
}
