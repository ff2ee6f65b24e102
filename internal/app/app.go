package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/nhle/todolist/internal/keys"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/query"
	"github.com/nhle/todolist/internal/source"
	"github.com/nhle/todolist/internal/store"
	appsync "github.com/nhle/todolist/internal/sync"
	"github.com/nhle/todolist/internal/ui"
	"github.com/nhle/todolist/internal/ui/command"
	"github.com/nhle/todolist/internal/ui/confirm"
	"github.com/nhle/todolist/internal/ui/detail"
	helpview "github.com/nhle/todolist/internal/ui/help"
	"github.com/nhle/todolist/internal/ui/taskform"
	"github.com/nhle/todolist/internal/ui/tasklist"
)

// Snapshot is the controller state the UI renders.
type Snapshot = appsync.Snapshot

// Controller is the part of the sync controller the UI drives.
type Controller interface {
	Refresh(ctx context.Context, forceRemote bool) ([]model.Task, error)
	AddNew(ctx context.Context) (model.Task, error)
	Remove(ctx context.Context, tasks ...model.Task) error
	Toggle(ctx context.Context, task model.Task) (model.Task, error)
	Edit(ctx context.Context, task model.Task) error
	SetSpec(spec query.Spec)
	Spec() query.Spec
	Snapshot() appsync.Snapshot
	Subscribe(fn func(appsync.Snapshot)) (unsubscribe func())
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewForm
	ViewConfirm
	ViewHelp
	ViewCommand
)

// Options configures the root model.
type Options struct {
	// Location is shown in the help view.
	Location string
	Logger   zerolog.Logger
}

// Model is the root Bubble Tea model that manages view routing, layout and
// dispatch of user intents to the controller.
type Model struct {
	currentView ViewState
	layout      ui.Layout
	tasks       Controller
	keys        *keys.KeyMap
	taskList    tasklist.Model
	detailView  detail.Model
	form        taskform.Model
	confirm     confirm.Model
	helpView    helpview.Model
	commandView command.Model
	log         zerolog.Logger
	spinner     spinner.Model
	spinning    bool

	snapshot    Snapshot
	changes     *changeFeed
	unsubscribe func()
	flash       string
	ready       bool
}

// New creates the root model and subscribes it to controller changes.
func New(c Controller, opts Options) Model {
	k := keys.DefaultKeyMap()
	spec := c.Spec()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	m := Model{
		currentView: ViewList,
		layout:      ui.NewLayout(80, 24),
		tasks:       c,
		keys:        k,
		taskList:    tasklist.New(k, spec, 80, 22),
		detailView:  detail.New(k, 80, 22),
		form:        taskform.New(80, 22),
		confirm:     confirm.New(80),
		helpView:    helpview.New(k, opts.Location, 80, 22),
		commandView: command.New(80, 22),
		log:         opts.Logger,
		spinner:     sp,
		snapshot:    c.Snapshot(),
	}
	m.watch()
	return m
}

// Init starts listening for controller changes and runs the launch
// refresh, which performs the remote import on first use.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitForChange(),
		m.refreshTasks(false),
	)
}

// Close stops the controller subscription and releases any pending
// waitForChange command. It is safe to call more than once.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	if m.changes != nil {
		m.changes.close()
	}
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.taskList.SetSize(w, h)
		m.detailView.SetSize(w, h)
		m.form.SetSize(w, h)
		m.confirm.SetSize(w)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case changedMsg:
		m.snapshot = m.tasks.Snapshot()
		m.taskList.SetSpec(m.snapshot.Spec)
		cmd := m.taskList.SetTasks(m.snapshot.Tasks)
		m.syncDetail()
		spin := m.startSpinner()
		return m, tea.Batch(cmd, spin, m.waitForChange())

	case spinner.TickMsg:
		if !m.snapshot.IsLoading {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case opResultMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Str("op", msg.op).Msg("task operation failed")
		}
		return m, nil

	case taskCreatedMsg:
		if msg.err != nil && msg.task.ID == "" {
			m.log.Warn().Err(msg.err).Msg("create task failed")
			return m, nil
		}
		m.taskList.SelectTask(msg.task.ID)
		m.currentView = ViewForm
		cmd := m.form.StartEdit(msg.task, true)
		return m, cmd

	case tasklist.SpecChangedMsg:
		m.flash = ""
		m.tasks.SetSpec(msg.Spec)
		return m, m.refreshTasks(false)

	case tasklist.RefreshMsg:
		m.flash = ""
		return m, m.refreshTasks(msg.Force)

	case tasklist.NewTaskMsg:
		return m, m.addTask()

	case tasklist.OpenTaskMsg:
		m.currentView = ViewDetail
		m.detailView.SetTask(msg.Task)
		return m, nil

	case detail.BackMsg:
		m.currentView = ViewList
		m.detailView.Clear()
		return m, nil

	case detail.ActionMsg:
		switch msg.Action {
		case detail.ActionEdit:
			m.currentView = ViewForm
			cmd := m.form.StartEdit(msg.Task, false)
			return m, cmd
		case detail.ActionToggle:
			return m, m.toggleTask(msg.Task)
		case detail.ActionDelete:
			m.currentView = ViewConfirm
			cmd := m.confirm.Start(msg.Task)
			return m, cmd
		}
		return m, nil

	case tasklist.EditTaskMsg:
		m.currentView = ViewForm
		cmd := m.form.StartEdit(msg.Task, false)
		return m, cmd

	case tasklist.ToggleTaskMsg:
		return m, m.toggleTask(msg.Task)

	case tasklist.DeleteTaskMsg:
		m.currentView = ViewConfirm
		cmd := m.confirm.Start(msg.Task)
		return m, cmd

	case taskform.TaskSavedMsg:
		m.currentView = m.returnView()
		return m, m.editTask(msg.Task)

	case taskform.CancelMsg:
		m.currentView = m.returnView()
		return m, nil

	case confirm.ResultMsg:
		if !msg.Confirmed {
			m.currentView = m.returnView()
			return m, nil
		}
		m.currentView = ViewList
		m.detailView.Clear()
		return m, m.removeTasks(msg.Tasks)

	case command.CommandMsg:
		m.currentView = ViewList
		m.commandView.Blur()
		cmd := m.executeCommand(msg)
		return m, cmd

	case command.ErrorMsg:
		m.flash = msg.Err.Error()
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that work regardless of the active view.
// Views with text input only see ctrl+c and esc here.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		m.Close()
		return tea.Quit, true
	}

	switch m.currentView {
	case ViewHelp:
		switch msg.String() {
		case "?", "esc", "q":
			m.currentView = ViewList
			return nil, true
		}
		return nil, true

	case ViewDetail:
		if msg.String() == "q" {
			m.currentView = ViewList
			m.detailView.Clear()
			return nil, true
		}
		return nil, false

	case ViewCommand:
		if msg.String() == "esc" {
			m.currentView = ViewList
			m.flash = ""
			m.commandView.Blur()
			return nil, true
		}
		return nil, false

	case ViewList:
		if m.taskList.Searching() {
			return nil, false
		}
		switch msg.String() {
		case "q":
			m.Close()
			return tea.Quit, true
		case "?":
			m.currentView = ViewHelp
			return nil, true
		case ":":
			m.currentView = ViewCommand
			m.flash = ""
			return m.commandView.Focus(m.taskList.Spec()), true
		}
	}

	return nil, false
}

// returnView is where the form and confirm dialog go back to: the detail
// view when a task is open there, the list otherwise.
func (m Model) returnView() ViewState {
	if _, ok := m.detailView.Task(); ok {
		return ViewDetail
	}
	return ViewList
}

// syncDetail re-renders the open task from the latest snapshot, or closes
// the detail view when the task is no longer listed.
func (m *Model) syncDetail() {
	open, ok := m.detailView.Task()
	if !ok {
		return
	}
	for _, t := range m.snapshot.Tasks {
		if t.ID == open.ID {
			m.detailView.SetTask(t)
			return
		}
	}
	m.detailView.Clear()
	if m.currentView == ViewDetail {
		m.currentView = ViewList
	}
}

// startSpinner starts the header spinner when a sync begins.
func (m *Model) startSpinner() tea.Cmd {
	if !m.snapshot.IsLoading || m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

// executeCommand runs a parsed palette command.
func (m *Model) executeCommand(cmd command.CommandMsg) tea.Cmd {
	m.flash = ""
	switch cmd.Kind {
	case command.KindRefresh:
		return m.refreshTasks(false)
	case command.KindImport:
		return m.refreshTasks(true)
	case command.KindNew:
		return m.addTask()
	case command.KindQuit:
		m.Close()
		return tea.Quit
	default:
		m.taskList.SetSpec(cmd.Spec)
		m.tasks.SetSpec(cmd.Spec)
		return m.refreshTasks(false)
	}
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewDetail:
		m.detailView, cmd = m.detailView.Update(msg)
	case ViewForm:
		m.form, cmd = m.form.Update(msg)
	case ViewConfirm:
		m.confirm, cmd = m.confirm.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Todo List", m.status())
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.errorText())

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewDetail:
		return m.detailView.View()
	case ViewForm:
		return m.form.View()
	case ViewConfirm:
		return m.confirm.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return m.taskList.View()
	}
}

// status returns the right-hand header text.
func (m Model) status() string {
	if m.snapshot.IsLoading {
		return m.spinner.View() + " syncing"
	}
	if m.snapshot.State == appsync.StateNeedsRemoteImport && m.snapshot.LastError != nil {
		return "import pending · " + m.taskList.Summary()
	}
	return m.taskList.Summary()
}

func (m Model) errorText() string {
	if m.flash != "" {
		return m.flash
	}
	if (m.currentView == ViewList || m.currentView == ViewDetail) && m.snapshot.LastError != nil {
		err := m.snapshot.LastError
		switch {
		case source.IsNetworkError(err):
			return "offline: remote import pending (r to retry)"
		case store.IsBusyError(err):
			return "database is locked by another process (r to retry)"
		}
		return fmt.Sprintf("error: %v (r to retry)", err)
	}
	return ""
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewDetail:
		return "esc back | e edit | space done | d delete | ↑/↓ scroll"
	case ViewForm:
		return "tab next field | enter submit | esc cancel"
	case ViewConfirm:
		return "←/→ choose | enter confirm | esc cancel"
	default:
		if m.taskList.Searching() {
			return "enter apply | esc clear search"
		}
		return "q quit | ? help | n new | space done | e edit | d delete | / search | tab sort | o order | f filter"
	}
}
