package tasklist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todolist/internal/keys"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/query"
	"github.com/nhle/todolist/internal/theme"
)

// SpecChangedMsg is sent when the user changes sort, order, filter or search.
type SpecChangedMsg struct {
	Spec query.Spec
}

// NewTaskMsg asks for a new empty task.
type NewTaskMsg struct{}

// OpenTaskMsg asks to show a task's details.
type OpenTaskMsg struct {
	Task model.Task
}

// EditTaskMsg asks to open the edit form for a task.
type EditTaskMsg struct {
	Task model.Task
}

// ToggleTaskMsg asks to flip a task's completion state.
type ToggleTaskMsg struct {
	Task model.Task
}

// DeleteTaskMsg asks to delete a task after confirmation.
type DeleteTaskMsg struct {
	Task model.Task
}

// RefreshMsg asks for a refresh. Force re-imports from the remote source.
type RefreshMsg struct {
	Force bool
}

// Model is the main task list view component. It renders whatever tasks it
// is given and turns key presses into intent messages; it never touches the
// store itself.
type Model struct {
	list        list.Model
	keys        *keys.KeyMap
	spec        query.Spec
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a new task list model.
func New(k *keys.KeyMap, spec query.Spec, width, height int) Model {
	l := list.New([]list.Item{}, TaskDelegate{}, width, height-1)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	si := textinput.New()
	si.Placeholder = "search title or description..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		keys:        k,
		spec:        spec.Normalize(),
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// SetTasks replaces the displayed tasks, keeping the cursor on the same
// task id when it is still present.
func (m *Model) SetTasks(tasks []model.Task) tea.Cmd {
	selectedID := ""
	if t, ok := m.SelectedTask(); ok {
		selectedID = t.ID
	}

	items := make([]list.Item, len(tasks))
	cursor := -1
	for i, task := range tasks {
		items[i] = TaskItem{Task: task}
		if task.ID == selectedID {
			cursor = i
		}
	}

	cmd := m.list.SetItems(items)
	if cursor >= 0 {
		m.list.Select(cursor)
	}
	return cmd
}

// SelectTask moves the cursor to the task with the given id.
func (m *Model) SelectTask(id string) {
	for i, it := range m.list.Items() {
		if ti, ok := it.(TaskItem); ok && ti.Task.ID == id {
			m.list.Select(i)
			return
		}
	}
}

// SelectedTask returns the task under the cursor.
func (m Model) SelectedTask() (model.Task, bool) {
	ti, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return model.Task{}, false
	}
	return ti.Task, true
}

// Spec returns the query shown by this list.
func (m Model) Spec() query.Spec {
	return m.spec
}

// SetSpec replaces the query without emitting SpecChangedMsg.
func (m *Model) SetSpec(spec query.Spec) {
	m.spec = spec.Normalize()
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool {
	return m.searchMode
}

// Len returns the number of displayed tasks.
func (m Model) Len() int {
	return len(m.list.Items())
}

// Update handles messages for the task list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.searchInput.Blur()
		m.spec.SearchText = m.searchInput.Value()
		m.spec = m.spec.Normalize()
		return m, m.specChanged()

	case "esc":
		m.searchMode = false
		m.searchInput.Blur()
		m.searchInput.Reset()
		m.spec.SearchText = ""
		return m, m.specChanged()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.SetValue(m.spec.SearchText)
		cmd := m.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.CycleSort):
		m.spec.SortField = m.spec.SortField.Next()
		return m, m.specChanged()

	case key.Matches(msg, m.keys.ToggleOrder):
		m.spec.SortOrder = m.spec.SortOrder.Toggle()
		return m, m.specChanged()

	case key.Matches(msg, m.keys.CycleFilter):
		m.spec.Filter = m.spec.Filter.Next()
		return m, m.specChanged()

	case key.Matches(msg, m.keys.New):
		return m, emit(NewTaskMsg{})

	case key.Matches(msg, m.keys.Refresh):
		return m, emit(RefreshMsg{})

	case key.Matches(msg, m.keys.ForceRefresh):
		return m, emit(RefreshMsg{Force: true})
	}

	if task, ok := m.SelectedTask(); ok {
		switch {
		case key.Matches(msg, m.keys.Open):
			return m, emit(OpenTaskMsg{Task: task})
		case key.Matches(msg, m.keys.Edit):
			return m, emit(EditTaskMsg{Task: task})
		case key.Matches(msg, m.keys.Toggle):
			return m, emit(ToggleTaskMsg{Task: task})
		case key.Matches(msg, m.keys.Delete):
			return m, emit(DeleteTaskMsg{Task: task})
		}
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) specChanged() tea.Cmd {
	return emit(SpecChangedMsg{Spec: m.spec})
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// Summary describes the active query for the header.
func (m Model) Summary() string {
	s := fmt.Sprintf("%d tasks · %s %s · %s", m.Len(), m.spec.SortField, orderArrow(m.spec.SortOrder), m.spec.Filter)
	if m.spec.SearchText != "" {
		s += fmt.Sprintf(" · %q", m.spec.SearchText)
	}
	return s
}

func orderArrow(o query.SortOrder) string {
	if o == query.Ascending {
		return "↑"
	}
	return "↓"
}

// View renders the task list view.
func (m Model) View() string {
	body := m.list.View()
	if len(m.list.Items()) == 0 {
		body = m.renderEmptyState()
	}

	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, body)
	}

	return body
}

// renderEmptyState shows guidance text when no tasks are available.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height - 1).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.spec.HasConstraints() {
		return style.Render("No matching tasks.\nPress f to change the filter or / to edit the search.")
	}

	return style.Render("No tasks yet.\n\nPress n to add one or r to retry the import.")
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-1)
	m.searchInput.Width = width - 4
}
