package confirm

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todolist/internal/model"
)

// ResultMsg is dispatched when the dialog closes. Confirmed is false when
// the user declined or aborted.
type ResultMsg struct {
	Tasks     []model.Task
	Confirmed bool
}

// Model is a yes/no dialog guarding task deletion.
type Model struct {
	form    *huh.Form
	tasks   []model.Task
	confirm *bool
	width   int
}

// New creates an idle confirm dialog.
func New(width int) Model {
	return Model{width: width, confirm: new(bool)}
}

// Start opens the dialog for deleting tasks.
func (m *Model) Start(tasks ...model.Task) tea.Cmd {
	m.tasks = tasks
	*m.confirm = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title(tasks)).
				Description("This cannot be undone.").
				Affirmative("Delete").
				Negative("Cancel").
				Value(m.confirm),
		),
	).WithWidth(min(max(m.width-4, 30), 80))
	return m.form.Init()
}

// Update handles messages for the dialog.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted, huh.StateAborted:
		res := ResultMsg{
			Tasks:     m.tasks,
			Confirmed: m.form.State == huh.StateCompleted && *m.confirm,
		}
		m.form = nil
		m.tasks = nil
		return m, func() tea.Msg { return res }
	}

	return m, cmd
}

// View renders the dialog.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
}

// SetSize updates the dialog width.
func (m *Model) SetSize(width int) {
	m.width = width
}

func title(tasks []model.Task) string {
	if len(tasks) == 1 {
		if tasks[0].Title == "" {
			return "Delete this untitled task?"
		}
		return fmt.Sprintf("Delete %q?", tasks[0].Title)
	}
	return fmt.Sprintf("Delete %d tasks?", len(tasks))
}
