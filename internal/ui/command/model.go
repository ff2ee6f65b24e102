package command

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todolist/internal/query"
	"github.com/nhle/todolist/internal/theme"
)

// Kind identifies a palette command.
type Kind int

const (
	KindRefresh Kind = iota
	KindImport
	KindSort
	KindOrder
	KindFilter
	KindSearch
	KindClear
	KindNew
	KindQuit
)

// CommandMsg is emitted when the user executes a valid command.
type CommandMsg struct {
	Kind Kind
	Spec query.Spec
}

// ErrorMsg is emitted when the input could not be parsed.
type ErrorMsg struct {
	Err error
}

// Usage lists the accepted commands.
const Usage = "refresh | import | sort date|title | order asc|desc | filter all|done|undone | search TEXT | clear | new | quit"

// Parse turns palette input into a command. Query commands return spec with
// the change applied.
func Parse(input string, spec query.Spec) (CommandMsg, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(input), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "refresh", "sync", "r":
		return CommandMsg{Kind: KindRefresh, Spec: spec}, nil
	case "import", "remote":
		return CommandMsg{Kind: KindImport, Spec: spec}, nil
	case "new", "add":
		return CommandMsg{Kind: KindNew, Spec: spec}, nil
	case "quit", "q":
		return CommandMsg{Kind: KindQuit, Spec: spec}, nil
	case "clear":
		def := query.DefaultSpec()
		spec.Filter = def.Filter
		spec.SearchText = ""
		return CommandMsg{Kind: KindClear, Spec: spec}, nil
	case "search":
		spec.SearchText = arg
		return CommandMsg{Kind: KindSearch, Spec: spec.Normalize()}, nil
	case "sort":
		f, err := query.ParseSortField(arg)
		if err != nil {
			return CommandMsg{}, err
		}
		spec.SortField = f
		return CommandMsg{Kind: KindSort, Spec: spec}, nil
	case "order":
		o, err := query.ParseSortOrder(arg)
		if err != nil {
			return CommandMsg{}, err
		}
		spec.SortOrder = o
		return CommandMsg{Kind: KindOrder, Spec: spec}, nil
	case "filter":
		f, err := query.ParseFilter(arg)
		if err != nil {
			return CommandMsg{}, err
		}
		spec.Filter = f
		return CommandMsg{Kind: KindFilter, Spec: spec}, nil
	}

	return CommandMsg{}, fmt.Errorf("unknown command %q", name)
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	spec   query.Spec
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.Width = width - 6

	return Model{
		input:  ti,
		spec:   query.DefaultSpec(),
		width:  width,
		height: height,
	}
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		input := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if input == "" {
			return m, nil
		}

		cmd, err := Parse(input, m.spec)
		if err != nil {
			return m, func() tea.Msg { return ErrorMsg{Err: err} }
		}
		return m, func() tea.Msg { return cmd }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.TitleStyle.Render("Command Palette"),
		m.input.View(),
		"",
		theme.HelpStyle.Render(Usage),
	)

	return theme.PanelStyle.
		Width(max(m.width-4, 20)).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus opens the palette against the current query and gives keyboard
// focus to the text input.
func (m *Model) Focus(spec query.Spec) tea.Cmd {
	m.spec = spec
	m.input.Reset()
	return m.input.Focus()
}

// Blur removes keyboard focus.
func (m *Model) Blur() {
	m.input.Blur()
}
