package help

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todolist/internal/keys"
	"github.com/nhle/todolist/internal/theme"
)

// Model is the help overlay view.
type Model struct {
	keys     *keys.KeyMap
	help     help.Model
	location string
	width    int
	height   int
}

// New creates a new help view model. location is shown as the database
// path line at the bottom.
func New(keys *keys.KeyMap, location string, width, height int) Model {
	h := help.New()
	h.Width = width
	h.ShowAll = true
	return Model{
		keys:     keys,
		help:     h,
		location: location,
		width:    width,
		height:   height,
	}
}

// View renders the help overlay.
func (m Model) View() string {
	legend := lipgloss.JoinHorizontal(lipgloss.Top,
		theme.CheckStyle(false).Render("○"), " open   ",
		theme.CheckStyle(true).Render("✓"), " completed",
	)

	parts := []string{
		theme.TitleStyle.Render("Keyboard Shortcuts"),
		m.help.View(m.keys),
		"",
		legend,
	}
	if m.location != "" {
		parts = append(parts, "", theme.HelpStyle.Render("database: "+m.location))
	}

	return theme.PanelStyle.
		Width(max(m.width-4, 20)).
		Height(max(m.height-4, 5)).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
