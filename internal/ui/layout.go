package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todolist/internal/theme"
)

// Layout manages the terminal frame: a header line, the content area and a
// status bar line.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height left for the content area. It never
// goes below one line.
func (l Layout) ContentHeight() int {
	return max(1, l.Height-l.HeaderHeight-l.StatusBarHeight)
}

// RenderHeader renders the title on the left and status on the right.
func (l Layout) RenderHeader(title string, status string) string {
	return fill(l.Width, theme.HeaderStyle, title, status)
}

// RenderStatusBar renders keyboard hints, or errMsg in the error style when
// it is non-empty.
func (l Layout) RenderStatusBar(hints string, errMsg string) string {
	if errMsg != "" {
		return fill(l.Width, theme.ErrorBarStyle, errMsg, "")
	}
	return fill(l.Width, theme.StatusBarStyle, hints, "")
}

// RenderWithFrame joins the header, content and status bar vertically.
func (l Layout) RenderWithFrame(header string, content string, statusBar string) string {
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

// fill renders left and right with style and pads the gap between them so
// the bar spans width.
func fill(width int, style lipgloss.Style, left, right string) string {
	l := style.Render(left)
	r := ""
	if right != "" {
		r = style.Render(right)
	}

	gap := max(0, width-lipgloss.Width(l)-lipgloss.Width(r))
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, l, filler, r)
}
