package tasklist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/theme"
)

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task model.Task
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Title }

// Title returns the task title, or a placeholder for untitled tasks.
func (i TaskItem) Title() string {
	if strings.TrimSpace(i.Task.Title) == "" {
		return "(untitled)"
	}
	return i.Task.Title
}

// Description returns the first line of the task description.
func (i TaskItem) Description() string {
	first, _, _ := strings.Cut(i.Task.Description, "\n")
	return strings.TrimSpace(first)
}

// TaskDelegate implements list.ItemDelegate for rendering task lines.
type TaskDelegate struct {
	// now is swapped in tests.
	now func() time.Time
}

// Height returns the number of lines each item takes.
func (d TaskDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d TaskDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d TaskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single task line.
func (d TaskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}
	fmt.Fprint(w, d.renderLine(ti, index == m.Index(), m.Width()))
}

func (d TaskDelegate) renderLine(ti TaskItem, selected bool, width int) string {
	marker := "○"
	if ti.Task.Completed {
		marker = "✓"
	}
	marker = theme.CheckStyle(ti.Task.Completed).Render(marker)

	title := ti.Title()
	if ti.Task.Completed {
		title = theme.DimmedStyle.Render(title)
	}

	age := theme.HintStyle.Render(relativeTime(ti.Task.CreatedAt, d.clock()))

	desc := ti.Description()
	if desc != "" {
		// Leave room for the marker, title and age.
		room := width - len([]rune(ti.Title())) - 20
		desc = " " + theme.HintStyle.Render(truncate(desc, room))
	}

	line := fmt.Sprintf("%s %s%s  %s", marker, title, desc, age)

	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

func (d TaskDelegate) clock() time.Time {
	if d.now != nil {
		return d.now()
	}
	return time.Now()
}

// truncate shortens s to at most n runes, adding an ellipsis when cut.
func truncate(s string, n int) string {
	if n <= 1 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	}
}
