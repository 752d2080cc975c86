package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/amirbrooks/tasklist/internal/task"
)

// Theme is the colour scheme for terminal output.
type Theme struct {
	Name string

	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	Primary lipgloss.Color
	Accent  lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

var TokyoNight = Theme{
	Name: "Tokyo Night",

	Foreground:    lipgloss.Color("#c0caf5"),
	ForegroundDim: lipgloss.Color("#565f89"),

	Primary: lipgloss.Color("#7aa2f7"),
	Accent:  lipgloss.Color("#7dcfff"),

	Success: lipgloss.Color("#9ece6a"),
	Warning: lipgloss.Color("#e0af68"),
	Error:   lipgloss.Color("#f7768e"),
}

type styles struct {
	heading lipgloss.Style
	dim     lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	err     lipgloss.Style
	high    lipgloss.Style
	medium  lipgloss.Style
	low     lipgloss.Style
}

// newStyles builds styles for theme. With color off every style renders its
// input unchanged.
func newStyles(theme Theme, color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain, plain, plain}
	}
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	return styles{
		heading: fg(theme.Primary).Bold(true),
		dim:     fg(theme.ForegroundDim),
		success: fg(theme.Success),
		warning: fg(theme.Warning),
		err:     fg(theme.Error).Bold(true),
		high:    fg(theme.Error),
		medium:  fg(theme.Foreground),
		low:     fg(theme.Accent),
	}
}

func (s styles) priority(p task.Priority) lipgloss.Style {
	switch p {
	case task.PriorityHigh:
		return s.high
	case task.PriorityLow:
		return s.low
	default:
		return s.medium
	}
}

// row picks the style of a task line: completed tasks are dimmed, overdue
// ones flagged.
func (s styles) row(t task.Task, status task.DueStatus) lipgloss.Style {
	if t.Completed {
		return s.dim
	}
	if status == task.DueOverdue {
		return s.err
	}
	return s.priority(t.Priority)
}
