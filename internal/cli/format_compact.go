package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirbrooks/tasklist/internal/stats"
	"github.com/amirbrooks/tasklist/internal/task"
)

// compactMaxChars keeps a rendered digest within a single chat message.
const compactMaxChars = 3800

const (
	formatText    = "text"
	formatCompact = "compact"
)

func parseDigestFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", formatText:
		return formatText, nil
	case formatCompact, "chat", "telegram":
		return formatCompact, nil
	default:
		return "", usagef("unknown format %q (want text or compact)", s)
	}
}

func trimCompactOutput(s string) string {
	s = strings.TrimRight(s, "\n")
	runes := []rune(s)
	if len(runes) <= compactMaxChars {
		return s
	}
	suffix := "\n… (truncated)"
	limit := compactMaxChars - len([]rune(suffix))
	if limit < 1 {
		return string(runes[:compactMaxChars])
	}
	return string(runes[:limit]) + suffix
}

func compactPriorityEmoji(p task.Priority) string {
	switch p {
	case task.PriorityHigh:
		return "🔴"
	case task.PriorityLow:
		return "🟡"
	default:
		return ""
	}
}

func cleanTaskTitle(title string) string {
	title = strings.TrimSpace(singleLine(title))
	if title == "" {
		return "(untitled)"
	}
	return title
}

// formatDueShort drops the year for dates in the current year.
func formatDueShort(due string, today time.Time) string {
	d, err := time.Parse(task.DateLayout, strings.TrimSpace(due))
	if err != nil {
		return due
	}
	if d.Year() == today.Year() {
		return d.Format("Jan 02")
	}
	return d.Format("Jan 02 2006")
}

func compactTaskLine(t task.Task, today time.Time, includeDue bool) string {
	var b strings.Builder
	b.WriteString("• ")
	if pri := compactPriorityEmoji(t.Priority); pri != "" {
		b.WriteString(pri)
		b.WriteString(" ")
	}
	fmt.Fprintf(&b, "#%d %s", t.ID, cleanTaskTitle(t.Title))
	if t.Category != "" {
		b.WriteString(" · ")
		b.WriteString(t.Category)
	}
	if includeDue && t.DueDate != "" {
		fmt.Fprintf(&b, " (due %s)", formatDueShort(t.DueDate, today))
	}
	b.WriteString("\n")
	return b.String()
}

func writeCompactSection(b *strings.Builder, title string, tasks []task.Task, limit int, today time.Time, includeDue bool) bool {
	if len(tasks) == 0 {
		return false
	}
	fmt.Fprintf(b, "%s (%d)\n", title, len(tasks))
	for i, t := range tasks {
		if limit > 0 && i == limit {
			fmt.Fprintf(b, "  … and %d more\n", len(tasks)-limit)
			break
		}
		b.WriteString(compactTaskLine(t, today, includeDue))
	}
	b.WriteString("\n")
	return true
}

// renderCompactDigest renders the digest with emoji markers for pasting into
// chat apps.
func renderCompactDigest(d stats.Digest, limit int, today time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 Tasks · %s (pending %d, done %d)\n\n", today.Format(task.DateLayout), d.Pending, d.Completed)

	wrote := false
	if writeCompactSection(&b, "⚠️ Overdue", d.Overdue, limit, today, true) {
		wrote = true
	}
	if writeCompactSection(&b, "⏰ Due today", d.DueToday, limit, today, false) {
		wrote = true
	}
	if writeCompactSection(&b, "🔥 High priority", d.HighPriority, limit, today, true) {
		wrote = true
	}
	if !wrote {
		b.WriteString("✅ Nothing overdue, nothing due today.\n")
	}
	return trimCompactOutput(b.String())
}
