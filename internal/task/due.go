package task

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SoonDays is the window, in days after today, that counts as "soon".
const SoonDays = 3

type DueStatus int

const (
	DueNone DueStatus = iota
	DueOverdue
	DueToday
	DueSoon
	DueFuture
)

func (s DueStatus) String() string {
	switch s {
	case DueNone:
		return "none"
	case DueOverdue:
		return "overdue"
	case DueToday:
		return "today"
	case DueSoon:
		return "soon"
	case DueFuture:
		return "future"
	default:
		return fmt.Sprintf("due(%d)", int(s))
	}
}

// DueDateStatus classifies a YYYY-MM-DD due date against today, comparing
// calendar dates only. Empty or unparseable dates are DueNone.
func DueDateStatus(due string, today time.Time) DueStatus {
	d, ok := parseDate(due)
	if !ok {
		return DueNone
	}
	days := daysBetween(dateOf(today), d)
	switch {
	case days < 0:
		return DueOverdue
	case days == 0:
		return DueToday
	case days <= SoonDays:
		return DueSoon
	default:
		return DueFuture
	}
}

// IsOverdue reports whether the task is pending and its due date is before today.
func (t *Task) IsOverdue(today time.Time) bool {
	return !t.Completed && DueDateStatus(t.DueDate, today) == DueOverdue
}

// ValidateDueDate checks the canonical YYYY-MM-DD form.
func ValidateDueDate(s string) error {
	if _, ok := parseDate(s); !ok {
		return &ValidationError{Field: "due_date", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", s)}
	}
	return nil
}

// ResolveDueInput turns user input into a canonical due date. Besides
// YYYY-MM-DD it accepts "today", "tomorrow" and "+N" (N days from today).
func ResolveDueInput(input string, today time.Time) (string, error) {
	in := strings.ToLower(strings.TrimSpace(input))
	base := dateOf(today)
	switch {
	case in == "today":
		return base.Format(DateLayout), nil
	case in == "tomorrow":
		return base.AddDate(0, 0, 1).Format(DateLayout), nil
	case strings.HasPrefix(in, "+"):
		n, err := strconv.Atoi(strings.TrimPrefix(in, "+"))
		if err != nil || n < 0 {
			return "", &ValidationError{Field: "due_date", Reason: fmt.Sprintf("%q is not a +N day offset", input)}
		}
		return base.AddDate(0, 0, n).Format(DateLayout), nil
	}
	if err := ValidateDueDate(in); err != nil {
		return "", err
	}
	return in, nil
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// dateOf drops the clock and zone of t, keeping its local calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
