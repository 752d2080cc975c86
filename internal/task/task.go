// Package task holds the task record model and the in-memory repository that
// owns task identity, notes, filtering and sorting.
package task

import (
	"fmt"
	"strings"
	"time"
)

const (
	MaxTitleLen    = 100
	MaxCategoryLen = 20
	MaxTagLen      = 15
	MaxTags        = 5

	DateLayout = "2006-01-02"
)

// Priority ranks tasks; lower values sort first.
type Priority int

const (
	PriorityHigh Priority = iota + 1
	PriorityMedium
	PriorityLow
)

// Priorities lists every priority in rank order.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// Valid reports whether p is one of the named priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// ParsePriority accepts the full names and their one-letter forms.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "h":
		return PriorityHigh, nil
	case "medium", "med", "m":
		return PriorityMedium, nil
	case "low", "l":
		return PriorityLow, nil
	default:
		return 0, &ValidationError{Field: "priority", Reason: fmt.Sprintf("%q is not one of high, medium, low", s)}
	}
}

func (p Priority) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrValidation, p)
	}
	return []byte(p.String()), nil
}

func (p *Priority) UnmarshalText(b []byte) error {
	if strings.TrimSpace(string(b)) == "" {
		*p = PriorityMedium
		return nil
	}
	v, err := ParsePriority(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Filter selects which tasks List returns.
type Filter int

const (
	FilterAll Filter = iota
	FilterCompleted
	FilterPending
	FilterOverdue
)

func (f Filter) String() string {
	switch f {
	case FilterAll:
		return "all"
	case FilterCompleted:
		return "completed"
	case FilterPending:
		return "pending"
	case FilterOverdue:
		return "overdue"
	default:
		return fmt.Sprintf("filter(%d)", int(f))
	}
}

func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "completed", "done":
		return FilterCompleted, nil
	case "pending", "open":
		return FilterPending, nil
	case "overdue":
		return FilterOverdue, nil
	default:
		return 0, &ValidationError{Field: "filter", Reason: fmt.Sprintf("%q is not one of all, completed, pending, overdue", s)}
	}
}

type Task struct {
	ID        int        `json:"id" yaml:"id"`
	Title     string     `json:"title" yaml:"title"`
	Priority  Priority   `json:"priority" yaml:"priority"`
	Completed bool       `json:"completed" yaml:"completed"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	DueDate   string     `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	Category  string     `json:"category,omitempty" yaml:"category,omitempty"`
	Tags      []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	Notes     []Note     `json:"notes,omitempty" yaml:"notes,omitempty"`
}

type Note struct {
	ID        int        `json:"id" yaml:"id"`
	Text      string     `json:"text" yaml:"text"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// HasTag reports whether the task carries tag, ignoring case.
func (t *Task) HasTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, s := range t.Tags {
		if s == tag {
			return true
		}
	}
	return false
}

// StatusLabel is the human form of Completed.
func (t *Task) StatusLabel() string {
	if t.Completed {
		return "Completed"
	}
	return "Pending"
}

func (t Task) clone() Task {
	out := t
	if t.UpdatedAt != nil {
		u := *t.UpdatedAt
		out.UpdatedAt = &u
	}
	if t.Tags != nil {
		out.Tags = append([]string(nil), t.Tags...)
	}
	if t.Notes != nil {
		out.Notes = make([]Note, len(t.Notes))
		for i, n := range t.Notes {
			out.Notes[i] = n.clone()
		}
	}
	return out
}

func (n Note) clone() Note {
	out := n
	if n.UpdatedAt != nil {
		u := *n.UpdatedAt
		out.UpdatedAt = &u
	}
	return out
}
