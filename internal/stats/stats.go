// Package stats derives counts and the daily digest from a task snapshot.
package stats

import (
	"time"

	"github.com/amirbrooks/tasklist/internal/task"
)

type PriorityCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

type DueCounts struct {
	Overdue int `json:"overdue"`
	Today   int `json:"today"`
	Soon    int `json:"soon"`
}

type Summary struct {
	Total          int               `json:"total"`
	Completed      int               `json:"completed"`
	Pending        int               `json:"pending"`
	CompletionRate float64           `json:"completion_rate"`
	PendingByPri   PriorityCounts    `json:"pending_by_priority"`
	Due            DueCounts         `json:"due"`
	Notes          task.NotesSummary `json:"notes"`
}

// Compute aggregates tasks as of today. Due buckets only count pending tasks
// that have a due date.
func Compute(tasks []task.Task, today time.Time) Summary {
	s := Summary{Total: len(tasks)}
	for i := range tasks {
		t := &tasks[i]
		if t.Completed {
			s.Completed++
			continue
		}
		s.Pending++
		switch t.Priority {
		case task.PriorityHigh:
			s.PendingByPri.High++
		case task.PriorityLow:
			s.PendingByPri.Low++
		default:
			s.PendingByPri.Medium++
		}
		switch task.DueDateStatus(t.DueDate, today) {
		case task.DueOverdue:
			s.Due.Overdue++
		case task.DueToday:
			s.Due.Today++
		case task.DueSoon:
			s.Due.Soon++
		case task.DueNone, task.DueFuture:
		}
	}
	if s.Total > 0 {
		s.CompletionRate = task.Round1(float64(s.Completed) / float64(s.Total) * 100)
	}
	s.Notes = task.SummarizeNotes(tasks)
	return s
}

// Digest is the startup overview of what needs attention.
type Digest struct {
	Overdue      []task.Task `json:"overdue"`
	DueToday     []task.Task `json:"due_today"`
	HighPriority []task.Task `json:"high_priority"`
	Pending      int         `json:"pending"`
	Completed    int         `json:"completed"`
}

// Empty reports whether the digest has nothing to show.
func (d Digest) Empty() bool {
	return len(d.Overdue) == 0 && len(d.DueToday) == 0 && len(d.HighPriority) == 0
}

// BuildDigest collects overdue and due-today pending tasks, then high
// priority pending tasks not already listed, each in id order.
func BuildDigest(tasks []task.Task, today time.Time) Digest {
	var d Digest
	for _, t := range tasks {
		if t.Completed {
			d.Completed++
			continue
		}
		d.Pending++
		switch task.DueDateStatus(t.DueDate, today) {
		case task.DueOverdue:
			d.Overdue = append(d.Overdue, t)
			continue
		case task.DueToday:
			d.DueToday = append(d.DueToday, t)
			continue
		case task.DueNone, task.DueSoon, task.DueFuture:
		}
		if t.Priority == task.PriorityHigh {
			d.HighPriority = append(d.HighPriority, t)
		}
	}
	return d
}
