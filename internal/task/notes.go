package task

import (
	"math"
	"strings"
)

// AddNote appends a note to a task with the next note id.
func (r *Repository) AddNote(taskID int, text string) (Note, error) {
	i := r.index(taskID)
	if i < 0 {
		return Note{}, taskNotFound(taskID)
	}
	if strings.TrimSpace(text) == "" {
		return Note{}, &ValidationError{Field: "note", Reason: "note text is required"}
	}
	t := &r.tasks[i]
	n := Note{
		ID:        len(t.Notes) + 1,
		Text:      text,
		CreatedAt: r.Now(),
	}
	t.Notes = append(t.Notes, n)
	return n, nil
}

func (r *Repository) EditNote(taskID, noteID int, text string) (Note, error) {
	i := r.index(taskID)
	if i < 0 {
		return Note{}, taskNotFound(taskID)
	}
	t := &r.tasks[i]
	j := noteIndex(t, noteID)
	if j < 0 {
		return Note{}, noteNotFound(taskID, noteID)
	}
	if strings.TrimSpace(text) == "" {
		return Note{}, &ValidationError{Field: "note", Reason: "note text is required"}
	}
	now := r.Now()
	t.Notes[j].Text = text
	t.Notes[j].UpdatedAt = &now
	return t.Notes[j].clone(), nil
}

// DeleteNote removes a note and renumbers the task's remaining notes.
func (r *Repository) DeleteNote(taskID, noteID int) (Note, error) {
	i := r.index(taskID)
	if i < 0 {
		return Note{}, taskNotFound(taskID)
	}
	t := &r.tasks[i]
	j := noteIndex(t, noteID)
	if j < 0 {
		return Note{}, noteNotFound(taskID, noteID)
	}
	removed := t.Notes[j]
	t.Notes = append(t.Notes[:j], t.Notes[j+1:]...)
	if len(t.Notes) == 0 {
		t.Notes = nil
	}
	renumberNotes(t)
	return removed, nil
}

func (r *Repository) Notes(taskID int) ([]Note, error) {
	t, err := r.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	return t.Notes, nil
}

// SearchNotes returns tasks with at least one note containing query,
// ignoring case.
func (r *Repository) SearchNotes(query string) []Task {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []Task
	for _, t := range r.tasks {
		for _, n := range t.Notes {
			if strings.Contains(strings.ToLower(n.Text), q) {
				out = append(out, t.clone())
				break
			}
		}
	}
	return out
}

type NotesSummary struct {
	TotalNotes     int     `json:"total_notes"`
	TasksWithNotes int     `json:"tasks_with_notes"`
	AverageNotes   float64 `json:"average_notes"`
}

// SummarizeNotes counts notes across tasks. AverageNotes is per task that has
// notes, rounded to one decimal.
func SummarizeNotes(tasks []Task) NotesSummary {
	var s NotesSummary
	for _, t := range tasks {
		if n := len(t.Notes); n > 0 {
			s.TasksWithNotes++
			s.TotalNotes += n
		}
	}
	if s.TasksWithNotes > 0 {
		s.AverageNotes = Round1(float64(s.TotalNotes) / float64(s.TasksWithNotes))
	}
	return s
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func noteIndex(t *Task, noteID int) int {
	for i := range t.Notes {
		if t.Notes[i].ID == noteID {
			return i
		}
	}
	return -1
}

func renumberNotes(t *Task) {
	for i := range t.Notes {
		t.Notes[i].ID = i + 1
	}
}
