// Package export writes tasks to CSV, task notes to text files and templates
// to standalone JSON files, and reads template files back in.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/amirbrooks/tasklist/internal/store"
	"github.com/amirbrooks/tasklist/internal/task"
)

// ErrEmpty is returned when there is nothing to write.
var ErrEmpty = errors.New("nothing to export")

var csvHeader = []string{"ID", "Title", "Priority", "Status", "Due Date", "Category", "Tags", "Created At"}

const noteTimeLayout = "2006-01-02 15:04"

// Select keeps tasks matching filter, in stored order.
func Select(tasks []task.Task, filter task.Filter, today time.Time) []task.Task {
	var out []task.Task
	for i := range tasks {
		t := &tasks[i]
		keep := false
		switch filter {
		case task.FilterAll:
			keep = true
		case task.FilterCompleted:
			keep = t.Completed
		case task.FilterPending:
			keep = !t.Completed
		case task.FilterOverdue:
			keep = t.IsOverdue(today)
		}
		if keep {
			out = append(out, *t)
		}
	}
	return out
}

// WriteCSV writes a header row and one row per task.
func WriteCSV(w io.Writer, tasks []task.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range tasks {
		row := []string{
			strconv.Itoa(t.ID),
			t.Title,
			strings.ToUpper(t.Priority.String()),
			t.StatusLabel(),
			t.DueDate,
			t.Category,
			strings.Join(t.Tags, ", "),
			t.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVFileName is the default name for an export of filter.
func CSVFileName(filter task.Filter) string {
	return fmt.Sprintf("tasks_%s_%s.csv", filter, store.NewULID())
}

// CSVFile writes tasks to path, adding a .csv extension when missing. It
// returns the path written.
func CSVFile(path string, tasks []task.Task) (string, error) {
	if len(tasks) == 0 {
		return "", ErrEmpty
	}
	path = withExt(path, ".csv")
	var buf bytes.Buffer
	if err := WriteCSV(&buf, tasks); err != nil {
		return "", fmt.Errorf("encode csv: %w", err)
	}
	if err := store.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// WriteNotes renders the notes of t as plain text.
func WriteNotes(w io.Writer, t task.Task) error {
	rule := strings.Repeat("=", 60)
	sep := strings.Repeat("-", 60)
	var b strings.Builder
	fmt.Fprintf(&b, "NOTES FOR: %s\n%s\n\n", t.Title, rule)
	for _, n := range t.Notes {
		fmt.Fprintf(&b, "Note #%d - %s\n%s\n\n%s\n\n", n.ID, n.CreatedAt.Local().Format(noteTimeLayout), n.Text, sep)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// NotesFileName derives a file name from the task title.
func NotesFileName(t task.Task) string {
	safe := safeFileName(t.Title, 30)
	if safe == "" {
		safe = "task_" + strconv.Itoa(t.ID)
	}
	return fmt.Sprintf("notes_%s_%s.txt", safe, store.NewULID())
}

// NotesFile writes the notes of t to path and returns the path written.
func NotesFile(path string, t task.Task) (string, error) {
	if len(t.Notes) == 0 {
		return "", ErrEmpty
	}
	path = withExt(path, ".txt")
	var buf bytes.Buffer
	if err := WriteNotes(&buf, t); err != nil {
		return "", err
	}
	if err := store.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func withExt(path, ext string) string {
	if strings.EqualFold(filepath.Ext(path), ext) {
		return path
	}
	return path + ext
}

// safeFileName keeps ASCII letters, digits, '-' and '_' of s, turns spaces
// into '_' and cuts the result to max runes. Path separators and dots are
// dropped, so the result never leaves its directory.
func safeFileName(s string, max int) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case r == '-' || r == '_':
			b.WriteRune(r)
		case isAlnum(r):
			b.WriteRune(r)
		}
	}
	safe := strings.Trim(b.String(), "_")
	if runes := []rune(safe); len(runes) > max {
		safe = string(runes[:max])
	}
	return safe
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
