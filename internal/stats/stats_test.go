package stats_test

import (
	"testing"
	"time"

	"github.com/amirbrooks/tasklist/internal/stats"
	"github.com/amirbrooks/tasklist/internal/task"
	"github.com/stretchr/testify/assert"
)

var today = time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

func sample() []task.Task {
	return []task.Task{
		{ID: 1, Title: "late", Priority: task.PriorityHigh, DueDate: "2024-06-01"},
		{ID: 2, Title: "today", Priority: task.PriorityLow, DueDate: "2024-06-10", Notes: []task.Note{{ID: 1}}},
		{ID: 3, Title: "soon", Priority: task.PriorityMedium, DueDate: "2024-06-12"},
		{ID: 4, Title: "later", Priority: task.PriorityHigh, DueDate: "2024-07-01"},
		{ID: 5, Title: "done late", Priority: task.PriorityHigh, DueDate: "2024-06-01", Completed: true},
		{ID: 6, Title: "no date", Priority: task.PriorityMedium},
	}
}

func TestCompute(t *testing.T) {
	s := stats.Compute(sample(), today)

	assert.Equal(t, 6, s.Total)
	assert.Equal(t, 1, s.Completed)
	assert.Equal(t, 5, s.Pending)
	assert.Equal(t, 16.7, s.CompletionRate)
	assert.Equal(t, stats.PriorityCounts{High: 2, Medium: 2, Low: 1}, s.PendingByPri)
	assert.Equal(t, stats.DueCounts{Overdue: 1, Today: 1, Soon: 1}, s.Due)
	assert.Equal(t, 1, s.Notes.TotalNotes)
}

func TestCompute_Empty(t *testing.T) {
	s := stats.Compute(nil, today)
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0.0, s.CompletionRate)
}

func TestBuildDigest(t *testing.T) {
	d := stats.BuildDigest(sample(), today)

	assert.False(t, d.Empty())
	assert.Len(t, d.Overdue, 1)
	assert.Equal(t, 1, d.Overdue[0].ID)
	assert.Len(t, d.DueToday, 1)
	assert.Equal(t, 2, d.DueToday[0].ID)
	assert.Len(t, d.HighPriority, 1, "high priority tasks already listed as overdue are not repeated")
	assert.Equal(t, 4, d.HighPriority[0].ID)
	assert.Equal(t, 5, d.Pending)
	assert.Equal(t, 1, d.Completed)

	assert.True(t, stats.BuildDigest([]task.Task{{ID: 1, Title: "calm"}}, today).Empty())
}
