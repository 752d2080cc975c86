package task_test

import (
	"testing"

	"github.com/amirbrooks/tasklist/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNotes_AddEditDelete(t *testing.T) {
	r := newRepo(t)
	mustAdd(t, r, task.AddInput{Title: "one"})

	first, err := r.AddNote(1, "line one\nline two")
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, fixedNow, first.CreatedAt)

	_, err = r.AddNote(1, "second")
	require.NoError(t, err)
	_, err = r.AddNote(1, "third")
	require.NoError(t, err)

	_, err = r.AddNote(1, "  \n ")
	assert.ErrorIs(t, err, task.ErrValidation)
	_, err = r.AddNote(5, "orphan")
	assert.ErrorIs(t, err, task.ErrNotFound)

	edited, err := r.EditNote(1, 2, "second, revised")
	require.NoError(t, err)
	assert.Equal(t, "second, revised", edited.Text)
	require.NotNil(t, edited.UpdatedAt)

	_, err = r.EditNote(1, 9, "nope")
	assert.ErrorIs(t, err, task.ErrNotFound)

	removed, err := r.DeleteNote(1, 1)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", removed.Text)

	notes, err := r.Notes(1)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, 1, notes[0].ID)
	assert.Equal(t, "second, revised", notes[0].Text)
	assert.Equal(t, 2, notes[1].ID)

	_, err = r.DeleteNote(1, 3)
	assert.ErrorIs(t, err, task.ErrNotFound)
}

func TestNotes_SearchNotes(t *testing.T) {
	r := newRepo(t)
	mustAdd(t, r, task.AddInput{Title: "one"})
	mustAdd(t, r, task.AddInput{Title: "two"})
	_, err := r.AddNote(2, "Call the PLUMBER")
	require.NoError(t, err)

	found := r.SearchNotes("plumber")
	require.Len(t, found, 1)
	assert.Equal(t, 2, found[0].ID)
	assert.Empty(t, r.SearchNotes("electrician"))
}

func TestSummarizeNotes(t *testing.T) {
	assert.Equal(t, task.NotesSummary{}, task.SummarizeNotes(nil))

	tasks := []task.Task{
		{ID: 1, Notes: []task.Note{{ID: 1}, {ID: 2}}},
		{ID: 2},
		{ID: 3, Notes: []task.Note{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5}}},
		{ID: 4, Notes: []task.Note{{ID: 1}, {ID: 2}}},
	}
	got := task.SummarizeNotes(tasks)
	assert.Equal(t, 9, got.TotalNotes)
	assert.Equal(t, 3, got.TasksWithNotes)
	assert.Equal(t, 3.0, got.AverageNotes)

	got = task.SummarizeNotes(tasks[:2])
	assert.Equal(t, 2.0, got.AverageNotes)

	got = task.SummarizeNotes([]task.Task{{Notes: []task.Note{{}}}, {Notes: []task.Note{{}, {}}}, {Notes: []task.Note{{}, {}}}})
	assert.Equal(t, 1.7, got.AverageNotes)
}

func TestIDsStayDense_TasksAndNotes(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		r := task.NewRepository(nil)
		steps := rapid.IntRange(1, 60).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 4).Draw(rt, "op") {
			case 0:
				if _, _, err := r.Add(task.AddInput{Title: rapid.StringMatching(`[a-z]{1,12}`).Draw(rt, "title")}); err != nil {
					rt.Fatalf("add: %v", err)
				}
			case 1:
				_, _ = r.Delete(rapid.IntRange(0, r.Len()+1).Draw(rt, "delete"))
			case 2:
				n := rapid.IntRange(0, 4).Draw(rt, "many")
				var batch []int
				for j := 0; j < n; j++ {
					batch = append(batch, rapid.IntRange(0, r.Len()+2).Draw(rt, "id"))
				}
				r.DeleteMany(batch)
			case 3:
				if r.Len() > 0 {
					_, _ = r.AddNote(rapid.IntRange(1, r.Len()).Draw(rt, "note task"), "note")
				}
			case 4:
				if r.Len() > 0 {
					id := rapid.IntRange(1, r.Len()).Draw(rt, "note owner")
					_, _ = r.DeleteNote(id, rapid.IntRange(0, 4).Draw(rt, "note id"))
				}
			}
			if err := task.CheckDensity(r.Tasks()); err != nil {
				rt.Fatalf("after step %d: %v", i, err)
			}
		}
	})
}
