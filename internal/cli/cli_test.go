package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirbrooks/tasklist/internal/store"
	"github.com/amirbrooks/tasklist/internal/task"
)

var fixedNow = time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC)

type result struct {
	code   int
	stdout string
	stderr string
}

func newWorkspace(t *testing.T) string {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return fixedNow }
	t.Cleanup(func() { timeNow = prev })
	return t.TempDir()
}

func runIn(t *testing.T, root string, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--root", root, "--no-color"}, args...)
	code := run(full, strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func mustRun(t *testing.T, root string, args ...string) result {
	t.Helper()
	res := runIn(t, root, "", args...)
	require.Equal(t, ExitOK, res.code, "args=%v stderr=%s", args, res.stderr)
	return res
}

func loadTasks(t *testing.T, root string) []task.Task {
	t.Helper()
	ws, err := store.Open(root, store.Options{})
	require.NoError(t, err)
	tasks, err := ws.LoadTasks()
	require.NoError(t, err)
	return tasks
}

func TestAddAndList(t *testing.T) {
	root := newWorkspace(t)

	res := mustRun(t, root, "add", "Write", "report", "-p", "high", "-d", "tomorrow", "-c", "Work", "-t", "q2,docs")
	assert.Contains(t, res.stdout, "Added task #1: Write report")
	mustRun(t, root, "add", "Buy milk", "--priority", "low")
	mustRun(t, root, "add", "Call mom")

	tasks := loadTasks(t, root)
	require.Len(t, tasks, 3)
	assert.Equal(t, "2024-06-11", tasks[0].DueDate)
	assert.Equal(t, "work", tasks[0].Category)
	assert.Equal(t, []string{"q2", "docs"}, tasks[0].Tags)
	assert.Equal(t, task.PriorityMedium, tasks[2].Priority)

	res = mustRun(t, root, "ls")
	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Write report")
	assert.Contains(t, lines[1], "2024-06-11 (soon)")
	assert.Contains(t, lines[2], "Call mom")
	assert.Contains(t, lines[3], "Buy milk")
}

func TestListJSON(t *testing.T) {
	root := newWorkspace(t)
	mustRun(t, root, "add", "late", "--due", "2024-06-01")
	mustRun(t, root, "add", "fine", "--due", "2024-07-01")

	res := mustRun(t, root, "--json", "ls", "--filter", "overdue")
	var out struct {
		Tasks []task.Task `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	require.Len(t, out.Tasks, 1)
	assert.Equal(t, "late", out.Tasks[0].Title)

	res = mustRun(t, root, "--json", "ls", "--filter", "completed")
	assert.JSONEq(t, `{"tasks": []}`, res.stdout)
}

func TestAdd_Invalid(t *testing.T) {
	root := newWorkspace(t)

	res := runIn(t, root, "", "add", "x", "--priority", "urgent")
	assert.Equal(t, ExitUsage, res.code)
	assert.Contains(t, res.stderr, "priority")

	res = runIn(t, root, "", "add", strings.Repeat("a", 101))
	assert.Equal(t, ExitUsage, res.code)

	res = runIn(t, root, "", "add", "x", "--due", "2024-02-30")
	assert.Equal(t, ExitUsage, res.code)

	res = runIn(t, root, "", "add")
	assert.Equal(t, ExitUsage, res.code)
	assert.Empty(t, loadTasks(t, root))
}

func TestAdd_WarningsGoToStderr(t *testing.T) {
	root := newWorkspace(t)
	res := mustRun(t, root, "add", "trip", "-t", "a,b,c,d,e,f")
	assert.Contains(t, res.stderr, "warning:")
	assert.Len(t, loadTasks(t, root)[0].Tags, task.MaxTags)
}

func TestDoneReopen(t *testing.T) {
	root := newWorkspace(t)
	mustRun(t, root, "add", "Buy milk")

	res := mustRun(t, root, "done", "1")
	assert.Contains(t, res.stdout, "Completed task #1")
	assert.True(t, loadTasks(t, root)[0].Completed)

	res = mustRun(t, root, "done", "1")
	assert.Contains(t, res.stdout, "already completed")

	mustRun(t, root, "reopen", "1")
	assert.False(t, loadTasks(t, root)[0].Completed)

	res = runIn(t, root, "", "done", "9")
	assert.Equal(t, ExitNotFound, res.code)

	res = runIn(t, root, "", "done", "abc")
	assert.Equal(t, ExitUsage, res.code)
}

func TestShow(t *testing.T) {
	root := newWorkspace(t)
	mustRun(t, root, "add", "Plan trip", "-c", "travel", "-d", "2024-06-10")
	mustRun(t, root, "note", "add", "1", "book", "flights")

	res := mustRun(t, root, "show", "1")
	assert.Contains(t, res.stdout, "#1 Plan trip")
	assert.Contains(t, res.stdout, "Due: 2024-06-10 (today)")
	assert.Contains(t, res.stdout, "Category: travel")
	assert.Contains(t, res.stdout, "Notes (1)")
	assert.Contains(t, res.stdout, "book flights")

	res = runIn(t, root, "", "show", "2")
	assert.Equal(t, ExitNotFound, res.code)
	assert.Contains(t, res.stderr, "show:")
}

func TestEdit(t *testing.T) {
	root := newWorkspace(t)
	mustRun(t, root, "add", "Draft", "-p", "low", "-c", "work", "-d", "2024-06-20")

	res := mustRun(t, root, "edit", "1", "--title", "Final draft", "--priority", "bogus", "--clear-category", "--due", "+2")
	assert.Contains(t, res.stderr, "priority unchanged")
	assert.Contains(t, res.stdout, "Updated task #1: Final draft")

	got := loadTasks(t, root)[0]
	assert.Equal(t, "Final draft", got.Title)
	assert.Equal(t, task.PriorityLow, got.Priority)
	assert.Empty(t, got.Category)
	assert.Equal(t, "2024-06-12", got.DueDate)
	require.NotNil(t, got.UpdatedAt)

	res = mustRun(t, root, "edit", "1", "--title", "Final draft")
	assert.Contains(t, res.stdout, "No changes")

	res = runIn(t, root, "", "edit", "1")
	assert.Equal(t, ExitUsage, res.code)
}

func TestRemoveRenumbers(t *testing.T) {
	root := newWorkspace(t)
	for _, title := range []string{"a", "b", "c"} {
		mustRun(t, root, "add", title)
	}
	res := mustRun(t, root, "rm", "2")
	assert.Contains(t, res.stdout, "Deleted task #2: b")

	tasks := loadTasks(t, root)
	require.Len(t, tasks, 2)
	assert.Equal(t, 1, tasks[0].ID)
	assert.Equal(t, 2, tasks[1].ID)
	assert.Equal(t, "c", tasks[1].Title)
}

func TestSearch(t *testing.T) {
	root := newWorkspace(t)
	mustRun(t, root, "add", "Buy milk")
	mustRun(t, root, "add", "Call mom")
	mustRun(t, root, "note", "add", "2", "ask about MILK recipe")

	res := mustRun(t, root, "--plain", "search", "MILK")
	assert.Equal(t, 1, strings.Count(res.stdout, "\n"))
	assert.Contains(t, res.stdout, "Buy milk")

	res = mustRun(t, root, "--plain", "search", "--notes", "milk")
	assert.Contains(t, res.stdout, "Call mom")

	res = mustRun(t, root, "search", "zzz")
	assert.Contains(t, res.stdout, "No tasks match")
}

func TestNotes(t *testing.T) {
	root := newWorkspace(t)
	mustRun(t, root, "add", "Plan trip")
	mustRun(t, root, "note", "add", "1", "first")
	res := runIn(t, root, "line one\nline two\n", "note", "add", "1", "-")
	require.Equal(t, ExitOK, res.code, res.stderr)
	mustRun(t, root, "note", "add", "1", "third")

	notes := loadTasks(t, root)[0].Notes
	require.Len(t, notes, 3)
	assert.Equal(t, "line one\nline two", notes[1].Text)

	mustRun(t, root, "note", "edit", "1", "1", "first, edited")
	mustRun(t, root, "note", "rm", "1", "2")
	notes = loadTasks(t, root)[0].Notes
	require.Len(t, notes, 2)
	assert.Equal(t, []int{1, 2}, []int{notes[0].ID, notes[1].ID})
	assert.Equal(t, "first, edited", notes[0].Text)
	assert.NotNil(t, notes[0].UpdatedAt)
	assert.Equal(t, "third", notes[1].Text)

	res = mustRun(t, root, "note", "ls", "1")
	assert.Contains(t, res.stdout, "Note #2")

	res = runIn(t, root, "", "note", "add", "1", "   ")
	assert.Equal(t, ExitUsage, res.code)
	res = runIn(t, root, "", "note", "rm", "1", "7")
	assert.Equal(t, ExitNotFound, res.code)
}

func TestNoteExport(t *testing.T) {
	root := newWorkspace(t)
	mustRun(t, root, "add", "Plan trip")
	res := mustRun(t, root, "note", "export", "1")
	assert.Contains(t, res.stdout, "no notes")

	mustRun(t, root, "note", "add", "1", "book flights")
	out := filepath.Join(t.TempDir(), "trip.txt")
	mustRun(t, root, "note", "export", "1", "-o", out)
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "NOTES FOR: Plan trip\n"))
	assert.Contains(t, string(b), "Note #1 - "+fixedNow.Local().Format(timestampLayout)+"\nbook flights")
}

func TestBulk(t *testing.T) {
	root := newWorkspace(t)
	for _, title := range []string{"a", "b", "c", "d", "e"} {
		mustRun(t, root, "add", title)
	}

	res := mustRun(t, root, "bulk", "done", "1-2,9")
	assert.Contains(t, res.stdout, "Completed 2 tasks.")
	assert.Contains(t, res.stdout, "Not found: 9")

	res = mustRun(t, root, "bulk", "priority", "3,4", "high")
	assert.Contains(t, res.stdout, "Reprioritized 2 tasks.")

	res = mustRun(t, root, "bulk", "priority", "3,4", "urgent")
	assert.Contains(t, res.stdout, "No tasks changed.")
	assert.Contains(t, res.stderr, "priority unchanged")

	mustRun(t, root, "bulk", "category", "1-5", "Errands")
	mustRun(t, root, "bulk", "tag", "5", "home")

	res = runIn(t, root, "", "bulk", "rm", "1,x")
	assert.Equal(t, ExitUsage, res.code)

	res = mustRun(t, root, "bulk", "rm", "2,4,5-3")
	assert.Contains(t, res.stderr, "warning:")
	assert.Contains(t, res.stdout, "Deleted 2 tasks.")

	tasks := loadTasks(t, root)
	require.Len(t, tasks, 3)
	assert.Equal(t, []string{"a", "c", "e"}, []string{tasks[0].Title, tasks[1].Title, tasks[2].Title})
	assert.Equal(t, []int{1, 2, 3}, []int{tasks[0].ID, tasks[1].ID, tasks[2].ID})
	assert.Equal(t, task.PriorityHigh, tasks[1].Priority)
	assert.Equal(t, "errands", tasks[2].Category)
	assert.Equal(t, []string{"home"}, tasks[2].Tags)
}

func TestBulk_WideRange(t *testing.T) {
	root := newWorkspace(t)
	mustRun(t, root, "add", "a")

	res := runIn(t, root, "", "bulk", "done", "1-9999999999")
	assert.Equal(t, ExitUsage, res.code)
	assert.Contains(t, res.stderr, "spans more than")
	assert.Contains(t, res.stderr, "1-9999999999")
	assert.False(t, loadTasks(t, root)[0].Completed)

	res = mustRun(t, root, "bulk", "done", "1-9999999999,1")
	assert.Contains(t, res.stdout, "Completed 1 task.")
}

func TestTemplates(t *testing.T) {
	root := newWorkspace(t)

	res := mustRun(t, root, "template", "create", "weekly", "--title", "Weekly review", "-p", "high", "-c", "Work", "-t", "review")
	assert.Contains(t, res.stdout, `Created template "weekly"`)
	res = mustRun(t, root, "template", "create", "weekly", "--title", "Weekly review", "-p", "high", "-t", "review,planning")
	assert.Contains(t, res.stdout, `Replaced template "weekly"`)

	res = runIn(t, root, "", "template", "create", "empty")
	assert.Equal(t, ExitUsage, res.code)

	res = mustRun(t, root, "template", "use", "weekly", "--due", "today", "--title", "Review week 24")
	assert.Contains(t, res.stdout, "Added task #1")
	got := loadTasks(t, root)[0]
	assert.Equal(t, "Review week 24", got.Title)
	assert.Equal(t, task.PriorityHigh, got.Priority)
	assert.Equal(t, "2024-06-10", got.DueDate)
	assert.Equal(t, []string{"review", "planning"}, got.Tags)

	res = runIn(t, root, "", "template", "use", "missing")
	assert.Equal(t, ExitNotFound, res.code)

	file := filepath.Join(t.TempDir(), "weekly.json")
	mustRun(t, root, "template", "export", "weekly", "-o", file)

	other := t.TempDir()
	res = mustRun(t, other, "template", "import", file)
	assert.Contains(t, res.stdout, "Imported 1 template.")
	res = mustRun(t, other, "template", "import", file)
	assert.Contains(t, res.stderr, `template "weekly" already exists`)

	res = mustRun(t, other, "template", "ls")
	assert.Contains(t, res.stdout, "weekly")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"x": {"priority": "high"}}`), 0o644))
	res = runIn(t, other, "", "template", "import", bad)
	assert.Equal(t, ExitUsage, res.code)

	mustRun(t, root, "template", "rm", "weekly")
	res = runIn(t, root, "", "template", "show", "weekly")
	assert.Equal(t, ExitNotFound, res.code)
}

func TestExportCSV(t *testing.T) {
	root := newWorkspace(t)
	mustRun(t, root, "add", "a")
	mustRun(t, root, "add", "b")
	mustRun(t, root, "done", "2")

	res := mustRun(t, root, "--json", "export", "--filter", "pending")
	var out struct {
		Path  string `json:"path"`
		Tasks int    `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.Equal(t, 1, out.Tasks)
	assert.Equal(t, filepath.Join(root, "exports"), filepath.Dir(out.Path))
	assert.True(t, strings.HasPrefix(filepath.Base(out.Path), "tasks_pending_"))

	b, err := os.ReadFile(out.Path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "1,a,MEDIUM,Pending")

	res = mustRun(t, root, "export", "--filter", "overdue")
	assert.Contains(t, res.stdout, "No tasks match")
}

func TestStatsAndSummary(t *testing.T) {
	root := newWorkspace(t)
	mustRun(t, root, "add", "late", "-p", "high", "-d", "2024-06-01")
	mustRun(t, root, "add", "today", "-d", "today")
	mustRun(t, root, "add", "big", "-p", "high")
	mustRun(t, root, "add", "done")
	mustRun(t, root, "done", "4")

	res := mustRun(t, root, "stats")
	assert.Contains(t, res.stdout, "Completion rate: 25.0%")
	assert.Contains(t, res.stdout, "Overdue: 1")

	res = mustRun(t, root, "summary")
	assert.Contains(t, res.stdout, "Overdue (1)")
	assert.Contains(t, res.stdout, "#1 late (due 2024-06-01)")
	assert.Contains(t, res.stdout, "Due today (1)")
	assert.Contains(t, res.stdout, "High priority (1)")
	assert.Contains(t, res.stdout, "#3 big")

	res = mustRun(t, root, "summary", "--format", "compact")
	assert.Contains(t, res.stdout, "⚠️ Overdue (1)")
	assert.Contains(t, res.stdout, "• 🔴 #1 late (due Jun 01)")

	res = mustRun(t, root)
	assert.Contains(t, res.stdout, "Today (2024-06-10)")

	res = runIn(t, root, "", "summary", "--format", "html")
	assert.Equal(t, ExitUsage, res.code)
}

func TestSummary_Limit(t *testing.T) {
	root := newWorkspace(t)
	for i := 0; i < 4; i++ {
		mustRun(t, root, "add", "urgent thing", "-p", "high")
	}
	res := mustRun(t, root, "summary", "-n", "2")
	assert.Contains(t, res.stdout, "High priority (4)")
	assert.Contains(t, res.stdout, "... and 2 more")
}

func TestYAMLStorage(t *testing.T) {
	root := newWorkspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "config.yaml"), []byte("storage:\n  format: yaml\n"), 0o644))

	mustRun(t, root, "add", "Buy milk", "-p", "low")
	b, err := os.ReadFile(filepath.Join(root, "tasks.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "priority: low")

	res := mustRun(t, root, "config", "show")
	assert.Contains(t, res.stdout, "format: yaml")
}

func TestUnknownCommandAndFlags(t *testing.T) {
	root := newWorkspace(t)

	res := runIn(t, root, "", "frobnicate")
	assert.Equal(t, ExitUsage, res.code)
	assert.Contains(t, res.stderr, "unknown command")

	res = runIn(t, root, "", "ls", "--bogus")
	assert.Equal(t, ExitUsage, res.code)

	res = runIn(t, root, "", "ls", "--filter", "someday")
	assert.Equal(t, ExitUsage, res.code)
}

func TestCorruptStoreIsInternalError(t *testing.T) {
	root := newWorkspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "tasks.json"), []byte("[{"), 0o644))

	res := runIn(t, root, "", "ls")
	assert.Equal(t, ExitInternal, res.code)
	assert.Contains(t, res.stderr, "decode")
}

func TestQuiet(t *testing.T) {
	root := newWorkspace(t)
	res := mustRun(t, root, "--quiet", "add", "silent")
	assert.Empty(t, res.stdout)
}

func TestRenderingKeepsRowsOnOneLine(t *testing.T) {
	cases := []struct {
		name  string
		title string
		want  string
	}{
		{"newline", "first line\nsecond line", "first line second line"},
		{"tab", "tab\tinside", "tab inside"},
		{"multibyte", "Café ☕ 日本語", "Café ☕ 日本語"},
		{"mixed", "pack\n\tbags ✓", "pack  bags ✓"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root := newWorkspace(t)
			mustRun(t, root, "add", tc.title, "-p", "high", "-d", "today", "-c", "trip")
			mustRun(t, root, "note", "add", "1", "line one\n\tindented ☕")
			assert.Equal(t, tc.title, loadTasks(t, root)[0].Title)

			res := mustRun(t, root, "ls")
			lines := strings.Split(strings.TrimRight(res.stdout, "\n"), "\n")
			require.Len(t, lines, 2)
			assert.Contains(t, lines[1], tc.want)

			res = mustRun(t, root, "--plain", "ls")
			lines = strings.Split(strings.TrimRight(res.stdout, "\n"), "\n")
			require.Len(t, lines, 1)
			fields := strings.Split(lines[0], "\t")
			require.Len(t, fields, 7)
			assert.Equal(t, tc.want, fields[6])

			res = mustRun(t, root, "show", "1")
			assert.Contains(t, res.stdout, "#1 "+tc.want)
			assert.Contains(t, res.stdout, "indented ☕")

			res = mustRun(t, root, "summary")
			assert.Contains(t, res.stdout, "#1 "+tc.want)
			res = mustRun(t, root, "summary", "--format", "compact")
			assert.Contains(t, res.stdout, "#1 "+tc.want+" · trip")

			file := filepath.Join(t.TempDir(), "out.csv")
			mustRun(t, root, "export", "-o", file)
			f, err := os.Open(file)
			require.NoError(t, err)
			defer f.Close()
			rows, err := csv.NewReader(f).ReadAll()
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, tc.title, rows[1][1])
		})
	}
}

func TestTemplateListKeepsRowsOnOneLine(t *testing.T) {
	root := newWorkspace(t)
	mustRun(t, root, "template", "create", "trip", "--title", "pack\nbags", "-c", "travel")
	mustRun(t, root, "template", "create", "weekly", "--title", "Weekly\treview")

	res := mustRun(t, root, "template", "ls")
	lines := strings.Split(strings.TrimRight(res.stdout, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "pack bags")
	assert.Contains(t, lines[2], "Weekly review")

	res = mustRun(t, root, "--plain", "template", "ls")
	lines = strings.Split(strings.TrimRight(res.stdout, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"trip", "medium", "travel", "-", "pack bags"}, strings.Split(lines[0], "\t"))
}
