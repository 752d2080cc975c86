package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"
	"unicode"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amirbrooks/tasklist/internal/task"
)

func (a *app) addCommand() *cobra.Command {
	var (
		priority string
		due      string
		category string
		tags     []string
	)
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a task",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.loadTasks()
			if err != nil {
				return err
			}
			added, warnings, err := repo.Add(task.AddInput{
				Title:    strings.Join(args, " "),
				Priority: priority,
				DueDate:  due,
				Category: category,
				Tags:     tags,
			})
			if err != nil {
				return err
			}
			if err := a.saveTasks(repo); err != nil {
				return err
			}
			a.log.Info("task added", zap.Int("id", added.ID))
			a.warn(warnings...)
			if a.gf.JSON {
				return a.printJSON(map[string]any{"task": added, "warnings": warnings})
			}
			a.success("Added task #%d: %s", added.ID, added.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&priority, "priority", "p", "medium", "Priority (high|medium|low)")
	cmd.Flags().StringVarP(&due, "due", "d", "", "Due date (YYYY-MM-DD, today, tomorrow, +N)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Tag (repeatable or comma separated)")
	return cmd
}

func (a *app) listCommand() *cobra.Command {
	var (
		filter   string
		category string
		tag      string
	)
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks by priority",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := task.ParseFilter(filter)
			if err != nil {
				return err
			}
			repo, err := a.loadTasks()
			if err != nil {
				return err
			}
			tasks := repo.List(task.ListOptions{Filter: f, Category: category, Tag: tag})
			if a.gf.JSON {
				return a.printJSON(map[string]any{"tasks": emptyIfNil(tasks)})
			}
			if len(tasks) == 0 {
				a.info("No tasks found.")
				return nil
			}
			a.renderTasks(tasks)
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "Filter (all|completed|pending|overdue)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Only tasks in category")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Only tasks with tag")
	return cmd
}

func (a *app) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task with its notes",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			repo, err := a.loadTasks()
			if err != nil {
				return err
			}
			t, err := repo.FindByID(id)
			if err != nil {
				return err
			}
			if a.gf.JSON {
				return a.printJSON(map[string]any{"task": t, "due_status": task.DueDateStatus(t.DueDate, a.today()).String()})
			}
			a.printf("%s", a.renderTask(t))
			return nil
		},
	}
}

func (a *app) doneCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "done <id>",
		Aliases: []string{"complete"},
		Short:   "Mark a task completed",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.setCompleted(args[0], true)
		},
	}
}

func (a *app) reopenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <id>",
		Short: "Mark a completed task pending again",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.setCompleted(args[0], false)
		},
	}
}

func (a *app) setCompleted(arg string, done bool) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	repo, err := a.loadTasks()
	if err != nil {
		return err
	}
	var t task.Task
	if done {
		t, err = repo.Complete(id)
	} else {
		t, err = repo.Reopen(id)
	}
	if errors.Is(err, task.ErrAlreadyInState) {
		if a.gf.JSON {
			return a.printJSON(map[string]any{"task": t, "changed": false})
		}
		a.info("Task #%d is already %s.", id, strings.ToLower(t.StatusLabel()))
		return nil
	}
	if err != nil {
		return err
	}
	if err := a.saveTasks(repo); err != nil {
		return err
	}
	if a.gf.JSON {
		return a.printJSON(map[string]any{"task": t, "changed": true})
	}
	if done {
		a.success("Completed task #%d: %s", t.ID, t.Title)
	} else {
		a.success("Reopened task #%d: %s", t.ID, t.Title)
	}
	return nil
}

func (a *app) editCommand() *cobra.Command {
	var (
		title, priority, due, category string
		tags                           []string
		clearDue, clearCategory        bool
		clearTags, clearPriority       bool
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change task fields",
		Long: `Change one or more task fields. Flags not given are kept; an invalid
value leaves its field unchanged and prints a warning.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			var in task.EditInput
			if flags.Changed("title") {
				in.Title = task.Set(title)
			}
			switch {
			case clearPriority:
				in.Priority = task.Clear[string]()
			case flags.Changed("priority"):
				in.Priority = task.Set(priority)
			}
			switch {
			case clearDue:
				in.DueDate = task.Clear[string]()
			case flags.Changed("due"):
				in.DueDate = task.Set(due)
			}
			switch {
			case clearCategory:
				in.Category = task.Clear[string]()
			case flags.Changed("category"):
				in.Category = task.Set(category)
			}
			switch {
			case clearTags:
				in.Tags = task.Clear[[]string]()
			case flags.Changed("tags"):
				in.Tags = task.Set(tags)
			}
			if in.Title.Op == task.OpKeep && in.Priority.Op == task.OpKeep && in.DueDate.Op == task.OpKeep &&
				in.Category.Op == task.OpKeep && in.Tags.Op == task.OpKeep {
				return usagef("nothing to edit\nUsage: %s", cmd.UseLine())
			}

			repo, err := a.loadTasks()
			if err != nil {
				return err
			}
			res, err := repo.Edit(id, in)
			if err != nil {
				return err
			}
			if res.Changed {
				if err := a.saveTasks(repo); err != nil {
					return err
				}
			}
			a.warn(res.Warnings...)
			if a.gf.JSON {
				return a.printJSON(map[string]any{"task": res.Task, "changed": res.Changed, "warnings": res.Warnings})
			}
			if res.Changed {
				a.success("Updated task #%d: %s", res.Task.ID, res.Task.Title)
			} else {
				a.info("No changes to task #%d.", id)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&title, "title", "", "New title")
	f.StringVarP(&priority, "priority", "p", "", "New priority (high|medium|low)")
	f.StringVarP(&due, "due", "d", "", "New due date (YYYY-MM-DD, today, tomorrow, +N)")
	f.StringVarP(&category, "category", "c", "", "New category")
	f.StringSliceVarP(&tags, "tags", "t", nil, "Replace tags (comma separated)")
	f.BoolVar(&clearPriority, "clear-priority", false, "Reset priority to medium")
	f.BoolVar(&clearDue, "clear-due", false, "Remove the due date")
	f.BoolVar(&clearCategory, "clear-category", false, "Remove the category")
	f.BoolVar(&clearTags, "clear-tags", false, "Remove all tags")
	return cmd
}

func (a *app) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task and its notes",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			repo, err := a.loadTasks()
			if err != nil {
				return err
			}
			removed, err := repo.Delete(id)
			if err != nil {
				return err
			}
			if err := a.saveTasks(repo); err != nil {
				return err
			}
			a.log.Info("task deleted", zap.Int("id", id), zap.Int("remaining", repo.Len()))
			if a.gf.JSON {
				return a.printJSON(map[string]any{"removed": removed})
			}
			a.success("Deleted task #%d: %s", id, removed.Title)
			return nil
		},
	}
}

func (a *app) searchCommand() *cobra.Command {
	var inNotes bool
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Find tasks whose title contains query",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.loadTasks()
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")
			var found []task.Task
			if inNotes {
				found = repo.SearchNotes(query)
			} else {
				found = repo.Search(query)
			}
			if a.gf.JSON {
				return a.printJSON(map[string]any{"query": query, "tasks": emptyIfNil(found)})
			}
			if len(found) == 0 {
				a.info("No tasks match %q.", query)
				return nil
			}
			a.renderTasks(found)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&inNotes, "notes", "n", false, "Search note text instead of titles")
	return cmd
}

// renderTasks writes a table, or tab-separated rows with --plain. Every row
// is one line: cells are flattened with cell and cleanTaskTitle.
func (a *app) renderTasks(tasks []task.Task) {
	today := a.today()
	if a.gf.Plain {
		for _, t := range tasks {
			fmt.Fprintf(a.out, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
				t.ID, statusMark(t), t.Priority, dashIfEmpty(t.DueDate), cell(t.Category),
				cell(strings.Join(t.Tags, ",")), cleanTaskTitle(t.Title))
		}
		return
	}

	var buf strings.Builder
	w := tabwriter.NewWriter(&buf, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tST\tPRI\tDUE\tCATEGORY\tTAGS\tNOTES\tTITLE")
	for _, t := range tasks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			t.ID, statusMark(t), t.Priority, dueLabel(t, today), cell(t.Category),
			cell(strings.Join(t.Tags, ",")), len(t.Notes), truncate(cleanTaskTitle(t.Title), 60))
	}
	_ = w.Flush()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	fmt.Fprintln(a.out, a.st.heading.Render(lines[0]))
	for i, line := range lines[1:] {
		t := tasks[i]
		fmt.Fprintln(a.out, a.st.row(t, task.DueDateStatus(t.DueDate, today)).Render(line))
	}
}

func (a *app) renderTask(t task.Task) string {
	today := a.today()
	var b strings.Builder
	b.WriteString(a.st.heading.Render(fmt.Sprintf("#%d %s", t.ID, cleanTaskTitle(t.Title))))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Status: %s\n", t.StatusLabel())
	fmt.Fprintf(&b, "Priority: %s\n", a.st.priority(t.Priority).Render(strings.ToUpper(t.Priority.String())))
	if t.DueDate != "" {
		fmt.Fprintf(&b, "Due: %s\n", dueLabel(t, today))
	}
	if t.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", t.Category)
	}
	if len(t.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(t.Tags, ", "))
	}
	fmt.Fprintf(&b, "Created: %s\n", t.CreatedAt.Local().Format(timestampLayout))
	if t.UpdatedAt != nil {
		fmt.Fprintf(&b, "Updated: %s\n", t.UpdatedAt.Local().Format(timestampLayout))
	}
	if len(t.Notes) > 0 {
		fmt.Fprintf(&b, "\nNotes (%d)\n", len(t.Notes))
		for _, n := range t.Notes {
			b.WriteString(a.renderNote(n))
		}
	}
	return b.String()
}

const timestampLayout = "2006-01-02 15:04"

func statusMark(t task.Task) string {
	if t.Completed {
		return "✓"
	}
	return "·"
}

func dueLabel(t task.Task, today time.Time) string {
	if t.DueDate == "" {
		return "-"
	}
	if t.Completed {
		return t.DueDate
	}
	switch task.DueDateStatus(t.DueDate, today) {
	case task.DueOverdue:
		return t.DueDate + " (overdue)"
	case task.DueToday:
		return t.DueDate + " (today)"
	case task.DueSoon:
		return t.DueDate + " (soon)"
	case task.DueNone, task.DueFuture:
	}
	return t.DueDate
}

// singleLine replaces control characters, line breaks and tabs included,
// with spaces.
func singleLine(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

// cell is a single-line table cell, "-" when blank.
func cell(s string) string {
	return dashIfEmpty(singleLine(s))
}

func dashIfEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func emptyIfNil(tasks []task.Task) []task.Task {
	if tasks == nil {
		return []task.Task{}
	}
	return tasks
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
