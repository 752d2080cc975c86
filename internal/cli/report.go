package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amirbrooks/tasklist/internal/export"
	"github.com/amirbrooks/tasklist/internal/stats"
	"github.com/amirbrooks/tasklist/internal/task"
)

func (a *app) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show completion, priority, due date and note statistics",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.loadTasks()
			if err != nil {
				return err
			}
			s := stats.Compute(repo.Tasks(), a.today())
			if a.gf.JSON {
				return a.printJSON(s)
			}
			if s.Total == 0 {
				a.info("No tasks yet.")
				return nil
			}
			var b strings.Builder
			b.WriteString(a.st.heading.Render("Tasks"))
			b.WriteString("\n")
			fmt.Fprintf(&b, "  Total: %d\n  Completed: %d\n  Pending: %d\n  Completion rate: %.1f%%\n\n",
				s.Total, s.Completed, s.Pending, s.CompletionRate)
			b.WriteString(a.st.heading.Render("Pending by priority"))
			b.WriteString("\n")
			fmt.Fprintf(&b, "  %s %d\n  %s %d\n  %s %d\n\n",
				a.st.high.Render("High:  "), s.PendingByPri.High,
				a.st.medium.Render("Medium:"), s.PendingByPri.Medium,
				a.st.low.Render("Low:   "), s.PendingByPri.Low)
			b.WriteString(a.st.heading.Render("Due dates"))
			b.WriteString("\n")
			fmt.Fprintf(&b, "  Overdue: %d\n  Due today: %d\n  Due soon: %d\n\n", s.Due.Overdue, s.Due.Today, s.Due.Soon)
			b.WriteString(a.st.heading.Render("Notes"))
			b.WriteString("\n")
			fmt.Fprintf(&b, "  Total notes: %d\n  Tasks with notes: %d\n  Average per task: %.1f\n",
				s.Notes.TotalNotes, s.Notes.TasksWithNotes, s.Notes.AverageNotes)
			a.printf("%s", b.String())
			return nil
		},
	}
}

func (a *app) summaryCommand() *cobra.Command {
	var (
		format string
		limit  int
	)
	cmd := &cobra.Command{
		Use:     "summary",
		Aliases: []string{"today", "digest"},
		Short:   "Show overdue, due today and high priority tasks",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseDigestFormat(format)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.Digest.Limit
			}
			return a.printDigest(limit, f)
		},
	}
	cmd.Flags().StringVar(&format, "format", formatText, "Output format (text|compact)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Tasks shown per section (0 for all)")
	return cmd
}

func (a *app) printDigest(limit int, format string) error {
	repo, err := a.loadTasks()
	if err != nil {
		return err
	}
	today := a.today()
	d := stats.BuildDigest(repo.Tasks(), today)
	if a.gf.JSON {
		return a.printJSON(d)
	}
	if format == formatCompact {
		a.printf("%s\n", renderCompactDigest(d, limit, today))
		return nil
	}
	a.printf("%s", a.renderDigest(d, limit, today))
	return nil
}

func (a *app) renderDigest(d stats.Digest, limit int, today time.Time) string {
	var b strings.Builder
	b.WriteString(a.st.heading.Render(fmt.Sprintf("Today (%s)", today.Format(task.DateLayout))))
	fmt.Fprintf(&b, " - pending %d, completed %d\n", d.Pending, d.Completed)
	if d.Empty() {
		b.WriteString(a.st.success.Render("Nothing overdue, nothing due today."))
		b.WriteString("\n")
		return b.String()
	}
	section := func(title string, tasks []task.Task, includeDue bool) {
		if len(tasks) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n%s\n", a.st.heading.Render(fmt.Sprintf("%s (%d)", title, len(tasks))))
		for i, t := range tasks {
			if limit > 0 && i == limit {
				b.WriteString(a.st.dim.Render(fmt.Sprintf("  ... and %d more", len(tasks)-limit)))
				b.WriteString("\n")
				break
			}
			line := fmt.Sprintf("  #%d %s", t.ID, cleanTaskTitle(t.Title))
			if includeDue && t.DueDate != "" {
				line += fmt.Sprintf(" (due %s)", t.DueDate)
			}
			b.WriteString(a.st.priority(t.Priority).Render(line))
			b.WriteString("\n")
		}
	}
	section("Overdue", d.Overdue, true)
	section("Due today", d.DueToday, false)
	section("High priority", d.HighPriority, true)
	return b.String()
}

func (a *app) exportCommand() *cobra.Command {
	var (
		filter string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks to a CSV file",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := task.ParseFilter(filter)
			if err != nil {
				return err
			}
			repo, err := a.loadTasks()
			if err != nil {
				return err
			}
			selected := export.Select(repo.Tasks(), f, a.today())
			path := output
			if path == "" {
				path = filepath.Join(a.cfg.Export.Dir, export.CSVFileName(f))
			}
			written, err := export.CSVFile(path, selected)
			if errors.Is(err, export.ErrEmpty) {
				a.info("No tasks match filter %q.", f)
				return nil
			}
			if err != nil {
				return err
			}
			a.log.Info("tasks exported", zap.String("path", written), zap.Int("count", len(selected)))
			if a.gf.JSON {
				return a.printJSON(map[string]any{"path": written, "tasks": len(selected)})
			}
			a.success("Exported %s to %s", plural(len(selected), "task"), written)
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "Filter (all|completed|pending|overdue)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: export dir)")
	return cmd
}
