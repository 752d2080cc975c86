package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amirbrooks/tasklist/internal/export"
	"github.com/amirbrooks/tasklist/internal/task"
)

func (a *app) noteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "note",
		Aliases: []string{"notes"},
		Short:   "Manage notes attached to a task",
		Long: `Manage notes attached to a task.

Examples:
  tasklist note add 3 "called the plumber"
  echo "multi-line text" | tasklist note add 3 -
  tasklist note ls 3
  tasklist note edit 3 1 "called twice"
  tasklist note rm 3 1
  tasklist note export 3`,
	}
	cmd.AddCommand(
		a.noteAddCommand(),
		a.noteListCommand(),
		a.noteEditCommand(),
		a.noteRemoveCommand(),
		a.noteExportCommand(),
	)
	return cmd
}

// noteText joins args, or reads stdin when the only argument is "-".
func (a *app) noteText(args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		b, err := io.ReadAll(a.in)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimRight(string(b), "\n"), nil
	}
	return strings.Join(args, " "), nil
}

func (a *app) noteAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <task-id> <text...|->",
		Short: "Add a note to a task",
		Args:  usageArgs(cobra.MinimumNArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			text, err := a.noteText(args[1:])
			if err != nil {
				return err
			}
			repo, err := a.loadTasks()
			if err != nil {
				return err
			}
			n, err := repo.AddNote(id, text)
			if err != nil {
				return err
			}
			if err := a.saveTasks(repo); err != nil {
				return err
			}
			a.log.Info("note added", zap.Int("task", id), zap.Int("note", n.ID))
			if a.gf.JSON {
				return a.printJSON(map[string]any{"task_id": id, "note": n})
			}
			a.success("Added note #%d to task #%d.", n.ID, id)
			return nil
		},
	}
}

func (a *app) noteListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls <task-id>",
		Aliases: []string{"list"},
		Short:   "List the notes of a task",
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
			notes, err := repo.Notes(id)
			if err != nil {
				return err
			}
			if a.gf.JSON {
				if notes == nil {
					notes = []task.Note{}
				}
				return a.printJSON(map[string]any{"task_id": id, "notes": notes})
			}
			if len(notes) == 0 {
				a.info("Task #%d has no notes.", id)
				return nil
			}
			for _, n := range notes {
				a.printf("%s", a.renderNote(n))
			}
			return nil
		},
	}
}

func (a *app) noteEditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <task-id> <note-id> <text...|->",
		Short: "Replace the text of a note",
		Args:  usageArgs(cobra.MinimumNArgs(3)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			noteID, err := parseNoteID(args[1])
			if err != nil {
				return err
			}
			text, err := a.noteText(args[2:])
			if err != nil {
				return err
			}
			repo, err := a.loadTasks()
			if err != nil {
				return err
			}
			n, err := repo.EditNote(id, noteID, text)
			if err != nil {
				return err
			}
			if err := a.saveTasks(repo); err != nil {
				return err
			}
			if a.gf.JSON {
				return a.printJSON(map[string]any{"task_id": id, "note": n})
			}
			a.success("Updated note #%d of task #%d.", n.ID, id)
			return nil
		},
	}
}

func (a *app) noteRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <task-id> <note-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			noteID, err := parseNoteID(args[1])
			if err != nil {
				return err
			}
			repo, err := a.loadTasks()
			if err != nil {
				return err
			}
			n, err := repo.DeleteNote(id, noteID)
			if err != nil {
				return err
			}
			if err := a.saveTasks(repo); err != nil {
				return err
			}
			if a.gf.JSON {
				return a.printJSON(map[string]any{"task_id": id, "removed": n})
			}
			a.success("Deleted note #%d from task #%d.", noteID, id)
			return nil
		},
	}
}

func (a *app) noteExportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <task-id>",
		Short: "Write the notes of a task to a text file",
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
			path := output
			if path == "" {
				path = filepath.Join(a.cfg.Export.Dir, export.NotesFileName(t))
			}
			written, err := export.NotesFile(path, t)
			if errors.Is(err, export.ErrEmpty) {
				a.info("Task #%d has no notes to export.", id)
				return nil
			}
			if err != nil {
				return err
			}
			if a.gf.JSON {
				return a.printJSON(map[string]any{"path": written, "notes": len(t.Notes)})
			}
			a.success("Exported %s to %s", plural(len(t.Notes), "note"), written)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: export dir)")
	return cmd
}

func (a *app) renderNote(n task.Note) string {
	var b strings.Builder
	header := fmt.Sprintf("Note #%d - %s", n.ID, n.CreatedAt.Local().Format(timestampLayout))
	if n.UpdatedAt != nil {
		header += fmt.Sprintf(" (edited %s)", n.UpdatedAt.Local().Format(timestampLayout))
	}
	b.WriteString(a.st.dim.Render(header))
	b.WriteString("\n")
	for _, line := range strings.Split(n.Text, "\n") {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func parseNoteID(s string) (int, error) {
	id, err := parseID(s)
	if err != nil {
		return 0, usagef("invalid note id %q", s)
	}
	return id, nil
}
