package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amirbrooks/tasklist/internal/export"
	"github.com/amirbrooks/tasklist/internal/templates"
)

func (a *app) templateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"tpl"},
		Short:   "Manage reusable task templates",
		Long: `Manage reusable task templates.

Examples:
  tasklist template create weekly --title "Weekly review" --priority high --tags review
  tasklist template use weekly --due +3
  tasklist template export weekly
  tasklist template import ./template_weekly.json`,
	}
	cmd.AddCommand(
		a.templateCreateCommand(),
		a.templateListCommand(),
		a.templateShowCommand(),
		a.templateRemoveCommand(),
		a.templateUseCommand(),
		a.templateExportCommand(),
		a.templateImportCommand(),
	)
	return cmd
}

func (a *app) templateCreateCommand() *cobra.Command {
	var (
		title, priority, category string
		tags                      []string
	)
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create or replace a template",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.loadTemplates()
			if err != nil {
				return err
			}
			name := strings.TrimSpace(args[0])
			t, overwritten, warnings, err := repo.Create(name, templates.CreateInput{
				Title:    title,
				Priority: priority,
				Category: category,
				Tags:     tags,
			})
			if err != nil {
				return err
			}
			if err := a.saveTemplates(repo); err != nil {
				return err
			}
			a.log.Info("template saved", zap.String("name", name), zap.Bool("overwritten", overwritten))
			a.warn(warnings...)
			if a.gf.JSON {
				return a.printJSON(map[string]any{"name": name, "template": t, "overwritten": overwritten, "warnings": warnings})
			}
			if overwritten {
				a.success("Replaced template %q.", name)
			} else {
				a.success("Created template %q.", name)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&title, "title", "", "Task title (required)")
	f.StringVarP(&priority, "priority", "p", "medium", "Priority (high|medium|low)")
	f.StringVarP(&category, "category", "c", "", "Category")
	f.StringSliceVarP(&tags, "tags", "t", nil, "Tags (comma separated)")
	return cmd
}

func (a *app) templateListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List templates",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.loadTemplates()
			if err != nil {
				return err
			}
			if a.gf.JSON {
				return a.printJSON(map[string]any{"templates": repo.Templates()})
			}
			if repo.Len() == 0 {
				a.info("No templates found.")
				return nil
			}
			all := repo.Templates()
			if a.gf.Plain {
				for _, name := range repo.Names() {
					t := all[name]
					fmt.Fprintf(a.out, "%s\t%s\t%s\t%s\t%s\n", cell(name), t.Priority, cell(t.Category), cell(strings.Join(t.Tags, ",")), cleanTaskTitle(t.Title))
				}
				return nil
			}
			var buf strings.Builder
			w := tabwriter.NewWriter(&buf, 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPRI\tCATEGORY\tTAGS\tTITLE")
			for _, name := range repo.Names() {
				t := all[name]
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", cell(name), t.Priority, cell(t.Category), cell(strings.Join(t.Tags, ",")), truncate(cleanTaskTitle(t.Title), 60))
			}
			_ = w.Flush()
			lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
			fmt.Fprintln(a.out, a.st.heading.Render(lines[0]))
			for _, line := range lines[1:] {
				fmt.Fprintln(a.out, line)
			}
			return nil
		},
	}
}

func (a *app) templateShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a template",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.loadTemplates()
			if err != nil {
				return err
			}
			t, err := repo.Get(args[0])
			if err != nil {
				return err
			}
			if a.gf.JSON {
				return a.printJSON(map[string]any{"name": args[0], "template": t})
			}
			var b strings.Builder
			b.WriteString(a.st.heading.Render(args[0]))
			b.WriteString("\n")
			fmt.Fprintf(&b, "Title: %s\n", t.Title)
			fmt.Fprintf(&b, "Priority: %s\n", strings.ToUpper(t.Priority.String()))
			fmt.Fprintf(&b, "Category: %s\n", dashIfEmpty(t.Category))
			fmt.Fprintf(&b, "Tags: %s\n", dashIfEmpty(strings.Join(t.Tags, ", ")))
			a.printf("%s", b.String())
			return nil
		},
	}
}

func (a *app) templateRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"delete"},
		Short:   "Delete a template",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.loadTemplates()
			if err != nil {
				return err
			}
			if err := repo.Delete(args[0]); err != nil {
				return err
			}
			if err := a.saveTemplates(repo); err != nil {
				return err
			}
			if a.gf.JSON {
				return a.printJSON(map[string]any{"removed": args[0]})
			}
			a.success("Deleted template %q.", args[0])
			return nil
		},
	}
}

func (a *app) templateUseCommand() *cobra.Command {
	var o templates.Overrides
	cmd := &cobra.Command{
		Use:   "use <name>",
		Short: "Create a task from a template",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			tpls, err := a.loadTemplates()
			if err != nil {
				return err
			}
			t, err := tpls.Get(args[0])
			if err != nil {
				return err
			}
			repo, err := a.loadTasks()
			if err != nil {
				return err
			}
			added, warnings, err := repo.Add(templates.Instantiate(t, o))
			if err != nil {
				return err
			}
			if err := a.saveTasks(repo); err != nil {
				return err
			}
			a.log.Info("task added from template", zap.String("template", args[0]), zap.Int("id", added.ID))
			a.warn(warnings...)
			if a.gf.JSON {
				return a.printJSON(map[string]any{"task": added, "template": args[0], "warnings": warnings})
			}
			a.success("Added task #%d from template %q: %s", added.ID, args[0], added.Title)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.Title, "title", "", "Override the title")
	f.StringVarP(&o.Priority, "priority", "p", "", "Override the priority")
	f.StringVarP(&o.DueDate, "due", "d", "", "Due date (YYYY-MM-DD, today, tomorrow, +N)")
	f.StringVarP(&o.Category, "category", "c", "", "Override the category")
	f.StringSliceVarP(&o.Tags, "tags", "t", nil, "Override the tags (comma separated)")
	return cmd
}

func (a *app) templateExportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export [name]",
		Short: "Write one template, or all of them, to a JSON file",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.loadTemplates()
			if err != nil {
				return err
			}
			name := ""
			items := repo.Templates()
			if len(args) == 1 {
				name = args[0]
				t, err := repo.Get(name)
				if err != nil {
					return err
				}
				items = map[string]templates.Template{name: t}
			}
			path := output
			if path == "" {
				path = filepath.Join(a.cfg.Export.Dir, export.TemplateFileName(name))
			}
			written, err := export.TemplatesFile(path, items)
			if errors.Is(err, export.ErrEmpty) {
				a.info("No templates to export.")
				return nil
			}
			if err != nil {
				return err
			}
			if a.gf.JSON {
				return a.printJSON(map[string]any{"path": written, "templates": len(items)})
			}
			a.success("Exported %s to %s", plural(len(items), "template"), written)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: export dir)")
	return cmd
}

func (a *app) templateImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Add templates from a JSON file, keeping existing names",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := export.ReadTemplatesFile(args[0])
			if err != nil {
				return err
			}
			repo, err := a.loadTemplates()
			if err != nil {
				return err
			}
			added, skipped := repo.Import(items)
			if added > 0 {
				if err := a.saveTemplates(repo); err != nil {
					return err
				}
			}
			for _, name := range skipped {
				a.warn(fmt.Sprintf("template %q already exists, skipped", name))
			}
			if a.gf.JSON {
				return a.printJSON(map[string]any{"added": added, "skipped": skipped})
			}
			if added == 0 {
				a.info("No new templates imported.")
				return nil
			}
			a.success("Imported %s.", plural(added, "template"))
			return nil
		},
	}
}
