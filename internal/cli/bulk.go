package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amirbrooks/tasklist/internal/bulk"
)

func (a *app) bulkCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Apply one change to many tasks",
		Long: `Apply one change to many tasks. Ids are a comma separated list of
numbers and inclusive ranges, e.g. "1,3,5-8".

Examples:
  tasklist bulk done 1-4
  tasklist bulk rm 2,5
  tasklist bulk priority 1,3 high
  tasklist bulk category 4-6 errands
  tasklist bulk tag 1-3 urgent`,
	}
	cmd.AddCommand(
		a.bulkOpCommand(bulk.OpComplete, "done <ids>", "Complete tasks", nil),
		a.bulkOpCommand(bulk.OpDelete, "rm <ids>", "Delete tasks", []string{"delete"}),
		a.bulkOpCommand(bulk.OpPriority, "priority <ids> <high|medium|low>", "Set the priority of tasks", nil),
		a.bulkOpCommand(bulk.OpCategory, "category <ids> <category>", "Set the category of tasks", nil),
		a.bulkOpCommand(bulk.OpTag, "tag <ids> <tag>", "Add a tag to tasks", nil),
	)
	return cmd
}

func (a *app) bulkOpCommand(op bulk.Op, use, short string, aliases []string) *cobra.Command {
	nargs := 2
	if op == bulk.OpComplete || op == bulk.OpDelete {
		nargs = 1
	}
	return &cobra.Command{
		Use:     use,
		Short:   short,
		Aliases: aliases,
		Args:    usageArgs(cobra.ExactArgs(nargs)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, warnings, err := bulk.ParseIDSpec(args[0])
			if err != nil {
				return err
			}
			a.warn(warnings...)
			if len(ids) == 0 {
				return usagef("no task ids in %q", args[0])
			}
			value := ""
			if nargs == 2 {
				value = args[1]
			}

			repo, err := a.loadTasks()
			if err != nil {
				return err
			}
			res := bulk.Apply(repo, op, ids, value)
			if res.Changed > 0 {
				if err := a.saveTasks(repo); err != nil {
					return err
				}
			}
			a.log.Info("bulk applied", zap.Stringer("op", op), zap.Ints("ids", ids), zap.Int("changed", res.Changed))
			a.warn(res.Warnings...)
			if a.gf.JSON {
				return a.printJSON(res)
			}
			a.renderBulkResult(op, res)
			return nil
		},
	}
}

func (a *app) renderBulkResult(op bulk.Op, res bulk.Result) {
	verb := map[bulk.Op]string{
		bulk.OpComplete: "Completed",
		bulk.OpDelete:   "Deleted",
		bulk.OpPriority: "Reprioritized",
		bulk.OpCategory: "Recategorized",
		bulk.OpTag:      "Tagged",
	}[op]
	if res.Changed > 0 {
		a.success("%s %s.", verb, plural(res.Changed, "task"))
	} else {
		a.info("No tasks changed.")
	}
	if len(res.Skipped) > 0 {
		a.printf("Skipped: %s\n", joinInts(res.Skipped))
	}
	if len(res.NotFound) > 0 {
		a.printf("Not found: %s\n", joinInts(res.NotFound))
	}
}
