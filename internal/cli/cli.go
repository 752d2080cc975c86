package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amirbrooks/tasklist/internal/bulk"
	"github.com/amirbrooks/tasklist/internal/config"
	"github.com/amirbrooks/tasklist/internal/export"
	"github.com/amirbrooks/tasklist/internal/logging"
	"github.com/amirbrooks/tasklist/internal/store"
	"github.com/amirbrooks/tasklist/internal/task"
	"github.com/amirbrooks/tasklist/internal/templates"
)

// Exit codes
const (
	ExitOK       = 0
	ExitUsage    = 2
	ExitNotFound = 3
	ExitInternal = 10
)

var timeNow = time.Now

type GlobalFlags struct {
	Root    string
	JSON    bool
	Plain   bool
	Quiet   bool
	Verbose bool
	NoColor bool
}

// usageError marks bad arguments or flags.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return &usageError{msg: err.Error() + "\nUsage: " + cmd.UseLine()}
		}
		return nil
	}
}

type app struct {
	gf     GlobalFlags
	cfg    *config.Config
	ws     *store.Workspace
	log    *zap.Logger
	out    io.Writer
	errOut io.Writer
	in     io.Reader
	st     styles
}

func Run(args []string) int {
	return run(args, os.Stdin, os.Stdout, os.Stderr)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{out: stdout, errOut: stderr, in: stdin, log: zap.NewNop()}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteC()
	logging.Sync(a.log)
	if err == nil {
		return ExitOK
	}
	name := "tasklist"
	if cmd != nil && cmd != root {
		name = strings.TrimPrefix(cmd.CommandPath(), root.Name()+" ")
	}
	fmt.Fprintln(stderr, a.st.err.Render(name+":")+" "+err.Error())
	return exitCode(err)
}

func exitCode(err error) int {
	var ue *usageError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &ue),
		errors.Is(err, task.ErrValidation),
		errors.Is(err, bulk.ErrParse),
		errors.Is(err, export.ErrInvalidFile):
		return ExitUsage
	case errors.Is(err, task.ErrNotFound):
		return ExitNotFound
	default:
		return ExitInternal
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "tasklist",
		Short: "Personal task tracker",
		Long: `tasklist keeps a personal task list in a local file.

Examples:
  tasklist add "Write report" --priority high --due tomorrow --tag work
  tasklist ls --filter pending
  tasklist done 3
  tasklist bulk priority 1-3,7 low
  tasklist summary

Run without a command to see what needs attention today.`,
		Args:              cobra.ArbitraryArgs,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usagef("unknown command %q\nRun 'tasklist --help' for usage.", args[0])
			}
			return a.printDigest(a.cfg.Digest.Limit, formatText)
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{msg: err.Error()}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.gf.Root, "root", "", "Workspace root (default $TASKLIST_ROOT or ~/.tasklist)")
	pf.BoolVar(&a.gf.JSON, "json", false, "Write JSON to stdout")
	pf.BoolVar(&a.gf.Plain, "plain", false, "Tab-separated output without headers or colour")
	pf.BoolVarP(&a.gf.Quiet, "quiet", "q", false, "Only print errors and warnings")
	pf.BoolVarP(&a.gf.Verbose, "verbose", "v", false, "Debug logging on stderr")
	pf.BoolVar(&a.gf.NoColor, "no-color", false, "Disable colour output")

	root.AddCommand(
		a.addCommand(),
		a.listCommand(),
		a.showCommand(),
		a.doneCommand(),
		a.reopenCommand(),
		a.editCommand(),
		a.removeCommand(),
		a.searchCommand(),
		a.noteCommand(),
		a.bulkCommand(),
		a.templateCommand(),
		a.statsCommand(),
		a.summaryCommand(),
		a.exportCommand(),
		a.configCommand(),
	)
	return root
}

// setup loads configuration, builds the logger and opens the workspace
// before any command runs.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.gf.Root)
	if err != nil {
		return usagef("config: %v", err)
	}
	if a.gf.Verbose {
		cfg.Log.Level = "debug"
	}
	if a.gf.NoColor || a.gf.Plain || a.gf.JSON {
		cfg.Display.Color = false
	}
	a.cfg = cfg
	a.st = newStyles(TokyoNight, cfg.Display.Color)

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		return usagef("config: %v", err)
	}
	a.log = logger.With(zap.String("cmd", cmd.Name()))

	ws, err := store.Open(cfg.Root, store.Options{
		Format:        cfg.Storage.Format,
		TasksFile:     cfg.Storage.TasksFile,
		TemplatesFile: cfg.Storage.TemplatesFile,
		Logger:        a.log,
	})
	if err != nil {
		return err
	}
	a.ws = ws
	a.log.Debug("workspace open", zap.String("root", ws.Root), zap.String("format", ws.Format))
	return nil
}

func (a *app) loadTasks() (*task.Repository, error) {
	tasks, err := a.ws.LoadTasks()
	if err != nil {
		return nil, err
	}
	return task.NewRepository(tasks, task.WithClock(timeNow)), nil
}

func (a *app) saveTasks(repo *task.Repository) error {
	return a.ws.SaveTasks(repo.Tasks())
}

func (a *app) loadTemplates() (*templates.Repository, error) {
	items, err := a.ws.LoadTemplates()
	if err != nil {
		return nil, err
	}
	return templates.NewRepository(items), nil
}

func (a *app) saveTemplates(repo *templates.Repository) error {
	return a.ws.SaveTemplates(repo.Templates())
}

func (a *app) today() time.Time {
	return timeNow()
}

// printf writes human output unless --quiet is set.
func (a *app) printf(format string, args ...any) {
	if a.gf.Quiet {
		return
	}
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) success(format string, args ...any) {
	if a.gf.Quiet {
		return
	}
	fmt.Fprintln(a.out, a.st.success.Render(fmt.Sprintf(format, args...)))
}

func (a *app) info(format string, args ...any) {
	if a.gf.Quiet {
		return
	}
	fmt.Fprintln(a.out, a.st.warning.Render(fmt.Sprintf(format, args...)))
}

func (a *app) warn(warnings ...string) {
	for _, w := range warnings {
		fmt.Fprintln(a.errOut, a.st.warning.Render("warning: "+w))
	}
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id < 1 {
		return 0, usagef("invalid task id %q", s)
	}
	return id, nil
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
