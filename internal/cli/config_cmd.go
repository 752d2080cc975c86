package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (a *app) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "Inspect configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the effective configuration after defaults, <root>/config.yaml,
TASKLIST_* environment variables and flags are applied.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.gf.JSON {
				return a.printJSON(map[string]any{"config_file": a.cfg.ConfigPath(), "config": a.cfg})
			}
			b, err := yaml.Marshal(a.cfg)
			if err != nil {
				return err
			}
			a.printf("# %s\n%s", a.cfg.ConfigPath(), b)
			return nil
		},
	})
	return cmd
}
