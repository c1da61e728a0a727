package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the canvas data directory and built-in views",
		Long: `Creates the config file and data directory if they do not exist,
then persists the built-in view templates when the store holds no views.
Safe to run more than once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, dataDir, err := opts.attach()
			if err != nil {
				return err
			}
			defer backend.Detach()

			seeded, err := backend.Views().SeedTemplates(cmd.Context())
			if err != nil {
				return sysError(fmt.Errorf("seed templates: %w", err))
			}

			if opts.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"configDir": opts.configDir,
					"dataDir":   dataDir,
					"seeded":    seeded,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Canvas initialized")
			fmt.Fprintf(out, "  config: %s\n", opts.configDir)
			fmt.Fprintf(out, "  data:   %s\n", dataDir)
			fmt.Fprintf(out, "  views seeded: %d\n", seeded)
			return nil
		},
	}
}
