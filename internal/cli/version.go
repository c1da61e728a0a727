package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the canvas release, overridden at build time with
// -ldflags "-X github.com/mesh-intelligence/canvasboard/internal/cli.Version=...".
var Version = "0.1.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// No config or backend needed.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "canvas %s\n", Version)
		},
	}
}
