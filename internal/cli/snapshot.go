package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every table to a directory of JSONL files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, _, err := opts.attach()
			if err != nil {
				return err
			}
			defer backend.Detach()

			if err := backend.Export(cmd.Context(), out); err != nil {
				return sysError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "destination directory (required)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load JSONL files written by export into an empty store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, _, err := opts.attach()
			if err != nil {
				return err
			}
			defer backend.Detach()

			if err := backend.Import(cmd.Context(), in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported from %s\n", in)
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "source directory (required)")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
