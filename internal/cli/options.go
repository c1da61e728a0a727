package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/canvasboard/internal/facet"
	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

func newOptionsCmd(opts *rootOptions) *cobra.Command {
	var path, label, order string
	var flattened bool
	cmd := &cobra.Command{
		Use:   "options <source>",
		Short: "List the distinct values of a field with their counts",
		Example: `  canvas options PERSONAS --path segment.id --label segment.name
  canvas options VALUE_PROPOSITIONS --path customerJobs.content --flattened --order count`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := types.Source(strings.ToUpper(args[0]))
			if !source.Valid() {
				return fmt.Errorf("unknown source %q: %w", args[0], types.ErrValidation)
			}
			by := facet.Order(order)
			if by != facet.OrderEncounter && by != facet.OrderCount && by != facet.OrderLabel {
				return fmt.Errorf("invalid order %q (valid: count, label): %w", order, types.ErrValidation)
			}

			backend, _, err := opts.attach()
			if err != nil {
				return err
			}
			defer backend.Detach()

			records, err := backend.Records(cmd.Context(), source)
			if err != nil {
				return err
			}

			var options []types.Option
			if flattened {
				options, err = facet.AggregateFlattened(records, path)
				if err != nil {
					return err
				}
			} else {
				options = facet.AggregateUnique(records, path, label)
			}
			facet.Sort(options, by)

			if opts.jsonMode {
				return printJSON(cmd.OutOrStdout(), options)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "VALUE\tLABEL\tCOUNT")
			for _, o := range options {
				fmt.Fprintf(tw, "%v\t%s\t%d\n", o.Value, o.Label, o.Count)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "field path to aggregate (required)")
	cmd.Flags().StringVar(&label, "label", "", "field path supplying option labels")
	cmd.Flags().StringVar(&order, "order", "", "sort options by count or label")
	cmd.Flags().BoolVar(&flattened, "flattened", false, "aggregate the elements of an array field (list.field)")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}
