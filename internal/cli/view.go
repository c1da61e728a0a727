package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/canvasboard/internal/view"
	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

// defaultViewArg selects the default view wherever a view id is expected.
const defaultViewArg = "default"

func newViewCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Manage saved views",
	}
	cmd.AddCommand(newViewListCmd(opts))
	cmd.AddCommand(newViewShowCmd(opts))
	cmd.AddCommand(newViewCreateCmd(opts))
	cmd.AddCommand(newViewSetDefaultCmd(opts))
	cmd.AddCommand(newViewDeleteCmd(opts))
	cmd.AddCommand(newViewProjectCmd(opts))
	return cmd
}

func newViewListCmd(opts *rootOptions) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src := types.Source(strings.ToUpper(source))
			if src != "" && !src.Valid() {
				return fmt.Errorf("unknown source %q: %w", source, types.ErrValidation)
			}

			backend, _, err := opts.attach()
			if err != nil {
				return err
			}
			defer backend.Detach()

			views, err := backend.Views().List(cmd.Context(), src)
			if err != nil {
				return err
			}
			if opts.jsonMode {
				return printJSON(cmd.OutOrStdout(), views)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSOURCE\tLAYOUT\tDEFAULT")
			for _, v := range views {
				def := ""
				if v.IsDefault {
					def = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", v.ID, v.Name, v.Source, v.Layout, def)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "only list views over this source")
	return cmd
}

func newViewShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|default>",
		Short: "Show one view descriptor as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, _, err := opts.attach()
			if err != nil {
				return err
			}
			defer backend.Detach()

			v, err := lookupView(cmd, backend, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	}
}

type viewCreateFlags struct {
	name      string
	source    string
	layout    string
	filters   []string
	sorts     []string
	groupBy   string
	visible   []string
	isDefault bool
}

func newViewCreateCmd(opts *rootOptions) *cobra.Command {
	var f viewCreateFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a saved view",
		Example: `  canvas view create --name "Young personas" --source PERSONAS \
    --filter 'age:lt:30' --filter 'tags:in:["student","gamer"]' \
    --sort age:desc --group-by segment.name --visible name,age`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := f.descriptor()
			if err != nil {
				return err
			}

			backend, _, err := opts.attach()
			if err != nil {
				return err
			}
			defer backend.Detach()

			id, err := backend.Views().Create(cmd.Context(), d)
			if err != nil {
				return err
			}
			if !opts.jsonMode {
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			}
			stored, err := backend.Views().Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stored)
		},
	}
	cmd.Flags().StringVar(&f.name, "name", "", "view name (required)")
	cmd.Flags().StringVar(&f.source, "source", "", "record source: CUSTOMER_SEGMENTS, PERSONAS, VALUE_PROPOSITIONS, BUSINESS_MODELS (required)")
	cmd.Flags().StringVar(&f.layout, "layout", string(types.LayoutTable), "layout: CARD, TABLE, KANBAN")
	cmd.Flags().StringArrayVar(&f.filters, "filter", nil, "filter as field:operator[:value]; repeatable")
	cmd.Flags().StringArrayVar(&f.sorts, "sort", nil, "sort key as field[:asc|desc]; repeatable")
	cmd.Flags().StringVar(&f.groupBy, "group-by", "", "field path to group by")
	cmd.Flags().StringSliceVar(&f.visible, "visible", nil, "comma-separated visible field paths")
	cmd.Flags().BoolVar(&f.isDefault, "default", false, "make the new view the default")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

// descriptor assembles the view described by the flags.
func (f viewCreateFlags) descriptor() (*types.ViewDescriptor, error) {
	d := &types.ViewDescriptor{
		Name:          f.name,
		Source:        types.Source(strings.ToUpper(f.source)),
		Layout:        types.Layout(strings.ToUpper(f.layout)),
		GroupBy:       f.groupBy,
		VisibleFields: f.visible,
		IsDefault:     f.isDefault,
	}
	for _, raw := range f.filters {
		c, err := parseFilter(raw)
		if err != nil {
			return nil, err
		}
		d.Filters = append(d.Filters, c)
	}
	for _, raw := range f.sorts {
		s, err := parseSort(raw)
		if err != nil {
			return nil, err
		}
		d.Sorts = append(d.Sorts, s)
	}
	return d, nil
}

// parseFilter reads field:operator[:value]. The value is decoded as JSON
// when possible, so 30 is a number and ["a","b"] a list; anything else is
// taken as a string. Set operators expect a JSON array.
func parseFilter(raw string) (types.FilterCriterion, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) < 2 || parts[0] == "" {
		return types.FilterCriterion{}, fmt.Errorf("filter %q: want field:operator[:value]: %w", raw, types.ErrValidation)
	}
	c := types.FilterCriterion{
		Field:    parts[0],
		Operator: types.FilterOperator(strings.ToLower(parts[1])),
	}
	if len(parts) < 3 {
		return c, nil
	}

	value := parseValue(parts[2])
	if c.Operator == types.OpIn || c.Operator == types.OpNotIn {
		values, ok := value.([]any)
		if !ok {
			return types.FilterCriterion{}, fmt.Errorf("filter %q: %s needs a JSON array: %w", raw, c.Operator, types.ErrValidation)
		}
		c.Values = values
		return c, nil
	}
	c.Value = value
	return c, nil
}

func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

// parseSort reads field[:asc|desc].
func parseSort(raw string) (types.SortCriterion, error) {
	field, order, _ := strings.Cut(raw, ":")
	if field == "" {
		return types.SortCriterion{}, fmt.Errorf("sort %q: missing field: %w", raw, types.ErrValidation)
	}
	s := types.SortCriterion{Field: field, Order: types.SortAsc}
	if order != "" {
		s.Order = types.SortOrder(strings.ToUpper(order))
	}
	return s, nil
}

func newViewSetDefaultCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-default <id>",
		Short: "Make a view the default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, _, err := opts.attach()
			if err != nil {
				return err
			}
			defer backend.Detach()

			if err := backend.Views().SetDefault(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "default view: %s\n", args[0])
			return nil
		},
	}
}

func newViewDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a view",
		Long:  "Deletes a saved view. The default view cannot be deleted; make another view the default first.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, _, err := opts.attach()
			if err != nil {
				return err
			}
			defer backend.Detach()

			if err := backend.Views().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted view: %s\n", args[0])
			return nil
		},
	}
}

func newViewProjectCmd(opts *rootOptions) *cobra.Command {
	var page, limit int
	cmd := &cobra.Command{
		Use:   "project <id|default>",
		Short: "Run a view over its source and print one page as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, _, err := opts.attach()
			if err != nil {
				return err
			}
			defer backend.Detach()

			d, err := lookupView(cmd, backend, args[0])
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = opts.config.GetInt(cfgKeyPageSize)
			}
			p, err := view.Render(cmd.Context(), backend, d, page, limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&limit, "limit", 0, "records per page (default from config page_size)")
	return cmd
}

func lookupView(cmd *cobra.Command, board types.Board, id string) (*types.ViewDescriptor, error) {
	if id == defaultViewArg {
		return board.Views().GetDefault(cmd.Context())
	}
	return board.Views().Get(cmd.Context(), id)
}
