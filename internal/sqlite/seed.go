package sqlite

import (
	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

// builtInViews are the templates offered on first run. The first one flagged
// IsDefault is what GetDefault materializes when the store has no default.
var builtInViews = []types.ViewDescriptor{
	{
		Name:      "All Personas",
		Source:    types.SourcePersonas,
		Layout:    types.LayoutCard,
		IsDefault: true,
	},
	{
		Name:    "Personas by Segment",
		Source:  types.SourcePersonas,
		Layout:  types.LayoutTable,
		GroupBy: "segment.name",
	},
	{
		Name:      "Value Propositions",
		Source:    types.SourceValuePropositions,
		Layout:    types.LayoutCard,
		SortBy:    "updatedAt",
		SortOrder: types.SortDesc,
	},
	{
		Name:   "Business Models",
		Source: types.SourceBusinessModels,
		Layout: types.LayoutTable,
	},
	{
		Name:   "Customer Segments",
		Source: types.SourceCustomerSegments,
		Layout: types.LayoutKanban,
	},
}

// defaultTemplate returns a fresh copy of the first default-flagged
// template.
func defaultTemplate() *types.ViewDescriptor {
	for i := range builtInViews {
		if builtInViews[i].IsDefault {
			return cloneView(&builtInViews[i])
		}
	}
	v := cloneView(&builtInViews[0])
	v.IsDefault = true
	return v
}

// cloneView copies a descriptor including its slices.
func cloneView(v *types.ViewDescriptor) *types.ViewDescriptor {
	c := *v
	c.Filters = append([]types.FilterCriterion{}, v.Filters...)
	c.Sorts = append([]types.SortCriterion{}, v.Sorts...)
	c.VisibleFields = append([]string{}, v.VisibleFields...)
	return &c
}
