package view

import (
	"context"
	"time"

	"github.com/mesh-intelligence/canvasboard/internal/metrics"
	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

// RecordSource supplies the records of one source. types.Board satisfies it.
type RecordSource interface {
	Records(ctx context.Context, source types.Source) ([]types.Record, error)
}

// Render loads the records of d.Source, projects them with d, and trims the
// page (and every group on it) to d's visible fields.
func Render(ctx context.Context, rs RecordSource, d *types.ViewDescriptor, page, limit int) (*types.Projection, error) {
	records, err := rs.Records(ctx, d.Source)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	p, err := Project(records, d, ProjectOptions{
		Page:       page,
		Limit:      limit,
		FieldTypes: types.FieldTypes(d.Source),
	})
	if err != nil {
		return nil, err
	}
	metrics.ProjectionDuration.WithLabelValues(string(d.Source)).Observe(time.Since(start).Seconds())
	metrics.ProjectedRecords.Observe(float64(len(records)))

	p.Items = ApplyVisibleFields(p.Items, d.VisibleFields)
	for i := range p.Groups {
		p.Groups[i].Items = ApplyVisibleFields(p.Groups[i].Items, d.VisibleFields)
	}
	return p, nil
}

// WindowRequest describes the scroll state of a virtualized list.
type WindowRequest struct {
	ScrollOffset float64
	ViewportSize float64
	ItemSize     float64
	Overscan     int
}

// WindowResult is the slice of a projected sequence a client should render.
type WindowResult struct {
	Window     Window         `json:"window"`
	TotalCount int            `json:"totalCount"`
	Items      []types.Record `json:"items"`
}

// RenderWindow projects every record of d.Source as one sequence (grouped
// views stay flattened group by group) and returns the items inside the
// visible window.
func RenderWindow(ctx context.Context, rs RecordSource, d *types.ViewDescriptor, req WindowRequest) (*WindowResult, error) {
	records, err := rs.Records(ctx, d.Source)
	if err != nil {
		return nil, err
	}
	p, err := Project(records, d, ProjectOptions{
		Page:       1,
		Limit:      max(len(records), 1),
		FieldTypes: types.FieldTypes(d.Source),
	})
	if err != nil {
		return nil, err
	}

	w := VisibleWindow(req.ScrollOffset, req.ViewportSize, req.ItemSize, p.TotalCount, req.Overscan)
	items := ApplyVisibleFields(Slice(p.Items, w), d.VisibleFields)
	if items == nil {
		items = []types.Record{}
	}
	return &WindowResult{Window: w, TotalCount: p.TotalCount, Items: items}, nil
}
