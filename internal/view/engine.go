package view

import (
	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

// DefaultLimit is the page size used when the caller does not set one.
const DefaultLimit = 50

// ProjectOptions controls pagination and comparison for one projection.
type ProjectOptions struct {
	Page       int // 1-based; values below 1 select the first page
	Limit      int // page size; 0 selects DefaultLimit
	FieldTypes map[string]types.FieldType
}

// Project filters, sorts, groups, and paginates records according to d.
//
// Grouping re-flattens the sorted sequence group by group before
// pagination, so a page may span the tail of one group and the head of the
// next. A page past the end yields no items and no error. The input slice is
// not modified.
func Project(records []types.Record, d *types.ViewDescriptor, opts ProjectOptions) (*types.Projection, error) {
	if err := ValidateCriteria(d); err != nil {
		return nil, err
	}

	seq := Filter(records, d.Filters, opts.FieldTypes)
	seq = Sort(seq, d.EffectiveSorts(), opts.FieldTypes)

	var byKey map[string]*bucket
	if d.GroupBy != "" {
		var buckets []*bucket
		buckets, byKey = partition(seq, d.GroupBy)
		seq = flatten(buckets)
	}

	p := paginate(seq, opts.Page, opts.Limit)
	if d.GroupBy != "" {
		p.Groups = pageGroups(p.Items, d.GroupBy, byKey)
	}
	return p, nil
}

func paginate(seq []types.Record, page, limit int) *types.Projection {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	total := len(seq)
	totalPages := (total + limit - 1) / limit

	items := []types.Record{}
	if page <= totalPages {
		start := (page - 1) * limit
		end := min(start+limit, total)
		items = append(items, seq[start:end]...)
	}

	return &types.Projection{
		Items:           items,
		TotalCount:      total,
		Page:            page,
		Limit:           limit,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}
