package sqlite

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

// Records returns every entity of source as a JSON-shaped record. Personas
// and value propositions carry their segment under "segment"; business
// models carry a summary of their value proposition under
// "valueProposition". A missing reference is a nil value.
func (b *Backend) Records(ctx context.Context, source types.Source) ([]types.Record, error) {
	db, err := b.conn()
	if err != nil {
		return nil, err
	}

	switch source {
	case types.SourceCustomerSegments:
		segments, err := listSegments(ctx, db)
		if err != nil {
			return nil, err
		}
		return toRecords(segments, nil)

	case types.SourcePersonas:
		personas, err := listPersonas(ctx, db)
		if err != nil {
			return nil, err
		}
		segments, err := segmentRecords(ctx, db)
		if err != nil {
			return nil, err
		}
		return toRecords(personas, func(p *types.Persona, r types.Record) {
			r["segment"] = lookupRecord(segments, p.SegmentID)
		})

	case types.SourceValuePropositions:
		vps, err := listValuePropositions(ctx, db)
		if err != nil {
			return nil, err
		}
		segments, err := segmentRecords(ctx, db)
		if err != nil {
			return nil, err
		}
		return toRecords(vps, func(vp *types.ValueProposition, r types.Record) {
			r["segment"] = lookupRecord(segments, vp.SegmentID)
		})

	case types.SourceBusinessModels:
		bms, err := listBusinessModels(ctx, db)
		if err != nil {
			return nil, err
		}
		vps, err := listValuePropositions(ctx, db)
		if err != nil {
			return nil, err
		}
		summaries := make(map[string]types.Record, len(vps))
		for _, vp := range vps {
			summaries[vp.ID] = types.Record{
				"id":          vp.ID,
				"name":        vp.Name,
				"description": vp.Description,
				"segmentId":   vp.SegmentID,
			}
		}
		return toRecords(bms, func(bm *types.BusinessModel, r types.Record) {
			r["valueProposition"] = lookupRecord(summaries, bm.ValuePropositionID)
		})
	}
	return nil, fmt.Errorf("%w: unknown source %q", types.ErrValidation, source)
}

func toRecords[T any](entities []T, decorate func(T, types.Record)) ([]types.Record, error) {
	out := make([]types.Record, 0, len(entities))
	for _, e := range entities {
		r, err := toRecord(e)
		if err != nil {
			return nil, err
		}
		if decorate != nil {
			decorate(e, r)
		}
		out = append(out, r)
	}
	return out, nil
}

func segmentRecords(ctx context.Context, q querier) (map[string]types.Record, error) {
	segments, err := listSegments(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make(map[string]types.Record, len(segments))
	for _, s := range segments {
		r, err := toRecord(s)
		if err != nil {
			return nil, err
		}
		out[s.ID] = r
	}
	return out, nil
}

// lookupRecord returns the record for id, or an untyped nil so the field
// serializes as null and resolves as absent.
func lookupRecord(records map[string]types.Record, id string) any {
	if r, ok := records[id]; ok && id != "" {
		return r
	}
	return nil
}
