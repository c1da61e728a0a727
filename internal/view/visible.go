package view

import (
	"maps"

	"github.com/mesh-intelligence/canvasboard/internal/fieldpath"
	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

// ApplyVisibleFields trims each record to the listed fields plus "id". A
// dotted field keeps only that leaf inside its nested objects. An empty
// field list returns records unchanged. Source records are not modified.
func ApplyVisibleFields(records []types.Record, fields []string) []types.Record {
	if len(fields) == 0 {
		return records
	}
	out := make([]types.Record, len(records))
	for i, r := range records {
		trimmed := types.Record{}
		if id, ok := r["id"]; ok {
			trimmed["id"] = id
		}
		for _, f := range fields {
			v, ok := fieldpath.Lookup(r, f)
			if !ok {
				continue
			}
			setPath(trimmed, fieldpath.Split(f), v)
		}
		out[i] = trimmed
	}
	return out
}

func setPath(dst map[string]any, segs []string, v any) {
	for _, seg := range segs[:len(segs)-1] {
		next, ok := dst[seg].(map[string]any)
		if ok {
			next = maps.Clone(next)
		} else {
			next = map[string]any{}
		}
		dst[seg] = next
		dst = next
	}
	dst[segs[len(segs)-1]] = v
}
