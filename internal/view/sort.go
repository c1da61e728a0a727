package view

import (
	"slices"

	"github.com/mesh-intelligence/canvasboard/internal/fieldpath"
	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

// sortKey is a record with its sort-key values resolved once up front.
type sortKey struct {
	record types.Record
	values []any
}

// Sort returns a copy of records ordered by the keys in sequence. The sort is
// stable: records equal on every key keep their input order. Missing and nil
// values sort last whatever the direction. A list-valued key sorts by its
// first element.
func Sort(records []types.Record, keys []types.SortCriterion, fieldTypes map[string]types.FieldType) []types.Record {
	out := make([]types.Record, len(records))
	if len(keys) == 0 {
		copy(out, records)
		return out
	}

	rows := make([]sortKey, len(records))
	for i, r := range records {
		values := make([]any, len(keys))
		for k, key := range keys {
			values[k] = sortValue(r, key.Field)
		}
		rows[i] = sortKey{record: r, values: values}
	}

	slices.SortStableFunc(rows, func(a, b sortKey) int {
		for k, key := range keys {
			if n := compareKey(a.values[k], b.values[k], key.Order, fieldTypes[key.Field]); n != 0 {
				return n
			}
		}
		return 0
	})

	for i, row := range rows {
		out[i] = row.record
	}
	return out
}

func sortValue(r types.Record, path string) any {
	v, ok := fieldpath.Lookup(r, path)
	if !ok {
		return nil
	}
	if list, isList := fieldpath.AsList(v); isList {
		if len(list) == 0 {
			return nil
		}
		return list[0]
	}
	return v
}

func compareKey(a, b any, order types.SortOrder, typ types.FieldType) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	n, _ := compareValues(a, b, typ)
	if order == types.SortDesc {
		return -n
	}
	return n
}
