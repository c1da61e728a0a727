// Package facet derives distinct-value options with occurrence counts from a
// record collection. Options populate filter and sort pickers.
//
// Both aggregations are pure and return options in first-encounter order.
package facet

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/mesh-intelligence/canvasboard/internal/fieldpath"
	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

// counter accumulates options keyed by value, preserving first-encounter order.
type counter struct {
	index map[string]int
	ids   map[string]bool
	out   []types.Option
}

func newCounter() *counter {
	return &counter{index: make(map[string]int), ids: make(map[string]bool)}
}

// add counts one occurrence of v. label is consulted only on first encounter.
func (c *counter) add(v any, label func() string) {
	key := valueKey(v)
	if i, ok := c.index[key]; ok {
		c.out[i].Count++
		return
	}
	// Values that print alike, such as 1 and "1", fall back to the typed key.
	id := fmt.Sprint(v)
	if c.ids[id] {
		id = key
	}
	c.ids[id] = true
	c.index[key] = len(c.out)
	c.out = append(c.out, types.Option{
		ID:    id,
		Label: label(),
		Value: v,
		Count: 1,
	})
}

func (c *counter) options() []types.Option {
	if c.out == nil {
		return []types.Option{}
	}
	return c.out
}

// AggregateUnique groups records by the value at valuePath and counts one per
// record. The label comes from labelPath on the first contributing record
// when labelPath is set, otherwise from the value itself. Falsy values (nil,
// empty string, false, zero, empty list) are excluded.
func AggregateUnique(records []types.Record, valuePath, labelPath string) []types.Option {
	c := newCounter()
	for _, r := range records {
		v, ok := fieldpath.Lookup(r, valuePath)
		if !ok || falsy(v) {
			continue
		}
		c.add(v, func() string {
			if labelPath != "" && labelPath != valuePath {
				if lv, ok := fieldpath.Lookup(r, labelPath); ok {
					return fmt.Sprint(lv)
				}
			}
			return fmt.Sprint(v)
		})
	}
	return c.options()
}

// AggregateFlattened counts values nested inside array-valued fields across
// all records, once per occurrence. For "array.property" each non-nil element
// of array contributes its property; for a bare path each scalar element of
// the list contributes itself. Paths nested deeper than one level return an
// error wrapping types.ErrValidation.
func AggregateFlattened(records []types.Record, path string) ([]types.Option, error) {
	if err := fieldpath.Validate(path); err != nil {
		return nil, err
	}
	segs := fieldpath.Split(path)
	if len(segs) > 2 {
		return nil, fmt.Errorf("%w: flattened aggregation supports one level of nesting, got %q",
			types.ErrValidation, path)
	}

	c := newCounter()
	for _, r := range records {
		list, ok := fieldpath.AsList(fieldpath.Resolve(r, segs[0]))
		if !ok {
			continue
		}
		for _, elem := range list {
			if elem == nil {
				continue
			}
			v := elem
			if len(segs) == 2 {
				v = fieldpath.Resolve(elem, segs[1])
			}
			if v == nil || v == "" {
				continue
			}
			c.add(v, func() string { return fmt.Sprint(v) })
		}
	}
	return c.options(), nil
}

// Order selects how Sort arranges options.
type Order string

// Option orderings.
const (
	OrderEncounter Order = ""
	OrderCount     Order = "count"
	OrderLabel     Order = "label"
)

// Sort orders options in place: by descending count or by case-insensitive
// label. Ties keep their encounter order.
func Sort(opts []types.Option, by Order) {
	switch by {
	case OrderCount:
		slices.SortStableFunc(opts, func(a, b types.Option) int {
			return cmp.Compare(b.Count, a.Count)
		})
	case OrderLabel:
		slices.SortStableFunc(opts, func(a, b types.Option) int {
			return strings.Compare(strings.ToLower(a.Label), strings.ToLower(b.Label))
		})
	}
}

// valueKey distinguishes values of different dynamic types that print alike,
// such as the number 1 and the string "1".
func valueKey(v any) string {
	return fmt.Sprintf("%T:%v", v, v)
}

func falsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0 || math.IsNaN(x)
	case float32:
		return x == 0
	case int:
		return x == 0
	case int64:
		return x == 0
	case int32:
		return x == 0
	}
	if list, ok := fieldpath.AsList(v); ok {
		return len(list) == 0
	}
	return false
}
