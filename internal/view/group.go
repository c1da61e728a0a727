package view

import (
	"fmt"

	"github.com/mesh-intelligence/canvasboard/internal/fieldpath"
	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

// NoGroupLabel labels the group of records whose group-by field is absent or
// empty.
const NoGroupLabel = "(none)"

type bucket struct {
	key     any
	label   string
	members []types.Record
}

// partition splits records by the value at path. Buckets appear in order of
// first appearance and members keep their input order.
func partition(records []types.Record, path string) ([]*bucket, map[string]*bucket) {
	var order []*bucket
	byKey := make(map[string]*bucket)
	for _, r := range records {
		v, _ := fieldpath.Lookup(r, path)
		k := groupKey(v)
		b, ok := byKey[k]
		if !ok {
			key := v
			if k == "" {
				key = nil
			}
			b = &bucket{key: key, label: groupLabel(v)}
			byKey[k] = b
			order = append(order, b)
		}
		b.members = append(b.members, r)
	}
	return order, byKey
}

// groupKey folds absent values and empty strings into one key, "".
func groupKey(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok && s == "" {
		return ""
	}
	return fmt.Sprintf("%T:%v", v, v)
}

func groupLabel(v any) string {
	if v == nil {
		return NoGroupLabel
	}
	if s, ok := v.(string); ok && s == "" {
		return NoGroupLabel
	}
	return toText(v)
}

// flatten concatenates bucket members group by group.
func flatten(buckets []*bucket) []types.Record {
	var n int
	for _, b := range buckets {
		n += len(b.members)
	}
	out := make([]types.Record, 0, n)
	for _, b := range buckets {
		out = append(out, b.members...)
	}
	return out
}

// pageGroups builds the groups visible on one page. Items are the page's
// members of each group; Count is the group's size across the whole set.
func pageGroups(page []types.Record, path string, byKey map[string]*bucket) []types.Group {
	groups := []types.Group{}
	index := make(map[string]int)
	for _, r := range page {
		v, _ := fieldpath.Lookup(r, path)
		k := groupKey(v)
		i, ok := index[k]
		if !ok {
			b := byKey[k]
			i = len(groups)
			index[k] = i
			groups = append(groups, types.Group{Key: b.key, Label: b.label, Count: len(b.members)})
		}
		groups[i].Items = append(groups[i].Items, r)
	}
	return groups
}
