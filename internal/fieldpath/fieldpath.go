// Package fieldpath resolves dotted field paths such as "segment.name" into
// JSON-shaped records. Resolution never fails: a missing or null intermediate
// yields "not found", so filter, sort, and facet logic stays agnostic to the
// shape of the entity behind a record.
package fieldpath

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

// Separator joins path segments.
const Separator = "."

// Split returns the segments of path.
func Split(path string) []string {
	return strings.Split(path, Separator)
}

// Validate reports whether path is well-formed: non-empty, no empty segments,
// no whitespace. Returns an error wrapping types.ErrValidation.
func Validate(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty field path", types.ErrValidation)
	}
	for _, seg := range Split(path) {
		if seg == "" {
			return fmt.Errorf("%w: field path %q has an empty segment", types.ErrValidation, path)
		}
		if strings.IndexFunc(seg, unicode.IsSpace) >= 0 {
			return fmt.Errorf("%w: field path %q contains whitespace", types.ErrValidation, path)
		}
	}
	return nil
}

// Resolve returns the value at path, or nil when any step is missing.
func Resolve(record any, path string) any {
	v, _ := Lookup(record, path)
	return v
}

// Lookup walks path through record one property access at a time. Objects
// are map[string]any; a numeric segment indexes into a list. The boolean is
// false when a segment is missing, an intermediate is nil, or an
// intermediate cannot be traversed.
func Lookup(record any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	current := record
	for _, seg := range Split(path) {
		if current == nil {
			return nil, false
		}
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			current = next
		default:
			list, ok := AsList(node)
			if !ok {
				return nil, false
			}
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(list) {
				return nil, false
			}
			current = list[i]
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

// AsList reports whether v is an ordered sequence and returns its elements.
// JSON-decoded arrays arrive as []any; records assembled in Go may carry
// []string or []map[string]any.
func AsList(v any) ([]any, bool) {
	switch list := v.(type) {
	case []any:
		return list, true
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(list))
		for i, m := range list {
			out[i] = m
		}
		return out, true
	}
	return nil, false
}
