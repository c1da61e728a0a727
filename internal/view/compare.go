package view

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mesh-intelligence/canvasboard/internal/fieldpath"
	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// compareValues orders a against b as the given field type. The boolean is
// false when the values cannot be compared that way; text comparison always
// succeeds for non-nil values.
func compareValues(a, b any, typ types.FieldType) (int, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	if typ == "" || typ == types.FieldList {
		typ = inferType(a, b)
	}
	switch typ {
	case types.FieldNumber:
		x, okA := toNumber(a)
		y, okB := toNumber(b)
		if okA && okB {
			return cmp.Compare(x, y), true
		}
	case types.FieldDate:
		x, okA := toTime(a)
		y, okB := toTime(b)
		if okA && okB {
			return x.Compare(y), true
		}
	case types.FieldBoolean:
		x, okA := a.(bool)
		y, okB := b.(bool)
		if okA && okB {
			return compareBool(x, y), true
		}
	}
	return strings.Compare(strings.ToLower(toText(a)), strings.ToLower(toText(b))), true
}

// equalValues reports whether a and b are the same value under typ. Text is
// compared exactly.
func equalValues(a, b any, typ types.FieldType) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if typ == "" || typ == types.FieldList {
		typ = inferType(a, b)
	}
	switch typ {
	case types.FieldNumber, types.FieldDate, types.FieldBoolean:
		if c, ok := compareValues(a, b, typ); ok {
			return c == 0
		}
	}
	return toText(a) == toText(b)
}

func inferType(a, b any) types.FieldType {
	_, numA := toNumber(a)
	_, numB := toNumber(b)
	if numA && numB && (isNumeric(a) || isNumeric(b)) {
		return types.FieldNumber
	}
	_, boolA := a.(bool)
	_, boolB := b.(bool)
	if boolA && boolB {
		return types.FieldBoolean
	}
	if isDateLike(a) && isDateLike(b) {
		return types.FieldDate
	}
	return types.FieldText
}

func isNumeric(v any) bool {
	switch v.(type) {
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number:
		return true
	}
	return false
}

func isDateLike(v any) bool {
	switch x := v.(type) {
	case time.Time:
		return true
	case string:
		// Require a date-shaped prefix so plain words and numbers stay text.
		if len(x) < len("2006-01-02") || x[4] != '-' {
			return false
		}
		_, ok := toTime(x)
		return ok
	}
	return false
}

func toNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil && !math.IsNaN(f)
	}
	return 0, false
}

func toTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, x); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func toText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

// isEmptyValue reports whether a resolved value counts as empty: missing,
// the empty string, or a list with no elements.
func isEmptyValue(v any, found bool) bool {
	if !found || v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	if list, ok := fieldpath.AsList(v); ok {
		return len(list) == 0
	}
	return false
}
