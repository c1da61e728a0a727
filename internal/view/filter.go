package view

import (
	"strings"

	"github.com/mesh-intelligence/canvasboard/internal/fieldpath"
	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

// Filter returns the records that satisfy every criterion, in input order.
// Criteria are assumed valid; see ValidateDescriptor.
func Filter(records []types.Record, criteria []types.FilterCriterion, fieldTypes map[string]types.FieldType) []types.Record {
	out := make([]types.Record, 0, len(records))
	for _, r := range records {
		if matchesAll(r, criteria, fieldTypes) {
			out = append(out, r)
		}
	}
	return out
}

func matchesAll(r types.Record, criteria []types.FilterCriterion, fieldTypes map[string]types.FieldType) bool {
	for _, c := range criteria {
		if !Matches(r, c, fieldTypes[c.Field]) {
			return false
		}
	}
	return true
}

// Matches evaluates one criterion against a record. Against an array-valued
// field a positive operator holds when any element matches; a negated
// operator (neq, not_contains, not_in) holds when no element matches.
func Matches(r types.Record, c types.FilterCriterion, typ types.FieldType) bool {
	v, found := fieldpath.Lookup(r, c.Field)

	switch c.Operator {
	case types.OpIsEmpty:
		return isEmptyValue(v, found)
	case types.OpIsNotEmpty:
		return !isEmptyValue(v, found)
	}

	positive := positiveOf(c.Operator)
	var hit bool
	if list, ok := fieldpath.AsList(v); ok {
		for _, elem := range list {
			if matchScalar(elem, positive, c, typ) {
				hit = true
				break
			}
		}
	} else if found {
		hit = matchScalar(v, positive, c, typ)
	}

	if c.Operator.Negated() {
		return !hit
	}
	return hit
}

func positiveOf(op types.FilterOperator) types.FilterOperator {
	switch op {
	case types.OpNeq:
		return types.OpEq
	case types.OpNotContains:
		return types.OpContains
	case types.OpNotIn:
		return types.OpIn
	}
	return op
}

func matchScalar(v any, op types.FilterOperator, c types.FilterCriterion, typ types.FieldType) bool {
	if v == nil {
		return false
	}
	switch op {
	case types.OpEq:
		return equalValues(v, c.Value, typ)
	case types.OpIn:
		for _, want := range c.Values {
			if equalValues(v, want, typ) {
				return true
			}
		}
		return false
	case types.OpContains:
		if c.Value == nil {
			return false
		}
		return strings.Contains(strings.ToLower(toText(v)), strings.ToLower(toText(c.Value)))
	case types.OpStartsWith:
		if c.Value == nil {
			return false
		}
		return strings.HasPrefix(strings.ToLower(toText(v)), strings.ToLower(toText(c.Value)))
	case types.OpGt, types.OpGte, types.OpLt, types.OpLte:
		n, ok := compareValues(v, c.Value, typ)
		if !ok {
			return false
		}
		switch op {
		case types.OpGt:
			return n > 0
		case types.OpGte:
			return n >= 0
		case types.OpLt:
			return n < 0
		default:
			return n <= 0
		}
	}
	return false
}
