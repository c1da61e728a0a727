package view

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

func TestMatches(t *testing.T) {
	rec := types.Record{
		"name":      "Ada Lovelace",
		"age":       36.0,
		"empty":     "",
		"tags":      []any{"math", "poetry"},
		"none":      []any{},
		"createdAt": "2026-03-01T09:00:00Z",
		"segment":   map[string]any{"name": "Youth"},
		"active":    true,
	}
	ft := map[string]types.FieldType{"age": types.FieldNumber, "createdAt": types.FieldDate}

	tests := []struct {
		name string
		c    types.FilterCriterion
		want bool
	}{
		{"eq text", types.FilterCriterion{Field: "name", Operator: types.OpEq, Value: "Ada Lovelace"}, true},
		{"eq is exact", types.FilterCriterion{Field: "name", Operator: types.OpEq, Value: "ada lovelace"}, false},
		{"eq nested", types.FilterCriterion{Field: "segment.name", Operator: types.OpEq, Value: "Youth"}, true},
		{"eq number from string operand", types.FilterCriterion{Field: "age", Operator: types.OpEq, Value: "36"}, true},
		{"neq", types.FilterCriterion{Field: "age", Operator: types.OpNeq, Value: 35.0}, true},
		{"neq missing field", types.FilterCriterion{Field: "missing", Operator: types.OpNeq, Value: "x"}, true},
		{"contains is case-insensitive", types.FilterCriterion{Field: "name", Operator: types.OpContains, Value: "LOVE"}, true},
		{"not_contains", types.FilterCriterion{Field: "name", Operator: types.OpNotContains, Value: "Byron"}, true},
		{"starts_with", types.FilterCriterion{Field: "name", Operator: types.OpStartsWith, Value: "ada"}, true},
		{"gt number", types.FilterCriterion{Field: "age", Operator: types.OpGt, Value: 30.0}, true},
		{"gt compares numerically", types.FilterCriterion{Field: "age", Operator: types.OpGt, Value: 100.0}, false},
		{"lte number", types.FilterCriterion{Field: "age", Operator: types.OpLte, Value: 36.0}, true},
		{"lt date", types.FilterCriterion{Field: "createdAt", Operator: types.OpLt, Value: "2026-04-01"}, true},
		{"gte date", types.FilterCriterion{Field: "createdAt", Operator: types.OpGte, Value: "2026-04-01"}, false},
		{"gt missing field", types.FilterCriterion{Field: "missing", Operator: types.OpGt, Value: 1.0}, false},
		{"in", types.FilterCriterion{Field: "segment.name", Operator: types.OpIn, Values: []any{"Seniors", "Youth"}}, true},
		{"not_in", types.FilterCriterion{Field: "segment.name", Operator: types.OpNotIn, Values: []any{"Seniors"}}, true},
		{"array eq any element", types.FilterCriterion{Field: "tags", Operator: types.OpEq, Value: "poetry"}, true},
		{"array neq no element", types.FilterCriterion{Field: "tags", Operator: types.OpNeq, Value: "poetry"}, false},
		{"array contains", types.FilterCriterion{Field: "tags", Operator: types.OpContains, Value: "poe"}, true},
		{"array not_in", types.FilterCriterion{Field: "tags", Operator: types.OpNotIn, Values: []any{"art"}}, true},
		{"is_empty on empty array", types.FilterCriterion{Field: "none", Operator: types.OpIsEmpty}, true},
		{"is_empty on empty string", types.FilterCriterion{Field: "empty", Operator: types.OpIsEmpty}, true},
		{"is_empty on missing", types.FilterCriterion{Field: "missing.deep", Operator: types.OpIsEmpty}, true},
		{"is_not_empty on array", types.FilterCriterion{Field: "tags", Operator: types.OpIsNotEmpty}, true},
		{"eq bool", types.FilterCriterion{Field: "active", Operator: types.OpEq, Value: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(rec, tt.c, ft[tt.c.Field]))
		})
	}
}

func TestFilterIsConjunctive(t *testing.T) {
	got := Filter(personaFixture(), []types.FilterCriterion{
		{Field: "tags", Operator: types.OpEq, Value: "student"},
		{Field: "segment.name", Operator: types.OpEq, Value: "Youth"},
	}, nil)
	assert.Equal(t, []string{"p1"}, ids(got))
}
