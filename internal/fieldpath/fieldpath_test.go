package fieldpath

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

func TestLookup(t *testing.T) {
	record := types.Record{
		"name": "Ana",
		"age":  34.0,
		"segment": map[string]any{
			"name":  "Youth",
			"owner": nil,
		},
		"tags":  []any{"x", "y"},
		"empty": nil,
	}

	tests := []struct {
		name      string
		path      string
		want      any
		wantFound bool
	}{
		{name: "top-level field", path: "name", want: "Ana", wantFound: true},
		{name: "nested field", path: "segment.name", want: "Youth", wantFound: true},
		{name: "array index", path: "tags.1", want: "y", wantFound: true},
		{name: "missing field", path: "location", wantFound: false},
		{name: "missing intermediate", path: "persona.name", wantFound: false},
		{name: "null intermediate", path: "segment.owner.name", wantFound: false},
		{name: "null leaf", path: "empty", wantFound: false},
		{name: "scalar intermediate", path: "name.first", wantFound: false},
		{name: "index out of range", path: "tags.5", wantFound: false},
		{name: "non-numeric index", path: "tags.first", wantFound: false},
		{name: "empty path", path: "", wantFound: false},
		{name: "empty segment", path: "segment..name", wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := Lookup(record, tt.path)
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.Equal(t, tt.want, got)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestResolveNeverPanics(t *testing.T) {
	inputs := []any{
		nil,
		"scalar",
		42,
		[]any{nil, map[string]any{"a": nil}},
		map[string]any{"a": []any{map[string]any{"b": "c"}}},
		map[string]string{"a": "typed maps are opaque"},
	}
	paths := []string{"", ".", "a", "a.b", "a.0.b", "0", "a.0", "..", "a.-1"}

	for _, in := range inputs {
		for _, p := range paths {
			assert.NotPanics(t, func() { Resolve(in, p) }, "input %v path %q", in, p)
		}
	}
	assert.Equal(t, "c", Resolve(map[string]any{"a": []any{map[string]any{"b": "c"}}}, "a.0.b"))
}

func TestValidate(t *testing.T) {
	valid := []string{"name", "segment.name", "customerJobs.content", "tags.0"}
	for _, p := range valid {
		assert.NoError(t, Validate(p), p)
	}

	invalid := []string{"", ".", "a.", ".a", "a..b", "a b", "segment.\tname"}
	for _, p := range invalid {
		err := Validate(p)
		assert.True(t, errors.Is(err, types.ErrValidation), "%q should be rejected", p)
	}
}

func TestAsList(t *testing.T) {
	list, ok := AsList([]string{"a", "b"})
	assert.True(t, ok)
	assert.Equal(t, []any{"a", "b"}, list)

	list, ok = AsList([]map[string]any{{"k": 1}})
	assert.True(t, ok)
	assert.Len(t, list, 1)

	_, ok = AsList("a")
	assert.False(t, ok)
	_, ok = AsList(nil)
	assert.False(t, ok)

	assert.Equal(t, "b", Resolve(map[string]any{"tags": []string{"a", "b"}}, "tags.1"))
}
