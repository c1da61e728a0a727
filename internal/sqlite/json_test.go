package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name    string
		in      sql.NullString
		want    []string
		wantErr bool
	}{
		{"null column", sql.NullString{}, []string{}, false},
		{"empty text", sql.NullString{String: "", Valid: true}, []string{}, false},
		{"json null", sql.NullString{String: "null", Valid: true}, []string{}, false},
		{"empty array", sql.NullString{String: "[]", Valid: true}, []string{}, false},
		{"values", sql.NullString{String: `["a","b"]`, Valid: true}, []string{"a", "b"}, false},
		{"malformed", sql.NullString{String: `["a",`, Valid: true}, nil, true},
		{"wrong shape", sql.NullString{String: `{"a":1}`, Valid: true}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeList[string]("tags", tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrValidation)
				assert.ErrorContains(t, err, "tags")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeListNil(t *testing.T) {
	s, err := encodeList[string](nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", s)
}

func TestFormatTimeSortsAsText(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	whole := formatTime(base)
	fraction := formatTime(base.Add(100 * time.Millisecond))
	assert.Less(t, whole, fraction)

	parsed, err := parseTime(fraction)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(base.Add(100*time.Millisecond)))

	_, err = parseTime("yesterday")
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestCorruptListColumnSurfacesValidation(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	id, err := b.Personas().Create(ctx, &types.Persona{Name: "Ada", Goals: []string{"save"}})
	require.NoError(t, err)
	_, err = b.db.Exec("UPDATE personas SET goals = '{broken' WHERE persona_id = ?", id)
	require.NoError(t, err)

	_, err = b.Personas().Get(ctx, id)
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.ErrorContains(t, err, "goals")

	_, err = b.Records(ctx, types.SourcePersonas)
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestToRecord(t *testing.T) {
	r, err := toRecord(&types.Persona{ID: "p1", Name: "Ada", Age: 19, Goals: []string{"save"}})
	require.NoError(t, err)
	assert.Equal(t, "Ada", r["name"])
	assert.Equal(t, float64(19), r["age"])
	assert.Equal(t, []any{"save"}, r["goals"])
	_, hasSegment := r["segmentId"]
	assert.False(t, hasSegment)
}
