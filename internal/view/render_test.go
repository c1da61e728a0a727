package view

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

type fakeSource struct {
	records map[types.Source][]types.Record
	err     error
}

func (f fakeSource) Records(_ context.Context, source types.Source) ([]types.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records[source], nil
}

func TestRender(t *testing.T) {
	rs := fakeSource{records: map[types.Source][]types.Record{types.SourcePersonas: personaFixture()}}
	d := &types.ViewDescriptor{
		Source:        types.SourcePersonas,
		SortBy:        "age",
		GroupBy:       "segment.name",
		VisibleFields: []string{"name", "segment.name"},
	}

	p, err := Render(context.Background(), rs, d, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, p.TotalCount)
	require.Len(t, p.Items, 3)
	for _, item := range p.Items {
		assert.NotContains(t, item, "age")
		assert.Contains(t, item, "id")
	}
	require.NotEmpty(t, p.Groups)
	for _, g := range p.Groups {
		for _, item := range g.Items {
			assert.NotContains(t, item, "tags")
		}
	}

	_, err = Render(context.Background(), fakeSource{err: errors.New("boom")}, d, 1, 3)
	assert.EqualError(t, err, "boom")
}

func TestRenderWindow(t *testing.T) {
	rs := fakeSource{records: map[types.Source][]types.Record{types.SourcePersonas: personaFixture()}}
	d := &types.ViewDescriptor{Source: types.SourcePersonas, SortBy: "name"}

	res, err := RenderWindow(context.Background(), rs, d, WindowRequest{
		ScrollOffset: 40,
		ViewportSize: 40,
		ItemSize:     20,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, res.TotalCount)
	assert.Equal(t, Window{Start: 2, End: 4}, res.Window)
	assert.Equal(t, []string{"p3", "p4"}, ids(res.Items))

	empty := fakeSource{records: map[types.Source][]types.Record{}}
	res, err = RenderWindow(context.Background(), empty, d, WindowRequest{ViewportSize: 100, ItemSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 0, res.TotalCount)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
}
