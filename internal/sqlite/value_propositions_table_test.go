package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

func childRows(contents ...string) []types.ChildRow {
	out := make([]types.ChildRow, len(contents))
	for i, c := range contents {
		out[i] = types.ChildRow{Content: c}
	}
	return out
}

func contents(rows []types.ChildRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Content
	}
	return out
}

func orders(rows []types.ChildRow) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		if r.Order == nil {
			out[i] = -1
			continue
		}
		out[i] = *r.Order
	}
	return out
}

func createValueProposition(t *testing.T, b *Backend, vp *types.ValueProposition) string {
	t.Helper()
	id, err := b.ValuePropositions().Create(context.Background(), vp)
	require.NoError(t, err)
	return id
}

func countChildren(t *testing.T, b *Backend, kind types.ChildKind, parentID string) int {
	t.Helper()
	var n int
	require.NoError(t, b.db.QueryRow(
		"SELECT COUNT(*) FROM "+childTables[kind]+" WHERE value_proposition_id = ?", parentID).Scan(&n))
	return n
}

func TestValuePropositionCreate(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	vp := &types.ValueProposition{
		Name:         "Fast lunch",
		Tags:         []string{"food"},
		CustomerJobs: childRows("eat quickly", "stay healthy"),
		Statements:   childRows("Lunch in five minutes"),
	}
	id := createValueProposition(t, b, vp)
	assert.Equal(t, id, vp.ID)
	require.Len(t, vp.CustomerJobs, 2)
	assert.NotEmpty(t, vp.CustomerJobs[0].ID, "create fills in stored rows")

	got, err := b.ValuePropositions().Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"eat quickly", "stay healthy"}, contents(got.CustomerJobs))
	assert.Equal(t, []int{0, 1}, orders(got.CustomerJobs))
	assert.Equal(t, []string{"Lunch in five minutes"}, contents(got.Statements))
	assert.Nil(t, got.Statements[0].Order, "statements carry no order")
	assert.NotNil(t, got.GainCreators)
	assert.Empty(t, got.GainCreators)
	assert.Equal(t, []string{"food"}, got.Tags)
}

func TestValuePropositionCreateValidation(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	_, err := b.ValuePropositions().Create(ctx, &types.ValueProposition{})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = b.ValuePropositions().Create(ctx, &types.ValueProposition{
		Name:          "Blank row",
		PainRelievers: []types.ChildRow{{Content: "  "}},
	})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = b.ValuePropositions().Create(ctx, &types.ValueProposition{Name: "Orphan", SegmentID: "missing"})
	assert.ErrorIs(t, err, types.ErrInvalidOperation)
}

func TestValuePropositionReplace(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		check func(t *testing.T, b *Backend, id string)
	}{
		{
			name: "rows are stored in payload order with order equal to index",
			check: func(t *testing.T, b *Backend, id string) {
				jobs := childRows("a", "b", "c")
				got, err := b.ValuePropositions().Update(ctx, id, types.ValuePropositionPatch{CustomerJobs: &jobs})
				require.NoError(t, err)
				assert.Equal(t, []string{"a", "b", "c"}, contents(got.CustomerJobs))
				assert.Equal(t, []int{0, 1, 2}, orders(got.CustomerJobs))

				stored, err := b.ValuePropositions().Get(ctx, id)
				require.NoError(t, err)
				assert.Equal(t, []string{"a", "b", "c"}, contents(stored.CustomerJobs))
				assert.Equal(t, []int{0, 1, 2}, orders(stored.CustomerJobs))
			},
		},
		{
			name: "reordering rewrites positions",
			check: func(t *testing.T, b *Backend, id string) {
				reordered := childRows("second", "first")
				_, err := b.ValuePropositions().Update(ctx, id, types.ValuePropositionPatch{CustomerPains: &reordered})
				require.NoError(t, err)

				stored, err := b.ValuePropositions().Get(ctx, id)
				require.NoError(t, err)
				assert.Equal(t, []string{"second", "first"}, contents(stored.CustomerPains))
				assert.Equal(t, []int{0, 1}, orders(stored.CustomerPains))
			},
		},
		{
			name: "an empty payload deletes every row of that kind",
			check: func(t *testing.T, b *Backend, id string) {
				empty := []types.ChildRow{}
				_, err := b.ValuePropositions().Update(ctx, id, types.ValuePropositionPatch{CustomerPains: &empty})
				require.NoError(t, err)
				assert.Zero(t, countChildren(t, b, types.ChildCustomerPains, id))
			},
		},
		{
			name: "absent kinds are untouched",
			check: func(t *testing.T, b *Backend, id string) {
				before, err := b.ValuePropositions().Get(ctx, id)
				require.NoError(t, err)

				relievers := childRows("cheaper")
				_, err = b.ValuePropositions().Update(ctx, id, types.ValuePropositionPatch{PainRelievers: &relievers})
				require.NoError(t, err)

				after, err := b.ValuePropositions().Get(ctx, id)
				require.NoError(t, err)
				assert.Equal(t, before.CustomerPains, after.CustomerPains)
				assert.Equal(t, before.Statements, after.Statements)
				assert.Equal(t, before.Name, after.Name)
				assert.Equal(t, []string{"cheaper"}, contents(after.PainRelievers))
			},
		},
		{
			name: "statements are replaced without positions",
			check: func(t *testing.T, b *Backend, id string) {
				statements := childRows("one", "two")
				got, err := b.ValuePropositions().Update(ctx, id, types.ValuePropositionPatch{Statements: &statements})
				require.NoError(t, err)
				assert.Equal(t, []string{"one", "two"}, contents(got.Statements))
				assert.Equal(t, []int{-1, -1}, orders(got.Statements))
			},
		},
		{
			name: "scalar fields and several kinds change together",
			check: func(t *testing.T, b *Backend, id string) {
				name := "Renamed"
				jobs := childRows("x")
				gains := childRows("y", "z")
				got, err := b.ValuePropositions().Update(ctx, id, types.ValuePropositionPatch{
					Name:         &name,
					CustomerJobs: &jobs,
					GainCreators: &gains,
				})
				require.NoError(t, err)
				assert.Equal(t, "Renamed", got.Name)
				assert.Equal(t, []string{"x"}, contents(got.CustomerJobs))
				assert.Equal(t, []string{"y", "z"}, contents(got.GainCreators))
			},
		},
		{
			name: "a failure mid-transaction leaves the prior state",
			check: func(t *testing.T, b *Backend, id string) {
				before, err := b.ValuePropositions().Get(ctx, id)
				require.NoError(t, err)

				name := "Should not stick"
				jobs := childRows("new job")
				products := childRows("p", "q")
				// Inserts into products_services abort after the parent update
				// and the jobs replacement ran.
				db, err := b.conn()
				require.NoError(t, err)
				_, err = db.ExecContext(ctx, `CREATE TEMP TRIGGER reject_products
					BEFORE INSERT ON products_services
					BEGIN SELECT RAISE(ABORT, 'products rejected'); END`)
				require.NoError(t, err)

				_, err = b.ValuePropositions().Update(ctx, id, types.ValuePropositionPatch{
					Name:             &name,
					CustomerJobs:     &jobs,
					ProductsServices: &products,
				})
				require.Error(t, err)
				assert.True(t, errors.Is(err, types.ErrTransactionFailure), "got %v", err)

				after, err := b.ValuePropositions().Get(ctx, id)
				require.NoError(t, err)
				assert.Equal(t, before.Name, after.Name)
				assert.Equal(t, contents(before.CustomerJobs), contents(after.CustomerJobs))
				assert.Equal(t, contents(before.ProductsServices), contents(after.ProductsServices))
			},
		},
		{
			name: "resubmitting stored rows keeps their ids",
			check: func(t *testing.T, b *Backend, id string) {
				before, err := b.ValuePropositions().Get(ctx, id)
				require.NoError(t, err)
				pains := before.CustomerPains
				pains[0], pains[1] = pains[1], pains[0]

				got, err := b.ValuePropositions().Update(ctx, id, types.ValuePropositionPatch{CustomerPains: &pains})
				require.NoError(t, err)
				assert.Equal(t, before.CustomerPains[0].ID, got.CustomerPains[0].ID)
				assert.Equal(t, []int{0, 1}, orders(got.CustomerPains))
			},
		},
		{
			name: "repeated ids in one payload get fresh ids",
			check: func(t *testing.T, b *Backend, id string) {
				before, err := b.ValuePropositions().Get(ctx, id)
				require.NoError(t, err)
				kept := before.Statements[0].ID
				statements := []types.ChildRow{
					{ID: kept, Content: "a"},
					{ID: kept, Content: "b"},
					{ID: "x", Content: "c"},
					{ID: "x", Content: "d"},
				}

				got, err := b.ValuePropositions().Update(ctx, id, types.ValuePropositionPatch{Statements: &statements})
				require.NoError(t, err)
				require.Len(t, got.Statements, 4)
				ids := map[string]bool{}
				for _, row := range got.Statements {
					ids[row.ID] = true
				}
				assert.Len(t, ids, 4)
				assert.True(t, ids[kept])
				assert.False(t, ids["x"], "ids the canvas never owned are replaced")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := setupBackend(t)
			id := createValueProposition(t, b, &types.ValueProposition{
				Name:             "Canvas",
				CustomerJobs:     childRows("j1", "j2"),
				CustomerPains:    childRows("first", "second"),
				ProductsServices: childRows("app"),
				Statements:       childRows("We help"),
			})
			tt.check(t, b, id)
		})
	}
}

func TestValuePropositionCopyChildrenAcrossCanvases(t *testing.T) {
	ctx := context.Background()
	b := setupBackend(t)
	srcID := createValueProposition(t, b, &types.ValueProposition{
		Name:         "A",
		CustomerJobs: childRows("j1", "j2"),
	})
	dstID := createValueProposition(t, b, &types.ValueProposition{Name: "B"})

	src, err := b.ValuePropositions().Get(ctx, srcID)
	require.NoError(t, err)
	jobs := src.CustomerJobs

	dst, err := b.ValuePropositions().Update(ctx, dstID, types.ValuePropositionPatch{CustomerJobs: &jobs})
	require.NoError(t, err)
	assert.Equal(t, []string{"j1", "j2"}, contents(dst.CustomerJobs))
	for i, row := range dst.CustomerJobs {
		assert.NotEqual(t, src.CustomerJobs[i].ID, row.ID)
	}

	src, err = b.ValuePropositions().Get(ctx, srcID)
	require.NoError(t, err)
	assert.Equal(t, []string{"j1", "j2"}, contents(src.CustomerJobs), "source rows are untouched")
	assert.Equal(t, jobs[0].ID, src.CustomerJobs[0].ID)
}

func TestValuePropositionUpdateMissingParent(t *testing.T) {
	b := setupBackend(t)
	jobs := childRows("a")
	_, err := b.ValuePropositions().Update(context.Background(), "missing", types.ValuePropositionPatch{CustomerJobs: &jobs})
	assert.True(t, errors.Is(err, types.ErrInvalidOperation))
	assert.True(t, errors.Is(err, types.ErrNotFound))
	assert.False(t, errors.Is(err, types.ErrTransactionFailure))

	var n int
	require.NoError(t, b.db.QueryRow("SELECT COUNT(*) FROM customer_jobs").Scan(&n))
	assert.Zero(t, n)
}

func TestValuePropositionUpdateUnknownSegment(t *testing.T) {
	b := setupBackend(t)
	id := createValueProposition(t, b, &types.ValueProposition{Name: "Canvas"})
	seg := "missing"
	_, err := b.ValuePropositions().Update(context.Background(), id, types.ValuePropositionPatch{SegmentID: &seg})
	assert.ErrorIs(t, err, types.ErrInvalidOperation)
}

func TestValuePropositionDeleteCascades(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	id := createValueProposition(t, b, &types.ValueProposition{
		Name:         "Canvas",
		CustomerJobs: childRows("a", "b"),
		Statements:   childRows("s"),
	})
	bmID, err := b.BusinessModels().Create(ctx, &types.BusinessModel{Name: "Model", ValuePropositionID: id})
	require.NoError(t, err)

	require.NoError(t, b.ValuePropositions().Delete(ctx, id))
	assert.Zero(t, countChildren(t, b, types.ChildCustomerJobs, id))
	assert.Zero(t, countChildren(t, b, types.ChildStatements, id))

	bm, err := b.BusinessModels().Get(ctx, bmID)
	require.NoError(t, err)
	assert.Empty(t, bm.ValuePropositionID)

	assert.ErrorIs(t, b.ValuePropositions().Delete(ctx, id), types.ErrNotFound)
}

func TestValuePropositionList(t *testing.T) {
	b := setupBackend(t)
	first := createValueProposition(t, b, &types.ValueProposition{Name: "One", CustomerJobs: childRows("a")})
	second := createValueProposition(t, b, &types.ValueProposition{Name: "Two", CustomerJobs: childRows("b", "c")})

	list, err := b.ValuePropositions().List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first, list[0].ID)
	assert.Equal(t, []string{"a"}, contents(list[0].CustomerJobs))
	assert.Equal(t, second, list[1].ID)
	assert.Equal(t, []string{"b", "c"}, contents(list[1].CustomerJobs))
	assert.Empty(t, list[1].Statements)
}
