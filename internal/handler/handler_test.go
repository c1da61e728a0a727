package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/canvasboard/internal/sqlite"
	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func setupRouter(t *testing.T) (http.Handler, *sqlite.Backend) {
	t.Helper()
	b := sqlite.NewBackend(sqlite.WithLogger(discard))
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })

	r := chi.NewRouter()
	r.Use(Recovery(discard))
	r.Route("/api/views", NewViewHandler(b, 2, discard).Routes)
	r.Get("/api/options/{source}", NewOptionsHandler(b, discard).Options)
	r.Route("/api/segments", NewEntityHandler[types.CustomerSegment, types.SegmentPatch](b.Segments(), discard).Routes)
	r.Route("/api/personas", NewEntityHandler[types.Persona, types.PersonaPatch](b.Personas(), discard).Routes)
	r.Route("/api/value-propositions",
		NewEntityHandler[types.ValueProposition, types.ValuePropositionPatch](b.ValuePropositions(), discard).Routes)
	return r, b
}

func do(t *testing.T, h http.Handler, method, path string, body any) (int, response) {
	t.Helper()
	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(v)
	default:
		data, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "body: %s", rec.Body.String())
	return rec.Code, resp
}

func decodeData[T any](t *testing.T, resp response) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Data, &v))
	return v
}

func seedPersonas(t *testing.T, b *sqlite.Backend) {
	t.Helper()
	ctx := context.Background()
	youth, err := b.Segments().Create(ctx, &types.CustomerSegment{Name: "Youth"})
	require.NoError(t, err)
	seniors, err := b.Segments().Create(ctx, &types.CustomerSegment{Name: "Seniors"})
	require.NoError(t, err)
	for _, p := range []*types.Persona{
		{Name: "Ada", Age: 19, SegmentID: youth, Tags: []string{"student"}},
		{Name: "Bo", Age: 71, SegmentID: seniors, Tags: []string{"retired", "golf"}},
		{Name: "Cy", Age: 24, SegmentID: youth, Tags: []string{"student", "gamer"}},
		{Name: "Di", Age: 17, SegmentID: youth},
		{Name: "Ed", Age: 30},
	} {
		_, err := b.Personas().Create(ctx, p)
		require.NoError(t, err)
	}
}

func TestViewsAPI(t *testing.T) {
	h, _ := setupRouter(t)

	code, resp := do(t, h, http.MethodGet, "/api/views/default", nil)
	require.Equal(t, http.StatusOK, code)
	def := decodeData[types.ViewDescriptor](t, resp)
	assert.Equal(t, "All Personas", def.Name)
	assert.True(t, def.IsDefault)

	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{"malformed body", `{"name":`, http.StatusBadRequest},
		{"missing name", map[string]any{"source": "PERSONAS"}, http.StatusBadRequest},
		{"bad layout", map[string]any{"name": "x", "source": "PERSONAS", "layout": "GRID"}, http.StatusBadRequest},
		{"bad filter path", map[string]any{
			"name": "x", "source": "PERSONAS",
			"filters": []map[string]any{{"field": "segment..name", "operator": "eq", "value": "Youth"}},
		}, http.StatusBadRequest},
		{"unknown source", map[string]any{"name": "x", "source": "WIDGETS"}, http.StatusBadRequest},
		{"valid", map[string]any{"name": "Young", "source": "PERSONAS", "layout": "TABLE"}, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := do(t, h, http.MethodPost, "/api/views", tt.body)
			assert.Equal(t, tt.wantStatus, code, resp.Error)
			assert.Equal(t, tt.wantStatus < 300, resp.Success)
			if !resp.Success {
				assert.NotEmpty(t, resp.Error)
			}
		})
	}

	code, resp = do(t, h, http.MethodPost, "/api/views", map[string]any{"name": "Mine", "source": "PERSONAS"})
	require.Equal(t, http.StatusCreated, code)
	created := decodeData[types.ViewDescriptor](t, resp)
	assert.Equal(t, types.LayoutCard, created.Layout)

	code, resp = do(t, h, http.MethodPut, "/api/views/"+created.ID, map[string]any{"name": "Renamed", "visibleFields": []string{}})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Renamed", decodeData[types.ViewDescriptor](t, resp).Name)

	code, resp = do(t, h, http.MethodPost, "/api/views/"+created.ID+"/default", nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, decodeData[types.ViewDescriptor](t, resp).IsDefault)

	code, resp = do(t, h, http.MethodDelete, "/api/views/"+created.ID, nil)
	assert.Equal(t, http.StatusBadRequest, code, "the default cannot be deleted")
	assert.False(t, resp.Success)

	code, _ = do(t, h, http.MethodDelete, "/api/views/"+def.ID, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, h, http.MethodGet, "/api/views/missing", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, h, http.MethodPost, "/api/views/missing/default", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, resp = do(t, h, http.MethodGet, "/api/views?source=PERSONAS", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decodeData[[]types.ViewDescriptor](t, resp), 2)

	code, _ = do(t, h, http.MethodGet, "/api/views?source=WIDGETS", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestProjectionAPI(t *testing.T) {
	h, b := setupRouter(t)
	seedPersonas(t, b)

	id, err := b.Views().Create(context.Background(), &types.ViewDescriptor{
		Name:          "Youth by age",
		Source:        types.SourcePersonas,
		Layout:        types.LayoutTable,
		Filters:       []types.FilterCriterion{{Field: "segment.name", Operator: types.OpEq, Value: "Youth"}},
		SortBy:        "age",
		SortOrder:     types.SortDesc,
		VisibleFields: []string{"name"},
	})
	require.NoError(t, err)

	code, resp := do(t, h, http.MethodGet, "/api/views/"+id+"/projection", nil)
	require.Equal(t, http.StatusOK, code, resp.Error)
	p := decodeData[types.Projection](t, resp)
	assert.Equal(t, 3, p.TotalCount)
	assert.Equal(t, 2, p.Limit, "handler page size applies when limit is absent")
	require.Len(t, p.Items, 2)
	assert.Equal(t, "Cy", p.Items[0]["name"])
	assert.NotContains(t, p.Items[0], "age")

	code, resp = do(t, h, http.MethodGet, "/api/views/"+id+"/projection?page=2&limit=2", nil)
	require.Equal(t, http.StatusOK, code)
	p = decodeData[types.Projection](t, resp)
	require.Len(t, p.Items, 1)
	assert.Equal(t, "Di", p.Items[0]["name"])
	assert.False(t, p.HasNextPage)

	code, resp = do(t, h, http.MethodGet, "/api/views/"+id+"/projection?page=9", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decodeData[types.Projection](t, resp).Items)

	code, _ = do(t, h, http.MethodGet, "/api/views/"+id+"/projection?page=abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = do(t, h, http.MethodGet, "/api/views/missing/projection", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestWindowAPI(t *testing.T) {
	h, b := setupRouter(t)
	seedPersonas(t, b)
	id, err := b.Views().Create(context.Background(), &types.ViewDescriptor{
		Name:   "By name",
		Source: types.SourcePersonas,
		Layout: types.LayoutTable,
		SortBy: "name",
	})
	require.NoError(t, err)

	code, resp := do(t, h, http.MethodGet, "/api/views/"+id+"/window?offset=20&viewport=40&item_size=20&overscan=1", nil)
	require.Equal(t, http.StatusOK, code, resp.Error)
	var res struct {
		Window     struct{ Start, End int } `json:"window"`
		TotalCount int                      `json:"totalCount"`
		Items      []types.Record           `json:"items"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &res))
	assert.Equal(t, 5, res.TotalCount)
	assert.Equal(t, 0, res.Window.Start)
	assert.Equal(t, 4, res.Window.End)
	require.Len(t, res.Items, 4)
	assert.Equal(t, "Ada", res.Items[0]["name"])

	code, _ = do(t, h, http.MethodGet, "/api/views/"+id+"/window?viewport=40", nil)
	assert.Equal(t, http.StatusBadRequest, code, "item_size is required")
	code, _ = do(t, h, http.MethodGet, "/api/views/"+id+"/window?item_size=20&offset=-5", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestOptionsAPI(t *testing.T) {
	h, b := setupRouter(t)
	seedPersonas(t, b)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		check      func(t *testing.T, opts []types.Option)
	}{
		{
			name:       "unique segment names with labels",
			path:       "/api/options/PERSONAS?path=segment.id&label=segment.name&order=count",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, opts []types.Option) {
				require.Len(t, opts, 2)
				assert.Equal(t, "Youth", opts[0].Label)
				assert.Equal(t, 3, opts[0].Count)
				assert.Equal(t, "Seniors", opts[1].Label)
			},
		},
		{
			name:       "flattened tags",
			path:       "/api/options/PERSONAS?path=tags&mode=flattened",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, opts []types.Option) {
				counts := map[string]int{}
				for _, o := range opts {
					counts[o.Label] = o.Count
				}
				assert.Equal(t, map[string]int{"student": 2, "retired": 1, "golf": 1, "gamer": 1}, counts)
			},
		},
		{name: "missing path", path: "/api/options/PERSONAS", wantStatus: http.StatusBadRequest},
		{name: "malformed path", path: "/api/options/PERSONAS?path=a..b", wantStatus: http.StatusBadRequest},
		{name: "unknown mode", path: "/api/options/PERSONAS?path=tags&mode=deep", wantStatus: http.StatusBadRequest},
		{name: "flattened path too deep", path: "/api/options/PERSONAS?path=a.b.c&mode=flattened", wantStatus: http.StatusBadRequest},
		{name: "unknown source", path: "/api/options/WIDGETS?path=name", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := do(t, h, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.wantStatus, code, resp.Error)
			if tt.check != nil {
				tt.check(t, decodeData[[]types.Option](t, resp))
			}
		})
	}
}

func TestEntityAPI(t *testing.T) {
	h, _ := setupRouter(t)

	code, resp := do(t, h, http.MethodPost, "/api/value-propositions", map[string]any{
		"name":         "Fast lunch",
		"customerJobs": []map[string]any{{"content": "eat"}, {"content": "rest"}},
	})
	require.Equal(t, http.StatusCreated, code, resp.Error)
	vp := decodeData[types.ValueProposition](t, resp)
	require.Len(t, vp.CustomerJobs, 2)

	code, resp = do(t, h, http.MethodPut, "/api/value-propositions/"+vp.ID, map[string]any{
		"customerJobs":  []map[string]any{{"content": "c"}, {"content": "b"}, {"content": "a"}},
		"customerPains": []map[string]any{},
	})
	require.Equal(t, http.StatusOK, code, resp.Error)
	updated := decodeData[types.ValueProposition](t, resp)
	require.Len(t, updated.CustomerJobs, 3)
	for i, row := range updated.CustomerJobs {
		require.NotNil(t, row.Order)
		assert.Equal(t, i, *row.Order)
	}
	assert.Equal(t, "c", updated.CustomerJobs[0].Content)

	code, resp = do(t, h, http.MethodPut, "/api/value-propositions/missing", map[string]any{"customerJobs": []any{}})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, resp.Success)

	code, _ = do(t, h, http.MethodPut, "/api/value-propositions/"+vp.ID, `{"customerJobs": [{"content": ""}]}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, h, http.MethodPost, "/api/personas", map[string]any{"name": "Ada", "segmentId": "missing"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = do(t, h, http.MethodPost, "/api/segments", map[string]any{"name": "Youth"})
	require.Equal(t, http.StatusCreated, code)
	seg := decodeData[types.CustomerSegment](t, resp)

	code, resp = do(t, h, http.MethodGet, "/api/segments", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decodeData[[]types.CustomerSegment](t, resp), 1)

	code, _ = do(t, h, http.MethodDelete, "/api/segments/"+seg.ID, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, h, http.MethodGet, "/api/segments/"+seg.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestStoreErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", fmt.Errorf("getting view x: %w", types.ErrNotFound), http.StatusNotFound, "getting view x: not found"},
		{"missing parent", fmt.Errorf("%w: value proposition x: %w", types.ErrInvalidOperation, types.ErrNotFound), http.StatusBadRequest, ""},
		{"validation", fmt.Errorf("%w: name is required", types.ErrValidation), http.StatusBadRequest, ""},
		{"invalid id", types.ErrInvalidID, http.StatusBadRequest, ""},
		{"transaction failure", fmt.Errorf("%w: disk I/O error", types.ErrTransactionFailure), http.StatusInternalServerError, internalErrorMessage},
		{"unclassified", errors.New("database is locked"), http.StatusInternalServerError, internalErrorMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			storeErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), discard, tt.err)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, resp.Error)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(discard)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), internalErrorMessage)
}

func TestFieldPathRule(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		valid bool
	}{
		{name: "nested path", path: "segment.name", valid: true},
		{name: "empty segment", path: "segment..name", valid: false},
		{name: "trailing dot", path: "segment.", valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Var(tt.path, "fieldpath")
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
		})
	}
}
