package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/canvasboard/internal/sqlite"
	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

func setupConfig(t *testing.T) Config {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b := sqlite.NewBackend(sqlite.WithLogger(logger))
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })
	return Config{Addr: "127.0.0.1:0", Board: b, PageSize: 10, Logger: logger}
}

func TestRouter(t *testing.T) {
	h := NewRouter(setupConfig(t))

	tests := []struct {
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{http.MethodGet, "/healthz", http.StatusOK, `"status":"ok"`},
		{http.MethodGet, "/api/views/default", http.StatusOK, `"All Personas"`},
		{http.MethodGet, "/api/views", http.StatusOK, `"success":true`},
		{http.MethodGet, "/api/segments", http.StatusOK, `"data":[]`},
		{http.MethodGet, "/api/personas", http.StatusOK, `"success":true`},
		{http.MethodGet, "/api/value-propositions", http.StatusOK, `"success":true`},
		{http.MethodGet, "/api/business-models", http.StatusOK, `"success":true`},
		{http.MethodGet, "/api/options/PERSONAS?path=name", http.StatusOK, `"success":true`},
		{http.MethodGet, "/api/business-models/missing", http.StatusNotFound, `"success":false`},
		{http.MethodGet, "/metrics", http.StatusOK, "canvas_http_requests_total"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := setupConfig(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
