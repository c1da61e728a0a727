// Package server assembles the HTTP handlers into a chi router and runs the
// server.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mesh-intelligence/canvasboard/internal/handler"
	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

// shutdownTimeout bounds how long in-flight requests may take once the
// server is asked to stop.
const shutdownTimeout = 10 * time.Second

// Config holds server configuration.
type Config struct {
	Addr     string
	Board    types.Board
	PageSize int
	Logger   *slog.Logger
}

// NewRouter returns the routed, middleware-wrapped handler for cfg.Board.
func NewRouter(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(handler.Recovery(logger))
	r.Use(handler.Logging(logger))
	r.Use(handler.Metrics)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	views := handler.NewViewHandler(cfg.Board, cfg.PageSize, logger)
	options := handler.NewOptionsHandler(cfg.Board, logger)
	segments := handler.NewEntityHandler[types.CustomerSegment, types.SegmentPatch](cfg.Board.Segments(), logger)
	personas := handler.NewEntityHandler[types.Persona, types.PersonaPatch](cfg.Board.Personas(), logger)
	valueProps := handler.NewEntityHandler[types.ValueProposition, types.ValuePropositionPatch](cfg.Board.ValuePropositions(), logger)
	businessModels := handler.NewEntityHandler[types.BusinessModel, types.BusinessModelPatch](cfg.Board.BusinessModels(), logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/views", views.Routes)
		r.Get("/options/{source}", options.Options)
		r.Route("/segments", segments.Routes)
		r.Route("/personas", personas.Routes)
		r.Route("/value-propositions", valueProps.Routes)
		r.Route("/business-models", businessModels.Routes)
	})
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
