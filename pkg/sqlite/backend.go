// Package sqlite provides the public API for the SQLite canvas board
// backend. It exposes the factory while keeping the implementation internal.
package sqlite

import (
	"log/slog"

	"github.com/mesh-intelligence/canvasboard/internal/sqlite"
	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

// Backend is a board that can also export and import JSONL snapshots.
type Backend interface {
	types.Board
	types.Snapshotter
}

// Option configures a backend created by NewBackend.
type Option = sqlite.Option

// WithLogger sets the logger the backend reports seeding, default swaps, and
// replace outcomes to.
func WithLogger(l *slog.Logger) Option {
	return sqlite.WithLogger(l)
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend()
//	err := backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".canvas-db",
//	})
//	defer backend.Detach()
func NewBackend(opts ...Option) Backend {
	return sqlite.NewBackend(opts...)
}
