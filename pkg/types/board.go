package types

import (
	"context"
	"errors"
)

// Board defines the interface for backend-agnostic storage access.
// Callers attach to a backend, work through the per-entity stores, and detach
// when done.
type Board interface {
	// Attach connects the Board to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached if
	// called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, store operations return ErrBoardDetached.
	Detach() error

	Views() ViewStore
	Segments() SegmentStore
	Personas() PersonaStore
	ValuePropositions() ValuePropositionStore
	BusinessModels() BusinessModelStore

	// Records returns every entity of the given source as a Record, ready for
	// projection. Returns ErrValidation for an unknown source.
	Records(ctx context.Context, source Source) ([]Record, error)
}

// Board lifecycle errors.
var (
	ErrBoardDetached   = errors.New("board is detached")
	ErrAlreadyAttached = errors.New("board is already attached")
)

// Snapshotter is implemented by backends that can dump their whole content
// to a directory of JSONL files and load it back.
type Snapshotter interface {
	// Export writes one JSONL file per table into dir.
	Export(ctx context.Context, dir string) error

	// Import loads the files written by Export into an empty store in one
	// transaction. Returns ErrInvalidOperation when the store has data.
	Import(ctx context.Context, dir string) error
}
