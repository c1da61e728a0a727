// Package sqlite implements the SQLite storage backend for the canvas board.
//
// The backend owns one database file in the configured data directory.
// Views, canvas entities, and value proposition child collections live in
// relational tables; list attributes are stored as JSON text and decoded at
// this boundary. Multi-step writes (the default-view swap and the child
// replace transaction) each run in a single *sql.Tx.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

// DBFileName is the database file created inside the data directory.
const DBFileName = "canvas.db"

var (
	_ types.Board       = (*Backend)(nil)
	_ types.Snapshotter = (*Backend)(nil)
)

// Backend implements types.Board on SQLite.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	logger   *slog.Logger

	// flight collapses concurrent first calls to GetDefault.
	flight singleflight.Group

	views          *viewsTable
	segments       *segmentsTable
	personas       *personasTable
	valueProps     *valuePropositionsTable
	businessModels *businessModelsTable
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger used for seeding, default swaps and replace
// outcomes. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	b.views = &viewsTable{backend: b}
	b.segments = &segmentsTable{backend: b}
	b.personas = &personasTable{backend: b}
	b.valueProps = &valuePropositionsTable{backend: b}
	b.businessModels = &businessModelsTable{backend: b}
	return b
}

// Attach opens (or creates) the database in config.DataDir and applies the
// schema. Existing data is kept. Returns ErrAlreadyAttached if already
// attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBFileName)
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)",
		dbPath, config.EffectiveBusyTimeout().Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dbPath, err)
	}
	// One connection serializes writers; statements inside a transaction
	// must go through the *sql.Tx or they will block on the pool.
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.config = config
	b.attached = true
	b.logger.Debug("sqlite backend attached", "path", dbPath)
	return nil
}

// Detach closes the database. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	return nil
}

// Views returns the view descriptor store.
func (b *Backend) Views() types.ViewStore { return b.views }

// Segments returns the customer segment store.
func (b *Backend) Segments() types.SegmentStore { return b.segments }

// Personas returns the persona store.
func (b *Backend) Personas() types.PersonaStore { return b.personas }

// ValuePropositions returns the value proposition store.
func (b *Backend) ValuePropositions() types.ValuePropositionStore { return b.valueProps }

// BusinessModels returns the business model store.
func (b *Backend) BusinessModels() types.BusinessModelStore { return b.businessModels }

// conn returns the open database or ErrBoardDetached.
func (b *Backend) conn() (*sql.DB, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrBoardDetached
	}
	return b.db, nil
}

// querier is satisfied by *sql.DB and *sql.Tx so read helpers can run inside
// or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// inTx runs fn in a transaction, committing when fn returns nil.
func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// exists reports whether a row with the given primary key is present.
func exists(ctx context.Context, q querier, table, idColumn, id string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx,
		fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ?", table, idColumn), id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s %s: %w", table, id, err)
	}
	return true, nil
}

// requireParent returns an error matching both ErrInvalidOperation and
// ErrNotFound when a referenced parent row is missing. An empty id means
// no reference and always passes.
func requireParent(ctx context.Context, q querier, table, idColumn, id string) error {
	if id == "" {
		return nil
	}
	ok, err := exists(ctx, q, table, idColumn, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: referenced %s %s: %w", types.ErrInvalidOperation, table, id, types.ErrNotFound)
	}
	return nil
}

func newUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
