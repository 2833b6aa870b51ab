// Package sqlite implements the local catalog backend. books.jsonl in the
// data directory is the source of truth; at Attach it is loaded into a fresh
// SQLite database that serves every query. Each write runs in a transaction
// that commits only after books.jsonl has been rewritten atomically.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Backend lifecycle errors.
var (
	ErrAlreadyAttached = errors.New("sqlite backend already attached")
	ErrDetached        = errors.New("sqlite backend is detached")
)

// dbFile is the query database inside the data directory. It is
// disposable and recreated on every Attach.
const dbFile = "books.db"

// Backend implements types.RecordStore, types.FilteredQuerier,
// types.Creator and types.Closer.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	dataDir  string
	db       *sql.DB
	logger   *slog.Logger
}

// NewBackend creates a backend. It is not attached; call Attach.
func NewBackend(logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{logger: logger}
}

// Open creates and attaches a backend for cfg.
func Open(cfg types.Config, logger *slog.Logger) (*Backend, error) {
	b := NewBackend(logger)
	if err := b.Attach(cfg); err != nil {
		return nil, err
	}
	return b, nil
}

// Attach creates the data directory if needed, builds the schema in a fresh
// database and loads books.jsonl into it.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(cfg types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return ErrAlreadyAttached
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	// Start from an empty database; books.jsonl is authoritative.
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1)

	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	jsonlPath := filepath.Join(dataDir, booksJSONL)
	if err := ensureJSONL(jsonlPath); err != nil {
		db.Close()
		return err
	}
	n, err := loadJSONL(db, jsonlPath)
	if err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.db = db
	b.dataDir = dataDir
	b.attached = true
	b.logger.Debug("sqlite backend attached", "data_dir", dataDir, "books", n)
	return nil
}

// Detach closes the database. It is idempotent; afterwards every operation
// fails with ErrDetached wrapped in types.ErrStoreUnavailable.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	if b.db != nil {
		err := b.db.Close()
		b.db = nil
		if err != nil {
			return fmt.Errorf("closing database: %w", err)
		}
	}
	return nil
}

// Close implements types.Closer.
func (b *Backend) Close() error { return b.Detach() }

// checkAttached must be called with b.mu held.
func (b *Backend) checkAttached() error {
	if !b.attached {
		return fmt.Errorf("%w: %w", types.ErrStoreUnavailable, ErrDetached)
	}
	return nil
}

// persistLocked rewrites books.jsonl from the uncommitted state of tx. The
// caller holds b.mu for writing and rolls tx back on error.
func (b *Backend) persistLocked(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, selectBooks(bookColumns)+" ORDER BY rowid")
	if err != nil {
		return storeError("reading books for persist", err)
	}
	records, err := scanRecords(rows, true)
	if err != nil {
		return storeError("reading books for persist", err)
	}
	if err := writeJSONL(filepath.Join(b.dataDir, booksJSONL), records); err != nil {
		return fmt.Errorf("%w: persisting %s: %w", types.ErrStoreUnavailable, booksJSONL, err)
	}
	return nil
}

// newID returns a UUID v7 string.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// storeError classifies a driver error: a context deadline becomes
// types.ErrTimeout, anything else types.ErrStoreUnavailable.
func storeError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, types.ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w: %w", op, types.ErrStoreUnavailable, err)
}
