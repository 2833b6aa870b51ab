// Package store opens the configured catalog backend and bounds every call
// made to it.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/shelf/internal/pocketbase"
	"github.com/mesh-intelligence/shelf/internal/sqlite"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// ErrUnsupported is returned when the backend lacks an optional capability.
var ErrUnsupported = errors.New("operation not supported by backend")

// Importer is implemented by backends that accept a batch of records.
type Importer interface {
	Import(ctx context.Context, records []types.Record) (int, error)
}

// Open validates cfg, opens the backend it names and wraps it with the
// configured timeout.
func Open(cfg types.Config, logger *slog.Logger) (*Timed, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var (
		inner types.RecordStore
		err   error
	)
	switch cfg.Backend {
	case types.BackendSQLite:
		inner, err = sqlite.Open(cfg, logger)
	case types.BackendPocketBase:
		inner, err = pocketbase.NewClient(cfg.PocketBase, nil, cfg.Timeout, logger)
	default:
		err = types.ErrBackendUnknown
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s backend: %w", cfg.Backend, err)
	}
	logger.Debug("backend opened", "backend", cfg.Backend)
	return WithTimeout(inner, cfg.Timeout, logger), nil
}
