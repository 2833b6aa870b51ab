package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Timed wraps a record store so that no call waits longer than the
// configured timeout. It forwards the optional capabilities of the wrapped
// store and reports ErrUnsupported for the ones it lacks.
type Timed struct {
	inner   types.RecordStore
	timeout time.Duration
	logger  *slog.Logger
}

// WithTimeout wraps s. A non-positive d uses types.DefaultTimeout.
func WithTimeout(s types.RecordStore, d time.Duration, logger *slog.Logger) *Timed {
	if d <= 0 {
		d = types.DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Timed{inner: s, timeout: d, logger: logger}
}

// Unwrap returns the wrapped store.
func (t *Timed) Unwrap() types.RecordStore { return t.inner }

// ListAll implements types.RecordStore.
func (t *Timed) ListAll(ctx context.Context) ([]types.Record, error) {
	return bounded(ctx, t, "list", "", t.inner.ListAll)
}

// Get implements types.RecordStore.
func (t *Timed) Get(ctx context.Context, id string) (types.Record, error) {
	return bounded(ctx, t, "get", id, func(ctx context.Context) (types.Record, error) {
		return t.inner.Get(ctx, id)
	})
}

// Update implements types.RecordStore.
func (t *Timed) Update(ctx context.Context, id string, patch types.RecordPatch) (types.Record, error) {
	return bounded(ctx, t, "update", id, func(ctx context.Context) (types.Record, error) {
		return t.inner.Update(ctx, id, patch)
	})
}

// QueryFiltered implements types.FilteredQuerier when the backend does.
func (t *Timed) QueryFiltered(ctx context.Context, f types.Filters) ([]types.Record, error) {
	q, ok := t.inner.(types.FilteredQuerier)
	if !ok {
		return nil, fmt.Errorf("query filtered: %w", ErrUnsupported)
	}
	return bounded(ctx, t, "query", "", func(ctx context.Context) ([]types.Record, error) {
		return q.QueryFiltered(ctx, f)
	})
}

// Create implements types.Creator when the backend does.
func (t *Timed) Create(ctx context.Context, rec types.Record) (string, error) {
	c, ok := t.inner.(types.Creator)
	if !ok {
		return "", fmt.Errorf("create: %w", ErrUnsupported)
	}
	return bounded(ctx, t, "create", rec.ID, func(ctx context.Context) (string, error) {
		return c.Create(ctx, rec)
	})
}

// Import loads records in one batch when the backend supports it, and one
// by one through Create otherwise. The timeout applies to the whole import.
func (t *Timed) Import(ctx context.Context, records []types.Record) (int, error) {
	switch s := t.inner.(type) {
	case Importer:
		return bounded(ctx, t, "import", "", func(ctx context.Context) (int, error) {
			return s.Import(ctx, records)
		})
	case types.Creator:
		return bounded(ctx, t, "import", "", func(ctx context.Context) (int, error) {
			n := 0
			for _, r := range records {
				if _, err := s.Create(ctx, r); err != nil {
					if errors.Is(err, types.ErrConflict) {
						continue
					}
					return n, err
				}
				n++
			}
			return n, nil
		})
	default:
		return 0, fmt.Errorf("import: %w", ErrUnsupported)
	}
}

// Close releases the backend when it holds resources.
func (t *Timed) Close() error {
	if c, ok := t.inner.(types.Closer); ok {
		return c.Close()
	}
	return nil
}

type result[T any] struct {
	v   T
	err error
}

// bounded runs fn with a deadline and stops waiting when it expires, even
// if fn ignores its context. A deadline surfaces as types.ErrTimeout.
func bounded[T any](ctx context.Context, t *Timed, op, id string, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan result[T], 1)
	go func() {
		v, err := fn(ctx)
		done <- result[T]{v, err}
	}()

	var r result[T]
	select {
	case r = <-done:
	case <-ctx.Done():
		r.err = ctx.Err()
	}

	if r.err != nil && !errors.Is(r.err, types.ErrTimeout) && errors.Is(r.err, context.DeadlineExceeded) {
		r.err = fmt.Errorf("%w: %s after %s: %w", types.ErrTimeout, op, t.timeout, r.err)
	}
	t.logger.Debug("store call", "op", op, "id", id, "elapsed", time.Since(start), "err", r.err)
	return r.v, r.err
}
