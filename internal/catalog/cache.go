package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Cache is the in-memory mirror of every lightweight record. It is rebuilt
// by LoadAll and patched in place after fetches and mutations.
type Cache struct {
	mu          sync.RWMutex
	records     []types.Record
	index       map[string]int
	subscribers []func()
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{index: make(map[string]int)}
}

// LoadAll replaces the cache contents with the store listing. Records are
// reduced to their lightweight fields; a repeated ID keeps its first record.
// Errors that are not already classified are reported as
// types.ErrStoreUnavailable.
func (c *Cache) LoadAll(ctx context.Context, store types.RecordStore) ([]types.Record, error) {
	listed, err := store.ListAll(ctx)
	if err != nil {
		if !errors.Is(err, types.ErrStoreUnavailable) && !errors.Is(err, types.ErrTimeout) {
			err = fmt.Errorf("%w: %w", types.ErrStoreUnavailable, err)
		}
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	records := make([]types.Record, 0, len(listed))
	index := make(map[string]int, len(listed))
	for _, r := range listed {
		if r.ID == "" {
			continue
		}
		if _, dup := index[r.ID]; dup {
			continue
		}
		lw := r.Lightweight()
		lw.Normalize()
		index[lw.ID] = len(records)
		records = append(records, lw)
	}

	c.mu.Lock()
	c.records = records
	c.index = index
	c.mu.Unlock()

	c.notify()
	return c.Records(), nil
}

// Records returns a copy of the cached records in cache order.
func (c *Cache) Records() []types.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneSlice(c.records)
}

// Get returns the cached lightweight record for id.
func (c *Cache) Get(id string) (types.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		return types.Record{}, false
	}
	return c.records[i], true
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Patch merges patch into the cached record for id. An unknown id is a
// no-op and returns false. Extended fields in the patch are ignored.
func (c *Cache) Patch(id string, patch types.RecordPatch) bool {
	c.mu.Lock()
	i, ok := c.index[id]
	if ok {
		r := c.records[i]
		patch.Apply(&r)
		c.records[i] = r.Lightweight()
	}
	c.mu.Unlock()

	if ok {
		c.notify()
	}
	return ok
}

// Subscribe registers fn to run after every LoadAll and effective Patch.
// fn runs synchronously on the goroutine that changed the cache.
func (c *Cache) Subscribe(fn func()) {
	c.mu.Lock()
	c.subscribers = append(c.subscribers, fn)
	c.mu.Unlock()
}

func (c *Cache) notify() {
	c.mu.RLock()
	subs := cloneSlice(c.subscribers)
	c.mu.RUnlock()
	for _, fn := range subs {
		fn()
	}
}

func cloneSlice[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}
