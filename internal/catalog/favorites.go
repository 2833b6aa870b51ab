package catalog

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// FavoritesStore persists the favorites set as a list of record IDs.
type FavoritesStore interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, ids []string) error
}

// Favorites is the set of record IDs the user starred. It is read once from
// its store and written back on every toggle.
type Favorites struct {
	mu    sync.RWMutex
	ids   map[string]struct{}
	store FavoritesStore
}

// NewFavorites returns an in-memory set holding ids. It is not persisted.
func NewFavorites(ids ...string) *Favorites {
	f := &Favorites{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id != "" {
			f.ids[id] = struct{}{}
		}
	}
	return f
}

// LoadFavorites reads the set from store.
func LoadFavorites(ctx context.Context, store FavoritesStore) (*Favorites, error) {
	ids, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading favorites: %w", err)
	}
	f := NewFavorites(ids...)
	f.store = store
	return f, nil
}

// Contains reports whether id is a favorite. A nil set contains nothing.
func (f *Favorites) Contains(id string) bool {
	if f == nil {
		return false
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.ids[id]
	return ok
}

// Toggle flips membership of id and persists the set. It returns the new
// membership. When saving fails the set is left unchanged.
func (f *Favorites) Toggle(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, was := f.ids[id]
	if was {
		delete(f.ids, id)
	} else {
		f.ids[id] = struct{}{}
	}

	if f.store != nil {
		if err := f.store.Save(ctx, f.sortedLocked()); err != nil {
			if was {
				f.ids[id] = struct{}{}
			} else {
				delete(f.ids, id)
			}
			return was, fmt.Errorf("saving favorites: %w", err)
		}
	}
	return !was, nil
}

// IDs returns the favorites in ascending order.
func (f *Favorites) IDs() []string {
	if f == nil {
		return []string{}
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.sortedLocked()
}

// Len returns the number of favorites.
func (f *Favorites) Len() int {
	if f == nil {
		return 0
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.ids)
}

func (f *Favorites) sortedLocked() []string {
	ids := make([]string, 0, len(f.ids))
	for id := range f.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
