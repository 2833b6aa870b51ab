package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// SessionConfig configures a Session. Zero fields take defaults.
type SessionConfig struct {
	Matcher      Matcher
	Favorites    *Favorites
	Locale       string
	Debounce     time.Duration
	ReturnPhrase string
	Logger       *slog.Logger
}

// Session is the single browsing context: filter and sort state, the
// visible list, the option lists, the statistics, and at most one open
// detail view. Store calls run without holding the session lock; their
// results are applied only if the context they were issued for still holds.
type Session struct {
	store     types.RecordStore
	cache     *Cache
	engine    *Engine
	sorter    Sorter
	favorites *Favorites
	recompute *Debouncer
	logger    *slog.Logger
	phrase    string

	mu           sync.Mutex
	filter       types.FilterState
	sort         types.SortState
	explicitSort bool
	visible      []types.Record
	options      types.Options
	stats        types.Stats
	detail       detail
}

// NewSession builds a session over store. Call Load before browsing and
// Shutdown when done.
func NewSession(store types.RecordStore, cfg SessionConfig) *Session {
	if cfg.Favorites == nil {
		cfg.Favorites = NewFavorites()
	}
	if cfg.Matcher == nil {
		cfg.Matcher = NewFuzzyMatcher(types.DefaultThreshold)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = types.DefaultDebounce
	}
	if cfg.ReturnPhrase == "" {
		cfg.ReturnPhrase = types.DefaultReturnPhrase
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	sorter := NewSorter(cfg.Locale)
	s := &Session{
		store:     store,
		cache:     NewCache(),
		sorter:    sorter,
		favorites: cfg.Favorites,
		logger:    cfg.Logger,
		phrase:    cfg.ReturnPhrase,
		sort:      types.DefaultSort,
		visible:   []types.Record{},
		options:   types.Options{Categories: []string{}, Boxes: []string{}, Statuses: []string{}},
	}
	s.engine = NewEngine(cfg.Matcher, cfg.Favorites, sorter)
	s.engine.Attach(s.cache)
	s.recompute = NewDebouncer(cfg.Debounce, s.resolveOptions)
	return s
}

// Load fills the cache from the store and rebuilds the visible list and
// the option lists.
func (s *Session) Load(ctx context.Context) error {
	start := time.Now()
	if _, err := s.cache.LoadAll(ctx, s.store); err != nil {
		return err
	}
	s.logger.Debug("catalog loaded", "records", s.cache.Len(), "elapsed", time.Since(start))

	s.mu.Lock()
	s.refreshLocked()
	s.mu.Unlock()
	s.recompute.Flush()
	return nil
}

// Shutdown stops the option recompute.
func (s *Session) Shutdown() {
	s.recompute.Stop()
}

// Cache exposes the session cache.
func (s *Session) Cache() *Cache { return s.cache }

// Favorites exposes the session favorites set.
func (s *Session) Favorites() *Favorites { return s.favorites }

// SetFilter replaces the filter state. Changing the query drops an explicit
// column sort so that relevance order applies again. The option lists are
// recomputed after the debounce window. With a detail open the visible list
// is rebuilt at Close.
func (s *Session) SetFilter(f types.FilterState) {
	f.Query = strings.TrimSpace(f.Query)

	s.mu.Lock()
	if f.Query != s.filter.Query {
		s.explicitSort = false
	}
	s.filter = f
	s.refreshIfClosedLocked()
	s.mu.Unlock()

	s.recompute.Trigger()
}

// ClearFilters resets the filter and sort state.
func (s *Session) ClearFilters() {
	s.mu.Lock()
	s.filter = types.FilterState{}
	s.sort = types.DefaultSort
	s.explicitSort = false
	s.refreshIfClosedLocked()
	s.mu.Unlock()

	s.recompute.Trigger()
}

// SortBy applies a column header click. While a query is active the column
// order replaces relevance order until the query changes.
func (s *Session) SortBy(column types.Column) {
	s.mu.Lock()
	s.sort = s.sort.Toggle(column)
	s.explicitSort = true
	s.refreshIfClosedLocked()
	s.mu.Unlock()
}

// Filter returns the current filter state.
func (s *Session) Filter() types.FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SortState returns the current sort state and whether it orders the
// visible list. It does not while a query is active and no column was
// chosen since the query changed.
func (s *Session) SortState() (types.SortState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sort, s.sortApplies()
}

// Visible returns a copy of the visible list.
func (s *Session) Visible() []types.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSlice(s.visible)
}

// Stats returns the statistics of the visible list.
func (s *Session) Stats() types.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Options returns the last computed option lists.
func (s *Session) Options() types.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.options
}

// RefreshOptions recomputes the option lists now and waits for the result.
func (s *Session) RefreshOptions() types.Options {
	s.recompute.Flush()
	return s.Options()
}

// WaitOptions blocks until any scheduled option recompute has finished.
func (s *Session) WaitOptions() {
	s.recompute.Wait()
}

// ToggleFavorite flips id in the favorites set. With the favorites-only
// filter on and no detail open, the visible list is refreshed at once;
// with a detail open the refresh waits for Close.
func (s *Session) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, types.ErrInvalidID
	}
	fav, err := s.favorites.Toggle(ctx, id)
	if err != nil {
		return fav, err
	}
	s.logger.Debug("favorite toggled", "id", id, "favorite", fav)

	s.mu.Lock()
	refresh := s.filter.FavoritesOnly
	if refresh {
		s.refreshIfClosedLocked()
	}
	s.mu.Unlock()
	if refresh {
		s.recompute.Trigger()
	}
	return fav, nil
}

// IsFavorite reports whether id is a favorite.
func (s *Session) IsFavorite(id string) bool {
	return s.favorites.Contains(id)
}

// Describe renders the filter header with the result count.
func (s *Session) Describe() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.filter.Active() {
		return fmt.Sprintf("%d books", len(s.visible))
	}
	return fmt.Sprintf("%d results (%s)", len(s.visible), s.filter.Describe())
}

func (s *Session) sortApplies() bool {
	return s.filter.Query == "" || s.explicitSort
}

// refreshIfClosedLocked rebuilds the visible list unless a detail view is
// open; Next and Prev index into that list until Close.
func (s *Session) refreshIfClosedLocked() {
	if s.detail.phase == PhaseClosed {
		s.refreshLocked()
	}
}

// refreshLocked rebuilds the visible list from the cache. Callers hold mu.
func (s *Session) refreshLocked() {
	visible := s.engine.Query(s.cache.Records(), s.filter)
	if s.sortApplies() {
		visible = s.sorter.Sort(visible, s.sort)
	}
	s.visible = visible
	s.stats = types.StatsOf(visible)
}

// resolveOptions is the debounced recompute. It reads the filter at run
// time.
func (s *Session) resolveOptions() {
	s.mu.Lock()
	f := s.filter
	s.mu.Unlock()

	opts := s.engine.ResolveOptions(s.cache.Records(), f)

	s.mu.Lock()
	s.options = opts
	s.mu.Unlock()
}
