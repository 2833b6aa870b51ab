package catalog

import (
	"sync"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Engine produces the visible record set for a FilterState and the
// cross-filter option lists. It keeps an index of folded titles that is
// dropped whenever the cache it is attached to changes.
type Engine struct {
	matcher   Matcher
	favorites *Favorites
	sorter    Sorter

	mu     sync.RWMutex
	folded map[string]string
}

// NewEngine returns an Engine. A nil matcher selects LiteralMatcher; a nil
// favorites set contains nothing.
func NewEngine(matcher Matcher, favorites *Favorites, sorter Sorter) *Engine {
	if matcher == nil {
		matcher = LiteralMatcher{}
	}
	return &Engine{
		matcher:   matcher,
		favorites: favorites,
		sorter:    sorter,
		folded:    make(map[string]string),
	}
}

// Attach subscribes the engine to cache changes.
func (e *Engine) Attach(c *Cache) {
	c.Subscribe(e.Invalidate)
}

// Invalidate drops the folded-title index.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	e.folded = make(map[string]string)
	e.mu.Unlock()
}

// Query returns the records matching f. With a query, records come in
// relevance order; without one, in input order. records is not modified and
// the result is never nil.
func (e *Engine) Query(records []types.Record, f types.FilterState) []types.Record {
	out := make([]types.Record, 0)
	for _, r := range e.candidates(records, f) {
		if matchesExact(r, f) {
			out = append(out, r)
		}
	}
	return out
}

// ResolveOptions computes, for each of category, box and status, the
// distinct non-empty values among records that satisfy every other active
// constraint. The current selection of a dimension is always listed.
func (e *Engine) ResolveOptions(records []types.Record, f types.FilterState) types.Options {
	base := e.candidates(records, f)

	collect := func(dimension string, value func(types.Record) string, selected string, numeric bool) []string {
		other := f.Without(dimension)
		seen := make(map[string]bool)
		values := make([]string, 0)
		for _, r := range base {
			if !matchesExact(r, other) {
				continue
			}
			v := value(r)
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			values = append(values, v)
		}
		if selected != "" && !seen[selected] {
			values = append(values, selected)
		}
		e.sorter.Strings(values, numeric)
		return values
	}

	return types.Options{
		Categories: collect(types.DimensionCategory, func(r types.Record) string { return r.Category }, f.Category, false),
		Boxes:      collect(types.DimensionBox, func(r types.Record) string { return r.Box }, f.Box, true),
		Statuses:   collect(types.DimensionStatus, func(r types.Record) string { return r.LoanStatus }, f.Status, false),
	}
}

// candidates applies the text query and the favorites predicate.
func (e *Engine) candidates(records []types.Record, f types.FilterState) []types.Record {
	var out []types.Record
	if q := Fold(f.Query); q != "" {
		titles := make([]string, len(records))
		for i, r := range records {
			titles[i] = e.fold(r.Title)
		}
		matches := e.matcher.Rank(q, titles)
		out = make([]types.Record, 0, len(matches))
		for _, m := range matches {
			out = append(out, records[m.Index])
		}
	} else {
		out = cloneSlice(records)
	}

	if !f.FavoritesOnly {
		return out
	}
	kept := out[:0]
	for _, r := range out {
		if e.favorites.Contains(r.ID) {
			kept = append(kept, r)
		}
	}
	return kept
}

func (e *Engine) fold(title string) string {
	e.mu.RLock()
	v, ok := e.folded[title]
	e.mu.RUnlock()
	if ok {
		return v
	}
	v = Fold(title)
	e.mu.Lock()
	e.folded[title] = v
	e.mu.Unlock()
	return v
}

func matchesExact(r types.Record, f types.FilterState) bool {
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	if f.Box != "" && r.Box != f.Box {
		return false
	}
	if f.Status != "" && r.LoanStatus != f.Status {
		return false
	}
	return true
}
