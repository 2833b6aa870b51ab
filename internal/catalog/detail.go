package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Phase is the state of the detail view.
type Phase int

// Detail view phases.
const (
	PhaseClosed Phase = iota
	// PhaseLoading shows the cached record, marked provisional, while the
	// full record is fetched.
	PhaseLoading
	PhaseReady
	// PhaseMutating has a loan or return in flight; other actions are
	// refused with types.ErrBusy.
	PhaseMutating
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseMutating:
		return "mutating"
	default:
		return "closed"
	}
}

type detail struct {
	phase       Phase
	id          string
	record      types.Record
	provisional bool
	gen         uint64
}

// View is a snapshot of the detail view.
type View struct {
	Phase       Phase        `json:"-"`
	State       string       `json:"state"`
	Record      types.Record `json:"record"`
	Provisional bool         `json:"provisional"`
	Favorite    bool         `json:"favorite"`
	Index       int          `json:"index"`
	Count       int          `json:"count"`
	HasPrev     bool         `json:"has_prev"`
	HasNext     bool         `json:"has_next"`
}

// Open shows the record id. A cached copy is displayed at once as
// provisional, then the full record is fetched. The fetch result is applied
// only if id is still the focused record of the same Open; otherwise Open
// returns types.ErrSuperseded and leaves the view alone. On a fetch error
// the detail view closes.
func (s *Session) Open(ctx context.Context, id string) (View, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return View{}, types.ErrInvalidID
	}

	s.mu.Lock()
	if s.detail.phase == PhaseMutating {
		s.mu.Unlock()
		return View{}, types.ErrBusy
	}
	s.detail.gen++
	gen := s.detail.gen
	s.detail.phase = PhaseLoading
	s.detail.id = id
	s.detail.provisional = true
	if cached, ok := s.cache.Get(id); ok {
		s.detail.record = cached
	} else {
		s.detail.record = types.Record{ID: id}
	}
	s.mu.Unlock()

	s.logger.Debug("opening record", "id", id, "gen", gen)
	full, err := s.store.Get(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detail.gen != gen || s.detail.id != id || s.detail.phase != PhaseLoading {
		s.logger.Debug("discarding stale record", "id", id, "gen", gen)
		return View{}, fmt.Errorf("opening %s: %w", id, types.ErrSuperseded)
	}
	if err != nil {
		s.detail = detail{gen: s.detail.gen}
		return View{}, fmt.Errorf("opening %s: %w", id, err)
	}

	full.Normalize()
	s.detail.record = full
	s.detail.provisional = false
	s.detail.phase = PhaseReady
	s.applyLocked(full)
	return s.viewLocked(), nil
}

// View returns the current detail view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// RegisterLoan lends the focused record to borrower. The borrower must be
// non-empty and a record must be focused; both are checked before any store
// call. The record is re-read from the store and must be available, else
// types.ErrConflict is returned and the view resyncs to the stored state.
// On success the cache, the visible row and the statistics are updated in
// place; the visible order is kept until Close.
func (s *Session) RegisterLoan(ctx context.Context, borrower string) (View, error) {
	borrower = strings.TrimSpace(borrower)
	return s.mutate(ctx, "loan",
		func() error {
			if borrower == "" {
				return fmt.Errorf("%w: borrower name is required", types.ErrValidation)
			}
			return nil
		},
		func(current types.Record) error {
			if !current.Available() {
				return fmt.Errorf("%w: already %s", types.ErrConflict, current.LoanStatus)
			}
			return nil
		},
		types.LoanPatch(borrower),
		func(updated types.Record) bool { return updated.LoanedTo == borrower },
	)
}

// RegisterReturn marks the focused record as returned. confirmation must
// equal the configured return phrase after trimming; otherwise
// types.ErrValidation is returned without a store call. The record must be
// on loan in the store.
func (s *Session) RegisterReturn(ctx context.Context, confirmation string) (View, error) {
	return s.mutate(ctx, "return",
		func() error {
			if strings.TrimSpace(confirmation) != s.phrase {
				return fmt.Errorf("%w: type %s to confirm the return", types.ErrValidation, s.phrase)
			}
			return nil
		},
		func(current types.Record) error {
			if current.Available() {
				return fmt.Errorf("%w: not on loan", types.ErrConflict)
			}
			return nil
		},
		types.ReturnPatch(),
		func(updated types.Record) bool { return updated.Available() },
	)
}

// mutate runs one loan or return against the focused record. A failure
// before the update leaves every piece of state as it was and puts the view
// back in PhaseReady.
func (s *Session) mutate(
	ctx context.Context,
	op string,
	validate func() error,
	precondition func(types.Record) error,
	patch types.RecordPatch,
	verify func(types.Record) bool,
) (View, error) {
	s.mu.Lock()
	switch s.detail.phase {
	case PhaseClosed:
		s.mu.Unlock()
		return View{}, fmt.Errorf("%w: no record selected", types.ErrValidation)
	case PhaseLoading, PhaseMutating:
		s.mu.Unlock()
		return View{}, types.ErrBusy
	}
	if err := validate(); err != nil {
		s.mu.Unlock()
		return View{}, err
	}
	id, gen := s.detail.id, s.detail.gen
	s.detail.phase = PhaseMutating
	s.mu.Unlock()

	s.logger.Debug("mutation started", "op", op, "id", id)

	current, err := s.store.Get(ctx, id)
	if err != nil {
		return s.failMutation(gen, op, id, err)
	}
	current.Normalize()
	if err := precondition(current); err != nil {
		return s.resync(gen, op, id, current, err)
	}

	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return s.failMutation(gen, op, id, err)
	}
	updated.Normalize()
	if !verify(updated) {
		return s.resync(gen, op, id, updated, fmt.Errorf("%w: store did not apply the %s", types.ErrConflict, op))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detail.gen == gen {
		s.detail.record = updated
		s.detail.provisional = false
		s.detail.phase = PhaseReady
	}
	s.applyLocked(updated)
	s.logger.Info("mutation applied", "op", op, "id", id, "status", updated.LoanStatus)
	return s.viewLocked(), nil
}

// failMutation restores PhaseReady without touching the cache. A record
// that no longer exists closes the detail view.
func (s *Session) failMutation(gen uint64, op, id string, err error) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detail.gen == gen {
		if errors.Is(err, types.ErrNotFound) {
			s.detail = detail{gen: s.detail.gen}
		} else {
			s.detail.phase = PhaseReady
		}
	}
	s.logger.Warn("mutation failed", "op", op, "id", id, "error", err)
	return s.viewLocked(), fmt.Errorf("%s %s: %w", op, id, err)
}

// resync shows the authoritative record after a conflict.
func (s *Session) resync(gen uint64, op, id string, authoritative types.Record, err error) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detail.gen == gen {
		s.detail.record = authoritative
		s.detail.provisional = false
		s.detail.phase = PhaseReady
	}
	s.applyLocked(authoritative)
	s.logger.Warn("mutation conflict", "op", op, "id", id, "status", authoritative.LoanStatus)
	return s.viewLocked(), fmt.Errorf("%s %s: %w", op, id, err)
}

// Close ends the detail view and re-filters and re-sorts the visible list,
// applying changes deferred while it was open.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.detail.phase == PhaseMutating {
		s.mu.Unlock()
		return types.ErrBusy
	}
	s.detail = detail{gen: s.detail.gen + 1}
	s.refreshLocked()
	s.mu.Unlock()

	s.recompute.Trigger()
	return nil
}

// Next opens the record after the focused one in the visible list.
func (s *Session) Next(ctx context.Context) (View, error) { return s.step(ctx, 1) }

// Prev opens the record before the focused one in the visible list.
func (s *Session) Prev(ctx context.Context) (View, error) { return s.step(ctx, -1) }

func (s *Session) step(ctx context.Context, delta int) (View, error) {
	s.mu.Lock()
	switch s.detail.phase {
	case PhaseClosed:
		s.mu.Unlock()
		return View{}, fmt.Errorf("%w: no record selected", types.ErrValidation)
	case PhaseMutating:
		s.mu.Unlock()
		return View{}, types.ErrBusy
	}
	cur := s.indexLocked(s.detail.id)
	i := cur + delta
	if cur < 0 || i < 0 || i >= len(s.visible) {
		s.mu.Unlock()
		return View{}, types.ErrNoNeighbor
	}
	id := s.visible[i].ID
	s.mu.Unlock()

	return s.Open(ctx, id)
}

// applyLocked propagates an authoritative record into the cache and the
// visible row without reordering. Callers hold mu.
func (s *Session) applyLocked(r types.Record) {
	patch := types.PatchFrom(r)
	if !s.cache.Patch(r.ID, patch) {
		return
	}
	if i := s.indexLocked(r.ID); i >= 0 {
		patch.Apply(&s.visible[i])
	}
	s.stats = types.StatsOf(s.visible)
	s.recompute.Trigger()
}

func (s *Session) indexLocked(id string) int {
	for i, r := range s.visible {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) viewLocked() View {
	v := View{
		Phase:       s.detail.phase,
		State:       s.detail.phase.String(),
		Record:      s.detail.record,
		Provisional: s.detail.provisional,
		Count:       len(s.visible),
		Index:       -1,
	}
	if s.detail.phase == PhaseClosed {
		v.Record = types.Record{}
		return v
	}
	v.Favorite = s.favorites.Contains(s.detail.id)
	if i := s.indexLocked(s.detail.id); i >= 0 {
		v.Index = i
		v.HasPrev = i > 0
		v.HasNext = i < len(s.visible)-1
	}
	return v
}
