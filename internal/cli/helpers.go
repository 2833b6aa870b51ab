package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mesh-intelligence/shelf/internal/catalog"
	"github.com/mesh-intelligence/shelf/internal/favorites"
	"github.com/mesh-intelligence/shelf/internal/store"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitError carries the process exit code of a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func sysError(msg string, err error) error {
	return &exitError{code: exitSysError, err: fmt.Errorf("%s: %w", msg, err)}
}

// ExitCode maps an error returned by the root command to a process exit
// code: 0 on success, 2 when the backend or the configuration failed, 1 for
// everything the user can fix.
func ExitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	if errors.Is(err, types.ErrStoreUnavailable) || errors.Is(err, types.ErrTimeout) {
		return exitSysError
	}
	return exitUserError
}

// workspace bundles what a command needs to drive a catalog session.
type workspace struct {
	store     *store.Timed
	favStore  favorites.Store
	favorites *catalog.Favorites
	session   *catalog.Session
}

// openWorkspace opens the backend and the favorites store and builds a
// session. The catalog is not loaded; call load. The caller must Close.
func (a *app) openWorkspace(ctx context.Context) (*workspace, error) {
	st, err := store.Open(a.cfg, a.logger)
	if err != nil {
		return nil, sysError("open store", err)
	}
	favStore, err := favorites.Open(a.cfg.Favorites, a.cfg.DataDir, a.logger)
	if err != nil {
		st.Close()
		return nil, sysError("open favorites", err)
	}
	favs, err := catalog.LoadFavorites(ctx, favStore)
	if err != nil {
		favStore.Close()
		st.Close()
		return nil, sysError("load favorites", err)
	}

	sess := catalog.NewSession(st, catalog.SessionConfig{
		Matcher:      newMatcher(a.cfg.Search),
		Favorites:    favs,
		Locale:       a.cfg.Search.Locale,
		Debounce:     a.cfg.Debounce,
		ReturnPhrase: a.cfg.ReturnPhrase,
		Logger:       a.logger,
	})
	return &workspace{store: st, favStore: favStore, favorites: favs, session: sess}, nil
}

// load fills the session from the backend.
func (w *workspace) load(ctx context.Context) error {
	return w.session.Load(ctx)
}

// Close stops the session and releases both stores.
func (w *workspace) Close() error {
	w.session.Shutdown()
	return errors.Join(w.favStore.Close(), w.store.Close())
}

func newMatcher(cfg types.SearchConfig) catalog.Matcher {
	if cfg.Mode == types.SearchLiteral {
		return catalog.LiteralMatcher{}
	}
	return catalog.NewFuzzyMatcher(cfg.Threshold)
}

// applySort sets the session sort to col and dir through header clicks.
func applySort(s *catalog.Session, col types.Column, dir types.Direction) {
	for range 2 {
		if st, _ := s.SortState(); st.Column == col && st.Direction == dir {
			return
		}
		s.SortBy(col)
	}
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// printRecords renders the visible list as a table. Favorites are starred.
func printRecords(w io.Writer, records []types.Record, favs *catalog.Favorites) {
	tw := newRowWriter(w)
	fmt.Fprintln(tw, "\tID\tTITLE\tCATEGORY\tBOX\tSTATUS")
	for _, r := range records {
		star := ""
		if favs.Contains(r.ID) {
			star = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", star, r.ID, r.Title, r.Category, r.Box, r.LoanStatus)
	}
	tw.Flush()
}

func newRowWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printStats(w io.Writer, s types.Stats) {
	fmt.Fprintf(w, "%d books, %d available, %d loaned\n", s.Total, s.Available, s.Loaned)
}

func printOptions(w io.Writer, o types.Options) {
	fmt.Fprintf(w, "Categories: %s\n", joinOrDash(o.Categories))
	fmt.Fprintf(w, "Boxes:      %s\n", joinOrDash(o.Boxes))
	fmt.Fprintf(w, "Statuses:   %s\n", joinOrDash(o.Statuses))
}

// printView renders an open detail view.
func printView(w io.Writer, v catalog.View) {
	r := v.Record
	fav := ""
	if v.Favorite {
		fav = " *"
	}
	fmt.Fprintf(w, "%s%s\n", r.Title, fav)
	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(w, "  %-10s %s\n", name+":", value)
		}
	}
	field("ID", r.ID)
	field("Author", r.Author)
	field("Publisher", r.Publisher)
	field("Year", r.Year)
	field("ISBN", r.ISBN)
	field("Category", r.Category)
	field("Box", r.Box)
	field("Status", r.LoanStatus)
	field("Notes", r.Notes)
	field("Cover", r.CoverURL)
	if r.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", r.Summary)
	}
	if v.Index >= 0 {
		fmt.Fprintf(w, "[%d/%d]\n", v.Index+1, v.Count)
	}
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
