package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/internal/catalog"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

const browseHelp = `Commands:
  q <text>         search titles (q alone clears the search)
  cat|box|status [value]
                   set or clear a filter
  favs             toggle favorites-only
  clear            reset search, filters and sort
  sort <column>    click a column header (title, category, box, status)
  ls               show the list
  opts             show filter options
  open <id|#n>     open a book (#n is the row number in the list)
  next, prev       open the neighboring book
  loan <name>      lend the open book
  return <phrase>  record the return of the open book
  fav [id]         toggle a favorite (the open book by default)
  close            close the open book
  help, quit`

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog interactively",
		Long: `Browse starts a line-oriented session over the catalog. Type help for
the list of commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := a.openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()
			if err := ws.load(ctx); err != nil {
				return err
			}

			b := &browser{ws: ws, out: cmd.OutOrStdout()}
			b.header()
			return b.run(ctx, cmd.InOrStdin())
		},
	}
}

// browser drives one session from text commands.
type browser struct {
	ws  *workspace
	out io.Writer
}

func (b *browser) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(b.out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			quit, err := b.exec(ctx, line)
			if err != nil {
				fmt.Fprintf(b.out, "error: %v\n", err)
			}
			if quit {
				return nil
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(b.out, "> ")
	}
	return scanner.Err()
}

// exec runs one command line. It reports whether the session should end.
func (b *browser) exec(ctx context.Context, line string) (bool, error) {
	verb, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	s := b.ws.session

	switch verb {
	case "quit", "exit":
		return true, nil
	case "help", "?":
		fmt.Fprintln(b.out, browseHelp)
	case "q", "search":
		f := s.Filter()
		f.Query = arg
		s.SetFilter(f)
		b.header()
	case "cat", "category", "box", "status":
		f := s.Filter()
		switch verb {
		case "box":
			f.Box = arg
		case "status":
			f.Status = arg
		default:
			f.Category = arg
		}
		s.SetFilter(f)
		b.header()
	case "favs":
		f := s.Filter()
		f.FavoritesOnly = !f.FavoritesOnly
		s.SetFilter(f)
		b.header()
	case "clear":
		s.ClearFilters()
		b.header()
	case "sort":
		col, err := types.ParseColumn(arg)
		if err != nil {
			return false, err
		}
		s.SortBy(col)
		st, _ := s.SortState()
		fmt.Fprintf(b.out, "sorted by %s %s\n", st.Column, st.Direction)
	case "ls", "list":
		b.list()
	case "opts", "options":
		s.WaitOptions()
		printOptions(b.out, s.Options())
	case "open":
		id, err := b.resolveID(arg)
		if err != nil {
			return false, err
		}
		return false, b.show(s.Open(ctx, id))
	case "next":
		return false, b.show(s.Next(ctx))
	case "prev":
		return false, b.show(s.Prev(ctx))
	case "loan":
		return false, b.show(s.RegisterLoan(ctx, arg))
	case "return":
		return false, b.show(s.RegisterReturn(ctx, arg))
	case "fav":
		id := arg
		if id == "" {
			id = s.View().Record.ID
		}
		on, err := s.ToggleFavorite(ctx, id)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(b.out, "%s favorite: %t\n", id, on)
	case "close":
		if err := s.Close(); err != nil {
			return false, err
		}
		b.header()
	default:
		return false, fmt.Errorf("unknown command %q (type help)", verb)
	}
	return false, nil
}

// resolveID accepts a record id or #n, the 1-based row of the visible list.
func (b *browser) resolveID(arg string) (string, error) {
	if arg == "" {
		return "", types.ErrInvalidID
	}
	row, ok := strings.CutPrefix(arg, "#")
	if !ok {
		return arg, nil
	}
	n, err := strconv.Atoi(row)
	visible := b.ws.session.Visible()
	if err != nil || n < 1 || n > len(visible) {
		return "", fmt.Errorf("%w: no row %s", types.ErrValidation, arg)
	}
	return visible[n-1].ID, nil
}

func (b *browser) show(v catalog.View, err error) error {
	if errors.Is(err, types.ErrSuperseded) {
		return nil
	}
	if err != nil {
		return err
	}
	printView(b.out, v)
	return nil
}

func (b *browser) header() {
	fmt.Fprintln(b.out, b.ws.session.Describe())
}

func (b *browser) list() {
	s := b.ws.session
	visible := s.Visible()
	tw := newRowWriter(b.out)
	for i, r := range visible {
		star := ""
		if b.ws.favorites.Contains(r.ID) {
			star = "*"
		}
		fmt.Fprintf(tw, "#%d\t%s\t%s\t%s\t%s\t%s\n", i+1, star, r.Title, r.Category, r.Box, r.LoanStatus)
	}
	tw.Flush()
	printStats(b.out, s.Stats())
}
