package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// filterFlags are the search flags shared by list and options.
type filterFlags struct {
	query     string
	category  string
	box       string
	status    string
	favorites bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "search titles (fuzzy unless search.mode is literal)")
	cmd.Flags().StringVar(&f.category, "category", "", "only this category")
	cmd.Flags().StringVar(&f.box, "box", "", "only this box")
	cmd.Flags().StringVar(&f.status, "status", "", `only this loan status ("available" or "loaned to <name>")`)
	cmd.Flags().BoolVar(&f.favorites, "favorites", false, "only favorites")
}

func (f *filterFlags) state() types.FilterState {
	return types.FilterState{
		Query:         f.query,
		Category:      f.category,
		Box:           f.box,
		Status:        f.status,
		FavoritesOnly: f.favorites,
	}
}

// listOutput is the JSON shape of list.
type listOutput struct {
	Header  string            `json:"header"`
	Filter  types.FilterState `json:"filter"`
	Sort    *types.SortState  `json:"sort,omitempty"`
	Records []types.Record    `json:"records"`
	Stats   types.Stats       `json:"stats"`
}

func newListCmd(a *app) *cobra.Command {
	var (
		ff     filterFlags
		sortBy string
		desc   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books matching a search",
		Long: `List prints the books that match the query and the filters, followed by
statistics. Without --sort a query orders results by relevance; otherwise
books are ordered by title.

Example:
  shelf list
  shelf list -q dune --status available
  shelf list --box 3 --sort title --desc`,
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

			s := ws.session
			s.SetFilter(ff.state())
			if sortBy != "" {
				col, err := types.ParseColumn(sortBy)
				if err != nil {
					return err
				}
				dir := types.Ascending
				if desc {
					dir = types.Descending
				}
				applySort(s, col, dir)
			}

			visible := s.Visible()
			if a.jsonMode {
				out := listOutput{
					Header:  s.Describe(),
					Filter:  s.Filter(),
					Records: visible,
					Stats:   s.Stats(),
				}
				if st, applies := s.SortState(); applies {
					out.Sort = &st
				}
				return printJSON(cmd.OutOrStdout(), out)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, s.Describe())
			if len(visible) > 0 {
				printRecords(w, visible, ws.favorites)
			}
			printStats(w, s.Stats())
			return nil
		},
	}
	ff.register(cmd)
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort column (title, category, box, status)")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	return cmd
}

func newOptionsCmd(a *app) *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Show the values each filter can take",
		Long: `Options prints, for each of category, box and status, the values that
still yield results given the other filters. The current selection is
always listed.`,
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

			ws.session.SetFilter(ff.state())
			opts := ws.session.RefreshOptions()
			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), opts)
			}
			printOptions(cmd.OutOrStdout(), opts)
			return nil
		},
	}
	ff.register(cmd)
	return cmd
}
