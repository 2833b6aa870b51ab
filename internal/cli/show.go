package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/internal/catalog"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Display a book with full details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRecord(cmd, args[0], func(ctx context.Context, ws *workspace, v catalog.View) (catalog.View, error) {
				return v, nil
			})
		},
	}
}

func newLoanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "loan <id> <borrower>",
		Short: "Lend a book",
		Long: `Loan records that the book is lent to borrower. The book must be
available in the store at the time of the call.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRecord(cmd, args[0], func(ctx context.Context, ws *workspace, _ catalog.View) (catalog.View, error) {
				return ws.session.RegisterLoan(ctx, args[1])
			})
		},
	}
}

func newReturnCmd(a *app) *cobra.Command {
	var confirm string
	cmd := &cobra.Command{
		Use:   "return <id>",
		Short: "Record that a lent book came back",
		Long: `Return marks a lent book as available. --confirm must carry the return
phrase (DEVOLVER unless return_phrase is configured).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRecord(cmd, args[0], func(ctx context.Context, ws *workspace, _ catalog.View) (catalog.View, error) {
				return ws.session.RegisterReturn(ctx, confirm)
			})
		},
	}
	cmd.Flags().StringVar(&confirm, "confirm", "", "return phrase")
	return cmd
}

// withRecord loads the catalog, opens id, runs fn on the open view and
// prints the view fn returns.
func (a *app) withRecord(cmd *cobra.Command, id string, fn func(context.Context, *workspace, catalog.View) (catalog.View, error)) error {
	ctx := cmd.Context()
	ws, err := a.openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()
	if err := ws.load(ctx); err != nil {
		return err
	}

	v, err := ws.session.Open(ctx, id)
	if err != nil {
		return err
	}
	v, err = fn(ctx, ws, v)
	if err != nil {
		return err
	}
	if err := ws.session.Close(); err != nil {
		return err
	}

	if a.jsonMode {
		return printJSON(cmd.OutOrStdout(), v)
	}
	printView(cmd.OutOrStdout(), v)
	return nil
}

func newFavCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fav <id>",
		Short: "Toggle a book in the favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := a.openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			on, err := ws.session.ToggleFavorite(ctx, args[0])
			if errors.Is(err, types.ErrValidation) {
				return err
			}
			if err != nil {
				return sysError("toggle favorite", err)
			}
			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{"id": args[0], "favorite": on})
			}
			if on {
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s to favorites\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from favorites\n", args[0])
			}
			return nil
		},
	}
	cmd.AddCommand(newFavListCmd(a))
	return cmd
}

func newFavListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List favorite books",
		Args:  cobra.NoArgs,
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

			ws.session.SetFilter(types.FilterState{FavoritesOnly: true})
			visible := ws.session.Visible()
			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), visible)
			}
			printRecords(cmd.OutOrStdout(), visible, ws.favorites)
			return nil
		},
	}
}
