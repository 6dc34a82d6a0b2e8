package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/tabletop-companion/internal/api/response"
	"github.com/mcoot/tabletop-companion/internal/model"
)

func newGamesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "games",
		Short: "Browse the game catalog",
	}

	cmd.AddCommand(newGamesListCmd())
	cmd.AddCommand(newGamesShowCmd())

	return cmd
}

func newGamesListCmd() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List games, optionally filtered by name, category or mechanic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			games := app.Catalog.Search(query)
			output(cmd).Print(response.GameListingsFromModel(games))
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Search text")

	return cmd
}

func newGamesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <game-id>",
		Short: "Show a game's setup, scoring and quick reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			game, err := app.Catalog.Get(model.GameID(args[0]))
			if err != nil {
				return err
			}
			output(cmd).Print(game)
			return nil
		},
	}
}
