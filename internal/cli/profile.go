package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/tabletop-companion/internal/api/response"
	"github.com/mcoot/tabletop-companion/internal/model"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Player profile commands",
	}

	cmd.AddCommand(newProfileListCmd())
	cmd.AddCommand(newProfileCreateCmd())
	cmd.AddCommand(newProfileShowCmd())
	cmd.AddCommand(newProfileUpdateCmd())
	cmd.AddCommand(newProfileDeleteCmd())

	return cmd
}

func newProfileListCmd() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List profiles, optionally filtered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := app.Profiles.Search(cmd.Context(), query)
			if err != nil {
				return err
			}
			output(cmd).Print(response.ProfilesFromModel(profiles))
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Name search text")

	return cmd
}

func newProfileCreateCmd() *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Profiles.Create(cmd.Context(), args[0], color)
			if err != nil {
				return err
			}
			output(cmd).Print(response.ProfileFromModel(p))
			return nil
		},
	}

	cmd.Flags().StringVar(&color, "color", "", "Favourite colour")

	return cmd
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <profile-id>",
		Short: "Show a profile and its stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Profiles.Get(cmd.Context(), model.ProfileID(args[0]))
			if err != nil {
				return err
			}
			output(cmd).Print(response.ProfileFromModel(p))
			return nil
		},
	}
}

func newProfileUpdateCmd() *cobra.Command {
	var name, color string

	cmd := &cobra.Command{
		Use:   "update <profile-id>",
		Short: "Rename a profile or change its colour",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var update model.ProfileUpdate
			if cmd.Flags().Changed("name") {
				update.Name = &name
			}
			if cmd.Flags().Changed("color") {
				update.FavoriteColor = &color
			}
			if update.Name == nil && update.FavoriteColor == nil {
				return fmt.Errorf("nothing to update: pass --name or --color")
			}

			p, err := app.Profiles.Update(cmd.Context(), model.ProfileID(args[0]), update)
			if err != nil {
				return err
			}
			output(cmd).Print(response.ProfileFromModel(p))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&color, "color", "", "New favourite colour")

	return cmd
}

func newProfileDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <profile-id>",
		Short: "Delete a profile. Past sessions are kept.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Profiles.Delete(cmd.Context(), model.ProfileID(args[0])); err != nil {
				return err
			}
			output(cmd).PrintMessage("Profile deleted")
			return nil
		},
	}
}
