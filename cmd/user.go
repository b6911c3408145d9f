package cmd

import (
	"fmt"

	"github.com/mvoss/teampulse-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newUserCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage team members",
	}

	cmd.AddCommand(
		newUserListCmd(app),
		newUserHiddenCmd(app, "hide", true),
		newUserHiddenCmd(app, "unhide", false),
	)

	return cmd
}

func newUserListCmd(app *app) *cobra.Command {
	var teamName string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a team's members",
		RunE: func(cmd *cobra.Command, _ []string) error {
			team, err := app.registry.TeamByName(cmd.Context(), teamName)
			if err != nil {
				return err
			}

			users, err := app.registry.Users(cmd.Context(), team.ID)
			if err != nil {
				return err
			}

			for _, user := range users {
				marker := ""
				if user.Hidden {
					marker = "\t(hidden)"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s%s\n", user.ID, user.Name, user.Title, marker)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&teamName, "team", "", "team name")
	_ = cmd.MarkFlagRequired("team")

	return cmd
}

func newUserHiddenCmd(app *app, use string, hidden bool) *cobra.Command {
	var teamName string
	var userID string

	short := "Exclude a member from team aggregation"
	if !hidden {
		short = "Include a member in team aggregation again"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			team, err := app.registry.TeamByName(cmd.Context(), teamName)
			if err != nil {
				return err
			}

			if err := app.registry.SetUserHidden(cmd.Context(), team.ID, domain.UserID(userID), hidden); err != nil {
				return err
			}

			state := "hidden"
			if !hidden {
				state = "visible"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "user %s is now %s\n", userID, state)
			return nil
		},
	}

	cmd.Flags().StringVar(&teamName, "team", "", "team name")
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	_ = cmd.MarkFlagRequired("team")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
