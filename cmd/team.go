package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/mvoss/teampulse-cli/internal/adapters/render/report"
	"github.com/spf13/cobra"
)

func newTeamCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Inspect teams and their aggregated results",
	}

	cmd.AddCommand(
		newTeamListCmd(app),
		newTeamReportCmd(app),
	)

	return cmd
}

func newTeamListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known teams",
		RunE: func(cmd *cobra.Command, _ []string) error {
			teams, err := app.registry.Teams(cmd.Context())
			if err != nil {
				return err
			}

			for _, team := range teams {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", team.ID, team.Name)
			}

			return nil
		},
	}
}

func newTeamReportCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report <team-name>",
		Short: "Aggregate the team's latest completed runs into an averaged report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			team, err := app.registry.TeamByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			aggregate, err := app.aggregator.AggregateTeam(cmd.Context(), team.ID)
			if err != nil {
				return err
			}

			if asJSON {
				data, err := json.MarshalIndent(aggregate, "", "  ")
				if err != nil {
					return fmt.Errorf("encode report: %w", err)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			rendered := app.reportRenderer(team.Name, aggregate, report.RenderOptions{Now: app.now()})
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the report as JSON")

	return cmd
}
