package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mvoss/teampulse-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newRunCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Record a questionnaire run",
	}

	cmd.AddCommand(
		newRunStartCmd(app),
		newRunStepCmd(app),
		newRunCompleteCmd(app),
		newRunAttachCmd(app),
		newRunStatusCmd(app),
	)

	return cmd
}

func newRunStartCmd(app *app) *cobra.Command {
	var teamName string
	var testerName string
	var title string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a new run and make it current",
		RunE: func(cmd *cobra.Command, _ []string) error {
			started, err := app.sessions.StartRun(cmd.Context(), teamName, testerName, title)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "started run %s for %s (%s) on team %s\n",
				started.RunID, started.User.Name, started.User.Title, started.Team.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&teamName, "team", "", "team name")
	cmd.Flags().StringVar(&testerName, "name", "", "tester name")
	cmd.Flags().StringVar(&title, "title", "", "tester title")
	_ = cmd.MarkFlagRequired("team")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newRunStepCmd(app *app) *cobra.Command {
	var data string
	var dataFile string

	cmd := &cobra.Command{
		Use:   "step <step-name>",
		Short: "Save one step payload on the current run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(data, dataFile)
			if err != nil {
				return err
			}

			session, err := app.sessions.SaveStep(cmd.Context(), args[0], payload)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved step %q on run %s\n", args[0], session.RunID)
			return nil
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "step payload as inline JSON")
	cmd.Flags().StringVar(&dataFile, "data-file", "", "path to a JSON file holding the step payload")

	return cmd
}

func newRunCompleteCmd(app *app) *cobra.Command {
	var data string
	var dataFile string

	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Attach the computed result and complete the current run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			payload, err := readPayload(data, dataFile)
			if err != nil {
				return err
			}

			var computed domain.ResultSet
			if err := json.Unmarshal(payload, &computed); err != nil {
				return fmt.Errorf("decode computed result: %w", err)
			}

			session, err := app.sessions.SaveComputed(cmd.Context(), computed)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "completed run %s at %s\n",
				session.RunID, session.CompletedAt.Format("15:04:05 on 02 Jan 2006"))
			return nil
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "computed result as inline JSON")
	cmd.Flags().StringVar(&dataFile, "data-file", "", "path to a JSON file holding the computed result")

	return cmd
}

func newRunAttachCmd(app *app) *cobra.Command {
	var teamID string
	var userID string
	var runID string

	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Point the current-session pointer at an existing run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ref := domain.RunRef{
				TeamID: domain.TeamID(teamID),
				UserID: domain.UserID(userID),
				RunID:  domain.RunID(runID),
			}

			if _, err := app.sessions.Session(cmd.Context(), ref); err != nil {
				return err
			}
			if err := app.sessions.SetCurrent(cmd.Context(), ref); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "attached to run %s\n", runID)
			return nil
		},
	}

	cmd.Flags().StringVar(&teamID, "team-id", "", "team id")
	cmd.Flags().StringVar(&userID, "user-id", "", "user id")
	cmd.Flags().StringVar(&runID, "run-id", "", "run id")
	_ = cmd.MarkFlagRequired("team-id")
	_ = cmd.MarkFlagRequired("user-id")
	_ = cmd.MarkFlagRequired("run-id")

	return cmd
}

func newRunStatusCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current run and last recorded activity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ref, ok, err := app.sessions.Current(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no active session")
				return nil
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "current run %s (team %s, user %s)\n", ref.RunID, ref.TeamID, ref.UserID)

			marker, err := app.sessions.LastSession(cmd.Context(), ref.TeamID, ref.UserID)
			if err != nil {
				return err
			}
			if marker != nil {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "last activity on run %s at %s\n",
					marker.RunID, marker.StoredAt.Format("15:04:05 on 02 Jan 2006"))
			}

			return nil
		},
	}
}

func readPayload(data, dataFile string) (json.RawMessage, error) {
	switch {
	case data != "" && dataFile != "":
		return nil, fmt.Errorf("use either --data or --data-file, not both")
	case data != "":
		if !json.Valid([]byte(data)) {
			return nil, fmt.Errorf("--data is not valid JSON")
		}
		return json.RawMessage(data), nil
	case dataFile != "":
		raw, err := os.ReadFile(dataFile)
		if err != nil {
			return nil, fmt.Errorf("read payload file: %w", err)
		}
		if !json.Valid(raw) {
			return nil, fmt.Errorf("payload file is not valid JSON")
		}
		return json.RawMessage(raw), nil
	default:
		return nil, fmt.Errorf("a payload is required: pass --data or --data-file")
	}
}
