package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tp",
		Short:         "teampulse (tp): record self-assessment runs and report team averages",
		Long:          "tp (teampulse) stores self-assessment survey runs per user and team on this device, tracks the run in progress, and aggregates each team's latest completed results into an averaged report.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(app),
		newTeamCmd(app),
		newUserCmd(app),
		newExportCmd(app),
	)

	return rootCmd
}
