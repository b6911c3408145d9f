package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd(app *app) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump all durable records as one JSON document for the sync bridge",
		RunE: func(cmd *cobra.Command, _ []string) error {
			snapshot, err := app.exporter.Snapshot(cmd.Context())
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(snapshot, "", "  ")
			if err != nil {
				return fmt.Errorf("encode snapshot: %w", err)
			}

			if outPath == "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			if err := os.WriteFile(outPath, data, 0o600); err != nil {
				return fmt.Errorf("write snapshot file: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote snapshot to %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "write the snapshot to this path instead of stdout")

	return cmd
}
