package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/waja/dagsorden-harvester/internal/meeting"
)

func newIngestCmd() *cobra.Command {
	var (
		meetingURL string
		meetingID  string
	)
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest a single meeting by URL or id",
		Long: `Fetches one meeting's documents, attachments and optional audio into
the output root and prints the resulting metadata record.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if meetingURL == "" && meetingID == "" {
				return fmt.Errorf("provide --url or --id")
			}

			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			orch, err := rt.orchestrator(false)
			if err != nil {
				return err
			}

			var rec *meeting.Record
			if meetingURL != "" {
				rec, err = orch.Ingest(ctx, meetingURL)
			} else {
				rec, err = orch.IngestByID(ctx, meetingID)
			}
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			payload, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				return fmt.Errorf("render record: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			return nil
		},
	}
	cmd.Flags().StringVar(&meetingURL, "url", "", "meeting page URL (preferred)")
	cmd.Flags().StringVar(&meetingID, "id", "", "meeting GUID, used when no URL is known")
	return cmd
}
