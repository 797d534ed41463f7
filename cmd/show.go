package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/waja/dagsorden-harvester/internal/meeting"
)

func newShowCmd() *cobra.Command {
	var meetingID string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored metadata record of an ingested meeting",
		Long: `Reads the meeting's meta.json from the output root and prints it.
No browser and no network involved.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			id, ok := meeting.NormalizeGUID(meetingID)
			if !ok {
				return fmt.Errorf("--id must be a meeting GUID, got %q", meetingID)
			}
			if !rt.store.Exists(id) {
				return fmt.Errorf("meeting %s is not ingested", id)
			}
			rec, err := rt.store.Load(id)
			if err != nil {
				return err
			}
			payload, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				return fmt.Errorf("render record: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			return nil
		},
	}
	cmd.Flags().StringVar(&meetingID, "id", "", "meeting GUID")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
