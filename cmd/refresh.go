package cmd

import (
	"github.com/spf13/cobra"

	"github.com/waja/dagsorden-harvester/internal/policy"
)

func newRefreshCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Force re-ingest of meetings within a days-back window",
		Long: `Walks years newest-first and re-downloads every meeting until it
crosses the cutoff date, picking up edits to already-seen meetings.
Assumes listings are reverse-chronological.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			disc, err := rt.discoverer()
			if err != nil {
				return err
			}
			orch, err := rt.orchestrator(true)
			if err != nil {
				return err
			}

			p := &policy.Refresh{
				Discoverer: disc,
				Ingester:   orch,
				Logger:     rt.logger,
				Days:       days,
			}
			return p.Run(ctx)
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "how many days back to refresh")
	return cmd
}
