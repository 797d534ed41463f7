package cmd

import (
	"github.com/spf13/cobra"

	"github.com/waja/dagsorden-harvester/internal/policy"
)

func newBackfillCmd() *cobra.Command {
	var (
		year      int
		printOnly bool
	)
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Crawl historical meetings, oldest year first",
		Long: `Discovers every available meeting year and ingests all meetings not
yet on disk. Safe to interrupt and re-run: completed meetings are
skipped, so repeated runs converge toward full coverage.`,
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
			orch, err := rt.orchestrator(false)
			if err != nil {
				return err
			}

			p := &policy.Backfill{
				Discoverer: disc,
				Ingester:   orch,
				Ledger:     rt.store,
				Logger:     rt.logger,
				Year:       year,
				PrintOnly:  printOnly,
			}
			return p.Run(ctx)
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "limit the backfill to a single year")
	cmd.Flags().BoolVar(&printOnly, "print-only", false, "only print discovered links; do not ingest")
	return cmd
}
