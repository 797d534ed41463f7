package cmd

import (
	"github.com/spf13/cobra"

	"github.com/waja/dagsorden-harvester/internal/policy"
)

func newIncrementalCmd() *cobra.Command {
	var (
		limit     int
		printOnly bool
	)
	cmd := &cobra.Command{
		Use:   "incremental",
		Short: "Ingest the latest meetings from the frontpage list",
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

			p := &policy.Incremental{
				Discoverer: disc,
				Ingester:   orch,
				Ledger:     rt.store,
				Logger:     rt.logger,
				Limit:      limit,
				PrintOnly:  printOnly,
			}
			return p.Run(ctx)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "how many frontpage links to process")
	cmd.Flags().BoolVar(&printOnly, "print-only", false, "only print discovered links; do not ingest")
	return cmd
}
