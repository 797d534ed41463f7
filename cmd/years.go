package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newYearsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "years",
		Short: "Print the meeting years the portal offers",
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
			years, err := disc.Years(ctx)
			if err != nil {
				return err
			}
			for _, year := range years {
				fmt.Fprintln(cmd.OutOrStdout(), year)
			}
			return nil
		},
	}
}
