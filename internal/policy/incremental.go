package policy

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Incremental ingests the newest meetings from the frontpage list,
// skipping anything already on disk. It is the cheap, frequently-run
// policy: no year enumeration, no scrolling.
type Incremental struct {
	Discoverer Discoverer
	Ingester   Ingester
	Ledger     Ledger
	Logger     *zap.Logger
	// Limit caps how many frontpage links are considered.
	Limit int
	// PrintOnly lists discovered links without ingesting.
	PrintOnly bool
}

// Run executes one incremental pass.
func (p *Incremental) Run(ctx context.Context) error {
	entries, err := p.Discoverer.Frontpage(ctx, p.Limit)
	if err != nil {
		return fmt.Errorf("discover frontpage: %w", err)
	}
	if p.PrintOnly {
		printEntries(entries, p.Logger)
		return nil
	}
	ingested := ingestEntries(ctx, entries, p.Ingester, p.Ledger, p.Logger, "incremental", true)
	p.Logger.Info("incremental pass finished",
		zap.Int("candidates", len(entries)),
		zap.Int("ingested", ingested))
	return ctx.Err()
}
