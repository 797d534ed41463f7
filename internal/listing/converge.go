package listing

import (
	"context"
	"time"
)

// pager is the surface the convergence loop drives. The production
// implementation talks to a browser tab; tests script it.
type pager interface {
	// AnchorCount reports how many result anchors are rendered.
	AnchorCount(ctx context.Context) (int, error)
	// PageHeight reports the page's total rendered height.
	PageHeight(ctx context.Context) (int, error)
	// LoadMore clicks an explicit load-more control if one is visible
	// and enabled, reporting whether a click happened.
	LoadMore(ctx context.Context) (bool, error)
	// ScrollBottom scrolls the results container (or the window) to
	// its bottom and nudges with an end-of-list key press.
	ScrollBottom(ctx context.Context) error
	// Settle waits briefly for the page to react to an advance.
	Settle(ctx context.Context) error
}

// convergeConfig bounds the loop. Both the load-more control and raw
// scrolling can silently stop working depending on which rendering
// path the site takes, so a round only counts as stable when neither
// the anchor count nor the page height moved.
type convergeConfig struct {
	maxRounds    int
	stableRounds int
	growthBudget time.Duration
	pollEvery    time.Duration
}

func defaultConvergeConfig() convergeConfig {
	return convergeConfig{
		maxRounds:    400,
		stableRounds: 5,
		growthBudget: 4 * time.Second,
		pollEvery:    250 * time.Millisecond,
	}
}

// converge performs one advance action per round until the list stops
// growing for stableRounds consecutive rounds or maxRounds is hit.
// It returns the number of rounds executed.
func converge(ctx context.Context, p pager, cfg convergeConfig) (int, error) {
	stable := 0
	prevCount, prevHeight := -1, -1

	for round := 1; round <= cfg.maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return round - 1, err
		}

		clicked, err := p.LoadMore(ctx)
		if err != nil {
			clicked = false
		}
		if !clicked {
			// Scroll failures are tolerated; the measurement below
			// decides whether anything happened.
			_ = p.ScrollBottom(ctx)
		}
		if err := p.Settle(ctx); err != nil {
			return round, err
		}
		waitForGrowth(ctx, p, prevCount, prevHeight, cfg)

		count, err := p.AnchorCount(ctx)
		if err != nil {
			return round, err
		}
		height, err := p.PageHeight(ctx)
		if err != nil {
			return round, err
		}

		if count == prevCount && height == prevHeight {
			stable++
		} else {
			stable = 0
		}
		if stable >= cfg.stableRounds {
			return round, nil
		}
		prevCount, prevHeight = count, height
	}
	return cfg.maxRounds, nil
}

// waitForGrowth polls until either signal exceeds its previous value
// or the budget runs out. Best effort only; measurement errors end the
// wait and are surfaced by the caller's next read.
func waitForGrowth(ctx context.Context, p pager, prevCount, prevHeight int, cfg convergeConfig) {
	deadline := time.Now().Add(cfg.growthBudget)
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return
		}
		count, err := p.AnchorCount(ctx)
		if err != nil {
			return
		}
		height, err := p.PageHeight(ctx)
		if err != nil {
			return
		}
		if count > prevCount || height > prevHeight {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(cfg.pollEvery):
		}
	}
}
