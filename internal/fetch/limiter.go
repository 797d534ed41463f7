package fetch

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/waja/dagsorden-harvester/internal/telemetry"
)

// Limiter enforces a minimum spacing of 1/rps seconds between outbound
// requests. Burst is fixed at one token, so there is no allowance for
// back-to-back requests regardless of how long the caller was idle.
type Limiter struct {
	rl *rate.Limiter
}

// NewLimiter builds a limiter for the given requests-per-second budget.
// A non-positive rps disables throttling.
func NewLimiter(rps float64) *Limiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &Limiter{rl: rate.NewLimiter(limit, 1)}
}

// Wait blocks until the next request slot is available or the context
// is done.
func (l *Limiter) Wait(ctx context.Context) error {
	start := time.Now()
	if err := l.rl.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	if waited := time.Since(start); waited > time.Millisecond {
		telemetry.ObserveRateLimitDelay(waited)
	}
	return nil
}
