package listing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePager grows by growthStep anchors per advance for growthRounds
// rounds and then stops, mimicking a lazily-loaded list that runs out
// of results.
type fakePager struct {
	growthRounds int
	growthStep   int

	advances int
	count    int
	clicks   int
	scrolls  int
}

func (f *fakePager) advance() {
	f.advances++
	if f.advances <= f.growthRounds {
		f.count += f.growthStep
	}
}

func (f *fakePager) AnchorCount(context.Context) (int, error) { return f.count, nil }
func (f *fakePager) PageHeight(context.Context) (int, error)  { return 100 * f.count, nil }

func (f *fakePager) LoadMore(context.Context) (bool, error) {
	// Button is only rendered while results remain.
	if f.advances < f.growthRounds {
		f.clicks++
		f.advance()
		return true, nil
	}
	return false, nil
}

func (f *fakePager) ScrollBottom(context.Context) error {
	f.scrolls++
	f.advance()
	return nil
}

func (f *fakePager) Settle(context.Context) error { return nil }

func fastConvergeConfig() convergeConfig {
	return convergeConfig{
		maxRounds:    400,
		stableRounds: 5,
		growthBudget: time.Millisecond,
		pollEvery:    time.Millisecond,
	}
}

func TestConvergeStopsAfterStableRounds(t *testing.T) {
	t.Parallel()

	p := &fakePager{growthRounds: 7, growthStep: 10}
	cfg := fastConvergeConfig()

	rounds, err := converge(context.Background(), p, cfg)
	require.NoError(t, err)

	assert.Equal(t, 70, p.count)
	// Exactly the growth rounds plus the stability confirmation tail.
	assert.Equal(t, p.growthRounds+cfg.stableRounds, rounds)
	assert.Greater(t, p.clicks, 0)
	assert.Greater(t, p.scrolls, 0)
}

func TestConvergeEmptyListTerminatesQuickly(t *testing.T) {
	t.Parallel()

	p := &fakePager{growthRounds: 0, growthStep: 0}
	cfg := fastConvergeConfig()

	rounds, err := converge(context.Background(), p, cfg)
	require.NoError(t, err)
	// First round establishes the baseline, then stableRounds confirm.
	assert.Equal(t, cfg.stableRounds+1, rounds)
}

func TestConvergeHonorsMaxRounds(t *testing.T) {
	t.Parallel()

	// Never stops growing.
	p := &fakePager{growthRounds: 1 << 30, growthStep: 1}
	cfg := fastConvergeConfig()
	cfg.maxRounds = 12

	rounds, err := converge(context.Background(), p, cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.maxRounds, rounds)
}

func TestConvergeRespectsContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &fakePager{growthRounds: 3, growthStep: 1}
	_, err := converge(ctx, p, fastConvergeConfig())
	assert.ErrorIs(t, err, context.Canceled)
}
