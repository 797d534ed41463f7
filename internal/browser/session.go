// Package browser manages the headless Chrome session used for listing
// discovery and meeting extraction. One session backs one policy run;
// every discovery or extraction call gets its own tab context that is
// released on all exit paths.
package browser

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
)

const defaultNavTimeout = 45 * time.Second

// Config controls the browser session.
type Config struct {
	// Headful shows the browser window instead of running headless.
	Headful    bool
	UserAgent  string
	NavTimeout time.Duration
}

// Session owns a chromedp exec allocator. The underlying Chrome
// process is shared by all tabs opened through NewTab and torn down by
// Close.
type Session struct {
	cfg         Config
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// New creates a session. Chrome itself is launched lazily on the first
// tab that runs an action.
func New(cfg Config) *Session {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !cfg.Headful),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &Session{
		cfg:         cfg,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
	}
}

// Close tears down the allocator and the browser with it.
func (s *Session) Close() {
	s.allocCancel()
}

// NewTab returns a tab context bounded by the session's navigation
// timeout. Cancellation of the caller's context is forwarded. The
// returned cancel must be called on every path.
func (s *Session) NewTab(ctx context.Context) (context.Context, context.CancelFunc) {
	tabCtx, tabCancel := chromedp.NewContext(s.allocCtx)
	timeoutCtx, timeoutCancel := context.WithTimeout(tabCtx, s.navTimeout())
	stop := forwardCancel(ctx, timeoutCancel)
	return timeoutCtx, func() {
		stop()
		timeoutCancel()
		tabCancel()
	}
}

func (s *Session) navTimeout() time.Duration {
	if s.cfg.NavTimeout > 0 {
		return s.cfg.NavTimeout
	}
	return defaultNavTimeout
}

// Viewport sizes a tab like a desktop window. The portal collapses its
// result list into a mobile layout below ~1000px, which changes the
// anchor markup.
func Viewport() chromedp.Action {
	return emulation.SetDeviceMetricsOverride(1366, 960, 1, false)
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
