package listing

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"

	"github.com/waja/dagsorden-harvester/internal/browser"
)

// resultWaitTimeout bounds each attempt to see the result list appear
// before falling back per the discovery-timeout contract.
const resultWaitTimeout = 10 * time.Second

// Discoverer finds meeting links via a browser session.
type Discoverer struct {
	session *browser.Session
	logger  *zap.Logger
	rootURL string
	base    *url.URL
	cfg     convergeConfig
}

// NewDiscoverer builds a discoverer rooted at the portal frontpage.
func NewDiscoverer(session *browser.Session, rootURL string, logger *zap.Logger) (*Discoverer, error) {
	base, err := url.Parse(rootURL)
	if err != nil {
		return nil, fmt.Errorf("parse root listing url: %w", err)
	}
	return &Discoverer{
		session: session,
		logger:  logger,
		rootURL: rootURL,
		base:    base,
		cfg:     defaultConvergeConfig(),
	}, nil
}

// Years enumerates the meeting years offered by the frontpage filter
// control, ascending. When the control yields nothing usable the
// current calendar year is returned instead, so an unusable control is
// never mistaken for "no years available".
func (d *Discoverer) Years(ctx context.Context) ([]int, error) {
	tab, cancel := d.session.NewTab(ctx)
	defer cancel()

	var html string
	err := chromedp.Run(tab,
		browser.Viewport(),
		chromedp.Navigate(d.rootURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("load frontpage for year menu: %w", err)
	}

	years, err := ParseYears(html)
	if err != nil {
		return nil, err
	}
	if len(years) == 0 {
		fallback := time.Now().Year()
		d.logger.Warn("year control yielded nothing, falling back to current year",
			zap.Int("year", fallback))
		years = []int{fallback}
	}
	sort.Ints(years)
	return years, nil
}

// Entries loads the year-filtered listing, advances it until the
// rendered list converges, and returns every anchor in DOM order.
func (d *Discoverer) Entries(ctx context.Context, year int) ([]Entry, error) {
	target, err := YearFilterURL(d.rootURL, year)
	if err != nil {
		return nil, err
	}

	tab, cancel := d.session.NewTab(ctx)
	defer cancel()

	if err := chromedp.Run(tab, browser.Viewport(), chromedp.Navigate(target)); err != nil {
		return nil, fmt.Errorf("navigate year listing %d: %w", year, err)
	}
	d.awaitResults(tab)

	rounds, err := converge(ctx, &domPager{tab: tab}, d.cfg)
	if err != nil {
		return nil, fmt.Errorf("converge year listing %d: %w", year, err)
	}

	var html string
	if err := chromedp.Run(tab, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("snapshot year listing %d: %w", year, err)
	}
	entries, err := ParseEntries(html, d.base)
	if err != nil {
		return nil, err
	}
	d.logger.Info("year listing converged",
		zap.Int("year", year),
		zap.Int("entries", len(entries)),
		zap.Int("rounds", rounds))
	return entries, nil
}

// Frontpage returns up to limit entries from the unfiltered frontpage
// list, no scrolling involved.
func (d *Discoverer) Frontpage(ctx context.Context, limit int) ([]Entry, error) {
	tab, cancel := d.session.NewTab(ctx)
	defer cancel()

	if err := chromedp.Run(tab, browser.Viewport(), chromedp.Navigate(d.rootURL)); err != nil {
		return nil, fmt.Errorf("navigate frontpage: %w", err)
	}
	d.awaitResults(tab)

	var html string
	if err := chromedp.Run(tab, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("snapshot frontpage: %w", err)
	}
	entries, err := ParseEntries(html, d.base)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// awaitResults waits for the result anchors with the primary selector,
// falls back to the alternate selector once, and on renewed timeout
// lets the caller proceed with whatever the page holds.
func (d *Discoverer) awaitResults(tab context.Context) {
	if d.waitVisible(tab, primaryAnchorSelector) {
		return
	}
	if d.waitVisible(tab, fallbackAnchorSelector) {
		return
	}
	d.logger.Warn("result list never appeared, proceeding with partial page")
}

func (d *Discoverer) waitVisible(tab context.Context, selector string) bool {
	waitCtx, cancel := context.WithTimeout(tab, resultWaitTimeout)
	defer cancel()
	return chromedp.Run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery)) == nil
}

// domPager drives one listing tab for the convergence loop.
type domPager struct {
	tab context.Context
}

const loadMoreScript = `(() => {
	const usable = (el) => {
		if (!el || el.disabled) return false;
		const style = window.getComputedStyle(el);
		if (style.display === 'none' || style.visibility === 'hidden') return false;
		const rect = el.getBoundingClientRect();
		return rect.width > 0 && rect.height > 0;
	};
	for (const sel of ['#visMere', '.load-more']) {
		const el = document.querySelector(sel);
		if (usable(el)) { el.click(); return true; }
	}
	for (const el of document.querySelectorAll('button, a')) {
		if ((el.textContent || '').includes('Vis flere') && usable(el)) {
			el.click();
			return true;
		}
	}
	return false;
})()`

const scrollScript = `(() => {
	const el = document.querySelector('#resultater');
	if (el) { el.scrollTo(0, el.scrollHeight); }
	else { window.scrollTo(0, document.body.scrollHeight); }
})()`

func (p *domPager) AnchorCount(_ context.Context) (int, error) {
	var count int
	script := fmt.Sprintf("document.querySelectorAll(%q).length", anchorQuery)
	if err := chromedp.Run(p.tab, chromedp.Evaluate(script, &count)); err != nil {
		return 0, fmt.Errorf("count anchors: %w", err)
	}
	return count, nil
}

func (p *domPager) PageHeight(_ context.Context) (int, error) {
	var height int
	if err := chromedp.Run(p.tab, chromedp.Evaluate("document.body.scrollHeight", &height)); err != nil {
		return 0, fmt.Errorf("read page height: %w", err)
	}
	return height, nil
}

func (p *domPager) LoadMore(_ context.Context) (bool, error) {
	var clicked bool
	if err := chromedp.Run(p.tab, chromedp.Evaluate(loadMoreScript, &clicked)); err != nil {
		return false, fmt.Errorf("click load more: %w", err)
	}
	return clicked, nil
}

func (p *domPager) ScrollBottom(_ context.Context) error {
	err := chromedp.Run(p.tab,
		chromedp.Evaluate(scrollScript, nil),
		chromedp.KeyEvent(kb.End),
	)
	if err != nil {
		return fmt.Errorf("scroll to bottom: %w", err)
	}
	return nil
}

func (p *domPager) Settle(_ context.Context) error {
	return chromedp.Run(p.tab, chromedp.Sleep(1200*time.Millisecond))
}
