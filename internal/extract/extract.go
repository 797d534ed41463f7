package extract

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/waja/dagsorden-harvester/internal/browser"
	"github.com/waja/dagsorden-harvester/internal/meeting"
)

// itemRowWaitTimeout bounds how long a meeting page gets to render its
// item rows before extraction proceeds with whatever is there.
const itemRowWaitTimeout = 15 * time.Second

// Extractor loads meeting pages in a browser tab and parses them.
type Extractor struct {
	session *browser.Session
	logger  *zap.Logger
	base    *url.URL
}

// NewExtractor builds an extractor that absolutizes references against
// baseURL.
func NewExtractor(session *browser.Session, baseURL string, logger *zap.Logger) (*Extractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return &Extractor{session: session, logger: logger, base: base}, nil
}

// Extract loads the meeting page and returns the record skeleton with
// unpopulated FileRefs. The meeting id is resolved from the URL first
// and the DOM second; failing both is fatal since the id keys the
// entire on-disk layout.
func (e *Extractor) Extract(ctx context.Context, meetingURL string) (*meeting.Record, error) {
	tab, cancel := e.session.NewTab(ctx)
	defer cancel()

	err := chromedp.Run(tab,
		browser.Viewport(),
		chromedp.Navigate(meetingURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("load meeting page %s: %w", meetingURL, err)
	}

	e.awaitItemRows(tab, meetingURL)

	var html string
	if err := chromedp.Run(tab, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("snapshot meeting page %s: %w", meetingURL, err)
	}

	page, err := parseMeeting(html, e.base)
	if err != nil {
		return nil, err
	}

	id := resolveMeetingID(meetingURL, page.MeetingID)
	if id == "" {
		return nil, &meeting.IdentifierMissingError{Scope: "meeting", Ref: meetingURL}
	}

	return &meeting.Record{
		MeetingID:    id,
		MeetingURL:   meetingURL,
		Kind:         page.Kind,
		Committee:    page.Committee,
		Place:        page.Place,
		ScheduleText: page.ScheduleText,
		Items:        page.Items,
		Errors:       []meeting.ErrorEntry{},
	}, nil
}

// awaitItemRows waits for agenda-item rows to render. Their absence is
// tolerated: some meetings legitimately have no items and the page
// sometimes renders them late, so this is a bounded wait, not a gate.
func (e *Extractor) awaitItemRows(tab context.Context, meetingURL string) {
	waitCtx, cancel := context.WithTimeout(tab, itemRowWaitTimeout)
	defer cancel()
	if err := chromedp.Run(waitCtx, chromedp.WaitVisible(itemRowSelector, chromedp.ByQuery)); err != nil {
		e.logger.Debug("item rows did not appear in time",
			zap.String("url", meetingURL))
	}
}

// resolveMeetingID prefers the URL-embedded id and falls back to the
// id the DOM advertises.
func resolveMeetingID(meetingURL, domID string) string {
	if id, ok := meeting.ParseIDFromURL(meetingURL); ok {
		return id
	}
	if id, ok := meeting.NormalizeGUID(domID); ok {
		return id
	}
	return ""
}
