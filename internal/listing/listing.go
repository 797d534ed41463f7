// Package listing discovers meeting links on the portal's dynamic,
// lazily-loaded listing pages. The pages expose no pagination API; the
// discoverer drives a real browser until the rendered list stops
// growing and then parses the settled DOM.
package listing

import (
	"fmt"
	"net/url"
	"regexp"
)

// Entry is one discovered meeting link. RawDate is a best-effort date
// token scraped near the anchor and may be empty; it is only used for
// ordering and threshold decisions, never as the meeting's identity.
type Entry struct {
	URL     string
	RawDate string
}

// Anchor selectors for the result list, in fallback order. The site
// has rendered the list both inside and outside the #resultater
// container depending on its release, so both shapes are tried.
const (
	primaryAnchorSelector  = "#resultater a.searchresult"
	fallbackAnchorSelector = "a.list-group-item.searchresult"
)

// anchorQuery matches either shape in one querySelectorAll call.
const anchorQuery = primaryAnchorSelector + ", " + fallbackAnchorSelector

// YearFilterURL returns the listing URL filtered to one meeting year.
func YearFilterURL(frontpageURL string, year int) (string, error) {
	base, err := url.Parse(frontpageURL)
	if err != nil {
		return "", fmt.Errorf("parse frontpage url: %w", err)
	}
	ref := &url.URL{
		RawQuery: fmt.Sprintf("request.kriterie.udvalgId=&request.kriterie.moedeDato=%d", year),
	}
	return base.ResolveReference(ref).String(), nil
}

// dateTokenPattern covers the date renderings seen in listing rows.
var dateTokenPattern = regexp.MustCompile(
	`\d{4}-\d{2}-\d{2}|\d{2}-\d{2}-\d{4}|\d{2}\.\d{2}\.\d{4}|\d{2}/\d{2}/\d{4}`)

// DateToken extracts the first date-looking token from text, or "".
func DateToken(text string) string {
	return dateTokenPattern.FindString(text)
}
