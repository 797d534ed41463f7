package listing

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var yearPattern = regexp.MustCompile(`20\d{2}`)

// ParseYears enumerates the year options of the meeting-date filter
// control in a rendered frontpage snapshot. The result may be empty
// when the control is missing or unusable; callers decide the
// fallback.
func ParseYears(html string) ([]int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing html: %w", err)
	}
	seen := map[int]bool{}
	var years []int
	doc.Find("select[name*='moedeDato'] option").Each(func(_ int, opt *goquery.Selection) {
		candidate := strings.TrimSpace(opt.AttrOr("value", ""))
		if candidate == "" {
			candidate = strings.TrimSpace(opt.Text())
		}
		m := yearPattern.FindString(candidate)
		if m == "" {
			return
		}
		year, err := strconv.Atoi(m)
		if err != nil || seen[year] {
			return
		}
		seen[year] = true
		years = append(years, year)
	})
	return years, nil
}

// ParseEntries collects every result anchor from a rendered listing
// snapshot, in DOM order, with hrefs absolutized against base.
// Duplicates are kept; policies dedupe via the idempotency ledger.
func ParseEntries(html string, base *url.URL) ([]Entry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing html: %w", err)
	}
	anchors := doc.Find(primaryAnchorSelector)
	if anchors.Length() == 0 {
		anchors = doc.Find(fallbackAnchorSelector)
	}

	var entries []Entry
	anchors.Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" {
			return
		}
		entries = append(entries, Entry{
			URL:     absolutize(base, href),
			RawDate: dateNearAnchor(a),
		})
	})
	return entries, nil
}

func absolutize(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// dateSelectors are the places a listing row renders its date, tried
// in order before falling back to the anchor's whole text.
var dateSelectors = []string{
	"time",
	".dato",
	".date",
	".visningDato",
	".meeting-date",
	"small",
}

func dateNearAnchor(a *goquery.Selection) string {
	for _, sel := range dateSelectors {
		if token := DateToken(strings.TrimSpace(a.Find(sel).First().Text())); token != "" {
			return token
		}
	}
	return DateToken(strings.TrimSpace(a.Text()))
}
