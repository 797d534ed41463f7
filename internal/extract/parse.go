// Package extract turns one rendered meeting page into a meeting
// record skeleton: identifiers, descriptive fields, and per-item
// attachment/audio references. Converting item content to prose is the
// HTML-cleaning collaborator's job, not this package's.
package extract

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/waja/dagsorden-harvester/internal/meeting"
)

// itemRowSelector matches one agenda-item row.
const itemRowSelector = "#dagsordenDetaljer tr.punktrow"

// pageData holds everything parsed from the DOM. MeetingID may be
// empty; the extractor resolves the final id from URL and DOM together.
type pageData struct {
	MeetingID    string
	Kind         meeting.Kind
	Committee    string
	Place        string
	ScheduleText string
	Items        []meeting.ItemRecord
}

// parseMeeting reads the meeting page snapshot. Descriptive fields are
// all optional: a selector that matches nothing leaves the field empty
// and is never an error.
func parseMeeting(html string, base *url.URL) (*pageData, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse meeting html: %w", err)
	}

	page := &pageData{
		Kind:         parseKind(firstText(doc.Selection, "h1.green.dato", "h1.dato")),
		Committee:    firstText(doc.Selection, ".title .udvalg", ".udvalg"),
		Place:        firstText(doc.Selection, ".title .sted", ".sted"),
		ScheduleText: firstText(doc.Selection, "table.dagsordeninfo .dato"),
		Items:        []meeting.ItemRecord{},
	}

	if did := doc.Find("#hentHeledagsorden").First().AttrOr("data-id", ""); did != "" {
		if id, ok := meeting.NormalizeGUID(did); ok {
			page.MeetingID = id
		}
	}

	doc.Find(itemRowSelector).Each(func(i int, row *goquery.Selection) {
		page.Items = append(page.Items, parseItem(i, row, base))
	})
	return page, nil
}

func parseKind(heading string) meeting.Kind {
	// Lowercased so compounds like "Tillægsdagsorden" classify too.
	lower := strings.ToLower(heading)
	switch {
	case strings.Contains(lower, "referat"):
		return meeting.KindMinutes
	case strings.Contains(lower, "dagsorden"):
		return meeting.KindAgenda
	default:
		return meeting.KindUnknown
	}
}

func parseItem(position int, row *goquery.Selection, base *url.URL) meeting.ItemRecord {
	item := meeting.ItemRecord{
		Title:       firstText(row, ".overskrift"),
		CaseNumber:  firstText(row, ".details .sagsnummer", ".sagsnummer"),
		Attachments: []meeting.AttachmentRef{},
		Audio:       []meeting.AudioRef{},
	}

	if id, ok := meeting.FindGUID(row.AttrOr("id", "")); ok {
		item.ItemID = id
	} else {
		fallback := item.Title
		if fallback == "" {
			fallback = strconv.Itoa(position)
		}
		item.ItemID = meeting.ShortHash(fallback)
	}

	if raw := firstText(row, ".punkt-col .label"); raw != "" {
		if idx, err := strconv.Atoi(raw); err == nil {
			item.Index = &idx
		}
	}

	row.Find("a.bilag-link[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" {
			return
		}
		item.Attachments = append(item.Attachments, meeting.AttachmentRef{
			ID:    attachmentID(a, href),
			Title: strings.TrimSpace(a.Text()),
			File:  meeting.FileRef{URL: absolutize(base, href)},
		})
	})

	item.Audio = parseAudio(row, base)
	return item
}

// attachmentID resolves an attachment id by trying, in order: the
// data-id of the nearest preceding pdf-label span, a GUID in the
// anchor's own id, a GUID in the href, and finally a hash of the href.
func attachmentID(a *goquery.Selection, href string) string {
	if val := a.PrevAllFiltered("span.pdf-label").First().AttrOr("data-id", ""); val != "" {
		if id, ok := meeting.NormalizeGUID(val); ok {
			return id
		}
	}
	if id, ok := meeting.FindGUID(a.AttrOr("id", "")); ok {
		return id
	}
	if id, ok := meeting.FindGUID(href); ok {
		return id
	}
	return meeting.ShortHash(href)
}

func parseAudio(row *goquery.Selection, base *url.URL) []meeting.AudioRef {
	refs := []meeting.AudioRef{}
	add := func(href, title string) {
		if href == "" || !strings.HasSuffix(href, ".mp3") {
			return
		}
		abs := absolutize(base, href)
		id, ok := meeting.FindGUID(abs)
		if !ok {
			id = meeting.ShortHash(abs)
		}
		refs = append(refs, meeting.AudioRef{
			ID:    id,
			Title: title,
			File:  meeting.FileRef{URL: abs},
		})
	}

	row.Find("a[href$='.mp3']").Each(func(_ int, a *goquery.Selection) {
		add(strings.TrimSpace(a.AttrOr("href", "")), strings.TrimSpace(a.Text()))
	})
	row.Find("audio[src], audio source[src]").Each(func(_ int, el *goquery.Selection) {
		add(strings.TrimSpace(el.AttrOr("src", "")), "")
	})
	return refs
}

// firstText tries selectors in order and returns the first non-empty
// trimmed text, making the fallback chain explicit.
func firstText(root *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(root.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func absolutize(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
