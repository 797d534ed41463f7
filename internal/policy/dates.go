package policy

import (
	"regexp"
	"strings"
	"time"
)

// dateLayouts are the date renderings seen in listing rows and meeting
// schedule text, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02.01.2006",
	"02/01/2006",
}

var dateTokenPattern = regexp.MustCompile(
	`\d{4}-\d{2}-\d{2}|\d{2}-\d{2}-\d{4}|\d{2}\.\d{2}\.\d{4}|\d{2}/\d{2}/\d{4}`)

// dateOnly truncates t to its calendar date in UTC, the frame ParseDate
// values live in, so watermark comparisons work at day granularity.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate extracts a calendar date from free-form text such as a
// listing date token or a meeting's schedule line ("24.09.2025 kl.
// 16:00"). Returns ok=false when no date can be recognized.
func ParseDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	if token := dateTokenPattern.FindString(text); token != "" {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, token); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
