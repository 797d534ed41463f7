package ingest

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Artifact URLs are built deterministically from the GUID so that every
// rerun requests the same target. The redirectDirectlyToPdf flag makes
// the portal serve bytes instead of its viewer shell.

// ViewURL returns the meeting page URL for a bare meeting id.
func ViewURL(base *url.URL, meetingID string) string {
	return strings.TrimRight(base.String(), "/") + "/vis?id=" + meetingID
}

// FullDocumentURL returns the whole-meeting PDF URL.
func FullDocumentURL(base *url.URL, meetingID string) string {
	return fmt.Sprintf("%s/vis/pdf/dagsorden/%s?redirectDirectlyToPdf=true",
		strings.TrimRight(base.String(), "/"), meetingID)
}

// ItemDocumentURL returns the per-item PDF URL.
func ItemDocumentURL(base *url.URL, itemID string) string {
	return fmt.Sprintf("%s/vis/pdf/dagsordenpunkt/%s?redirectDirectlyToPdf=true",
		strings.TrimRight(base.String(), "/"), itemID)
}

var redirectFlagOff = regexp.MustCompile(`redirectDirectlyToPdf=(?:false|0)`)

// NormalizeAttachmentURL rewrites an attachment link into its
// direct-download form.
func NormalizeAttachmentURL(rawURL string) string {
	if strings.Contains(rawURL, "redirectDirectlyToPdf=") {
		return redirectFlagOff.ReplaceAllString(rawURL, "redirectDirectlyToPdf=true")
	}
	if strings.Contains(rawURL, "/vis/pdf/bilag/") && !strings.Contains(rawURL, "?") {
		return rawURL + "?redirectDirectlyToPdf=true"
	}
	return rawURL
}
