package meeting

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// guidPattern matches the GUID tokens the source embeds in URLs, DOM
// ids and data attributes.
var guidPattern = regexp.MustCompile(
	`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)

// IdentifierMissingError reports that no stable identifier could be
// resolved for a meeting or item. It is the only fatal error category
// at meeting granularity: everything downstream is keyed on the id.
type IdentifierMissingError struct {
	Scope string // "meeting" or "item"
	Ref   string // URL or other hint for the operator
}

func (e *IdentifierMissingError) Error() string {
	return fmt.Sprintf("no %s identifier resolvable (%s)", e.Scope, e.Ref)
}

// NormalizeGUID validates s as a GUID and returns its canonical
// lowercase form.
func NormalizeGUID(s string) (string, bool) {
	u, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return u.String(), true
}

// IsGUID reports whether s is a well-formed GUID. Items whose id fell
// back to a content hash fail this check, which tells the orchestrator
// it cannot build a document URL for them.
func IsGUID(s string) bool {
	_, ok := NormalizeGUID(s)
	return ok
}

// FindGUID returns the first GUID token found in s, lowercased.
func FindGUID(s string) (string, bool) {
	m := guidPattern.FindString(s)
	if m == "" {
		return "", false
	}
	return strings.ToLower(m), true
}

// ParseIDFromURL extracts a meeting id from a meeting page URL. The
// explicit id query parameter wins; otherwise any GUID token anywhere
// in the URL is accepted.
func ParseIDFromURL(rawURL string) (string, bool) {
	if u, err := url.Parse(rawURL); err == nil {
		if id, ok := NormalizeGUID(u.Query().Get("id")); ok {
			return id, true
		}
	}
	return FindGUID(rawURL)
}

// ShortHash derives a deterministic 12-character fallback id from a
// reference URL or title. Trees materialized before an id became
// discoverable stay stable across reruns because the hash only depends
// on the input string.
func ShortHash(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}
