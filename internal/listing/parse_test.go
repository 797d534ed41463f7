package listing

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frontpageHTML = `<!doctype html>
<html><body>
<form>
  <select name="request.kriterie.moedeDato">
    <option value="">Alle år</option>
    <option value="2025">2025</option>
    <option value="2024">2024</option>
    <option>Møder i 2023</option>
    <option value="2024">2024 igen</option>
    <option value="abc">ukendt</option>
  </select>
</form>
</body></html>`

const resultsHTML = `<!doctype html>
<html><body>
<div id="resultater">
  <a class="searchresult" href="/vis?id=0af9b037-cf99-4cc6-80d1-0c5dd14e0b46">
    <span class="udvalg">Byrådet</span>
    <span class="dato">24.09.2025 kl. 16:00</span>
  </a>
  <a class="searchresult" href="https://dagsordener.aarhus.dk/vis?id=1bf9b037-cf99-4cc6-80d1-0c5dd14e0b46">
    <time datetime="2025-09-10">2025-09-10</time>
  </a>
  <a class="searchresult" href="/vis?id=2cf9b037-cf99-4cc6-80d1-0c5dd14e0b46">
    Teknisk Udvalg, møde 03/09/2025
  </a>
  <a class="searchresult" href="">ignored, no href</a>
</div>
</body></html>`

const fallbackResultsHTML = `<!doctype html>
<html><body>
<a class="list-group-item searchresult" href="/vis?id=0af9b037-cf99-4cc6-80d1-0c5dd14e0b46">
  <small>10-09-2025</small>
</a>
</body></html>`

func TestParseYears(t *testing.T) {
	t.Parallel()

	years, err := ParseYears(frontpageHTML)
	require.NoError(t, err)
	assert.Equal(t, []int{2025, 2024, 2023}, years)
}

func TestParseYearsMissingControl(t *testing.T) {
	t.Parallel()

	years, err := ParseYears("<html><body><p>nothing here</p></body></html>")
	require.NoError(t, err)
	assert.Empty(t, years)
}

func TestParseEntries(t *testing.T) {
	t.Parallel()

	base, err := url.Parse("https://dagsordener.aarhus.dk/")
	require.NoError(t, err)

	entries, err := ParseEntries(resultsHTML, base)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "https://dagsordener.aarhus.dk/vis?id=0af9b037-cf99-4cc6-80d1-0c5dd14e0b46", entries[0].URL)
	assert.Equal(t, "24.09.2025", entries[0].RawDate)

	assert.Equal(t, "https://dagsordener.aarhus.dk/vis?id=1bf9b037-cf99-4cc6-80d1-0c5dd14e0b46", entries[1].URL)
	assert.Equal(t, "2025-09-10", entries[1].RawDate)

	// Date token pulled from the anchor's own text when no child
	// element carries it.
	assert.Equal(t, "03/09/2025", entries[2].RawDate)
}

func TestParseEntriesFallbackSelector(t *testing.T) {
	t.Parallel()

	base, err := url.Parse("https://dagsordener.aarhus.dk/")
	require.NoError(t, err)

	entries, err := ParseEntries(fallbackResultsHTML, base)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "https://dagsordener.aarhus.dk/vis?id=0af9b037-cf99-4cc6-80d1-0c5dd14e0b46", entries[0].URL)
	assert.Equal(t, "10-09-2025", entries[0].RawDate)
}

func TestYearFilterURL(t *testing.T) {
	t.Parallel()

	got, err := YearFilterURL("https://dagsordener.aarhus.dk/", 2023)
	require.NoError(t, err)
	assert.Equal(t, "https://dagsordener.aarhus.dk/?request.kriterie.udvalgId=&request.kriterie.moedeDato=2023", got)
}

func TestDateToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Møde den 24.09.2025 kl. 16:00", "24.09.2025"},
		{"2025-09-10", "2025-09-10"},
		{"10-09-2025", "10-09-2025"},
		{"03/09/2025", "03/09/2025"},
		{"ingen dato", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DateToken(tt.in), tt.in)
	}
}
