package meeting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		url    string
		wantID string
		wantOK bool
	}{
		{
			name:   "id query parameter",
			url:    "https://dagsordener.aarhus.dk/vis?request.kriterie=x&id=0af9b037-cf99-4cc6-80d1-0c5dd14e0b46",
			wantID: "0af9b037-cf99-4cc6-80d1-0c5dd14e0b46",
			wantOK: true,
		},
		{
			name:   "uppercase id is canonicalized",
			url:    "https://dagsordener.aarhus.dk/vis?id=0AF9B037-CF99-4CC6-80D1-0C5DD14E0B46",
			wantID: "0af9b037-cf99-4cc6-80d1-0c5dd14e0b46",
			wantOK: true,
		},
		{
			name:   "guid embedded in path",
			url:    "https://dagsordener.aarhus.dk/vis/pdf/dagsorden/0af9b037-cf99-4cc6-80d1-0c5dd14e0b46",
			wantID: "0af9b037-cf99-4cc6-80d1-0c5dd14e0b46",
			wantOK: true,
		},
		{
			name:   "no guid anywhere",
			url:    "https://dagsordener.aarhus.dk/vis?id=42",
			wantOK: false,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			id, ok := ParseIDFromURL(tt.url)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestIsGUID(t *testing.T) {
	t.Parallel()

	assert.True(t, IsGUID("0af9b037-cf99-4cc6-80d1-0c5dd14e0b46"))
	assert.False(t, IsGUID("b7a8c0ffee99"))
	assert.False(t, IsGUID(""))
}

func TestFindGUID(t *testing.T) {
	t.Parallel()

	id, ok := FindGUID("punktrow_0AF9B037-cf99-4cc6-80d1-0c5dd14e0b46")
	require.True(t, ok)
	assert.Equal(t, "0af9b037-cf99-4cc6-80d1-0c5dd14e0b46", id)

	_, ok = FindGUID("punktrow_17")
	assert.False(t, ok)
}

func TestShortHashDeterministic(t *testing.T) {
	t.Parallel()

	a := ShortHash("https://dagsordener.aarhus.dk/vis/pdf/bilag/x")
	b := ShortHash("https://dagsordener.aarhus.dk/vis/pdf/bilag/x")
	c := ShortHash("https://dagsordener.aarhus.dk/vis/pdf/bilag/y")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 12)
	assert.Regexp(t, "^[0-9a-f]{12}$", a)
}
