package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-09-24", time.Date(2025, 9, 24, 0, 0, 0, 0, time.UTC)},
		{"24-09-2025", time.Date(2025, 9, 24, 0, 0, 0, 0, time.UTC)},
		{"24.09.2025", time.Date(2025, 9, 24, 0, 0, 0, 0, time.UTC)},
		{"24/09/2025", time.Date(2025, 9, 24, 0, 0, 0, 0, time.UTC)},
		{"24.09.2025 kl. 16:00", time.Date(2025, 9, 24, 0, 0, 0, 0, time.UTC)},
		{"Onsdag den 24-09-2025 16:00", time.Date(2025, 9, 24, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, ok := ParseDate(tt.in)
		require.True(t, ok, tt.in)
		assert.True(t, got.Equal(tt.want), "%s parsed to %s", tt.in, got)
	}
}

func TestDateOnly(t *testing.T) {
	t.Parallel()

	in := time.Date(2025, 8, 31, 23, 59, 59, 12345, time.FixedZone("CEST", 2*3600))
	got := dateOnly(in)
	assert.True(t, got.Equal(time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)))
}

func TestParseDateRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "i går", "kl. 16:00", "24-09-25"} {
		_, ok := ParseDate(in)
		assert.False(t, ok, in)
	}
}
