package tabular

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp_FastPath(t *testing.T) {
	got, err := ParseTimestamp("2025-05-01 10:30:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 1, 10, 30, 0, 0, time.UTC), got)
}

func TestParseTimestamp_FractionalSeconds(t *testing.T) {
	got, err := ParseTimestamp("2025-05-01 10:30:00.25")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 1, 10, 30, 0, 250_000_000, time.UTC), got)
}

func TestParseTimestamp_LayoutFallback(t *testing.T) {
	cases := map[string]time.Time{
		"2025/05/01 10:30:00":  time.Date(2025, 5, 1, 10, 30, 0, 0, time.UTC),
		"2025-05-01 10:30":     time.Date(2025, 5, 1, 10, 30, 0, 0, time.UTC),
		"2025-05-01T10:30:00":  time.Date(2025, 5, 1, 10, 30, 0, 0, time.UTC),
		"2025-05-01":           time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		"  2025-05-01 10:30:00 ": time.Date(2025, 5, 1, 10, 30, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := ParseTimestamp(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "2025-13-01 10:30:00", "10:30:00"} {
		_, err := ParseTimestamp(in)
		assert.Error(t, err, in)
	}
}
