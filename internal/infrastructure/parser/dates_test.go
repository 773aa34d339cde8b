package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"rfc1123 gmt", "Mon, 01 Jan 2024 00:00:00 GMT", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"rfc1123 offset", "Mon, 01 Jan 2024 08:00:00 +0800", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"single digit day", "Tue, 2 Jan 2024 10:00:00 +0000", time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)},
		{"rfc3339", "2024-01-02T03:04:05Z", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"rfc3339 fraction", "2024-01-02T03:04:05.123+02:00", time.Date(2024, 1, 2, 1, 4, 5, 123000000, time.UTC)},
		{"date only", "2024-03-09", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)},
		{"us zone name", "Wed, 03 Jan 2024 10:00:00 EST", time.Date(2024, 1, 3, 15, 0, 0, 0, time.UTC)},
		{"rfc822 shape fallback", "Tues, 02 January 2024 10:00:00 -0500", time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)},
		{"rfc822 shape no seconds", "Sat, 6 Jan 2024 9:30 +0100", time.Date(2024, 1, 6, 8, 30, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseDate(tc.raw)
			require.True(t, ok, "expected %q to parse", tc.raw)
			assert.True(t, tc.want.Equal(got), "want %s, got %s", tc.want, got.UTC())
		})
	}
}

func TestParseDateRejects(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "   ", "not a date", "yesterday-ish"} {
		_, ok := ParseDate(raw)
		assert.False(t, ok, "input %q", raw)
	}
}
