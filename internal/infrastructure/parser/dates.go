package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04 -0700",
	"Mon, 2 Jan 2006 15:04 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 MST",
	time.RFC822Z,
	time.RFC822,
	time.RFC850,
	time.UnixDate,
	time.ANSIC,
}

var (
	rfc822Expr = regexp.MustCompile(`(\d{1,2})\s+([A-Za-z]{3})[A-Za-z]*\.?\s+(\d{4})\s+(\d{1,2}):(\d{2})(?::(\d{2}))?\s*([A-Za-z]{1,5}|[+-]\d{4})?`)

	// US zone names Go would otherwise parse with a zero offset.
	zoneOffsets = map[string]string{
		"EST": "-0500", "EDT": "-0400",
		"CST": "-0600", "CDT": "-0500",
		"MST": "-0700", "MDT": "-0600",
		"PST": "-0800", "PDT": "-0700",
	}
)

// ParseDate parses a feed date string. The second result is false when no
// known shape matched; callers substitute the Unix epoch.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	raw = normalizeZone(raw)

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}

	m := rfc822Expr.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, false
	}

	sec := m[6]
	if sec == "" {
		sec = "00"
	}
	month := strings.ToUpper(m[2][:1]) + strings.ToLower(m[2][1:])
	rebuilt := fmt.Sprintf("%s %s %s %s:%s:%s", m[1], month, m[3], m[4], m[5], sec)

	zone := m[7]
	if offset, ok := zoneOffsets[strings.ToUpper(zone)]; ok {
		zone = offset
	}
	switch {
	case zone == "":
		if t, err := time.Parse("2 Jan 2006 15:04:05", rebuilt); err == nil {
			return t, true
		}
	case zone[0] == '+' || zone[0] == '-':
		if t, err := time.Parse("2 Jan 2006 15:04:05 -0700", rebuilt+" "+zone); err == nil {
			return t, true
		}
	default:
		if t, err := time.Parse("2 Jan 2006 15:04:05 MST", rebuilt+" "+strings.ToUpper(zone)); err == nil {
			return t, true
		}
		if t, err := time.Parse("2 Jan 2006 15:04:05", rebuilt); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func normalizeZone(raw string) string {
	i := strings.LastIndexByte(raw, ' ')
	if i < 0 {
		return raw
	}
	if offset, ok := zoneOffsets[raw[i+1:]]; ok {
		return raw[:i+1] + offset
	}
	return raw
}
