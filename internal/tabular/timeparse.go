package tabular

import (
	"fmt"
	"strings"
	"time"
)

// Layouts seen across the schools' sensor exports. The fixed
// "2006-01-02 15:04:05" shape is by far the most common and is handled by
// the manual fast path before these are tried.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// ParseTimestamp parses a time cell. It accepts the common
// "YYYY-MM-DD HH:MM:SS[.fff]" shape via a manual fast path and falls back
// to a small list of layouts for the rest.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, ok := fastTimestamp(s); ok {
		return t, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// fastTimestamp parses "2006-01-02 15:04:05" with optional fractional
// seconds without going through time.Parse.
func fastTimestamp(ts string) (time.Time, bool) {
	if len(ts) < 19 || ts[4] != '-' || ts[7] != '-' || ts[10] != ' ' || ts[13] != ':' || ts[16] != ':' {
		return time.Time{}, false
	}

	year := parseInt4(ts[0:4])
	month := parseInt2(ts[5:7])
	day := parseInt2(ts[8:10])
	hour := parseInt2(ts[11:13])
	min := parseInt2(ts[14:16])
	sec := parseInt2(ts[17:19])

	if year < 0 || month < 1 || month > 12 || day < 1 || day > 31 ||
		hour < 0 || hour > 23 || min < 0 || min > 59 || sec < 0 || sec > 59 {
		return time.Time{}, false
	}

	var nsec int
	if len(ts) > 19 {
		if ts[19] != '.' || len(ts) == 20 {
			return time.Time{}, false
		}
		frac := ts[20:]
		if len(frac) > 9 {
			frac = frac[:9]
		}
		for i := 0; i < len(frac); i++ {
			d := frac[i] - '0'
			if d > 9 {
				return time.Time{}, false
			}
			nsec = nsec*10 + int(d)
		}
		for i := len(frac); i < 9; i++ {
			nsec *= 10
		}
	}

	return time.Date(year, time.Month(month), day, hour, min, sec, nsec, time.UTC), true
}

// parseInt2 parses a 2-digit decimal string. Returns -1 on error.
func parseInt2(s string) int {
	d1, d2 := s[0]-'0', s[1]-'0'
	if d1 > 9 || d2 > 9 {
		return -1
	}
	return int(d1)*10 + int(d2)
}

// parseInt4 parses a 4-digit decimal string. Returns -1 on error.
func parseInt4(s string) int {
	d1, d2, d3, d4 := s[0]-'0', s[1]-'0', s[2]-'0', s[3]-'0'
	if d1 > 9 || d2 > 9 || d3 > 9 || d4 > 9 {
		return -1
	}
	return int(d1)*1000 + int(d2)*100 + int(d3)*10 + int(d4)
}
