package ingest

import (
	"strings"
	"time"
)

// dateFormats to try, most common bank-export formats first.
var dateFormats = []string{
	"2006-01-02", // ISO
	"2006/01/02",
	"02/01/2006", // DD/MM/YYYY
	"2/1/2006",
	"01/02/2006", // MM/DD/YYYY (US exports)
	"1/2/2006",
	"02-01-2006",
	"02.01.2006",
	"Jan 02 2006",
	"Jan 2 2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 02, 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02/01/06", // DD/MM/YY
	"2/1/06",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate leniently parses a calendar date from statement text. Returns
// ok=false for values that match no known format; the normalizer drops
// those rows rather than retaining them with a zero date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
