package core

import (
	"strings"
	"time"
)

// dateLayouts are tried in order. The source spreadsheet has seen ISO
// dates, Italian day-first dates and full datetimes across its revisions.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
	"02/01/06",
}

// ParseDate parses a raw date cell against the tolerated layouts. Rows
// whose date does not parse are excluded from the ledger by the loader.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}
