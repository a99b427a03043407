// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/commodity-forecast/pkg/constants"
)

const (
	// DateLayout is the canonical output date format.
	DateLayout = constants.DateLayout
)

// inputLayouts are tried in order by ParseDate. The two-digit spreadsheet
// layout comes before the US layout since excelize renders date cells that way.
var inputLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01-02-06",
	"1/2/2006",
	"1/2/06",
}

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// MustParseDate is MustParseTime with the canonical DateLayout.
func MustParseDate(dateStr string) time.Time {
	return MustParseTime(DateLayout, dateStr)
}

// ParseDate parses a calendar date in any of the supported input layouts and
// truncates it to midnight UTC.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range inputLayouts {
		t, err := time.Parse(layout, trimmed)
		if err == nil {
			return Truncate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// Truncate drops the time-of-day and location of t, keeping its calendar date.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Format renders t with the canonical DateLayout.
func Format(t time.Time) string {
	return t.Format(DateLayout)
}
