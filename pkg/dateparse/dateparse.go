// Package dateparse turns loosely formatted resume dates into calendar dates.
package dateparse

import (
	"strings"
	"time"
)

// ISOLayout is the canonical rendering of a normalized date.
const ISOLayout = "2006-01-02"

const rangeSeparator = " - "

// layouts are tried in order and the first successful parse wins.
var layouts = []string{
	"2006",           // year only
	"Jan 2006",       // abbreviated month / year
	"January 2006",   // full month / year
	ISOLayout,        // ISO calendar date
	"2 Jan 2006",     // day / abbreviated month / year
	"2 January 2006", // day / full month / year
}

// Normalize parses expr into a UTC calendar date. For ranges such as
// "Jan 2019 - Mar 2021" only the start is considered. Year-only and
// month/year inputs resolve to the first day of that period. A nil result
// means the expression is empty, matches none of the supported layouts
// or falls before year 1.
func Normalize(expr string) *time.Time {
	s := strings.TrimSpace(expr)
	if i := strings.Index(s, rangeSeparator); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if s == "" {
		return nil
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			// Postgres DATE has no year zero.
			if t.Year() < 1 {
				return nil
			}
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

// NormalizePtr is Normalize for optional expressions.
func NormalizePtr(expr *string) *time.Time {
	if expr == nil {
		return nil
	}
	return Normalize(*expr)
}

// FormatISO renders t as YYYY-MM-DD, or nil when t is nil.
func FormatISO(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(ISOLayout)
	return &s
}
