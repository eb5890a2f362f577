package core

import (
	"fmt"
	"strings"
	"time"
)

// Month is a calendar month, the period key of a route-month observation.
type Month struct {
	Year  int
	Month time.Month
}

// monthLayouts are the accepted textual forms of a month value, tried in order.
var monthLayouts = []string{
	"2006-01",
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"1/2/2006",
	"01/02/2006",
	"2006/01",
	"2006/01/02",
	"Jan 2006",
	"January 2006",
}

// ParseMonth parses a month from any of the supported layouts.
// Day and time components are discarded.
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return MonthOf(t), nil
		}
	}
	return Month{}, fmt.Errorf("unrecognized month %q", s)
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// String formats the month as YYYY-MM, which also sorts lexically.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Compare returns -1, 0 or +1 depending on whether m is before, equal to, or after o.
func (m Month) Compare(o Month) int {
	switch {
	case m.Year < o.Year:
		return -1
	case m.Year > o.Year:
		return 1
	case m.Month < o.Month:
		return -1
	case m.Month > o.Month:
		return 1
	}
	return 0
}

// Before reports whether m is earlier than o.
func (m Month) Before(o Month) bool {
	return m.Compare(o) < 0
}
