package booking

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of a booking date.
const DateLayout = "2006-01-02"

// ParseDate parses a calendar date. The result is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

// DateOf returns the calendar date of t as observed in loc, as midnight UTC.
func DateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole calendar days from a to b. Both must be dates as
// returned by ParseDate or DateOf.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
