package booking

import "time"

// DefaultMaxDaysAhead is how far ahead members may book.
const DefaultMaxDaysAhead = 14

// WindowPolicy limits how far ahead a class can be booked.
type WindowPolicy struct {
	MaxDaysAhead int
}

// NewWindowPolicy creates the standard two-week booking window.
func NewWindowPolicy() WindowPolicy {
	return WindowPolicy{MaxDaysAhead: DefaultMaxDaysAhead}
}

// IsBookable reports whether requested lies between today and today+MaxDaysAhead,
// both inclusive. The comparison is by calendar date, never by elapsed hours.
func (p WindowPolicy) IsBookable(today, requested time.Time) bool {
	days := daysBetween(today, requested)
	return days >= 0 && days <= p.MaxDaysAhead
}

// Check returns ErrInvalidBookingDate when requested is outside the window.
func (p WindowPolicy) Check(today, requested time.Time) error {
	if !p.IsBookable(today, requested) {
		return ErrInvalidBookingDate
	}
	return nil
}
