package booking

import (
	"time"

	"github.com/gymclass/service-booking/internal/domain/gymclass"
)

// CancellationKind classifies a cancellation for refund purposes.
type CancellationKind string

const (
	CancellationEarly CancellationKind = "early"
	CancellationLate  CancellationKind = "late"
)

// DefaultLateWindow is how close to class start a cancellation forfeits the concession.
const DefaultLateWindow = 24 * time.Hour

// CancellationPolicy decides whether a cancellation is late.
type CancellationPolicy struct {
	Location   *time.Location
	LateWindow time.Duration
}

// NewCancellationPolicy creates the standard 24 hour policy for classes held in loc.
func NewCancellationPolicy(loc *time.Location) CancellationPolicy {
	return CancellationPolicy{Location: loc, LateWindow: DefaultLateWindow}
}

// Classify returns late iff the class starts within the late window and has
// not started yet. Cancelling after the start is classified early.
func (p CancellationPolicy) Classify(bookingDate time.Time, start gymclass.Clock, now time.Time) CancellationKind {
	untilClass := start.On(bookingDate, p.Location).Sub(now)
	if untilClass > 0 && untilClass <= p.LateWindow {
		return CancellationLate
	}
	return CancellationEarly
}
