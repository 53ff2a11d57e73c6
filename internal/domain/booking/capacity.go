package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SeatCounter counts taken seats for a class session.
type SeatCounter interface {
	// LockClassDate serialises seat reservation for one (class, date) pair
	// until the surrounding transaction ends.
	LockClassDate(ctx context.Context, classID uuid.UUID, date time.Time) error

	// CountOccupied returns the number of confirmed or completed bookings for
	// the session. A completed booking keeps its seat so that undoing the
	// completion can never overbook the class.
	CountOccupied(ctx context.Context, classID uuid.UUID, date time.Time) (int, error)
}

// CapacityGate stops a class session from taking more active bookings than
// it has seats.
type CapacityGate struct {
	counter SeatCounter
}

// NewCapacityGate creates a gate over counter.
func NewCapacityGate(counter SeatCounter) *CapacityGate {
	return &CapacityGate{counter: counter}
}

// Acquire takes the session lock. It must be called before Reserve, inside
// the transaction that will insert the booking.
func (g *CapacityGate) Acquire(ctx context.Context, classID uuid.UUID, date time.Time) error {
	return g.counter.LockClassDate(ctx, classID, date)
}

// Reserve fails with ErrClassFull when no seat is left.
func (g *CapacityGate) Reserve(ctx context.Context, classID uuid.UUID, date time.Time, maxCapacity int) error {
	count, err := g.counter.CountOccupied(ctx, classID, date)
	if err != nil {
		return err
	}
	if count >= maxCapacity {
		return ErrClassFull
	}
	return nil
}
