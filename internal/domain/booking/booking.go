package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gymclass/service-booking/internal/platform/apperr"
)

// Booking is the aggregate root for a member's seat in one class session.
type Booking struct {
	id                 uuid.UUID
	userID             uuid.UUID
	classID            uuid.UUID
	bookingDate        time.Time
	status             BookingStatus
	usedConcession     bool
	isLateCancellation bool

	createdAt   time.Time
	cancelledAt *time.Time
	updatedAt   time.Time
}

// NewBooking creates a confirmed booking paid with one concession.
func NewBooking(userID, classID uuid.UUID, bookingDate, now time.Time) (*Booking, error) {
	if userID == uuid.Nil {
		return nil, apperr.NewValidationError("user ID is required")
	}
	if classID == uuid.Nil {
		return nil, apperr.NewValidationError("class ID is required")
	}
	if bookingDate.IsZero() {
		return nil, apperr.NewValidationError("booking date is required")
	}

	now = now.UTC()
	return &Booking{
		id:             uuid.New(),
		userID:         userID,
		classID:        classID,
		bookingDate:    bookingDate,
		status:         StatusConfirmed,
		usedConcession: true,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id, userID, classID uuid.UUID,
	bookingDate time.Time,
	status BookingStatus,
	usedConcession bool,
	isLateCancellation bool,
	createdAt time.Time,
	cancelledAt *time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                 id,
		userID:             userID,
		classID:            classID,
		bookingDate:        bookingDate,
		status:             status,
		usedConcession:     usedConcession,
		isLateCancellation: isLateCancellation,
		createdAt:          createdAt,
		cancelledAt:        cancelledAt,
		updatedAt:          updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// UserID returns the member who holds the booking.
func (b *Booking) UserID() uuid.UUID { return b.userID }

// ClassID returns the booked class.
func (b *Booking) ClassID() uuid.UUID { return b.classID }

// BookingDate returns the calendar date of the class session.
func (b *Booking) BookingDate() time.Time { return b.bookingDate }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// UsedConcession reports whether a concession was spent at creation. It never changes.
func (b *Booking) UsedConcession() bool { return b.usedConcession }

// IsLateCancellation reports whether the booking was cancelled inside the late window.
func (b *Booking) IsLateCancellation() bool { return b.isLateCancellation }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// CancelledAt returns the cancellation time, or nil.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// Cancel moves a confirmed booking to cancelled or late_cancelled. It
// returns true when the owner is owed a concession refund.
func (b *Booking) Cancel(kind CancellationKind, now time.Time) (bool, error) {
	if b.status != StatusConfirmed {
		return false, ErrNotCancellable
	}

	now = now.UTC()
	b.cancelledAt = &now
	b.updatedAt = now

	if kind == CancellationLate {
		b.status = StatusLateCancelled
		b.isLateCancellation = true
		return false, nil
	}
	b.status = StatusCancelled
	b.isLateCancellation = false
	return b.usedConcession, nil
}

// Complete marks an attended class session.
func (b *Booking) Complete(now time.Time) error {
	return b.transition(StatusCompleted, now)
}

// UndoComplete reverts a completed booking to confirmed.
func (b *Booking) UndoComplete(now time.Time) error {
	if b.status != StatusCompleted {
		return apperr.NewInvalidTransitionError("only completed bookings can be reverted")
	}
	return b.transition(StatusConfirmed, now)
}

func (b *Booking) transition(target BookingStatus, now time.Time) error {
	if !b.status.CanTransitionTo(target) {
		return apperr.NewInvalidTransitionError(fmt.Sprintf("cannot transition booking from %s to %s", b.status, target))
	}
	b.status = target
	b.updatedAt = now.UTC()
	return nil
}
