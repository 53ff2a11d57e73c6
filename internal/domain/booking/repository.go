package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BookingRepository is the read side of booking persistence.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByUserID retrieves a member's bookings, newest first, with pagination.
	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// Tx is the write side of booking persistence, valid only inside WithinTx.
type Tx interface {
	SeatCounter
	LedgerStore

	// FindByIDForUpdate loads a booking and locks it until the transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error)

	// HasActiveBooking reports whether the member already holds a confirmed
	// or completed booking for the session.
	HasActiveBooking(ctx context.Context, userID, classID uuid.UUID, date time.Time) (bool, error)

	// Save inserts a new booking.
	Save(ctx context.Context, b *Booking) error

	// Update persists the status and cancellation fields of a booking.
	Update(ctx context.Context, b *Booking) error

	// FindSessionForUpdate loads the session's bookings in the given status,
	// oldest first, and locks them until the transaction ends.
	FindSessionForUpdate(ctx context.Context, classID uuid.UUID, date time.Time, status BookingStatus) ([]*Booking, error)
}

// Store is a booking repository able to run atomic units of work. If fn
// returns an error or ctx is cancelled, nothing fn did is kept.
type Store interface {
	BookingRepository
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
