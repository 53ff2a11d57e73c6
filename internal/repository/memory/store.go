// Package memory is an in-process implementation of the booking store and
// class catalogue. It enforces the same rules as the Postgres store and is
// used for local runs and tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/gymclass/service-booking/internal/domain/booking"
	"github.com/gymclass/service-booking/internal/platform/apperr"
)

var (
	errDuplicateID        = errors.New("booking id already exists")
	errActiveSessionTaken = errors.New("active booking already exists for user, class and date")
)

// Store keeps bookings and concession balances in memory. Units of work are
// serialised by a single mutex and run against a copy of the state that is
// swapped in only on success.
type Store struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]bookingDomain.Booking
	balances map[uuid.UUID]int
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		bookings: make(map[uuid.UUID]bookingDomain.Booking),
		balances: make(map[uuid.UUID]int),
	}
}

// PutUser registers a member with a starting concession balance. Balances
// are owned by the user service; this is the seeding hook for that collaborator.
func (s *Store) PutUser(userID uuid.UUID, balance int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[userID] = balance
}

// UserBalance returns a member's balance outside any unit of work.
func (s *Store) UserBalance(userID uuid.UUID) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[userID]
	return b, ok
}

// WithinTx runs fn against a private copy of the state and commits it only
// when fn succeeds and ctx is still live.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx bookingDomain.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &storeTx{
		bookings: make(map[uuid.UUID]bookingDomain.Booking, len(s.bookings)),
		balances: make(map[uuid.UUID]int, len(s.balances)),
	}
	for id, b := range s.bookings {
		tx.bookings[id] = b
	}
	for id, b := range s.balances {
		tx.balances[id] = b
	}

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.bookings = tx.bookings
	s.balances = tx.balances
	return nil
}

// FindByID retrieves a booking by its unique identifier.
func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, apperr.NewNotFoundError("Booking", id.String())
	}
	return &b, nil
}

// FindByUserID retrieves a member's bookings, newest first.
func (s *Store) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return s.list(page, limit, func(b *bookingDomain.Booking) bool { return b.UserID() == userID })
}

// ListAll retrieves all bookings, newest first.
func (s *Store) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return s.list(page, limit, func(*bookingDomain.Booking) bool { return true })
}

// CountByStatus returns booking counts grouped by status.
func (s *Store) CountByStatus(ctx context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]int64)
	for _, b := range s.bookings {
		counts[b.Status().String()]++
	}
	return counts, nil
}

func (s *Store) list(page, limit int, keep func(*bookingDomain.Booking) bool) ([]*bookingDomain.Booking, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*bookingDomain.Booking
	for _, b := range s.bookings {
		if keep(&b) {
			matched = append(matched, &b)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt().Equal(matched[j].CreatedAt()) {
			return matched[i].CreatedAt().After(matched[j].CreatedAt())
		}
		return matched[i].ID().String() < matched[j].ID().String()
	})

	total := int64(len(matched))
	offset := (page - 1) * limit
	if offset >= len(matched) {
		return []*bookingDomain.Booking{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// storeTx is the working copy used by one unit of work.
type storeTx struct {
	bookings map[uuid.UUID]bookingDomain.Booking
	balances map[uuid.UUID]int
}

// LockClassDate is a no-op: the store mutex already serialises units of work.
func (t *storeTx) LockClassDate(ctx context.Context, classID uuid.UUID, date time.Time) error {
	return nil
}

func (t *storeTx) CountOccupied(ctx context.Context, classID uuid.UUID, date time.Time) (int, error) {
	n := 0
	for _, b := range t.bookings {
		if inSession(&b, classID, date) && b.Status().IsActive() {
			n++
		}
	}
	return n, nil
}

func (t *storeTx) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	b, ok := t.balances[userID]
	if !ok {
		return 0, apperr.NewNotFoundError("User", userID.String())
	}
	return b, nil
}

func (t *storeTx) DecrementAbove(ctx context.Context, userID uuid.UUID, floor int) (int, bool, error) {
	b, ok := t.balances[userID]
	if !ok {
		return 0, false, apperr.NewNotFoundError("User", userID.String())
	}
	if b <= floor {
		return b, false, nil
	}
	t.balances[userID] = b - 1
	return b - 1, true, nil
}

func (t *storeTx) Increment(ctx context.Context, userID uuid.UUID) (int, error) {
	b, ok := t.balances[userID]
	if !ok {
		return 0, apperr.NewNotFoundError("User", userID.String())
	}
	t.balances[userID] = b + 1
	return b + 1, nil
}

func (t *storeTx) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	b, ok := t.bookings[id]
	if !ok {
		return nil, apperr.NewNotFoundError("Booking", id.String())
	}
	return &b, nil
}

func (t *storeTx) HasActiveBooking(ctx context.Context, userID, classID uuid.UUID, date time.Time) (bool, error) {
	for _, b := range t.bookings {
		if b.UserID() == userID && inSession(&b, classID, date) && b.Status().IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (t *storeTx) Save(ctx context.Context, b *bookingDomain.Booking) error {
	if _, exists := t.bookings[b.ID()]; exists {
		return apperr.NewInternalError(errDuplicateID)
	}
	// Mirrors the partial unique index of the Postgres schema.
	if active, _ := t.HasActiveBooking(ctx, b.UserID(), b.ClassID(), b.BookingDate()); active && b.Status().IsActive() {
		return apperr.NewInternalError(errActiveSessionTaken)
	}
	t.bookings[b.ID()] = *b
	return nil
}

func (t *storeTx) Update(ctx context.Context, b *bookingDomain.Booking) error {
	current, ok := t.bookings[b.ID()]
	if !ok {
		return apperr.NewNotFoundError("Booking", b.ID().String())
	}
	t.bookings[b.ID()] = *bookingDomain.ReconstructBooking(
		current.ID(), current.UserID(), current.ClassID(), current.BookingDate(),
		b.Status(), current.UsedConcession(), b.IsLateCancellation(),
		current.CreatedAt(), b.CancelledAt(), b.UpdatedAt(),
	)
	return nil
}

func (t *storeTx) FindSessionForUpdate(ctx context.Context, classID uuid.UUID, date time.Time, status bookingDomain.BookingStatus) ([]*bookingDomain.Booking, error) {
	var matched []*bookingDomain.Booking
	for _, b := range t.bookings {
		if inSession(&b, classID, date) && b.Status() == status {
			matched = append(matched, &b)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt().Equal(matched[j].CreatedAt()) {
			return matched[i].CreatedAt().Before(matched[j].CreatedAt())
		}
		return matched[i].ID().String() < matched[j].ID().String()
	})
	return matched, nil
}

func inSession(b *bookingDomain.Booking, classID uuid.UUID, date time.Time) bool {
	return b.ClassID() == classID && b.BookingDate().Equal(date)
}
