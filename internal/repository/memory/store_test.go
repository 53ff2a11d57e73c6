package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingDomain "github.com/gymclass/service-booking/internal/domain/booking"
	"github.com/gymclass/service-booking/internal/platform/apperr"
)

var (
	sessionDate = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	createdAt   = time.Date(2026, 3, 30, 12, 0, 0, 0, time.UTC)
)

func newBooking(t *testing.T, userID, classID uuid.UUID, at time.Time) *bookingDomain.Booking {
	t.Helper()
	b, err := bookingDomain.NewBooking(userID, classID, sessionDate, at)
	require.NoError(t, err)
	return b
}

func TestStore_WithinTx_RollsBackOnError(t *testing.T) {
	s := NewStore()
	user := uuid.New()
	s.PutUser(user, 2)
	boom := errors.New("boom")

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx bookingDomain.Tx) error {
		require.NoError(t, tx.Save(ctx, newBooking(t, user, uuid.New(), createdAt)))
		_, ok, err := tx.DecrementAbove(ctx, user, bookingDomain.CreditFloor)
		require.NoError(t, err)
		require.True(t, ok)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	balance, _ := s.UserBalance(user)
	assert.Equal(t, 2, balance)
	counts, err := s.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestStore_WithinTx_CancelledContextDiscardsWork(t *testing.T) {
	s := NewStore()
	user := uuid.New()
	s.PutUser(user, 2)
	ctx, cancel := context.WithCancel(context.Background())

	err := s.WithinTx(ctx, func(ctx context.Context, tx bookingDomain.Tx) error {
		_, err := tx.Increment(ctx, user)
		cancel()
		return err
	})
	assert.ErrorIs(t, err, context.Canceled)

	balance, _ := s.UserBalance(user)
	assert.Equal(t, 2, balance)
}

func TestStore_DecrementAbove_StopsAtFloor(t *testing.T) {
	s := NewStore()
	user := uuid.New()
	s.PutUser(user, -4)

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx bookingDomain.Tx) error {
		balance, ok, err := tx.DecrementAbove(ctx, user, bookingDomain.CreditFloor)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, -5, balance)

		balance, ok, err = tx.DecrementAbove(ctx, user, bookingDomain.CreditFloor)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, -5, balance)
		return nil
	})
	require.NoError(t, err)

	err = s.WithinTx(context.Background(), func(ctx context.Context, tx bookingDomain.Tx) error {
		_, _, err := tx.DecrementAbove(ctx, uuid.New(), bookingDomain.CreditFloor)
		return err
	})
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestStore_Save_RejectsSecondActiveBooking(t *testing.T) {
	s := NewStore()
	user, class := uuid.New(), uuid.New()

	require.NoError(t, s.WithinTx(context.Background(), func(ctx context.Context, tx bookingDomain.Tx) error {
		return tx.Save(ctx, newBooking(t, user, class, createdAt))
	}))

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx bookingDomain.Tx) error {
		return tx.Save(ctx, newBooking(t, user, class, createdAt.Add(time.Minute)))
	})
	assert.Equal(t, apperr.CodeInternal, apperr.CodeOf(err))
}

func TestStore_Update_KeepsUsedConcession(t *testing.T) {
	s := NewStore()
	b := newBooking(t, uuid.New(), uuid.New(), createdAt)
	require.NoError(t, s.WithinTx(context.Background(), func(ctx context.Context, tx bookingDomain.Tx) error {
		return tx.Save(ctx, b)
	}))

	tampered := bookingDomain.ReconstructBooking(
		b.ID(), b.UserID(), b.ClassID(), b.BookingDate(),
		bookingDomain.StatusCancelled, false, false,
		b.CreatedAt(), nil, createdAt.Add(time.Hour),
	)
	require.NoError(t, s.WithinTx(context.Background(), func(ctx context.Context, tx bookingDomain.Tx) error {
		return tx.Update(ctx, tampered)
	}))

	got, err := s.FindByID(context.Background(), b.ID())
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusCancelled, got.Status())
	assert.True(t, got.UsedConcession())
}

func TestStore_FindSessionForUpdate(t *testing.T) {
	s := NewStore()
	class := uuid.New()

	var oldest *bookingDomain.Booking
	require.NoError(t, s.WithinTx(context.Background(), func(ctx context.Context, tx bookingDomain.Tx) error {
		for i := 2; i >= 0; i-- {
			b := newBooking(t, uuid.New(), class, createdAt.Add(time.Duration(i)*time.Minute))
			if i == 0 {
				oldest = b
			}
			if err := tx.Save(ctx, b); err != nil {
				return err
			}
		}
		// Same class, different date.
		other, err := bookingDomain.NewBooking(uuid.New(), class, sessionDate.AddDate(0, 0, 7), createdAt)
		require.NoError(t, err)
		return tx.Save(ctx, other)
	}))

	require.NoError(t, s.WithinTx(context.Background(), func(ctx context.Context, tx bookingDomain.Tx) error {
		session, err := tx.FindSessionForUpdate(ctx, class, sessionDate, bookingDomain.StatusConfirmed)
		require.NoError(t, err)
		require.Len(t, session, 3)
		assert.Equal(t, oldest.ID(), session[0].ID())

		require.NoError(t, session[0].Complete(createdAt.Add(time.Hour)))
		return tx.Update(ctx, session[0])
	}))

	require.NoError(t, s.WithinTx(context.Background(), func(ctx context.Context, tx bookingDomain.Tx) error {
		completed, err := tx.FindSessionForUpdate(ctx, class, sessionDate, bookingDomain.StatusCompleted)
		require.NoError(t, err)
		require.Len(t, completed, 1)
		assert.Equal(t, createdAt.Add(time.Hour), completed[0].UpdatedAt())

		// Completed bookings keep their seat.
		occupied, err := tx.CountOccupied(ctx, class, sessionDate)
		assert.Equal(t, 3, occupied)
		return err
	}))
}

func TestStore_FindByUserID_Paginates(t *testing.T) {
	s := NewStore()
	user := uuid.New()

	require.NoError(t, s.WithinTx(context.Background(), func(ctx context.Context, tx bookingDomain.Tx) error {
		for i := 0; i < 5; i++ {
			if err := tx.Save(ctx, newBooking(t, user, uuid.New(), createdAt.Add(time.Duration(i)*time.Minute))); err != nil {
				return err
			}
		}
		return tx.Save(ctx, newBooking(t, uuid.New(), uuid.New(), createdAt))
	}))

	page, total, err := s.FindByUserID(context.Background(), user, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	assert.Equal(t, createdAt.Add(4*time.Minute), page[0].CreatedAt())
	assert.Equal(t, createdAt.Add(3*time.Minute), page[1].CreatedAt())

	beyond, total, err := s.FindByUserID(context.Background(), user, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Empty(t, beyond)
}

func TestClassRepository_Get(t *testing.T) {
	r := NewClassRepository()
	_, err := r.Get(context.Background(), uuid.New())
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}
