package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymclass/service-booking/internal/platform/apperr"
)

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	bk, err := NewBooking(uuid.New(), uuid.New(), mustDate(t, "2026-10-20"), time.Now())
	require.NoError(t, err)
	return bk
}

func TestNewBooking(t *testing.T) {
	bk := newTestBooking(t)
	assert.Equal(t, StatusConfirmed, bk.Status())
	assert.True(t, bk.UsedConcession())
	assert.False(t, bk.IsLateCancellation())
	assert.Nil(t, bk.CancelledAt())

	_, err := NewBooking(uuid.Nil, uuid.New(), mustDate(t, "2026-10-20"), time.Now())
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	_, err = NewBooking(uuid.New(), uuid.Nil, mustDate(t, "2026-10-20"), time.Now())
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	_, err = NewBooking(uuid.New(), uuid.New(), time.Time{}, time.Now())
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}

func TestBooking_Cancel(t *testing.T) {
	t.Run("early refunds", func(t *testing.T) {
		bk := newTestBooking(t)
		refund, err := bk.Cancel(CancellationEarly, time.Now())
		require.NoError(t, err)
		assert.True(t, refund)
		assert.Equal(t, StatusCancelled, bk.Status())
		assert.False(t, bk.IsLateCancellation())
		assert.NotNil(t, bk.CancelledAt())
	})

	t.Run("late forfeits", func(t *testing.T) {
		bk := newTestBooking(t)
		refund, err := bk.Cancel(CancellationLate, time.Now())
		require.NoError(t, err)
		assert.False(t, refund)
		assert.Equal(t, StatusLateCancelled, bk.Status())
		assert.True(t, bk.IsLateCancellation())
	})

	t.Run("early without concession does not refund", func(t *testing.T) {
		now := time.Now()
		bk := ReconstructBooking(uuid.New(), uuid.New(), uuid.New(), mustDate(t, "2026-10-20"),
			StatusConfirmed, false, false, now, nil, now)
		refund, err := bk.Cancel(CancellationEarly, now)
		require.NoError(t, err)
		assert.False(t, refund)
	})

	t.Run("second cancel fails", func(t *testing.T) {
		bk := newTestBooking(t)
		_, err := bk.Cancel(CancellationEarly, time.Now())
		require.NoError(t, err)

		refund, err := bk.Cancel(CancellationEarly, time.Now())
		assert.ErrorIs(t, err, ErrNotCancellable)
		assert.False(t, refund)
		assert.True(t, bk.UsedConcession())
	})
}

func TestBooking_CompleteAndUndo(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.Complete(time.Now()))
	assert.Equal(t, StatusCompleted, bk.Status())

	_, err := bk.Cancel(CancellationEarly, time.Now())
	assert.Equal(t, apperr.CodeInvalidTransition, apperr.CodeOf(err))

	require.NoError(t, bk.UndoComplete(time.Now()))
	assert.Equal(t, StatusConfirmed, bk.Status())

	err = bk.UndoComplete(time.Now())
	assert.Equal(t, apperr.CodeInvalidTransition, apperr.CodeOf(err))
}

func TestBookingStatus_Transitions(t *testing.T) {
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusLateCancelled))
	assert.True(t, StatusCompleted.CanTransitionTo(StatusConfirmed))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusConfirmed))
	assert.False(t, StatusLateCancelled.CanTransitionTo(StatusCompleted))
	assert.True(t, StatusCompleted.IsActive())
	assert.False(t, StatusLateCancelled.IsActive())

	_, err := ParseBookingStatus("pending")
	require.Error(t, err)
}
