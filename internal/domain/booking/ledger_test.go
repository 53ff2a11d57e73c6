package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLedgerStore is a single-user LedgerStore.
type fakeLedgerStore struct {
	balance int
}

func (f *fakeLedgerStore) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	return f.balance, nil
}

func (f *fakeLedgerStore) DecrementAbove(ctx context.Context, userID uuid.UUID, floor int) (int, bool, error) {
	if f.balance <= floor {
		return f.balance, false, nil
	}
	f.balance--
	return f.balance, true, nil
}

func (f *fakeLedgerStore) Increment(ctx context.Context, userID uuid.UUID) (int, error) {
	f.balance++
	return f.balance, nil
}

func TestConcessionLedger_Debit(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name        string
		start       int
		wantBalance int
		wantErr     error
	}{
		{name: "positive balance", start: 3, wantBalance: 2},
		{name: "zero goes negative", start: 0, wantBalance: -1},
		{name: "one above floor lands on floor", start: -4, wantBalance: -5},
		{name: "at floor", start: -5, wantBalance: -5, wantErr: ErrCreditLimitExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeLedgerStore{balance: tt.start}
			ledger := NewConcessionLedger(store)

			_, checkErr := ledger.EnsureCanDebit(ctx, uuid.New())
			balance, err := ledger.Debit(ctx, uuid.New())
			if tt.wantErr != nil {
				assert.ErrorIs(t, checkErr, tt.wantErr)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, checkErr)
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantBalance, balance)
			assert.Equal(t, tt.wantBalance, store.balance)
		})
	}
}

func TestConcessionLedger_NeverBelowFloor(t *testing.T) {
	ctx := context.Background()
	store := &fakeLedgerStore{balance: 2}
	ledger := NewConcessionLedger(store)

	for i := 0; i < 20; i++ {
		_, _ = ledger.Debit(ctx, uuid.New())
		assert.GreaterOrEqual(t, store.balance, CreditFloor)
	}
	assert.Equal(t, CreditFloor, store.balance)

	balance, err := ledger.Credit(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, CreditFloor+1, balance)
}

// fakeSeatCounter returns a fixed count.
type fakeSeatCounter struct {
	count  int
	locked bool
}

func (f *fakeSeatCounter) LockClassDate(ctx context.Context, classID uuid.UUID, date time.Time) error {
	f.locked = true
	return nil
}

func (f *fakeSeatCounter) CountOccupied(ctx context.Context, classID uuid.UUID, date time.Time) (int, error) {
	return f.count, nil
}

func TestCapacityGate_Reserve(t *testing.T) {
	ctx := context.Background()
	date := mustDate(t, "2026-10-20")

	counter := &fakeSeatCounter{count: 9}
	gate := NewCapacityGate(counter)
	require.NoError(t, gate.Acquire(ctx, uuid.New(), date))
	assert.True(t, counter.locked)
	assert.NoError(t, gate.Reserve(ctx, uuid.New(), date, 10))

	counter.count = 10
	assert.ErrorIs(t, gate.Reserve(ctx, uuid.New(), date, 10), ErrClassFull)
}
