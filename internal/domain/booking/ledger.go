package booking

import (
	"context"

	"github.com/google/uuid"
)

// CreditFloor is the lowest concession balance a member may reach.
const CreditFloor = -5

// LedgerStore persists concession balances. Implementations must apply
// DecrementAbove and Increment as single atomic read-modify-write steps.
type LedgerStore interface {
	// Balance returns the member's current balance.
	Balance(ctx context.Context, userID uuid.UUID) (int, error)

	// DecrementAbove subtracts one from the balance only if it is above floor.
	// ok is false when the balance was left unchanged.
	DecrementAbove(ctx context.Context, userID uuid.UUID, floor int) (balance int, ok bool, err error)

	// Increment adds one to the balance.
	Increment(ctx context.Context, userID uuid.UUID) (int, error)
}

// CanDebit reports whether a member with the given balance may spend a concession.
func CanDebit(balance int) bool {
	return balance > CreditFloor
}

// ConcessionLedger owns the credit floor invariant. Debit and Credit are the
// only ways the booking engine changes a balance.
type ConcessionLedger struct {
	store LedgerStore
}

// NewConcessionLedger creates a ledger over store.
func NewConcessionLedger(store LedgerStore) *ConcessionLedger {
	return &ConcessionLedger{store: store}
}

// Balance returns the member's balance.
func (l *ConcessionLedger) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	return l.store.Balance(ctx, userID)
}

// EnsureCanDebit fails with ErrCreditLimitExceeded when the member is at the floor.
func (l *ConcessionLedger) EnsureCanDebit(ctx context.Context, userID uuid.UUID) (int, error) {
	balance, err := l.store.Balance(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !CanDebit(balance) {
		return balance, ErrCreditLimitExceeded
	}
	return balance, nil
}

// Debit spends one concession and returns the new balance.
func (l *ConcessionLedger) Debit(ctx context.Context, userID uuid.UUID) (int, error) {
	balance, ok, err := l.store.DecrementAbove(ctx, userID, CreditFloor)
	if err != nil {
		return 0, err
	}
	if !ok {
		return balance, ErrCreditLimitExceeded
	}
	return balance, nil
}

// Credit refunds one concession and returns the new balance.
func (l *ConcessionLedger) Credit(ctx context.Context, userID uuid.UUID) (int, error) {
	return l.store.Increment(ctx, userID)
}
