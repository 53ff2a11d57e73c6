package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookingDomain "github.com/gymclass/service-booking/internal/domain/booking"
	"github.com/gymclass/service-booking/internal/platform/apperr"
)

// pgUniqueViolation is the SQLSTATE for unique constraint failures.
const pgUniqueViolation = "23505"

// activeStatuses are the statuses that hold a seat in a class session.
var activeStatuses = []string{bookingDomain.StatusConfirmed.String(), bookingDomain.StatusCompleted.String()}

// GormBookingStore is the Postgres implementation of the booking store.
type GormBookingStore struct {
	db *gorm.DB
}

// NewGormBookingStore creates a new GormBookingStore.
func NewGormBookingStore(db *gorm.DB) *GormBookingStore {
	return &GormBookingStore{db: db}
}

// WithinTx runs fn in a database transaction. The transaction is rolled back
// if fn fails or ctx is cancelled before commit.
func (r *GormBookingStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx bookingDomain.Tx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &gormTx{db: tx})
	})
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingStore) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	return findBooking(r.db.WithContext(ctx), id)
}

// FindByUserID retrieves bookings for a specific member with pagination.
func (r *GormBookingStore) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count user bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find user bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingStore) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingStore) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// gormTx implements bookingDomain.Tx over an open GORM transaction.
type gormTx struct {
	db *gorm.DB
}

// LockClassDate takes a transaction-scoped advisory lock for the session, so
// concurrent bookings of one session count seats one at a time while other
// sessions proceed in parallel.
func (t *gormTx) LockClassDate(ctx context.Context, classID uuid.UUID, date time.Time) error {
	key := fmt.Sprintf("booking-session:%s:%s", classID, date.Format(bookingDomain.DateLayout))
	if err := t.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", key).Error; err != nil {
		return fmt.Errorf("failed to lock class session: %w", err)
	}
	return nil
}

func (t *gormTx) CountOccupied(ctx context.Context, classID uuid.UUID, date time.Time) (int, error) {
	var n int64
	if err := t.db.WithContext(ctx).Model(&BookingModel{}).
		Where("class_id = ? AND booking_date = ? AND status IN ?",
			classID, date.Format(bookingDomain.DateLayout), activeStatuses).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count occupied seats: %w", err)
	}
	return int(n), nil
}

func (t *gormTx) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	var user UserModel
	if err := t.db.WithContext(ctx).
		Select("id", "concession_balance").
		Where("id = ?", userID).
		Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperr.NewNotFoundError("User", userID.String())
		}
		return 0, fmt.Errorf("failed to read concession balance: %w", err)
	}
	return user.ConcessionBalance, nil
}

// DecrementAbove debits in a single conditional UPDATE, so concurrent debits
// for one member can never take the balance past the floor.
func (t *gormTx) DecrementAbove(ctx context.Context, userID uuid.UUID, floor int) (int, bool, error) {
	result := t.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("id = ? AND concession_balance > ?", userID, floor).
		Updates(map[string]interface{}{
			"concession_balance": gorm.Expr("concession_balance - 1"),
			"updated_at":         time.Now().UTC(),
		})
	if result.Error != nil {
		return 0, false, fmt.Errorf("failed to debit concession: %w", result.Error)
	}

	balance, err := t.Balance(ctx, userID)
	if err != nil {
		return 0, false, err
	}
	return balance, result.RowsAffected == 1, nil
}

func (t *gormTx) Increment(ctx context.Context, userID uuid.UUID) (int, error) {
	result := t.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"concession_balance": gorm.Expr("concession_balance + 1"),
			"updated_at":         time.Now().UTC(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to credit concession: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, apperr.NewNotFoundError("User", userID.String())
	}
	return t.Balance(ctx, userID)
}

func (t *gormTx) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	return findBooking(t.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (t *gormTx) HasActiveBooking(ctx context.Context, userID, classID uuid.UUID, date time.Time) (bool, error) {
	var n int64
	if err := t.db.WithContext(ctx).Model(&BookingModel{}).
		Where("user_id = ? AND class_id = ? AND booking_date = ? AND status IN ?",
			userID, classID, date.Format(bookingDomain.DateLayout), activeStatuses).
		Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check existing bookings: %w", err)
	}
	return n > 0, nil
}

func (t *gormTx) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := t.db.WithContext(ctx).Create(model).Error; err != nil {
		return classifyWriteError("failed to save booking", err)
	}
	return nil
}

// Update persists the mutable fields of a booking. used_concession is fixed
// at creation and never written here.
func (t *gormTx) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	result := t.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ?", bk.ID()).
		Updates(map[string]interface{}{
			"status":               bk.Status().String(),
			"is_late_cancellation": bk.IsLateCancellation(),
			"cancelled_at":         bk.CancelledAt(),
			"updated_at":           bk.UpdatedAt(),
		})
	if result.Error != nil {
		return classifyWriteError("failed to update booking", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NewNotFoundError("Booking", bk.ID().String())
	}
	return nil
}

func (t *gormTx) FindSessionForUpdate(ctx context.Context, classID uuid.UUID, date time.Time, status bookingDomain.BookingStatus) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("class_id = ? AND booking_date = ? AND status = ?",
			classID, date.Format(bookingDomain.DateLayout), status.String()).
		Order("created_at ASC, id ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load class session: %w", err)
	}
	return toDomainBookings(models)
}

// --- Helpers ---

func findBooking(db *gorm.DB, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// classifyWriteError names the violated constraint for the logs. A unique
// violation here means a race the business checks did not anticipate; it is
// still an internal error to the caller.
func classifyWriteError(msg string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%s: unique violation on %s: %w", msg, pgErr.ConstraintName, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:                 bk.ID(),
		UserID:             bk.UserID(),
		ClassID:            bk.ClassID(),
		BookingDate:        bk.BookingDate(),
		Status:             bk.Status().String(),
		UsedConcession:     bk.UsedConcession(),
		IsLateCancellation: bk.IsLateCancellation(),
		CreatedAt:          bk.CreatedAt(),
		CancelledAt:        bk.CancelledAt(),
		UpdatedAt:          bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.UserID,
		m.ClassID,
		bookingDomain.DateOf(m.BookingDate, time.UTC),
		status,
		m.UsedConcession,
		m.IsLateCancellation,
		m.CreatedAt,
		m.CancelledAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
