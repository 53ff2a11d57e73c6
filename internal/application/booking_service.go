package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/gymclass/service-booking/internal/domain/booking"
	"github.com/gymclass/service-booking/internal/domain/gymclass"
	"github.com/gymclass/service-booking/internal/events"
	"github.com/gymclass/service-booking/internal/platform/apperr"
	"github.com/gymclass/service-booking/internal/platform/auth"
)

// EventPublisher delivers booking events after a transition commits.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, data interface{})
}

// CreateBookingRequest holds the data needed to book a class.
type CreateBookingRequest struct {
	ClassID     uuid.UUID `json:"class_id" binding:"required"`
	BookingDate string    `json:"booking_date" binding:"required"`
}

// ClassSessionRequest identifies one dated session of a class.
type ClassSessionRequest struct {
	Date string `json:"date" binding:"required"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                 uuid.UUID  `json:"id"`
	UserID             uuid.UUID  `json:"user_id"`
	ClassID            uuid.UUID  `json:"class_id"`
	BookingDate        string     `json:"booking_date"`
	Status             string     `json:"status"`
	UsedConcession     bool       `json:"used_concession"`
	IsLateCancellation bool       `json:"is_late_cancellation"`
	CreatedAt          time.Time  `json:"created_at"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	UpdatedAt          time.Time  `json:"updated_at"`

	ClassName       string `json:"class_name,omitempty"`
	ClassInstructor string `json:"class_instructor,omitempty"`
	ClassStartTime  string `json:"class_start_time,omitempty"`
}

// CreateBookingResult is returned by CreateBooking. The balance is the value
// after the debit, so callers need no second read.
type CreateBookingResult struct {
	Booking           BookingDTO `json:"booking"`
	ConcessionBalance int        `json:"concession_balance"`
	UsedCredit        bool       `json:"used_credit"`
	Message           string     `json:"message"`
}

// CancelBookingResult is returned by CancelBooking. The balance is the
// booking owner's balance after any refund.
type CancelBookingResult struct {
	Booking           BookingDTO `json:"booking"`
	IsLate            bool       `json:"is_late"`
	Refunded          bool       `json:"refunded"`
	ConcessionBalance int        `json:"concession_balance"`
	Message           string     `json:"message"`
}

// ClassSessionResult reports a bulk completion change.
type ClassSessionResult struct {
	ClassID     uuid.UUID `json:"class_id"`
	BookingDate string    `json:"booking_date"`
	Affected    int64     `json:"affected"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// BookingService runs the booking lifecycle: every operation is one unit of
// work against the store, so bookings and concession balances change together.
type BookingService struct {
	store        bookingDomain.Store
	classes      gymclass.Availability
	window       bookingDomain.WindowPolicy
	cancellation bookingDomain.CancellationPolicy
	publisher    EventPublisher
	location     *time.Location
	now          func() time.Time
	logger       *zap.Logger
}

// Option customises a BookingService.
type Option func(*BookingService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *BookingService) { s.now = now }
}

// NewBookingService creates a new BookingService. Class dates and start times
// are interpreted in loc.
func NewBookingService(
	store bookingDomain.Store,
	classes gymclass.Availability,
	publisher EventPublisher,
	loc *time.Location,
	logger *zap.Logger,
	opts ...Option,
) *BookingService {
	s := &BookingService{
		store:        store,
		classes:      classes,
		window:       bookingDomain.NewWindowPolicy(),
		cancellation: bookingDomain.NewCancellationPolicy(loc),
		publisher:    publisher,
		location:     loc,
		now:          time.Now,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBooking books a seat for the principal and spends one concession.
func (s *BookingService) CreateBooking(ctx context.Context, principal auth.Principal, req CreateBookingRequest) (*CreateBookingResult, error) {
	date, err := bookingDomain.ParseDate(req.BookingDate)
	if err != nil {
		return nil, apperr.NewValidationError(err.Error())
	}
	if req.ClassID == uuid.Nil {
		return nil, apperr.NewValidationError("class ID is required")
	}

	now := s.now()
	if err := s.window.Check(bookingDomain.DateOf(now, s.location), date); err != nil {
		return nil, err
	}

	class, err := s.classes.Get(ctx, req.ClassID)
	if err != nil {
		return nil, s.fail("failed to load class", err, zap.String("class_id", req.ClassID.String()))
	}
	if !class.IsBookableOn(date, s.location) {
		return nil, bookingDomain.ErrClassNotAvailable
	}

	var (
		bk      *bookingDomain.Booking
		balance int
	)
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx bookingDomain.Tx) error {
		gate := bookingDomain.NewCapacityGate(tx)
		ledger := bookingDomain.NewConcessionLedger(tx)

		if err := gate.Acquire(ctx, class.ID, date); err != nil {
			return err
		}

		exists, err := tx.HasActiveBooking(ctx, principal.UserID, class.ID, date)
		if err != nil {
			return err
		}
		if exists {
			return bookingDomain.ErrDuplicateBooking
		}

		if _, err := ledger.EnsureCanDebit(ctx, principal.UserID); err != nil {
			return err
		}
		if err := gate.Reserve(ctx, class.ID, date, class.MaxCapacity); err != nil {
			return err
		}

		bk, err = bookingDomain.NewBooking(principal.UserID, class.ID, date, now)
		if err != nil {
			return err
		}
		if err := tx.Save(ctx, bk); err != nil {
			return err
		}

		balance, err = ledger.Debit(ctx, principal.UserID)
		return err
	})
	if err != nil {
		return nil, s.fail("failed to create booking", err,
			zap.String("user_id", principal.UserID.String()),
			zap.String("class_id", class.ID.String()),
		)
	}

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("user_id", bk.UserID().String()),
		zap.String("class_id", bk.ClassID().String()),
		zap.String("booking_date", date.Format(bookingDomain.DateLayout)),
		zap.Int("concession_balance", balance),
	)

	s.publisher.Publish(ctx, events.BookingCreated, bk.ID().String(), events.BookingCreatedEvent{
		BookingID:         bk.ID(),
		UserID:            bk.UserID(),
		ClassID:           bk.ClassID(),
		BookingDate:       date.Format(bookingDomain.DateLayout),
		ConcessionBalance: balance,
		OccurredAt:        now.UTC(),
	})

	result := &CreateBookingResult{
		Booking:           toBookingDTO(bk, class),
		ConcessionBalance: balance,
		UsedCredit:        balance < 0,
		Message:           "Booking confirmed.",
	}
	if result.UsedCredit {
		result.Message = fmt.Sprintf("Booking confirmed. You used credit; your concession balance is now %d.", balance)
	}
	return result, nil
}

// CancelBooking cancels a confirmed booking on behalf of its owner or an admin.
// Early cancellations refund the concession the booking spent.
func (s *BookingService) CancelBooking(ctx context.Context, principal auth.Principal, bookingID uuid.UUID) (*CancelBookingResult, error) {
	now := s.now()

	var (
		bk       *bookingDomain.Booking
		class    *gymclass.Class
		kind     bookingDomain.CancellationKind
		refunded bool
		balance  int
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx bookingDomain.Tx) error {
		var err error
		bk, err = tx.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if bk.UserID() != principal.UserID && !principal.IsAdmin() {
			return apperr.NewForbiddenError("you can only cancel your own bookings")
		}
		if bk.Status() != bookingDomain.StatusConfirmed {
			return bookingDomain.ErrNotCancellable
		}

		class, err = s.classes.Get(ctx, bk.ClassID())
		switch {
		case err == nil:
			kind = s.cancellation.Classify(bk.BookingDate(), class.StartTime, now)
		case apperr.CodeOf(err) == apperr.CodeNotFound:
			// Without a start time the session cannot be late; the member is refunded.
			s.logger.Warn("cancelling booking of a class missing from the catalogue",
				zap.String("booking_id", bk.ID().String()),
				zap.String("class_id", bk.ClassID().String()),
			)
			class, kind = nil, bookingDomain.CancellationEarly
		default:
			return err
		}

		refundDue, err := bk.Cancel(kind, now)
		if err != nil {
			return err
		}
		if err := tx.Update(ctx, bk); err != nil {
			return err
		}

		ledger := bookingDomain.NewConcessionLedger(tx)
		if refundDue {
			refunded = true
			balance, err = ledger.Credit(ctx, bk.UserID())
			return err
		}
		balance, err = ledger.Balance(ctx, bk.UserID())
		return err
	})
	if err != nil {
		return nil, s.fail("failed to cancel booking", err,
			zap.String("booking_id", bookingID.String()),
			zap.String("requested_by", principal.UserID.String()),
		)
	}

	isLate := kind == bookingDomain.CancellationLate
	s.logger.Info("booking cancelled",
		zap.String("booking_id", bk.ID().String()),
		zap.String("user_id", bk.UserID().String()),
		zap.String("class_id", bk.ClassID().String()),
		zap.Bool("is_late", isLate),
		zap.Bool("refunded", refunded),
	)

	eventType := events.BookingCancelled
	if isLate {
		eventType = events.BookingLateCancelled
	}
	s.publisher.Publish(ctx, eventType, bk.ID().String(), events.BookingCancelledEvent{
		BookingID:         bk.ID(),
		UserID:            bk.UserID(),
		ClassID:           bk.ClassID(),
		BookingDate:       bk.BookingDate().Format(bookingDomain.DateLayout),
		CancelledBy:       principal.UserID,
		IsLate:            isLate,
		Refunded:          refunded,
		ConcessionBalance: balance,
		OccurredAt:        now.UTC(),
	})

	result := &CancelBookingResult{
		Booking:           toBookingDTO(bk, class),
		IsLate:            isLate,
		Refunded:          refunded,
		ConcessionBalance: balance,
	}
	switch {
	case isLate:
		result.Message = "Booking cancelled within 24 hours of class start. The concession has been forfeited."
	case refunded:
		result.Message = "Booking cancelled. Your concession has been refunded."
	default:
		result.Message = "Booking cancelled."
	}
	return result, nil
}

// CompleteClass marks every confirmed booking of a class session as completed.
func (s *BookingService) CompleteClass(ctx context.Context, principal auth.Principal, classID uuid.UUID, dateStr string) (*ClassSessionResult, error) {
	return s.transitionSession(ctx, principal, classID, dateStr,
		bookingDomain.StatusConfirmed, bookingDomain.StatusCompleted, (*bookingDomain.Booking).Complete, events.ClassCompleted)
}

// UndoCompleteClass returns every completed booking of a class session to confirmed.
func (s *BookingService) UndoCompleteClass(ctx context.Context, principal auth.Principal, classID uuid.UUID, dateStr string) (*ClassSessionResult, error) {
	return s.transitionSession(ctx, principal, classID, dateStr,
		bookingDomain.StatusCompleted, bookingDomain.StatusConfirmed, (*bookingDomain.Booking).UndoComplete, events.ClassCompletionUndone)
}

func (s *BookingService) transitionSession(
	ctx context.Context,
	principal auth.Principal,
	classID uuid.UUID,
	dateStr string,
	from, to bookingDomain.BookingStatus,
	apply func(*bookingDomain.Booking, time.Time) error,
	eventType string,
) (*ClassSessionResult, error) {
	if !principal.IsAdmin() {
		return nil, apperr.NewForbiddenError("only admins can change class completion")
	}
	if classID == uuid.Nil {
		return nil, apperr.NewValidationError("class ID is required")
	}
	date, err := bookingDomain.ParseDate(dateStr)
	if err != nil {
		return nil, apperr.NewValidationError(err.Error())
	}

	now := s.now()
	var affected int64
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx bookingDomain.Tx) error {
		if err := tx.LockClassDate(ctx, classID, date); err != nil {
			return err
		}
		bookings, err := tx.FindSessionForUpdate(ctx, classID, date, from)
		if err != nil {
			return err
		}
		for _, bk := range bookings {
			if err := apply(bk, now); err != nil {
				return err
			}
			if err := tx.Update(ctx, bk); err != nil {
				return err
			}
		}
		affected = int64(len(bookings))
		return nil
	})
	if err != nil {
		return nil, s.fail("failed to update class session", err,
			zap.String("class_id", classID.String()),
			zap.String("booking_date", dateStr),
		)
	}

	s.logger.Info("class session updated",
		zap.String("class_id", classID.String()),
		zap.String("booking_date", dateStr),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.Int64("affected", affected),
	)

	formatted := date.Format(bookingDomain.DateLayout)
	s.publisher.Publish(ctx, eventType, classID.String(), events.ClassSessionEvent{
		ClassID:     classID,
		BookingDate: formatted,
		Affected:    affected,
		ActorID:     principal.UserID,
		OccurredAt:  now.UTC(),
	})

	return &ClassSessionResult{ClassID: classID, BookingDate: formatted, Affected: affected}, nil
}

// GetBooking retrieves a booking visible to the principal.
func (s *BookingService) GetBooking(ctx context.Context, principal auth.Principal, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.store.FindByID(ctx, bookingID)
	if err != nil {
		return nil, s.fail("failed to load booking", err, zap.String("booking_id", bookingID.String()))
	}
	if bk.UserID() != principal.UserID && !principal.IsAdmin() {
		return nil, apperr.NewForbiddenError("booking does not belong to this user")
	}

	dtos, err := s.withClasses(ctx, []*bookingDomain.Booking{bk})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

// ListMyBookings retrieves the principal's bookings joined with class details.
func (s *BookingService) ListMyBookings(ctx context.Context, principal auth.Principal, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.store.FindByUserID(ctx, principal.UserID, page, limit)
	if err != nil {
		return nil, 0, s.fail("failed to list bookings", err, zap.String("user_id", principal.UserID.String()))
	}
	dtos, err := s.withClasses(ctx, bookings)
	if err != nil {
		return nil, 0, err
	}
	return dtos, total, nil
}

// --- Admin methods ---

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.store.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, s.fail("failed to list bookings", err)
	}
	dtos, err := s.withClasses(ctx, bookings)
	if err != nil {
		return nil, 0, err
	}
	return dtos, total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, s.fail("failed to get booking stats", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

// withClasses converts bookings to DTOs carrying class display fields.
// A class that no longer resolves leaves the display fields empty.
func (s *BookingService) withClasses(ctx context.Context, bookings []*bookingDomain.Booking) ([]BookingDTO, error) {
	classes := make(map[uuid.UUID]*gymclass.Class)
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		class, seen := classes[bk.ClassID()]
		if !seen {
			var err error
			class, err = s.classes.Get(ctx, bk.ClassID())
			if err != nil && apperr.CodeOf(err) != apperr.CodeNotFound {
				return nil, s.fail("failed to load class", err, zap.String("class_id", bk.ClassID().String()))
			}
			classes[bk.ClassID()] = class
		}
		dtos[i] = toBookingDTO(bk, class)
	}
	return dtos, nil
}

// fail passes business errors through and turns anything else into an
// internal error after logging it.
func (s *BookingService) fail(msg string, err error, fields ...zap.Field) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Code != apperr.CodeInternal {
		return appErr
	}
	s.logger.Error(msg, append(fields, zap.Error(err))...)
	if appErr != nil {
		return appErr
	}
	return apperr.NewInternalError(err)
}

func toBookingDTO(bk *bookingDomain.Booking, class *gymclass.Class) BookingDTO {
	dto := BookingDTO{
		ID:                 bk.ID(),
		UserID:             bk.UserID(),
		ClassID:            bk.ClassID(),
		BookingDate:        bk.BookingDate().Format(bookingDomain.DateLayout),
		Status:             bk.Status().String(),
		UsedConcession:     bk.UsedConcession(),
		IsLateCancellation: bk.IsLateCancellation(),
		CreatedAt:          bk.CreatedAt(),
		CancelledAt:        bk.CancelledAt(),
		UpdatedAt:          bk.UpdatedAt(),
	}
	if class != nil {
		dto.ClassName = class.Name
		dto.ClassInstructor = class.Instructor
		dto.ClassStartTime = class.StartTime.String()
	}
	return dto
}
