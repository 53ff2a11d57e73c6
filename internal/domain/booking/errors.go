package booking

import "github.com/gymclass/service-booking/internal/platform/apperr"

// Business rule violations raised by the booking engine. They compare with
// errors.Is by code, so wrapped copies still match.
var (
	ErrInvalidBookingDate  = apperr.New(apperr.CodeInvalidBookingDate, "bookings can only be made from today up to 14 days ahead")
	ErrClassNotAvailable   = apperr.New(apperr.CodeClassNotAvailable, "this class is not available for booking on the requested date")
	ErrCreditLimitExceeded = apperr.New(apperr.CodeCreditLimitExceeded, "concession credit limit reached, please purchase more concessions")
	ErrClassFull           = apperr.New(apperr.CodeClassFull, "this class is fully booked for the requested date")
	ErrDuplicateBooking    = apperr.New(apperr.CodeDuplicateBooking, "you already have a booking for this class on this date")
	ErrNotCancellable      = apperr.NewInvalidTransitionError("only confirmed bookings can be cancelled")
)
