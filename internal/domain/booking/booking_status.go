package booking

import "fmt"

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusConfirmed     BookingStatus = "confirmed"
	StatusCancelled     BookingStatus = "cancelled"
	StatusLateCancelled BookingStatus = "late_cancelled"
	StatusCompleted     BookingStatus = "completed"
)

// validTransitions defines the state machine for booking status transitions.
// Completion is the only reversible step.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusConfirmed:     {StatusCancelled, StatusLateCancelled, StatusCompleted},
	StatusCompleted:     {StatusConfirmed},
	StatusCancelled:     {},
	StatusLateCancelled: {},
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsActive reports whether the booking still holds (or held, for completed
// classes) the member's place in the class.
func (s BookingStatus) IsActive() bool {
	return s == StatusConfirmed || s == StatusCompleted
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}
