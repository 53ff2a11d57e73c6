// Package apperr defines the typed errors shared by the domain, application
// and transport layers.
package apperr

import (
	"errors"
	"fmt"
)

// Code identifies a class of error that callers can act on.
type Code string

const (
	CodeInvalidBookingDate  Code = "INVALID_BOOKING_DATE"
	CodeClassNotAvailable   Code = "CLASS_NOT_AVAILABLE"
	CodeCreditLimitExceeded Code = "CREDIT_LIMIT_EXCEEDED"
	CodeClassFull           Code = "CLASS_FULL"
	CodeDuplicateBooking    Code = "DUPLICATE_BOOKING"
	CodeNotFound            Code = "NOT_FOUND"
	CodeForbidden           Code = "FORBIDDEN"
	CodeInvalidTransition   Code = "INVALID_TRANSITION"
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeInternal            Code = "INTERNAL_ERROR"
)

// Error is a business or infrastructure error with a stable code.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New creates an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) *Error {
	return New(CodeNotFound, fmt.Sprintf("%s %s not found", entity, id))
}

// NewValidationError reports malformed input.
func NewValidationError(message string) *Error {
	return New(CodeValidation, message)
}

// NewForbiddenError reports an authorization failure.
func NewForbiddenError(message string) *Error {
	return New(CodeForbidden, message)
}

// NewInvalidTransitionError reports a rejected state change.
func NewInvalidTransitionError(message string) *Error {
	return New(CodeInvalidTransition, message)
}

// NewInternalError wraps a storage or infrastructure failure. The cause is
// kept for logging and never rendered to clients.
func NewInternalError(cause error) *Error {
	return &Error{Code: CodeInternal, Message: "an internal error occurred", cause: cause}
}

// CodeOf returns the code carried by err, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
