// Package response writes the standard JSON envelope used by every endpoint.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gymclass/service-booking/internal/platform/apperr"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta carries pagination details.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Success writes a 200 response.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes a 200 response with pagination metadata.
func Paginated(c *gin.Context, data interface{}, total int64, page, limit int) {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    data,
		Meta:    &Meta{Page: page, Limit: limit, Total: total, TotalPages: totalPages},
	})
}

// BadRequest writes a 400 validation error.
func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, apperr.CodeValidation, message)
}

// Unauthorized writes a 401 error.
func Unauthorized(c *gin.Context, message string) {
	abort(c, http.StatusUnauthorized, apperr.CodeUnauthorized, message)
}

// Forbidden writes a 403 error.
func Forbidden(c *gin.Context, message string) {
	abort(c, http.StatusForbidden, apperr.CodeForbidden, message)
}

// Error maps err to its HTTP status. Errors without a code are reported as
// internal errors and their text is not exposed.
func Error(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Code == apperr.CodeInternal {
		_ = c.Error(err)
		abort(c, http.StatusInternalServerError, apperr.CodeInternal, "an internal error occurred")
		return
	}
	abort(c, StatusFor(appErr.Code), appErr.Code, appErr.Message)
}

// StatusFor returns the HTTP status for an error code.
func StatusFor(code apperr.Code) int {
	switch code {
	case apperr.CodeInvalidBookingDate, apperr.CodeValidation:
		return http.StatusBadRequest
	case apperr.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperr.CodeForbidden:
		return http.StatusForbidden
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeDuplicateBooking, apperr.CodeClassFull, apperr.CodeInvalidTransition, apperr.CodeClassNotAvailable:
		return http.StatusConflict
	case apperr.CodeCreditLimitExceeded:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func abort(c *gin.Context, status int, code apperr.Code, message string) {
	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: string(code), Message: message},
	})
}
