package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	// ErrSessionExpired signals that the access token could not be refreshed
	// and the caller must authenticate again.
	ErrSessionExpired = New("SESSION_EXPIRED", http.StatusUnauthorized, "session expired, login required")

	// ErrUpstream wraps non-2xx responses from the university API.
	ErrUpstream = New("UPSTREAM_ERROR", http.StatusBadGateway, "upstream request failed")

	// ErrSubjectMismatch rejects a lesson reassignment to a subject assignment
	// whose professor does not teach the lesson's subject.
	ErrSubjectMismatch = New("SUBJECT_MISMATCH", http.StatusUnprocessableEntity, "target professor does not teach this subject")

	// ErrUnassignedTarget rejects a drop onto a placeholder lane.
	ErrUnassignedTarget = New("UNASSIGNED_TARGET", http.StatusUnprocessableEntity, "cannot assign lesson to an unassigned lane")

	// ErrConfirmationRequired gates exports while the schedule has open
	// conflicts or workload issues.
	ErrConfirmationRequired = New("CONFIRMATION_REQUIRED", http.StatusConflict, "schedule has issues, export requires confirmation")

	// ErrCacheMiss marks a cache lookup that found nothing.
	ErrCacheMiss = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
