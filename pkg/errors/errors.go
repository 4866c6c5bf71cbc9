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
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	// Resolution errors abort a notification task before any fan-out begins.
	ErrMissingActivity  = New("MISSING_ACTIVITY", http.StatusNotFound, "course activity not found")
	ErrMissingRun       = New("MISSING_RUN", http.StatusNotFound, "course run not found")
	ErrMissingGroup     = New("MISSING_GROUP", http.StatusNotFound, "course run has no group")
	ErrMissingCourse    = New("MISSING_COURSE", http.StatusNotFound, "course not found")
	ErrMissingUser      = New("MISSING_USER", http.StatusNotFound, "user not found")
	ErrMalformedPayload = New("MALFORMED_PAYLOAD", http.StatusUnprocessableEntity, "activity payload cannot be parsed")
	ErrMissingTitle     = New("MISSING_TITLE", http.StatusUnprocessableEntity, "activity payload has no title")
	ErrMissingRunName   = New("MISSING_RUN_NAME", http.StatusUnprocessableEntity, "course run has no name")
)

// IsResolution reports whether err belongs to the resolution taxonomy.
func IsResolution(err error) bool {
	e := FromError(err)
	if e == nil {
		return false
	}
	switch e.Code {
	case ErrMissingActivity.Code, ErrMissingRun.Code, ErrMissingGroup.Code,
		ErrMissingCourse.Code, ErrMissingUser.Code, ErrMalformedPayload.Code,
		ErrMissingTitle.Code, ErrMissingRunName.Code:
		return true
	}
	return false
}

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
