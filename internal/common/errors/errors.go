// internal/common/errors/errors.go

// Package errors provides standardized error handling for the
// coordinator. Every operation failure carries a stable error code and
// a human-readable reason; clients never need to parse message text.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Caller-correctable input problems. Never retried.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"

	// Referenced job or application is absent.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// Caller identity does not own the referenced job.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// Capacity exhausted, job closed, or duplicate application. The
	// request is inherently unsatisfiable, not transient.
	ErrCodeConflict ErrorCode = "CONFLICT"

	// Store-level failure. The only class eligible for caller-side
	// retry with backoff.
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError creates a non-retryable input validation error.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidation,
		Message:   "Invalid request payload",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError creates a non-retryable missing-entity error.
func NewNotFoundError(resource, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", resource),
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnauthorizedError creates a non-retryable ownership error.
func NewUnauthorizedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnauthorized,
		Message:   "Not authorized",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConflictError creates a non-retryable admission conflict error.
func NewConflictError(message, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConflict,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreError creates a retryable store failure error. The commit it
// interrupted is all-or-nothing, so retrying is safe.
func NewStoreError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreUnavailable,
		Message:   "Entity store unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// CodeOf extracts the error code, defaulting unknown errors to the
// retryable store class so callers never see a raw internal error.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodeStoreUnavailable
}

// MessageOf extracts the stable human-readable reason.
func MessageOf(err error) string {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Message
	}
	return "Internal error"
}

// IsRetryable reports whether the caller may retry with backoff.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}

// HTTPStatus maps an error code to its wire status.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
