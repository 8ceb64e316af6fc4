// Package errors provides the standardized error taxonomy for the waitlist
// submission pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeDuplicateEmail     ErrorCode = "DUPLICATE_EMAIL"
	ErrCodeStoreNotConfigured ErrorCode = "STORE_NOT_CONFIGURED"
	ErrCodePersistenceFailure ErrorCode = "PERSISTENCE_FAILURE"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// User-facing messages. The duplicate message is shown verbatim; every other
// failure surfaces the generic retry message while details go to logs only.
const (
	DuplicateEmailMessage = "This email is already registered for our waitlist."
	GenericFailureMessage = "Failed to join waitlist. Please try again."
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

// NewDuplicateEmailError creates the non-retryable duplicate-signup error.
// This is an expected business outcome, not an infrastructure failure.
func NewDuplicateEmailError(email string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateEmail,
		Message:   DuplicateEmailMessage,
		Details:   fmt.Sprintf("email: %s", email),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreNotConfiguredError creates the fail-fast error returned when the
// store connection parameters were absent at startup.
func NewStoreNotConfiguredError() *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreNotConfigured,
		Message:   GenericFailureMessage,
		Details:   "waitlist store credentials are not configured",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPersistenceFailureError creates a retryable store-level error. The
// underlying message is carried in Details for diagnostic logging only.
func NewPersistenceFailureError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceFailure,
		Message:   GenericFailureMessage,
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates the error escalated when the
// critical welcome send fails. It never downgrades a successful write.
func NewNotificationSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Failed to send welcome email",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected failure with a non-leaking message.
func NewInternalError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternalError,
		Message:   GenericFailureMessage,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// AsStandardError extracts a StandardError from an error chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HTTPStatus maps an error code to the HTTP status the API surfaces.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed:
		return http.StatusUnprocessableEntity
	case ErrCodeDuplicateEmail:
		return http.StatusConflict
	case ErrCodeStoreNotConfigured, ErrCodePersistenceFailure:
		return http.StatusServiceUnavailable
	case ErrCodeNotificationSendFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns the message safe to show the end user. Unexpected
// errors collapse to the generic retry message.
func UserMessage(err error) string {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Message
	}
	return GenericFailureMessage
}
