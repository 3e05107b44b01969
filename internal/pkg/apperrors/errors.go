package apperrors

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure returned by a service wraps exactly one of these.
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidState     = errors.New("invalid state")
	ErrValidationFailed = errors.New("validation failed")
	ErrDuplicateState   = errors.New("duplicate state")

	// Authentication errors
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("invalid token")
	ErrInvalidFormat = errors.New("invalid token format")
)

// Connection errors
var (
	ErrSelfConnection   = kind(ErrValidationFailed, "cannot send connection request to yourself")
	ErrDuplicateRequest = kind(ErrDuplicateState, "connection request already sent")
	ErrAlreadyConnected = kind(ErrDuplicateState, "already connected")
	ErrNotConnected     = kind(ErrPermissionDenied, "an accepted connection is required to message this user")
)

// Principal errors
var (
	ErrPrincipalNotFound = kind(ErrResourceNotFound, "user not found")
	ErrRecipientNotFound = kind(ErrResourceNotFound, "student not found")
	ErrInvalidKind       = kind(ErrValidationFailed, "user kind must be Student or Alumni")
)

// Payment errors
var (
	ErrInvalidAmount        = kind(ErrValidationFailed, "amount must be a positive number")
	ErrMissingUPIID         = kind(ErrValidationFailed, "UPI ID is required")
	ErrMissingTransactionID = kind(ErrValidationFailed, "transaction ID is required")
	ErrUPIIDNotOnFile       = kind(ErrInvalidState, "student UPI ID not found")
)

// Message errors
var (
	ErrEmptyMessage = kind(ErrValidationFailed, "message content is required")
)

// Record lookups
var (
	ErrConnectionNotFound     = kind(ErrResourceNotFound, "connection request not found")
	ErrConversationNotFound   = kind(ErrResourceNotFound, "conversation not found")
	ErrMessageNotFound        = kind(ErrResourceNotFound, "message not found")
	ErrPaymentRequestNotFound = kind(ErrResourceNotFound, "payment request not found")
	ErrNotificationNotFound   = kind(ErrResourceNotFound, "notification not found")
)

// Storage guard errors. Services translate these into user-facing messages.
var (
	// ErrTransitionConflict is returned when a conditional status write matched no row
	ErrTransitionConflict = kind(ErrInvalidState, "record is no longer in the expected state")
	// ErrActivePairExists is returned when the pair already has a pending or accepted request
	ErrActivePairExists = kind(ErrDuplicateState, "an active connection request already exists for this pair")
)

// kindError is a sentinel that belongs to one of the error kinds above.
type kindError struct {
	kind error
	msg  string
}

func kind(k error, msg string) error {
	return &kindError{kind: k, msg: msg}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewInvalidStateError reports a transition that is not legal from the current status.
func NewInvalidStateError(format string, args ...interface{}) error {
	return &CustomError{
		Err:     ErrInvalidState,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewBadRequestError creates a new custom error for malformed input with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewDuplicateStateError creates a new custom error for an equivalent record that already exists
func NewDuplicateStateError(message string) error {
	return &CustomError{
		Err:     ErrDuplicateState,
		Message: message,
	}
}

// Kind returns the error kind err belongs to, or nil for unclassified errors.
func Kind(err error) error {
	for _, k := range []error{ErrResourceNotFound, ErrPermissionDenied, ErrInvalidState, ErrValidationFailed, ErrDuplicateState} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}
