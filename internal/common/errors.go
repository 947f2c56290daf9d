// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Classification errors.
	ErrInvalidZone        = errors.New("invalid zone")
	ErrRecognitionFailure = errors.New("no text recognized in any rotation")

	// Pending queue errors.
	ErrSourceUnavailable = errors.New("source image unavailable")
	ErrNotPending        = errors.New("source is not pending")

	// Storage errors.
	ErrPersistence = errors.New("persistence failure")

	// Export errors.
	ErrNoRows       = errors.New("no detail rows to export")
	ErrEmptyArchive = errors.New("archive contains no images")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable determines if an error should trigger a retry.
// Only remote sinks retry; local storage and recognition never do.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
