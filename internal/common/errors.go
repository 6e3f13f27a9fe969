// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrDatabaseCorrupted = errors.New("database corrupted")
	ErrRemoteUnavailable = errors.New("remote datastore unavailable")

	// AI collaborator errors.
	ErrCollaboratorUnavailable = errors.New("ai collaborator unavailable")
	ErrMalformedResponse       = errors.New("malformed ai response")

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

// IsRetryable reports whether err is explicitly worth another attempt: a
// rate limit, a deadline, or an error tagged Transient.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var tagged *RetryableError
	return errors.As(err, &tagged) && tagged.Retryable
}
