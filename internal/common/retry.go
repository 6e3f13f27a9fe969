package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/novatax/internal/service"
)

var (
	// ErrRateLimit marks a collaborator refusal that should wait out MaxDelay.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrMaxRetries wraps the last cause once every attempt has failed.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// RetryableError tags a collaborator or remote failure with whether another
// attempt could succeed. Build one with Permanent or Transient.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// Permanent tags err so WithRetry gives up at once, e.g. a 4xx from a model API.
func Permanent(err error) error {
	return &RetryableError{Err: err}
}

// Transient tags err as worth another attempt.
func Transient(err error) error {
	return &RetryableError{Err: err, Retryable: true}
}

// WithRetry calls op until it succeeds, fails with a Permanent error, the
// context ends, or opts.MaxAttempts calls have failed. Untagged errors are
// retried. The exhausted error wraps both ErrMaxRetries and the last cause.
func WithRetry(ctx context.Context, op func() error, opts service.RetryOptions) error {
	opts = retryDefaults(opts)
	delay := opts.InitialDelay

	for attempt := 1; ; attempt++ {
		err := op()
		switch {
		case err == nil:
			return nil
		case !worthRetrying(err):
			return err
		case ctx.Err() != nil:
			return ctx.Err()
		case attempt >= opts.MaxAttempts:
			return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, opts.MaxAttempts, err)
		}

		if errors.Is(err, ErrRateLimit) {
			delay = opts.MaxDelay
		}
		slog.Warn("Collaborator call failed, backing off",
			"attempt", attempt,
			"max_attempts", opts.MaxAttempts,
			"delay", delay,
			"error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay = min(time.Duration(float64(delay)*opts.Multiplier), opts.MaxDelay)
	}
}

func retryDefaults(opts service.RetryOptions) service.RetryOptions {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 100 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = 2
	}
	return opts
}

func worthRetrying(err error) bool {
	var tagged *RetryableError
	return !errors.As(err, &tagged) || tagged.Retryable
}
