package cache

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks an error as transient so RetryWithBackoff will
// try again. Permanent failures (bad input, 404s) stay unwrapped.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as transient. Wrapping nil returns nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err is marked transient anywhere in its chain.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

const (
	retryAttempts = 3
	retryBaseWait = time.Second
)

// RetryWithBackoff runs fn up to three times, doubling the wait between
// attempts. Only errors marked with Retryable trigger another attempt;
// context cancellation wins over the backoff sleep.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	var lastErr error
	wait := retryBaseWait

	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		lastErr = err
		if attempt == retryAttempts {
			return lastErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
			wait *= 2
		}
	}
}
