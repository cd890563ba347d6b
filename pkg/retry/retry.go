// Package retry runs an operation with bounded attempts and exponential
// backoff. Gateway calls are the primary user; anything returning a
// retryable error per the configured predicate is attempted again after
// a delay that doubles between attempts.
package retry

import (
	"context"
	"time"
)

type Policy struct {
	// MaxAttempts is the total number of attempts including the first.
	MaxAttempts int
	// BaseDelay is the wait before the second attempt. Attempt n waits
	// BaseDelay * 2^(n-1) after failing.
	BaseDelay time.Duration
}

// DefaultPolicy matches the gateway client settings: three attempts,
// one second base delay (so waits of 1s then 2s).
var DefaultPolicy = Policy{
	MaxAttempts: 3,
	BaseDelay:   time.Second,
}

type Option func(*executor)

// WithRetryable replaces the default predicate deciding whether a failed
// attempt should be retried. The default retries every error.
func WithRetryable(fn func(error) bool) Option {
	return func(e *executor) {
		e.retryable = fn
	}
}

// WithOnRetry registers a hook invoked before each re-attempt with the
// attempt number that just failed (1-based), the error it produced, and
// the delay about to be slept.
func WithOnRetry(fn func(attempt int, err error, delay time.Duration)) Option {
	return func(e *executor) {
		e.onRetry = fn
	}
}

type executor struct {
	policy    Policy
	retryable func(error) bool
	onRetry   func(attempt int, err error, delay time.Duration)
}

// Do runs op until it succeeds, returns a non-retryable error, the policy
// is exhausted, or ctx is cancelled. The error returned after exhaustion
// is the last attempt's error, not a wrapper, so callers can inspect it
// directly.
func Do(ctx context.Context, policy Policy, op func(ctx context.Context) error, opts ...Option) error {
	e := &executor{
		policy:    policy,
		retryable: func(error) bool { return true },
	}
	if e.policy.MaxAttempts < 1 {
		e.policy.MaxAttempts = 1
	}
	for _, opt := range opts {
		opt(e)
	}

	var lastErr error
	for attempt := 1; attempt <= e.policy.MaxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !e.retryable(lastErr) {
			return lastErr
		}
		if attempt == e.policy.MaxAttempts {
			break
		}

		delay := e.delayFor(attempt)
		if e.onRetry != nil {
			e.onRetry(attempt, lastErr, delay)
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

func (e *executor) delayFor(attempt int) time.Duration {
	delay := e.policy.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return delay
}
