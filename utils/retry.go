package utils

import (
	"context"
	"time"
)

// RetryPolicy is the single retry configuration applied at collaborator-call
// boundaries. Only errors the predicate classifies as transient are retried.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Retryable   func(error) bool
}

// DefaultRetryPolicy retries transient failures up to 3 attempts with
// exponential backoff (500ms, 1s).
func DefaultRetryPolicy(retryable func(error) bool) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		Retryable:   retryable,
	}
}

// Do runs fn, retrying per the policy. Non-retryable errors propagate
// immediately; the last error surfaces once attempts are exhausted.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	delay := p.BaseDelay
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if attempt >= p.MaxAttempts || p.Retryable == nil || !p.Retryable(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}
