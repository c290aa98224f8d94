package services

import (
	"errors"
	"fmt"
)

// Job-level error taxonomy. Handlers map these onto HTTP statuses and the
// pipeline uses them to decide hard vs soft vs retryable failures.
var (
	// ErrContentUnavailable: the source has no usable content (captions
	// disabled, tweet deleted). Fatal to the job, not the process.
	ErrContentUnavailable = errors.New("content unavailable")

	// ErrSourceBlocked: the source rate-limited or blocked the fetch.
	ErrSourceBlocked = errors.New("source blocked")

	// ErrGenerationFailed: a model collaborator returned an error or an
	// empty result. Fatal to the job.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrPublishRejected: the publisher refused the post (bad account,
	// invalid payload). Requires operator intervention, never retried.
	ErrPublishRejected = errors.New("publish rejected")

	// ErrStageNotFound: no staged bundle exists (or it expired) for the
	// given client/url-hash pair.
	ErrStageNotFound = errors.New("stage not found")

	// ErrProtectedClient: the reserved default client cannot be removed.
	ErrProtectedClient = errors.New("protected client")

	// ErrIndexOutOfRange: a 1-based queue index points outside the queue.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// TransientError wraps network/5xx style failures that the retry policy may
// re-attempt.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("transient: %v", e.Err) }

func (e *TransientError) Unwrap() error { return e.Err }

// Transient marks err as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err is classified as retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
