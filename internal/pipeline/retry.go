package pipeline

import (
	"errors"
	"math/rand"
	"time"

	"github.com/dgallion1/docdiff/internal/compare"
)

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *compare.RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int63n(int64(base) / 2))
	return base + jitter
}

// retryDelay honors a server-provided Retry-After when it exceeds the
// computed backoff.
func retryDelay(err error, attempt int, backoff func(int) time.Duration) time.Duration {
	d := backoff(attempt)
	var retryErr *compare.RetryableError
	if errors.As(err, &retryErr) && retryErr.RetryAfter > 0 {
		if ra := time.Duration(retryErr.RetryAfter) * time.Second; ra > d {
			return ra
		}
	}
	return d
}

const MaxRetries = 3
