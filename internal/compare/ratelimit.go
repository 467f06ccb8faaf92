package compare

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// defaultRateLimitBackoff applies when a 429 carries no Retry-After.
const defaultRateLimitBackoff = 30 * time.Second

// RateLimiter is a token bucket shared by every comparison call. After a
// 429 it also holds all callers until the provider's retry time passes.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter allows rps requests per second with the given burst.
// A non-positive rps disables the token bucket.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, burst)}
}

// Wait blocks until a request may be sent or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
		}
	}
	return r.limiter.Wait(ctx)
}

// RecordRateLimitError pauses callers for retryAfter (or a default).
func (r *RateLimiter) RecordRateLimitError(retryAfter time.Duration) {
	if retryAfter <= 0 {
		retryAfter = defaultRateLimitBackoff
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if at := time.Now().Add(retryAfter); at.After(r.retryAt) {
		r.retryAt = at
	}
}

// Limited wraps a Comparator with a RateLimiter.
type Limited struct {
	next    Comparator
	limiter *RateLimiter
}

func NewLimited(next Comparator, limiter *RateLimiter) *Limited {
	return &Limited{next: next, limiter: limiter}
}

func (l *Limited) Model() string { return l.next.Model() }

func (l *Limited) Compare(ctx context.Context, in Input) (*Result, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	res, err := l.next.Compare(ctx, in)
	var re *RetryableError
	if errors.As(err, &re) && re.StatusCode == http.StatusTooManyRequests {
		l.limiter.RecordRateLimitError(time.Duration(re.RetryAfter) * time.Second)
	}
	return res, err
}
