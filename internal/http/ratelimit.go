package http

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter throttles outgoing requests on the client side. After a 429 it
// holds every caller until the server's Retry-After has passed.
type RateLimiter struct {
	limiter *rate.Limiter

	mutex   sync.Mutex
	retryAt time.Time
}

// NewRateLimiter allows requestsPerSecond with a burst of one.
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// Wait blocks until a request may be sent or the context is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mutex.Lock()
	retryAt := r.retryAt
	r.mutex.Unlock()

	if delay := time.Until(retryAt); delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()

			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError defers all callers by wait.
func (r *RateLimiter) RecordRateLimitError(wait time.Duration) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	retryAt := time.Now().Add(wait)
	if retryAt.After(r.retryAt) {
		r.retryAt = retryAt
	}
}
