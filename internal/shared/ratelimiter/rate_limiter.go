// Package ratelimiter throttles calls to rate-limited upstream APIs.
package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter allows at most limit calls per interval, spread evenly, with
// bursts of up to limit calls.
type RateLimiter struct {
	limiter *rate.Limiter
	limit   int
}

// NewRateLimiter creates a RateLimiter. A non-positive limit or interval disables throttling.
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	if limit <= 0 || interval <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(interval/time.Duration(limit)), limit),
		limit:   limit,
	}
}

// Wait blocks until another call is allowed or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl.limit > 0 && rl.limiter.Tokens() < 1 {
		slog.Debug("rate limit reached", "limit", rl.limit)
	}
	return rl.limiter.Wait(ctx)
}
