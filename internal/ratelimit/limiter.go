package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// SendLimiter enforces a steady-state cap on outbound provider calls so a
// large dispatch batch cannot exceed the mail provider's rate agreement.
// Burst is set equal to the rate, so no capacity can be "saved up" beyond
// the configured per-second maximum.
type SendLimiter struct {
	limiter *rate.Limiter
}

// New creates a SendLimiter allowing perSec sends per second.
func New(perSec int) *SendLimiter {
	return &SendLimiter{limiter: rate.NewLimiter(rate.Limit(perSec), perSec)}
}

// Wait blocks until the limiter grants a token. Called by each dispatch
// worker immediately before the provider call. Returns a non-nil error
// only if ctx is cancelled while waiting.
func (s *SendLimiter) Wait(ctx context.Context) error {
	return s.limiter.Wait(ctx)
}
