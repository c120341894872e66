package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// TokenLimiter enforces a model-token-per-minute budget on top of the
// per-request limiter. Waits block until enough budget has refilled.
type TokenLimiter struct {
	limiter      *rate.Limiter
	maxPerMinute int
}

// NewTokenLimiter creates a limiter refilling maxTokenPerMinute tokens per minute.
func NewTokenLimiter(maxTokenPerMinute int) *TokenLimiter {
	return &TokenLimiter{
		limiter:      rate.NewLimiter(rate.Limit(float64(maxTokenPerMinute)/60.0), maxTokenPerMinute),
		maxPerMinute: maxTokenPerMinute,
	}
}

// Wait blocks until n tokens are available. Requests larger than the full
// budget are clamped to it so they remain servable.
func (t *TokenLimiter) Wait(ctx context.Context, n int) error {
	if n > t.maxPerMinute {
		n = t.maxPerMinute
	}
	if n <= 0 {
		return nil
	}
	return t.limiter.WaitN(ctx, n)
}

// GetRemaining returns the currently available token budget.
func (t *TokenLimiter) GetRemaining() int {
	return int(t.limiter.Tokens())
}
