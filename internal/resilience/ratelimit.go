package resilience

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures a RateLimiter.
type RateLimitConfig struct {
	Limit   int           `yaml:"limit"`    // permits per period, default 100
	Period  time.Duration `yaml:"period"`   // default 1s
	MaxWait time.Duration `yaml:"max_wait"` // default 500ms
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	if c.Limit <= 0 {
		c.Limit = 100
	}
	if c.Period <= 0 {
		c.Period = time.Second
	}
	if c.MaxWait <= 0 {
		c.MaxWait = 500 * time.Millisecond
	}
	return c
}

// RateLimiter hands out Limit permits per Period from a token bucket whose
// burst equals Limit. The bucket refills smoothly, one permit every
// Period/Limit, rather than all at once at a window boundary: at most Limit
// calls go through back to back, then one per Period/Limit. Over any Period
// no more than 2*Limit calls pass. Callers wait at most MaxWait for a permit.
type RateLimiter struct {
	limiter *rate.Limiter
	cfg     RateLimitConfig
}

// NewRateLimiter creates a rate limiter with a full bucket.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	cfg = cfg.withDefaults()
	every := cfg.Period / time.Duration(cfg.Limit)
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(every), cfg.Limit),
		cfg:     cfg,
	}
}

// Acquire takes one permit, waiting up to MaxWait. It returns ErrRateLimited
// when no permit frees up in time, or the context error if ctx ends first.
func (r *RateLimiter) Acquire(ctx context.Context) error {
	if r.limiter.Allow() {
		return nil
	}

	wctx, cancel := context.WithTimeout(ctx, r.cfg.MaxWait)
	defer cancel()

	if err := r.limiter.Wait(wctx); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("rate limiter wait: %w", ctx.Err())
		}
		return fmt.Errorf("%w: no permit within %s", ErrRateLimited, r.cfg.MaxWait)
	}
	return nil
}

// Tokens returns the number of permits currently available.
func (r *RateLimiter) Tokens() float64 {
	return r.limiter.Tokens()
}
