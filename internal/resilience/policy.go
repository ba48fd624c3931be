package resilience

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Settings bundles the configuration of every primitive guarding one
// provider.
type Settings struct {
	Breaker   BreakerConfig   `yaml:"circuit_breaker"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Bulkhead  BulkheadConfig  `yaml:"bulkhead"`
	Timeout   time.Duration   `yaml:"timeout"` // per-call deadline, default 10s
}

// Merge returns s with every zero field taken from base.
func (s Settings) Merge(base Settings) Settings {
	out := s
	if out.Breaker == (BreakerConfig{}) {
		out.Breaker = base.Breaker
	}
	if out.RateLimit == (RateLimitConfig{}) {
		out.RateLimit = base.RateLimit
	}
	if out.Bulkhead == (BulkheadConfig{}) {
		out.Bulkhead = base.Bulkhead
	}
	if out.Timeout == 0 {
		out.Timeout = base.Timeout
	}
	return out
}

const defaultCallTimeout = 10 * time.Second

// Policy is the long-lived resilience state of one provider. Calls pass
// through the rate limiter, then the bulkhead, then the circuit breaker, and
// finally run under the per-call deadline.
type Policy struct {
	name     string
	limiter  *RateLimiter
	bulkhead *Bulkhead
	breaker  *CircuitBreaker
	timeout  time.Duration
	log      *slog.Logger
}

// NewPolicy builds a Policy from settings.
func NewPolicy(name string, s Settings, log *slog.Logger, opts ...BreakerOption) *Policy {
	if log == nil {
		log = slog.Default()
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &Policy{
		name:     name,
		limiter:  NewRateLimiter(s.RateLimit),
		bulkhead: NewBulkhead(s.Bulkhead),
		breaker:  NewCircuitBreaker(s.Breaker, opts...),
		timeout:  timeout,
		log:      log.With("provider", name),
	}
}

// Name returns the provider name this policy guards.
func (p *Policy) Name() string { return p.name }

// Breaker exposes the policy's circuit breaker.
func (p *Policy) Breaker() *CircuitBreaker { return p.breaker }

// Bulkhead exposes the policy's bulkhead.
func (p *Policy) Bulkhead() *Bulkhead { return p.bulkhead }

// Limiter exposes the policy's rate limiter.
func (p *Policy) Limiter() *RateLimiter { return p.limiter }

// Timeout returns the per-call deadline.
func (p *Policy) Timeout() time.Duration { return p.timeout }

// Do runs fn under the policy. Every rejection, error, and timeout is
// reported through the returned error; fn is not invoked when the call is
// rejected.
func (p *Policy) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := p.limiter.Acquire(ctx); err != nil {
		p.rejected(err)
		return err
	}

	release, err := p.bulkhead.Acquire(ctx)
	if err != nil {
		p.rejected(err)
		return err
	}

	permit, err := p.breaker.Allow()
	if err != nil {
		release()
		return err
	}

	// The slot is held until fn returns, not until the timeout gives up on
	// it, so an upstream that ignores cancellation keeps counting against
	// the bulkhead.
	start := time.Now()
	_, err = CallWithTimeout(ctx, p.timeout, func(cctx context.Context) (struct{}, error) {
		defer release()
		return struct{}{}, fn(cctx)
	})
	elapsed := time.Since(start)

	// A canceled caller says nothing about the provider's health. An expired
	// caller deadline does: the provider was too slow for it.
	if errors.Is(ctx.Err(), context.Canceled) {
		permit.Abandon()
		return err
	}

	permit.Done(elapsed, err)
	return err
}

func (p *Policy) rejected(err error) {
	if !IsRejection(err) {
		return
	}
	p.log.Debug("call rejected", "reason", Reason(err))
	p.breaker.RecordRejection()
}
