package resilience

import (
	"fmt"
	"sync"
	"time"
)

// State is a circuit breaker state.
type State int

// Circuit breaker states.
const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// BreakerConfig configures a CircuitBreaker. Zero values take the defaults
// noted on each field.
type BreakerConfig struct {
	WindowSize           int           `yaml:"window_size"`              // default 10
	MinimumCalls         int           `yaml:"minimum_calls"`            // default 5
	FailureRateThreshold float64       `yaml:"failure_rate_threshold"`   // percent, default 50
	SlowRateThreshold    float64       `yaml:"slow_call_rate_threshold"` // percent, default 60
	SlowCallDuration     time.Duration `yaml:"slow_call_duration"`       // default 5s
	OpenWait             time.Duration `yaml:"open_wait"`                // default 30s
	HalfOpenCalls        int           `yaml:"half_open_calls"`          // default 3
}

func (c BreakerConfig) withDefaults() BreakerConfig {
	if c.WindowSize <= 0 {
		c.WindowSize = 10
	}
	if c.MinimumCalls <= 0 {
		c.MinimumCalls = 5
	}
	if c.MinimumCalls > c.WindowSize {
		c.MinimumCalls = c.WindowSize
	}
	if c.FailureRateThreshold <= 0 {
		c.FailureRateThreshold = 50
	}
	if c.SlowRateThreshold <= 0 {
		c.SlowRateThreshold = 60
	}
	if c.SlowCallDuration <= 0 {
		c.SlowCallDuration = 5 * time.Second
	}
	if c.OpenWait <= 0 {
		c.OpenWait = 30 * time.Second
	}
	if c.HalfOpenCalls <= 0 {
		c.HalfOpenCalls = 3
	}
	return c
}

type outcome struct {
	failed bool
	slow   bool
}

// CircuitBreaker is a count-based rolling-window breaker. In the closed
// state it keeps the last WindowSize outcomes and opens once at least
// MinimumCalls have been recorded and either the failure rate or the slow
// call rate reaches its threshold. After OpenWait it admits exactly
// HalfOpenCalls trial calls; all of them must succeed to close again.
type CircuitBreaker struct {
	cfg     BreakerConfig
	nowFunc func() time.Time
	onState func(from, to State)

	mu       sync.Mutex
	state    State
	window   []outcome
	next     int
	count    int
	openedAt time.Time

	trialsIssued    int
	trialsSucceeded int
	generation      uint64
}

// BreakerOption configures a CircuitBreaker.
type BreakerOption func(*CircuitBreaker)

// WithBreakerNowFunc overrides the time function for testing.
func WithBreakerNowFunc(f func() time.Time) BreakerOption {
	return func(cb *CircuitBreaker) {
		cb.nowFunc = f
	}
}

// WithStateChangeHook registers f to be called on every state transition.
// f runs with the breaker lock held and must not call back into the breaker.
func WithStateChangeHook(f func(from, to State)) BreakerOption {
	return func(cb *CircuitBreaker) {
		cb.onState = f
	}
}

// NewCircuitBreaker creates a closed circuit breaker.
func NewCircuitBreaker(cfg BreakerConfig, opts ...BreakerOption) *CircuitBreaker {
	cfg = cfg.withDefaults()
	cb := &CircuitBreaker{
		cfg:     cfg,
		nowFunc: time.Now,
		window:  make([]outcome, cfg.WindowSize),
	}
	for _, opt := range opts {
		opt(cb)
	}
	return cb
}

// Config returns the effective configuration.
func (cb *CircuitBreaker) Config() BreakerConfig {
	return cb.cfg
}

// State returns the current state, moving an expired open breaker to
// half-open first.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.maybeHalfOpen()
	return cb.state
}

// Permit is a ticket for one admitted call. Done must be called exactly once
// with the call's duration and result.
type Permit struct {
	cb         *CircuitBreaker
	generation uint64
	trial      bool
	once       sync.Once
}

// Allow admits a call or returns ErrCircuitOpen. It never blocks.
func (cb *CircuitBreaker) Allow() (*Permit, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.maybeHalfOpen()

	switch cb.state {
	case StateOpen:
		return nil, ErrCircuitOpen
	case StateHalfOpen:
		if cb.trialsIssued >= cb.cfg.HalfOpenCalls {
			return nil, ErrCircuitOpen
		}
		cb.trialsIssued++
		return &Permit{cb: cb, generation: cb.generation, trial: true}, nil
	default:
		return &Permit{cb: cb, generation: cb.generation}, nil
	}
}

// Done records the outcome of the admitted call.
func (p *Permit) Done(d time.Duration, err error) {
	p.once.Do(func() {
		p.cb.record(p, d, err)
	})
}

// Abandon gives the permit back without recording an outcome, for calls the
// caller gave up on for its own reasons. An abandoned trial frees its
// half-open slot for another caller.
func (p *Permit) Abandon() {
	p.once.Do(func() {
		p.cb.abandon(p)
	})
}

// RecordRejection feeds a call that was refused before reaching the
// breaker (rate limiter, bulkhead) into the closed-state window as a failure.
// It has no effect while the breaker is open or half-open.
func (cb *CircuitBreaker) RecordRejection() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state != StateClosed {
		return
	}
	cb.push(outcome{failed: true})
	cb.evaluate()
}

func (cb *CircuitBreaker) record(p *Permit, d time.Duration, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	// Outcomes from a previous state generation are stale.
	if p.generation != cb.generation {
		return
	}

	slow := d >= cb.cfg.SlowCallDuration
	failed := err != nil || slow

	if p.trial {
		if failed {
			cb.transition(StateOpen)
			return
		}
		cb.trialsSucceeded++
		if cb.trialsSucceeded >= cb.cfg.HalfOpenCalls {
			cb.transition(StateClosed)
		}
		return
	}

	cb.push(outcome{failed: failed, slow: slow})
	cb.evaluate()
}

func (cb *CircuitBreaker) abandon(p *Permit) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if p.trial && p.generation == cb.generation && cb.trialsIssued > 0 {
		cb.trialsIssued--
	}
}

func (cb *CircuitBreaker) push(o outcome) {
	cb.window[cb.next] = o
	cb.next = (cb.next + 1) % len(cb.window)
	if cb.count < len(cb.window) {
		cb.count++
	}
}

func (cb *CircuitBreaker) evaluate() {
	if cb.count < cb.cfg.MinimumCalls {
		return
	}
	var failures, slow int
	for i := range cb.count {
		if cb.window[i].failed {
			failures++
		}
		if cb.window[i].slow {
			slow++
		}
	}
	failureRate := float64(failures) / float64(cb.count) * 100
	slowRate := float64(slow) / float64(cb.count) * 100
	if failureRate >= cb.cfg.FailureRateThreshold || slowRate >= cb.cfg.SlowRateThreshold {
		cb.transition(StateOpen)
	}
}

func (cb *CircuitBreaker) maybeHalfOpen() {
	if cb.state == StateOpen && !cb.nowFunc().Before(cb.openedAt.Add(cb.cfg.OpenWait)) {
		cb.transition(StateHalfOpen)
	}
}

func (cb *CircuitBreaker) transition(to State) {
	from := cb.state
	cb.state = to
	cb.generation++
	cb.trialsIssued = 0
	cb.trialsSucceeded = 0

	switch to {
	case StateOpen:
		cb.openedAt = cb.nowFunc()
	case StateClosed:
		clear(cb.window)
		cb.next = 0
		cb.count = 0
	case StateHalfOpen:
	}

	if cb.onState != nil && from != to {
		cb.onState(from, to)
	}
}
