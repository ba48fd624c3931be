package resilience

import (
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// StateObserver is notified of every breaker transition of every provider.
type StateObserver func(provider string, from, to State)

// Registry owns one Policy per provider. Policies are created on first use
// and live for the life of the process.
type Registry struct {
	defaults  Settings
	overrides map[string]Settings
	observer  StateObserver
	log       *slog.Logger

	mu       sync.Mutex
	policies map[string]*Policy
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithStateObserver registers a breaker transition observer.
func WithStateObserver(o StateObserver) RegistryOption {
	return func(r *Registry) {
		r.observer = o
	}
}

// WithRegistryLogger sets the logger handed to every policy.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.log = l
	}
}

// WithOverrides sets per-provider settings layered over the defaults.
func WithOverrides(o map[string]Settings) RegistryOption {
	return func(r *Registry) {
		for name, s := range o {
			r.overrides[strings.ToLower(name)] = s
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(defaults Settings, opts ...RegistryOption) *Registry {
	r := &Registry{
		defaults:  defaults,
		overrides: make(map[string]Settings),
		log:       slog.Default(),
		policies:  make(map[string]*Policy),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the policy for provider, creating it if needed.
func (r *Registry) Get(provider string) *Policy {
	name := strings.ToLower(provider)

	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.policies[name]; ok {
		return p
	}

	settings := r.defaults
	if o, ok := r.overrides[name]; ok {
		settings = o.Merge(r.defaults)
	}

	var opts []BreakerOption
	if r.observer != nil {
		observer := r.observer
		opts = append(opts, WithStateChangeHook(func(from, to State) {
			observer(name, from, to)
		}))
	}

	p := NewPolicy(name, settings, r.log, opts...)
	r.policies[name] = p
	return p
}

// PolicyState is a point-in-time view of one provider's resilience state.
type PolicyState struct {
	Provider         string  `json:"provider"`
	BreakerState     string  `json:"breaker_state"`
	InFlight         int64   `json:"in_flight"`
	MaxConcurrent    int     `json:"max_concurrent"`
	AvailablePermits float64 `json:"available_permits"`
}

// Snapshot reports the state of every policy created so far, sorted by
// provider name.
func (r *Registry) Snapshot() []PolicyState {
	r.mu.Lock()
	policies := make([]*Policy, 0, len(r.policies))
	for _, p := range r.policies {
		policies = append(policies, p)
	}
	r.mu.Unlock()

	out := make([]PolicyState, 0, len(policies))
	for _, p := range policies {
		out = append(out, p.State())
	}
	slices.SortFunc(out, func(a, b PolicyState) int {
		return strings.Compare(a.Provider, b.Provider)
	})
	return out
}

// State reports the policy's current resilience state.
func (p *Policy) State() PolicyState {
	return PolicyState{
		Provider:         p.name,
		BreakerState:     p.breaker.State().String(),
		InFlight:         p.bulkhead.InFlight(),
		MaxConcurrent:    p.bulkhead.Capacity(),
		AvailablePermits: p.limiter.Tokens(),
	}
}
