package fxrate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/donaldgifford/catalog-aggregator/pkg/types"
)

const defaultMissTTL = 30 * time.Second

// Chain serves rates from the snapshot and falls back to a slower source
// on a miss, remembering the answer. Pairs the fallback does not know are
// remembered as missing for a short while.
type Chain struct {
	snapshot *Snapshot
	fallback Source
	missTTL  time.Duration
	nowFunc  func() time.Time

	mu     sync.Mutex
	misses map[string]time.Time
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithMissTTL sets how long an unknown pair is remembered.
func WithMissTTL(d time.Duration) ChainOption {
	return func(c *Chain) {
		c.missTTL = d
	}
}

// WithChainNowFunc overrides the time function for testing.
func WithChainNowFunc(f func() time.Time) ChainOption {
	return func(c *Chain) {
		c.nowFunc = f
	}
}

// NewChain creates a Chain. fallback may be nil.
func NewChain(snapshot *Snapshot, fallback Source, opts ...ChainOption) *Chain {
	c := &Chain{
		snapshot: snapshot,
		fallback: fallback,
		missTTL:  defaultMissTTL,
		nowFunc:  time.Now,
		misses:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetRate implements Source.
func (c *Chain) GetRate(ctx context.Context, base, target string) (domain.ExchangeRate, error) {
	r, err := c.snapshot.GetRate(ctx, base, target)
	if err == nil || c.fallback == nil {
		return r, err
	}

	key := pairKey(base, target)
	if c.recentlyMissed(key) {
		return domain.ExchangeRate{}, err
	}

	r, err = c.fallback.GetRate(ctx, base, target)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.mu.Lock()
			c.misses[key] = c.nowFunc()
			c.mu.Unlock()
		}
		return domain.ExchangeRate{}, err
	}

	c.snapshot.Put(r)
	return r, nil
}

// Rate implements pricing.ExchangeRateLookup.
func (c *Chain) Rate(ctx context.Context, base, target string) (decimal.Decimal, error) {
	r, err := c.GetRate(ctx, base, target)
	if err != nil {
		return decimal.Zero, err
	}
	return r.Rate, nil
}

// Forget clears remembered misses, for use after rates change.
func (c *Chain) Forget() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.misses)
}

func (c *Chain) recentlyMissed(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	at, ok := c.misses[key]
	if !ok {
		return false
	}
	if c.nowFunc().Sub(at) >= c.missTTL {
		delete(c.misses, key)
		return false
	}
	return true
}
