package fxrate

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	domain "github.com/donaldgifford/catalog-aggregator/pkg/types"
)

// Snapshot is an in-memory, read-mostly set of rates. Readers never block;
// writers swap in a new map. Create one with NewSnapshot.
type Snapshot struct {
	rates atomic.Pointer[map[string]domain.ExchangeRate]
	mu    sync.Mutex // serializes writers
}

// NewSnapshot creates a snapshot holding rates.
func NewSnapshot(rates ...domain.ExchangeRate) *Snapshot {
	s := &Snapshot{}
	s.Replace(rates)
	return s
}

// Replace swaps the whole rate set.
func (s *Snapshot) Replace(rates []domain.ExchangeRate) {
	m := make(map[string]domain.ExchangeRate, len(rates))
	for _, r := range rates {
		r.Base = strings.ToUpper(r.Base)
		r.Target = strings.ToUpper(r.Target)
		m[pairKey(r.Base, r.Target)] = r
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates.Store(&m)
}

// Put adds or replaces one rate.
func (s *Snapshot) Put(r domain.ExchangeRate) {
	r.Base = strings.ToUpper(r.Base)
	r.Target = strings.ToUpper(r.Target)

	s.mu.Lock()
	defer s.mu.Unlock()

	m := maps.Clone(*s.rates.Load())
	m[pairKey(r.Base, r.Target)] = r
	s.rates.Store(&m)
}

// GetRate implements Source.
func (s *Snapshot) GetRate(_ context.Context, base, target string) (domain.ExchangeRate, error) {
	r, ok := (*s.rates.Load())[pairKey(base, target)]
	if !ok {
		return domain.ExchangeRate{}, fmt.Errorf("%w: %s", ErrNotFound, pairKey(base, target))
	}
	return r, nil
}

// Rate implements pricing.ExchangeRateLookup.
func (s *Snapshot) Rate(ctx context.Context, base, target string) (decimal.Decimal, error) {
	r, err := s.GetRate(ctx, base, target)
	if err != nil {
		return decimal.Zero, err
	}
	return r.Rate, nil
}

// All returns every rate sorted by pair.
func (s *Snapshot) All() []domain.ExchangeRate {
	m := *s.rates.Load()
	keys := slices.Sorted(maps.Keys(m))
	out := make([]domain.ExchangeRate, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

// Len returns the number of rates held.
func (s *Snapshot) Len() int {
	return len(*s.rates.Load())
}
