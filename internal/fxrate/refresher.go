package fxrate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/donaldgifford/catalog-aggregator/internal/metrics"
	domain "github.com/donaldgifford/catalog-aggregator/pkg/types"
)

// Lister returns the full rate set.
type Lister interface {
	ListRates(ctx context.Context) ([]domain.ExchangeRate, error)
}

// Refresher periodically reloads the snapshot from the store. Seed rates
// are always present and are overridden by stored rates for the same pair.
type Refresher struct {
	cron     *cron.Cron
	store    Lister
	snapshot *Snapshot
	seed     []domain.ExchangeRate
	onReload func()
	log      *slog.Logger
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

// WithSeed sets rates that are kept even when the store does not have them.
func WithSeed(rates []domain.ExchangeRate) RefresherOption {
	return func(r *Refresher) {
		r.seed = rates
	}
}

// WithReloadHook registers f to run after every successful reload.
func WithReloadHook(f func()) RefresherOption {
	return func(r *Refresher) {
		r.onReload = f
	}
}

// NewRefresher creates a Refresher that reloads every interval.
func NewRefresher(
	store Lister,
	snapshot *Snapshot,
	interval time.Duration,
	log *slog.Logger,
	opts ...RefresherOption,
) (*Refresher, error) {
	r := &Refresher{
		cron:     cron.New(),
		store:    store,
		snapshot: snapshot,
		log:      log,
	}
	for _, opt := range opts {
		opt(r)
	}

	if _, err := r.cron.AddFunc("@every "+interval.String(), r.run); err != nil {
		return nil, fmt.Errorf("scheduling rate refresh: %w", err)
	}
	return r, nil
}

// Load reloads the snapshot once.
func (r *Refresher) Load(ctx context.Context) error {
	rates, err := r.store.ListRates(ctx)
	if err != nil {
		metrics.RateRefreshErrorsTotal.Inc()
		return fmt.Errorf("loading rates: %w", err)
	}

	merged := make([]domain.ExchangeRate, 0, len(r.seed)+len(rates))
	merged = append(merged, r.seed...)
	merged = append(merged, rates...)
	r.snapshot.Replace(merged)

	metrics.RateRefreshTotal.Inc()
	metrics.RatesLoaded.Set(float64(r.snapshot.Len()))
	if r.onReload != nil {
		r.onReload()
	}
	return nil
}

// Start begins periodic refreshes.
func (r *Refresher) Start() {
	r.log.Info("rate refresher started")
	r.cron.Start()
}

// Stop stops the refresher, returning a context that is done once a
// running refresh finishes.
func (r *Refresher) Stop() context.Context {
	r.log.Info("rate refresher stopping")
	return r.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (r *Refresher) Entries() []cron.Entry {
	return r.cron.Entries()
}

func (r *Refresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := r.Load(ctx); err != nil {
		r.log.Error("scheduled rate refresh failed", "error", err)
		return
	}
	r.log.Debug("rates refreshed", "count", r.snapshot.Len())
}
