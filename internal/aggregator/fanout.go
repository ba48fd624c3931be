package aggregator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/catalog-aggregator/internal/metrics"
	"github.com/donaldgifford/catalog-aggregator/internal/pricing"
	"github.com/donaldgifford/catalog-aggregator/internal/resilience"
	domain "github.com/donaldgifford/catalog-aggregator/pkg/types"
)

type providerResult struct {
	index int
	items []domain.RawCatalogItem
	err   error
}

type rateResult struct {
	rate decimal.Decimal
	err  error
}

// fanOut queries every active provider in parallel and merges whatever
// arrived before the deadline. Calls still outstanding at the deadline are
// cancelled. The exchange rate is resolved once, alongside the providers and
// under the same deadline.
func (a *Aggregator) fanOut(
	ctx context.Context,
	req domain.SearchRequest,
	active []domain.ProviderDescriptor,
) domain.AggregatedResult {
	start := time.Now()

	ctx, span := a.tracer.Start(ctx, "aggregator.search", trace.WithAttributes(
		attribute.String("query", req.Query),
		attribute.Int("providers", len(active)),
	))
	defer span.End()

	dctx, cancel := context.WithTimeout(ctx, a.deadline)
	defer cancel()

	results := make(chan providerResult, len(active))
	for i, desc := range active {
		go func() {
			items, err := a.fetcher.Fetch(dctx, desc, req)
			results <- providerResult{index: i, items: items, err: err}
		}()
	}

	rates := make(chan rateResult, 1)
	go func() {
		r, err := a.pricer.Rate(dctx, req.Currency)
		rates <- rateResult{rate: r, err: err}
	}()

	collected := make([]*providerResult, len(active))
	outstanding := len(active)
collect:
	for outstanding > 0 {
		select {
		case r := <-results:
			collected[r.index] = &r
			outstanding--
		case <-dctx.Done():
			break collect
		}
	}
	var rate rateResult
	if anyItems(collected) {
		rate = a.awaitRate(dctx, req.Currency, rates)
	}
	cancel()

	stats := domain.SearchStats{
		ProvidersQueried:  len(active),
		ProvidersTimedOut: outstanding,
	}
	for i, r := range collected {
		switch {
		case r == nil:
			a.log.Warn("provider missed search deadline",
				"provider", active[i].Name,
				"deadline", a.deadline,
			)
		case errors.Is(r.err, resilience.ErrTimeout):
			stats.ProvidersTimedOut++
		case r.err != nil:
			stats.ProvidersFailed++
		default:
			stats.ProvidersSucceeded++
		}
	}

	items, dropped := a.merge(req, active, collected, rate)
	stats.ItemsDropped = dropped
	elapsed := time.Since(start)
	stats.DurationMs = elapsed.Milliseconds()

	res := domain.AggregatedResult{
		Items: items,
		Page:  req.Page,
		Size:  req.Size,
		Stats: stats,
	}

	metrics.SearchDuration.Observe(elapsed.Seconds())
	metrics.SearchProvidersSucceeded.Observe(float64(stats.ProvidersSucceeded))
	metrics.SearchProvidersFailed.Observe(float64(stats.ProvidersFailed + stats.ProvidersTimedOut))
	span.SetAttributes(
		attribute.Int("succeeded", stats.ProvidersSucceeded),
		attribute.Int("items", len(items)),
	)

	if stats.ProvidersSucceeded == 0 {
		metrics.SearchTotalFailuresTotal.Inc()
		a.log.Error("search failed on every provider",
			"query", req.Query,
			"providers", len(active),
			"failed", stats.ProvidersFailed,
			"timed_out", stats.ProvidersTimedOut,
		)
	} else {
		a.log.Debug("search complete",
			"query", req.Query,
			"items", len(items),
			"succeeded", stats.ProvidersSucceeded,
			"duration", elapsed,
		)
	}

	a.publish(ctx, req, active, res)
	return res
}

// awaitRate returns the rate lookup started with the fan-out, giving up at
// the deadline. A lookup that already finished wins over an expired deadline.
func (a *Aggregator) awaitRate(ctx context.Context, currency string, rates <-chan rateResult) rateResult {
	var r rateResult
	select {
	case r = <-rates:
	default:
		select {
		case r = <-rates:
		case <-ctx.Done():
			r.err = fmt.Errorf("%w: %s: %w", pricing.ErrRateUnavailable, currency, ctx.Err())
		}
	}
	if r.err != nil {
		a.log.Warn("exchange rate unavailable, dropping search items",
			"currency", currency,
			"error", r.err,
		)
	}
	return r
}

// merge prices items in provider order then upstream order, dropping items
// that cannot be priced and all but the first item with a given id. Without
// a rate every item is dropped.
func (a *Aggregator) merge(
	req domain.SearchRequest,
	active []domain.ProviderDescriptor,
	collected []*providerResult,
	rate rateResult,
) (items []domain.CatalogItem, dropped int) {
	items = make([]domain.CatalogItem, 0, req.Size)
	seen := make(map[string]struct{})

	for i, r := range collected {
		if r == nil || r.err != nil {
			continue
		}
		name := active[i].Name
		for j := range r.items {
			raw := &r.items[j]
			if _, dup := seen[raw.ID]; dup {
				continue
			}

			item, err := a.price(name, raw, req, rate)
			if err != nil {
				dropped++
				metrics.PricingDropsTotal.WithLabelValues(dropReason(err)).Inc()
				a.log.Debug("dropping unpriceable item",
					"provider", name,
					"item", raw.ID,
					"error", err,
				)
				continue
			}
			seen[raw.ID] = struct{}{}
			items = append(items, item)
		}
	}
	return items, dropped
}

func anyItems(collected []*providerResult) bool {
	for _, r := range collected {
		if r != nil && r.err == nil && len(r.items) > 0 {
			return true
		}
	}
	return false
}

func (a *Aggregator) price(
	provider string,
	raw *domain.RawCatalogItem,
	req domain.SearchRequest,
	rate rateResult,
) (domain.CatalogItem, error) {
	if rate.err != nil {
		return domain.CatalogItem{}, fmt.Errorf("pricing item %s: %w", raw.ID, rate.err)
	}
	return a.pricer.TransformAt(provider, raw, rate.rate, req.Country, req.Currency)
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, pricing.ErrRateUnavailable):
		return "rate_unavailable"
	case errors.Is(err, pricing.ErrInvalidPrice):
		return "invalid_price"
	case errors.Is(err, pricing.ErrUnknownCurrency):
		return "unknown_currency"
	default:
		return "other"
	}
}
