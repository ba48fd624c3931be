// Package aggregator fans customer searches out to every active provider,
// merges whatever arrives before the global deadline, and prices the merged
// items for the customer.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/catalog-aggregator/internal/coalesce"
	"github.com/donaldgifford/catalog-aggregator/internal/events"
	"github.com/donaldgifford/catalog-aggregator/internal/pricing"
	domain "github.com/donaldgifford/catalog-aggregator/pkg/types"
)

const tracerName = "github.com/donaldgifford/catalog-aggregator/internal/aggregator"

const (
	defaultDeadline       = 8 * time.Second
	defaultPublishTimeout = 5 * time.Second
)

// Sentinel errors. Both are hard failures of the whole request.
var (
	ErrNoProviders    = errors.New("no providers available")
	ErrInvalidRequest = domain.ErrInvalidRequest
)

// DefaultRequestDefaults are used when no request defaults are configured.
var DefaultRequestDefaults = domain.RequestDefaults{
	Size:     20,
	MaxSize:  100,
	Country:  "US",
	Currency: pricing.DefaultBaseCurrency,
}

// Fetcher is the provider gateway as seen by the aggregator.
type Fetcher interface {
	Descriptors() []domain.ProviderDescriptor
	Fetch(ctx context.Context, desc domain.ProviderDescriptor, req domain.SearchRequest) ([]domain.RawCatalogItem, error)
	FetchItem(ctx context.Context, provider, id string) (*domain.RawCatalogItem, error)
}

// Pricer turns raw upstream items into priced catalog items. Searches
// resolve the rate once with Rate and price every item with TransformAt.
type Pricer interface {
	Rate(ctx context.Context, currency string) (decimal.Decimal, error)
	TransformAt(
		provider string,
		raw *domain.RawCatalogItem,
		rate decimal.Decimal,
		country, currency string,
	) (domain.CatalogItem, error)
	Transform(
		ctx context.Context,
		provider string,
		raw *domain.RawCatalogItem,
		country, currency string,
	) (domain.CatalogItem, error)
}

// Aggregator orchestrates searches and detail lookups.
type Aggregator struct {
	fetcher   Fetcher
	pricer    Pricer
	publisher events.Publisher
	log       *slog.Logger
	tracer    trace.Tracer

	deadline       time.Duration
	publishTimeout time.Duration
	defaults       domain.RequestDefaults

	searches *coalesce.Group[domain.AggregatedResult]
	details  *coalesce.Group[domain.CatalogItem]

	pending sync.WaitGroup
}

// Option configures the Aggregator.
type Option func(*Aggregator)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		a.log = l
	}
}

// WithPublisher sets where completed searches are announced.
func WithPublisher(p events.Publisher) Option {
	return func(a *Aggregator) {
		a.publisher = p
	}
}

// WithDeadline sets the global deadline of a single fan-out.
func WithDeadline(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.deadline = d
		}
	}
}

// WithRequestDefaults sets the defaults applied to incoming requests.
func WithRequestDefaults(d domain.RequestDefaults) Option {
	return func(a *Aggregator) {
		a.defaults = d
	}
}

// NewAggregator creates an Aggregator over the given gateway and pricer.
func NewAggregator(f Fetcher, p Pricer, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetcher:        f,
		pricer:         p,
		log:            slog.Default(),
		tracer:         otel.Tracer(tracerName),
		deadline:       defaultDeadline,
		publishTimeout: defaultPublishTimeout,
		defaults:       DefaultRequestDefaults,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.publisher == nil {
		a.publisher = events.NewNoOpPublisher(a.log)
	}

	// Shared computations outlive the caller that started them. Fan-outs and
	// detail lookups already stop at the deadline, so this only catches a
	// computation that is stuck past it.
	limit := coalesce.WithComputeTimeout(2 * a.deadline)
	a.searches = coalesce.New[domain.AggregatedResult]("search", limit)
	a.details = coalesce.New[domain.CatalogItem]("detail", limit)
	return a
}

// Defaults returns the request defaults in effect.
func (a *Aggregator) Defaults() domain.RequestDefaults {
	return a.defaults
}

// Search fans req out to every active provider and returns the merged,
// priced result. Provider failures, timeouts and per-item pricing failures
// only shrink the result; the returned error is reserved for invalid
// requests and for requests no provider can serve.
func (a *Aggregator) Search(ctx context.Context, req domain.SearchRequest) (domain.AggregatedResult, error) {
	req = req.Normalize(a.defaults)
	if err := validate(req.Validate(), req.Currency); err != nil {
		return domain.AggregatedResult{}, err
	}

	active := a.activeProviders(req)
	if len(active) == 0 {
		return domain.AggregatedResult{}, ErrNoProviders
	}

	res, shared, err := a.searches.Do(ctx, req.Key(), func(cctx context.Context) (domain.AggregatedResult, error) {
		return a.fanOut(cctx, req, active), nil
	})
	if err != nil {
		return domain.AggregatedResult{}, err
	}

	out := res.Clone()
	out.Stats.Coalesced = shared
	return out, nil
}

// Product looks up a single item from one provider and prices it.
// Concurrent identical lookups share one upstream call.
func (a *Aggregator) Product(ctx context.Context, req domain.DetailRequest) (domain.CatalogItem, error) {
	req = req.Normalize(a.defaults)
	if err := validate(req.Validate(), req.Currency); err != nil {
		return domain.CatalogItem{}, err
	}

	item, _, err := a.details.Do(ctx, req.Key(), func(cctx context.Context) (domain.CatalogItem, error) {
		cctx, span := a.tracer.Start(cctx, "aggregator.product", trace.WithAttributes(
			attribute.String("provider", req.Provider),
			attribute.String("item_id", req.ItemID),
		))
		defer span.End()

		dctx, cancel := context.WithTimeout(cctx, a.deadline)
		defer cancel()

		raw, err := a.fetcher.FetchItem(dctx, req.Provider, req.ItemID)
		if err != nil {
			span.RecordError(err)
			return domain.CatalogItem{}, err
		}
		return a.pricer.Transform(dctx, req.Provider, raw, req.Country, req.Currency)
	})
	return item, err
}

// Close waits for in-flight event publications to finish.
func (a *Aggregator) Close() {
	a.pending.Wait()
}

func (a *Aggregator) activeProviders(req domain.SearchRequest) []domain.ProviderDescriptor {
	all := a.fetcher.Descriptors()

	active := all
	if len(req.Providers) > 0 {
		wanted := make(map[string]struct{}, len(req.Providers))
		for _, p := range req.Providers {
			wanted[p] = struct{}{}
		}
		active = make([]domain.ProviderDescriptor, 0, len(req.Providers))
		for _, d := range all {
			if _, ok := wanted[d.Name]; ok {
				active = append(active, d)
			}
		}
	}

	if len(active) == 0 {
		return nil
	}
	share := max(req.Size/len(active), 1)
	out := make([]domain.ProviderDescriptor, len(active))
	for i, d := range active {
		d.Share = share
		out[i] = d
	}
	return out
}

func validate(err error, currency string) error {
	if err != nil {
		return err
	}
	if _, err := pricing.ParseCurrency(currency); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

func (a *Aggregator) publish(ctx context.Context, req domain.SearchRequest, active []domain.ProviderDescriptor, res domain.AggregatedResult) {
	names := make([]string, len(active))
	for i, d := range active {
		names[i] = d.Name
	}
	ev := events.NewSearchEvent(req, names, res)

	a.pending.Add(1)
	go func() {
		defer a.pending.Done()
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.publishTimeout)
		defer cancel()
		if err := a.publisher.PublishSearch(pctx, ev); err != nil {
			a.log.Warn("publishing search event failed", "id", ev.ID, "error", err)
		}
	}()
}
