package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/catalog-aggregator/internal/resilience"
	domain "github.com/donaldgifford/catalog-aggregator/pkg/types"
)

const instrumentationName = "github.com/donaldgifford/catalog-aggregator/internal/provider"

// Registration binds a provider name to its upstream client.
type Registration struct {
	Name             string
	CategoryOverride string
	Upstream         CatalogUpstream
}

// Gateway runs upstream calls through each provider's resilience policy.
// Failures of any kind come back as errors with an empty result; the gateway
// never lets an upstream panic escape.
type Gateway struct {
	order     []string
	providers map[string]Registration
	registry  *resilience.Registry
	metrics   MetricsSink
	log       *slog.Logger
	tracer    trace.Tracer

	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithMetricsSink sets where call latencies and errors are reported.
func WithMetricsSink(m MetricsSink) GatewayOption {
	return func(g *Gateway) {
		g.metrics = m
	}
}

// WithLogger sets the gateway logger.
func WithLogger(l *slog.Logger) GatewayOption {
	return func(g *Gateway) {
		g.log = l
	}
}

// NewGateway creates a gateway over the given providers. Provider names are
// lower-cased; the registration order is the iteration order used by
// Descriptors. A later registration with a duplicate name is ignored.
func NewGateway(
	registry *resilience.Registry,
	providers []Registration,
	opts ...GatewayOption,
) *Gateway {
	g := &Gateway{
		providers: make(map[string]Registration, len(providers)),
		registry:  registry,
		metrics:   noopSink{},
		log:       slog.Default(),
		tracer:    otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.initInstruments()

	for _, p := range providers {
		p.Name = strings.ToLower(strings.TrimSpace(p.Name))
		if p.Name == "" || p.Upstream == nil {
			continue
		}
		if _, dup := g.providers[p.Name]; dup {
			g.log.Warn("duplicate provider registration ignored", "provider", p.Name)
			continue
		}
		g.providers[p.Name] = p
		g.order = append(g.order, p.Name)
	}
	return g
}

// Descriptors returns one descriptor per registered provider, in
// registration order, with Share left at zero.
func (g *Gateway) Descriptors() []domain.ProviderDescriptor {
	out := make([]domain.ProviderDescriptor, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, domain.ProviderDescriptor{
			Name:             name,
			CategoryOverride: g.providers[name].CategoryOverride,
		})
	}
	return out
}

// Has reports whether name is a registered provider.
func (g *Gateway) Has(name string) bool {
	_, ok := g.providers[strings.ToLower(name)]
	return ok
}

// Registry returns the resilience registry guarding the providers.
func (g *Gateway) Registry() *resilience.Registry {
	return g.registry
}

// Fetch asks one provider for its share of a search page.
func (g *Gateway) Fetch(
	ctx context.Context,
	desc domain.ProviderDescriptor,
	req domain.SearchRequest,
) ([]domain.RawCatalogItem, error) {
	reg, ok := g.providers[desc.Name]
	if !ok {
		return []domain.RawCatalogItem{}, fmt.Errorf("%w: %s", ErrUnknownProvider, desc.Name)
	}

	f := Filter{
		Query:    req.Query,
		Category: req.Category,
		Brand:    req.Brand,
		Page:     req.Page,
		Size:     max(desc.Share, 1),
	}
	if desc.CategoryOverride != "" {
		f.Category = desc.CategoryOverride
	}

	ctx, span := g.tracer.Start(ctx, "provider.fetch", trace.WithAttributes(
		attribute.String("provider", desc.Name),
		attribute.Int("share", f.Size),
	))
	defer span.End()

	var items []domain.RawCatalogItem
	start := time.Now()
	err := g.registry.Get(desc.Name).Do(ctx, func(cctx context.Context) error {
		return guard(func() error {
			var err error
			items, err = reg.Upstream.Search(cctx, f)
			return wrapUpstream(err)
		})
	})
	elapsed := time.Since(start)

	if err != nil {
		g.fail(ctx, span, desc.Name, elapsed, err)
		return []domain.RawCatalogItem{}, fmt.Errorf("fetching from %s: %w", desc.Name, err)
	}

	g.metrics.RecordLatency(desc.Name, elapsed)
	g.observe(ctx, desc.Name, "ok", elapsed)
	span.SetAttributes(attribute.Int("items", len(items)))
	if items == nil {
		items = []domain.RawCatalogItem{}
	}
	return items, nil
}

// FetchItem looks up a single item from one provider. A missing item is not
// held against the provider's health.
func (g *Gateway) FetchItem(ctx context.Context, provider, id string) (*domain.RawCatalogItem, error) {
	name := strings.ToLower(provider)
	reg, ok := g.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	ctx, span := g.tracer.Start(ctx, "provider.fetch_item", trace.WithAttributes(
		attribute.String("provider", name),
		attribute.String("item_id", id),
	))
	defer span.End()

	var (
		item     *domain.RawCatalogItem
		notFound bool
	)
	start := time.Now()
	err := g.registry.Get(name).Do(ctx, func(cctx context.Context) error {
		return guard(func() error {
			var err error
			item, err = reg.Upstream.Item(cctx, id)
			if errors.Is(err, ErrItemNotFound) {
				notFound = true
				return nil
			}
			return wrapUpstream(err)
		})
	})
	elapsed := time.Since(start)

	switch {
	case err != nil:
		g.fail(ctx, span, name, elapsed, err)
		return nil, fmt.Errorf("fetching item %s from %s: %w", id, name, err)
	case notFound || item == nil:
		g.metrics.RecordLatency(name, elapsed)
		g.observe(ctx, name, "not_found", elapsed)
		span.SetStatus(codes.Error, "not found")
		return nil, fmt.Errorf("%s/%s: %w", name, id, ErrItemNotFound)
	}

	g.metrics.RecordLatency(name, elapsed)
	g.observe(ctx, name, "ok", elapsed)
	return item, nil
}

// initInstruments creates the OTel instruments on the global meter
// provider. They are no-ops unless an OTLP meter provider is installed.
func (g *Gateway) initInstruments() {
	meter := otel.Meter(instrumentationName)

	var err error
	g.calls, err = meter.Int64Counter("catalog.provider.calls",
		metric.WithDescription("Provider calls by outcome."),
	)
	if err != nil {
		g.log.Warn("creating provider call counter", "error", err)
	}
	g.duration, err = meter.Float64Histogram("catalog.provider.call.duration",
		metric.WithDescription("Provider call duration."),
		metric.WithUnit("s"),
	)
	if err != nil {
		g.log.Warn("creating provider duration histogram", "error", err)
	}
}

func (g *Gateway) observe(ctx context.Context, name, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("provider", name),
		attribute.String("outcome", outcome),
	)
	if g.calls != nil {
		g.calls.Add(ctx, 1, attrs)
	}
	if g.duration != nil {
		g.duration.Record(ctx, elapsed.Seconds(), attrs)
	}
}

func (g *Gateway) fail(ctx context.Context, span trace.Span, name string, elapsed time.Duration, err error) {
	g.metrics.RecordError(name, elapsed, err)
	g.observe(ctx, name, resilience.Reason(err), elapsed)
	span.RecordError(err)
	span.SetStatus(codes.Error, resilience.Reason(err))
	g.log.Warn("provider call failed",
		"provider", name,
		"reason", resilience.Reason(err),
		"duration", elapsed,
		"error", err,
	)
}

// guard converts a panic in fn into an ErrUpstream error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrUpstream, r)
		}
	}()
	return fn()
}

// wrapUpstream tags plain upstream failures with ErrUpstream. Context errors
// pass through so the deadline guard can classify them.
func wrapUpstream(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUpstream),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
}
