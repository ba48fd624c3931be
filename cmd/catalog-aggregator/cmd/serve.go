package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/donaldgifford/catalog-aggregator/internal/aggregator"
	"github.com/donaldgifford/catalog-aggregator/internal/api"
	"github.com/donaldgifford/catalog-aggregator/internal/api/handlers"
	"github.com/donaldgifford/catalog-aggregator/internal/config"
	"github.com/donaldgifford/catalog-aggregator/internal/events"
	"github.com/donaldgifford/catalog-aggregator/internal/fxrate"
	"github.com/donaldgifford/catalog-aggregator/internal/metrics"
	"github.com/donaldgifford/catalog-aggregator/internal/pricing"
	"github.com/donaldgifford/catalog-aggregator/internal/provider"
	"github.com/donaldgifford/catalog-aggregator/internal/resilience"
	"github.com/donaldgifford/catalog-aggregator/internal/tracing"
	"github.com/donaldgifford/catalog-aggregator/pkg/logger"
)

const policyMetricsInterval = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, Version)
	if err != nil {
		return err
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(tctx); err != nil {
			log.Warn("flushing traces", "error", err)
		}
	}()

	registry := resilience.NewRegistry(cfg.Resilience.Defaults,
		resilience.WithStateObserver(metrics.ObserveBreaker),
		resilience.WithRegistryLogger(logger.Component(log, "resilience")),
		resilience.WithOverrides(cfg.ResilienceOverrides()),
	)
	gateway := provider.NewGateway(registry, buildProviders(cfg),
		provider.WithMetricsSink(metrics.ProviderSink{}),
		provider.WithLogger(logger.Component(log, "gateway")),
	)

	rates, err := openRates(ctx, cfg, logger.Component(log, "fxrate"))
	if err != nil {
		return err
	}
	defer rates.close()

	lang, err := language.Parse(cfg.Pricing.Language)
	if err != nil {
		return fmt.Errorf("parsing pricing.language: %w", err)
	}
	transformer := pricing.NewTransformer(rates.chain,
		pricing.NewTieredMarkup(cfg.Pricing.Tiers()),
		pricing.WithBaseCurrency(cfg.Pricing.BaseCurrency),
		pricing.WithLanguage(lang),
	)

	publisher := buildPublisher(cfg, logger.Component(log, "events"))
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("closing event publisher", "error", err)
		}
	}()

	agg := aggregator.NewAggregator(gateway, transformer,
		aggregator.WithLogger(logger.Component(log, "aggregator")),
		aggregator.WithPublisher(publisher),
		aggregator.WithDeadline(cfg.Aggregator.Deadline),
		aggregator.WithRequestDefaults(cfg.Aggregator.RequestDefaults()),
	)
	// Runs before the publisher is closed so pending events are flushed.
	defer agg.Close()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every "+policyMetricsInterval.String(), func() {
		metrics.CollectPolicies(registry.Snapshot())
	}); err != nil {
		return fmt.Errorf("scheduling policy metrics: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	e, _ := api.NewServer(api.Deps{
		Searcher:   agg,
		Providers:  gateway,
		Rates:      rates.chain,
		RateLister: rates.snapshot,
		Ready:      rates.ready,
		Logger:     logger.Component(log, "http"),
		Version:    Version,
	})
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server",
		"addr", addr,
		"version", Version,
		"providers", len(gateway.Descriptors()),
		"rates", rates.snapshot.Len(),
	)

	serveErr := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func buildProviders(cfg *config.Config) []provider.Registration {
	enabled := cfg.EnabledProviders()
	regs := make([]provider.Registration, 0, len(enabled))
	for _, p := range enabled {
		opts := []provider.HTTPOption{}
		if p.APIKey != "" {
			opts = append(opts, provider.WithAPIKey(p.APIKey))
		}
		regs = append(regs, provider.Registration{
			Name:             p.Name,
			CategoryOverride: p.CategoryOverride,
			Upstream:         provider.NewHTTPUpstream(p.BaseURL, opts...),
		})
	}
	return regs
}

// buildPublisher fans search events out to every enabled sink.
func buildPublisher(cfg *config.Config, log *slog.Logger) events.Publisher {
	var pubs []events.Publisher
	if cfg.Kafka.Enabled {
		pubs = append(pubs, events.NewKafkaPublisher(events.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			BatchTimeout: cfg.Kafka.BatchTimeout,
			Async:        cfg.Kafka.Async,
		}))
		log.Info("publishing search events to kafka", "topic", cfg.Kafka.Topic)
	}
	if cfg.Webhook.Enabled {
		pubs = append(pubs, events.NewWebhookPublisher(cfg.Webhook.URL,
			events.WithHTTPClient(&http.Client{Timeout: cfg.Webhook.Timeout}),
		))
		log.Info("publishing search events to webhook")
	}

	switch len(pubs) {
	case 0:
		return events.NewNoOpPublisher(log)
	case 1:
		return pubs[0]
	default:
		return events.Multi(pubs...)
	}
}

// rateStack is the exchange rate lookup chain and the resources behind it.
type rateStack struct {
	snapshot *fxrate.Snapshot
	chain    *fxrate.Chain
	ready    map[string]handlers.Pinger
	closers  []func()
}

func (r *rateStack) close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// openRates builds the snapshot from the static seed and, when a database
// is configured, the store, its Redis cache and the periodic refresher.
func openRates(ctx context.Context, cfg *config.Config, log *slog.Logger) (*rateStack, error) {
	seed := cfg.Rates.Seed()
	rs := &rateStack{
		snapshot: fxrate.NewSnapshot(seed...),
		ready:    map[string]handlers.Pinger{},
	}

	if !cfg.Database.Enabled() {
		if cfg.Redis.Enabled {
			log.Warn("redis is enabled without a database; the rate cache is not used")
		}
		log.Info("no rate store configured; serving static rates only", "count", len(seed))
		rs.chain = fxrate.NewChain(rs.snapshot, nil, fxrate.WithMissTTL(cfg.Rates.MissTTL))
		return rs, nil
	}

	store, err := fxrate.NewPostgresStore(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, err
	}
	rs.closers = append(rs.closers, store.Close)
	rs.ready["postgres"] = store

	var fallback fxrate.Source = store
	if cfg.Redis.Enabled {
		client, err := fxrate.NewRedisClient(ctx, fxrate.RedisConfig{
			URL:          cfg.Redis.URL,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			DialTimeout:  cfg.Redis.DialTimeout,
		})
		if err != nil {
			rs.close()
			return nil, err
		}
		rs.closers = append(rs.closers, func() { _ = client.Close() })
		rs.ready["redis"] = redisPinger{client: client}
		fallback = fxrate.NewRedisCache(client, store,
			fxrate.WithTTL(cfg.Rates.CacheTTL),
			fxrate.WithRedisLogger(log),
		)
	}
	rs.chain = fxrate.NewChain(rs.snapshot, fallback, fxrate.WithMissTTL(cfg.Rates.MissTTL))

	refresher, err := fxrate.NewRefresher(store, rs.snapshot, cfg.Rates.RefreshInterval, log,
		fxrate.WithSeed(seed),
		fxrate.WithReloadHook(rs.chain.Forget),
	)
	if err != nil {
		rs.close()
		return nil, err
	}
	if err := refresher.Load(ctx); err != nil {
		log.Warn("initial rate load failed; continuing with static rates", "error", err)
	}
	refresher.Start()
	rs.closers = append(rs.closers, func() { <-refresher.Stop().Done() })

	return rs, nil
}
