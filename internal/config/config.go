// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/catalog-aggregator/internal/events"
	"github.com/donaldgifford/catalog-aggregator/internal/pricing"
	"github.com/donaldgifford/catalog-aggregator/internal/resilience"
	"github.com/donaldgifford/catalog-aggregator/internal/tracing"
	domain "github.com/donaldgifford/catalog-aggregator/pkg/types"
)

// Config is the top-level application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Webhook    WebhookConfig    `yaml:"webhook"`
	Tracing    tracing.Config   `yaml:"tracing"`
	Aggregator AggregatorConfig `yaml:"aggregator"`
	Resilience ResilienceConfig `yaml:"resilience"`
	Providers  []ProviderConfig `yaml:"providers"`
	Pricing    PricingConfig    `yaml:"pricing"`
	Rates      RatesConfig      `yaml:"rates"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig defines PostgreSQL connection settings for the exchange
// rate store. An empty host disables the store; rates then come from the
// static seed only.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// Enabled reports whether a rate store is configured.
func (d *DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s pool_max_conns=%d",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode, d.PoolSize,
	)
}

// RedisConfig defines the read-through rate cache.
type RedisConfig struct {
	Enabled      bool          `yaml:"enabled"`
	URL          string        `yaml:"url"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
}

// KafkaConfig defines where search events are published.
type KafkaConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic"`
	BatchTimeout time.Duration `yaml:"batch_timeout"`
	Async        bool          `yaml:"async"`
}

// WebhookConfig defines an HTTP endpoint that receives search events.
type WebhookConfig struct {
	Enabled bool          `yaml:"enabled"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// AggregatorConfig defines fan-out behavior and request defaults.
type AggregatorConfig struct {
	Deadline        time.Duration `yaml:"deadline"`
	DefaultPageSize int           `yaml:"default_page_size"`
	MaxPageSize     int           `yaml:"max_page_size"`
	DefaultCountry  string        `yaml:"default_country"`
	DefaultCurrency string        `yaml:"default_currency"`
}

// RequestDefaults returns the defaults applied to incoming requests.
func (a *AggregatorConfig) RequestDefaults() domain.RequestDefaults {
	return domain.RequestDefaults{
		Size:     a.DefaultPageSize,
		MaxSize:  a.MaxPageSize,
		Country:  a.DefaultCountry,
		Currency: a.DefaultCurrency,
	}
}

// ResilienceConfig holds the default per-provider protection settings and
// per-provider overrides keyed by provider name.
type ResilienceConfig struct {
	Defaults  resilience.Settings            `yaml:"defaults"`
	Overrides map[string]resilience.Settings `yaml:"overrides"`
}

// ProviderConfig defines one upstream catalog.
type ProviderConfig struct {
	Name             string        `yaml:"name"`
	BaseURL          string        `yaml:"base_url"`
	APIKey           string        `yaml:"api_key"`
	Timeout          time.Duration `yaml:"timeout"`
	CategoryOverride string        `yaml:"category_override"`
	Enabled          *bool         `yaml:"enabled"` // default: true
}

// IsEnabled reports whether the provider takes part in searches.
func (p *ProviderConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// EnabledProviders returns the enabled providers in configuration order.
func (cfg *Config) EnabledProviders() []ProviderConfig {
	out := make([]ProviderConfig, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		if p.IsEnabled() {
			out = append(out, p)
		}
	}
	return out
}

// ResilienceOverrides returns the per-provider overrides with each
// provider's timeout folded in.
func (cfg *Config) ResilienceOverrides() map[string]resilience.Settings {
	out := make(map[string]resilience.Settings, len(cfg.Resilience.Overrides)+len(cfg.Providers))
	for name, s := range cfg.Resilience.Overrides {
		out[strings.ToLower(name)] = s
	}
	for _, p := range cfg.Providers {
		if p.Timeout <= 0 {
			continue
		}
		name := strings.ToLower(p.Name)
		s := out[name]
		if s.Timeout == 0 {
			s.Timeout = p.Timeout
		}
		out[name] = s
	}
	return out
}

// PricingConfig defines the reference currency and markup rules.
type PricingConfig struct {
	BaseCurrency string                  `yaml:"base_currency"`
	Language     string                  `yaml:"language"`
	Markups      map[string][]MarkupTier `yaml:"markups"`
}

// MarkupTier is one price band of a country markup rule. An up_to of zero
// leaves the band open-ended.
type MarkupTier struct {
	UpTo    float64 `yaml:"up_to"`
	Flat    float64 `yaml:"flat"`
	Percent float64 `yaml:"percent"`
}

// Tiers converts the markup rules into pricing tiers.
func (p *PricingConfig) Tiers() map[string][]pricing.Tier {
	out := make(map[string][]pricing.Tier, len(p.Markups))
	for country, tiers := range p.Markups {
		converted := make([]pricing.Tier, 0, len(tiers))
		for _, t := range tiers {
			converted = append(converted, pricing.Tier{
				UpTo:    decimal.NewFromFloat(t.UpTo),
				Flat:    decimal.NewFromFloat(t.Flat),
				Percent: decimal.NewFromFloat(t.Percent),
			})
		}
		out[country] = converted
	}
	return out
}

// RatesConfig defines how exchange rates are loaded and cached.
type RatesConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`
	MissTTL         time.Duration `yaml:"miss_ttl"`
	Static          []StaticRate  `yaml:"static"`
}

// StaticRate is a rate configured in the file rather than the store.
type StaticRate struct {
	Base   string  `yaml:"base"`
	Target string  `yaml:"target"`
	Rate   float64 `yaml:"rate"`
}

// Seed returns the static rates as exchange rates.
func (r *RatesConfig) Seed() []domain.ExchangeRate {
	out := make([]domain.ExchangeRate, 0, len(r.Static))
	for _, s := range r.Static {
		out = append(out, domain.ExchangeRate{
			Base:   strings.ToUpper(s.Base),
			Target: strings.ToUpper(s.Target),
			Rate:   decimal.NewFromFloat(s.Rate),
		})
	}
	return out
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyKafkaDefaults(&cfg.Kafka)
	applyPricingDefaults(&cfg.Pricing)
	applyAggregatorDefaults(&cfg.Aggregator, cfg.Pricing.BaseCurrency)
	applyRatesDefaults(&cfg.Rates)
	applyLoggingDefaults(&cfg.Logging)

	if cfg.Webhook.Timeout == 0 {
		cfg.Webhook.Timeout = 5 * time.Second
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "catalog-aggregator"
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = 15 * time.Second
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyKafkaDefaults(k *KafkaConfig) {
	if k.Topic == "" {
		k.Topic = events.DefaultTopic
	}
	if k.BatchTimeout == 0 {
		k.BatchTimeout = 50 * time.Millisecond
	}
}

func applyPricingDefaults(p *PricingConfig) {
	if p.BaseCurrency == "" {
		p.BaseCurrency = pricing.DefaultBaseCurrency
	}
	p.BaseCurrency = strings.ToUpper(p.BaseCurrency)
	if p.Language == "" {
		p.Language = "en"
	}
}

func applyAggregatorDefaults(a *AggregatorConfig, baseCurrency string) {
	if a.Deadline == 0 {
		a.Deadline = 8 * time.Second
	}
	if a.DefaultPageSize == 0 {
		a.DefaultPageSize = 20
	}
	if a.MaxPageSize == 0 {
		a.MaxPageSize = 100
	}
	if a.DefaultCountry == "" {
		a.DefaultCountry = "US"
	}
	if a.DefaultCurrency == "" {
		a.DefaultCurrency = baseCurrency
	}
}

func applyRatesDefaults(r *RatesConfig) {
	if r.RefreshInterval == 0 {
		r.RefreshInterval = 5 * time.Minute
	}
	if r.CacheTTL == 0 {
		r.CacheTTL = 10 * time.Minute
	}
	if r.MissTTL == 0 {
		r.MissTTL = 30 * time.Second
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateProviders(cfg.Providers)...)

	if cfg.Database.Enabled() {
		if cfg.Database.Name == "" {
			errs = append(errs, fmt.Errorf("database.name is required when database.host is set"))
		}
		if cfg.Database.User == "" {
			errs = append(errs, fmt.Errorf("database.user is required when database.host is set"))
		}
	}

	if cfg.Redis.Enabled && cfg.Redis.URL == "" {
		errs = append(errs, fmt.Errorf("redis.url is required when redis is enabled"))
	}
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) == 0 {
		errs = append(errs, fmt.Errorf("kafka.brokers is required when kafka is enabled"))
	}
	if cfg.Webhook.Enabled && cfg.Webhook.URL == "" {
		errs = append(errs, fmt.Errorf("webhook.url is required when webhook is enabled"))
	}

	if _, err := pricing.ParseCurrency(cfg.Pricing.BaseCurrency); err != nil {
		errs = append(errs, fmt.Errorf("pricing.base_currency: %w", err))
	}
	if _, err := pricing.ParseCurrency(cfg.Aggregator.DefaultCurrency); err != nil {
		errs = append(errs, fmt.Errorf("aggregator.default_currency: %w", err))
	}
	for country, tiers := range cfg.Pricing.Markups {
		for i, t := range tiers {
			if t.UpTo < 0 || t.Flat < 0 || t.Percent < 0 {
				errs = append(errs, fmt.Errorf("pricing.markups.%s[%d]: values must not be negative", country, i))
			}
		}
	}

	if cfg.Aggregator.Deadline < 0 {
		errs = append(errs, fmt.Errorf("aggregator.deadline must not be negative"))
	}
	if cfg.Aggregator.DefaultPageSize > cfg.Aggregator.MaxPageSize {
		errs = append(errs, fmt.Errorf(
			"aggregator.default_page_size (%d) exceeds max_page_size (%d)",
			cfg.Aggregator.DefaultPageSize, cfg.Aggregator.MaxPageSize,
		))
	}

	for i, s := range cfg.Rates.Static {
		if s.Rate <= 0 {
			errs = append(errs, fmt.Errorf("rates.static[%d]: rate must be positive", i))
		}
		if len(s.Base) != 3 || len(s.Target) != 3 {
			errs = append(errs, fmt.Errorf("rates.static[%d]: base and target must be ISO 4217 codes", i))
		}
	}

	switch cfg.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be one of: text, json (got %q)", cfg.Logging.Format))
	}

	return errors.Join(errs...)
}

func validateProviders(providers []ProviderConfig) []error {
	var errs []error
	seen := make(map[string]bool, len(providers))
	enabled := 0

	for i, p := range providers {
		name := strings.ToLower(strings.TrimSpace(p.Name))
		if name == "" {
			errs = append(errs, fmt.Errorf("providers[%d].name is required", i))
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Errorf("providers[%d]: duplicate provider %q", i, name))
		}
		seen[name] = true

		u, err := url.Parse(p.BaseURL)
		if p.BaseURL == "" || err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("providers[%d].base_url must be an absolute URL (got %q)", i, p.BaseURL))
		}
		if p.IsEnabled() {
			enabled++
		}
	}

	if enabled == 0 {
		errs = append(errs, fmt.Errorf("at least one enabled provider is required"))
	}
	return errs
}
