package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalProviders = `
providers:
  - name: alpha
    base_url: http://alpha.internal
`

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		envVars   map[string]string
		wantErr   string
		checkFunc func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults applied for optional fields",
			yaml: minimalProviders,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
				assert.False(t, cfg.Database.Enabled())
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "catalog.search.completed", cfg.Kafka.Topic)
				assert.Equal(t, 8*time.Second, cfg.Aggregator.Deadline)
				assert.Equal(t, 20, cfg.Aggregator.DefaultPageSize)
				assert.Equal(t, 100, cfg.Aggregator.MaxPageSize)
				assert.Equal(t, "US", cfg.Aggregator.DefaultCountry)
				assert.Equal(t, "USD", cfg.Aggregator.DefaultCurrency)
				assert.Equal(t, "USD", cfg.Pricing.BaseCurrency)
				assert.Equal(t, 5*time.Minute, cfg.Rates.RefreshInterval)
				assert.Equal(t, 10*time.Minute, cfg.Rates.CacheTTL)
				assert.Equal(t, 30*time.Second, cfg.Rates.MissTTL)
				assert.Equal(t, "catalog-aggregator", cfg.Tracing.ServiceName)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
				require.Len(t, cfg.EnabledProviders(), 1)
			},
		},
		{
			name: "env var substitution",
			yaml: minimalProviders + `
database:
  host: localhost
  name: catalog
  user: catalog
  password: "${TEST_DB_PASSWORD}"
`,
			envVars: map[string]string{
				"TEST_DB_PASSWORD": "secret123",
			},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "secret123", cfg.Database.Password)
				assert.True(t, cfg.Database.Enabled())
			},
		},
		{
			name:    "no providers",
			yaml:    `server: {port: 9000}`,
			wantErr: "at least one enabled provider is required",
		},
		{
			name: "all providers disabled",
			yaml: `
providers:
  - name: alpha
    base_url: http://alpha.internal
    enabled: false
`,
			wantErr: "at least one enabled provider is required",
		},
		{
			name: "duplicate provider",
			yaml: `
providers:
  - name: alpha
    base_url: http://a
  - name: ALPHA
    base_url: http://b
`,
			wantErr: `duplicate provider "alpha"`,
		},
		{
			name: "relative base url",
			yaml: `
providers:
  - name: alpha
    base_url: /products
`,
			wantErr: "providers[0].base_url must be an absolute URL",
		},
		{
			name: "database host without name",
			yaml: minimalProviders + `
database:
  host: localhost
  user: catalog
`,
			wantErr: "database.name is required when database.host is set",
		},
		{
			name: "redis enabled without url",
			yaml: minimalProviders + `
redis:
  enabled: true
`,
			wantErr: "redis.url is required",
		},
		{
			name: "kafka enabled without brokers",
			yaml: minimalProviders + `
kafka:
  enabled: true
`,
			wantErr: "kafka.brokers is required",
		},
		{
			name: "unknown base currency",
			yaml: minimalProviders + `
pricing:
  base_currency: QQQ
`,
			wantErr: "pricing.base_currency",
		},
		{
			name: "negative markup",
			yaml: minimalProviders + `
pricing:
  markups:
    ET:
      - flat: -1
`,
			wantErr: "pricing.markups.ET[0]: values must not be negative",
		},
		{
			name: "default page size over max",
			yaml: minimalProviders + `
aggregator:
  default_page_size: 200
  max_page_size: 50
`,
			wantErr: "aggregator.default_page_size (200) exceeds max_page_size (50)",
		},
		{
			name: "non-positive static rate",
			yaml: minimalProviders + `
rates:
  static:
    - {base: USD, target: ETB, rate: 0}
`,
			wantErr: "rates.static[0]: rate must be positive",
		},
		{
			name: "bad logging format",
			yaml: minimalProviders + `
logging:
  format: xml
`,
			wantErr: `logging.format must be one of: text, json (got "xml")`,
		},
		{
			name:    "invalid YAML",
			yaml:    `{{{not valid yaml`,
			wantErr: "parsing config YAML",
		},
		{
			name: "full config with overrides",
			yaml: `
server:
  host: "127.0.0.1"
  port: 9090
database:
  host: db.example.com
  name: catalog
  user: admin
  pool_size: 20
redis:
  enabled: true
  url: redis://cache:6379/0
kafka:
  enabled: true
  brokers: [kafka-1:9092, kafka-2:9092]
tracing:
  enabled: true
  endpoint: otel-collector:4317
  insecure: true
  metrics: true
  metric_interval: 10s
aggregator:
  deadline: 5s
  default_currency: ETB
resilience:
  defaults:
    timeout: 3s
    circuit_breaker:
      window_size: 20
      failure_rate_threshold: 40
    rate_limit:
      limit: 50
      period: 1s
    bulkhead:
      max_concurrent: 10
  overrides:
    Beta:
      bulkhead:
        max_concurrent: 2
providers:
  - name: alpha
    base_url: https://alpha.example.com/api
    timeout: 2s
  - name: beta
    base_url: https://beta.example.com
    category_override: electronics
  - name: gamma
    base_url: https://gamma.example.com
    enabled: false
pricing:
  base_currency: usd
  markups:
    default:
      - {up_to: 100, flat: 5, percent: 2}
      - {percent: 1}
    ET:
      - {flat: 10}
rates:
  refresh_interval: 1m
  static:
    - {base: usd, target: etb, rate: 150.5}
logging:
  level: debug
  format: json
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "127.0.0.1", cfg.Server.Host)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Contains(t, cfg.Database.DSN(), "pool_max_conns=20")
				assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
				assert.True(t, cfg.Tracing.Enabled)
				assert.True(t, cfg.Tracing.Metrics)
				assert.Equal(t, 10*time.Second, cfg.Tracing.MetricInterval)
				assert.Equal(t, 5*time.Second, cfg.Aggregator.Deadline)

				rd := cfg.Aggregator.RequestDefaults()
				assert.Equal(t, "ETB", rd.Currency)
				assert.Equal(t, 100, rd.MaxSize)

				assert.Equal(t, 3*time.Second, cfg.Resilience.Defaults.Timeout)
				assert.Equal(t, 20, cfg.Resilience.Defaults.Breaker.WindowSize)
				assert.InDelta(t, 40.0, cfg.Resilience.Defaults.Breaker.FailureRateThreshold, 0)
				assert.Equal(t, 50, cfg.Resilience.Defaults.RateLimit.Limit)
				assert.Equal(t, 10, cfg.Resilience.Defaults.Bulkhead.MaxConcurrent)

				overrides := cfg.ResilienceOverrides()
				assert.Equal(t, 2, overrides["beta"].Bulkhead.MaxConcurrent)
				assert.Equal(t, 2*time.Second, overrides["alpha"].Timeout)

				enabled := cfg.EnabledProviders()
				require.Len(t, enabled, 2)
				assert.Equal(t, "electronics", enabled[1].CategoryOverride)

				assert.Equal(t, "USD", cfg.Pricing.BaseCurrency)
				tiers := cfg.Pricing.Tiers()
				require.Len(t, tiers["default"], 2)
				assert.Equal(t, "100", tiers["default"][0].UpTo.String())
				assert.True(t, tiers["default"][1].UpTo.IsZero())

				seed := cfg.Rates.Seed()
				require.Len(t, seed, 1)
				assert.Equal(t, "USD", seed[0].Base)
				assert.Equal(t, "ETB", seed[0].Target)
				assert.Equal(t, "150.5", seed[0].Rate.String())

				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Only parallelize tests that don't modify env vars.
			if len(tt.envVars) == 0 {
				t.Parallel()
			}

			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			cfg, err := Load(path)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.checkFunc != nil {
				tt.checkFunc(t, cfg)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := Load("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Parallel()

	cfg := DatabaseConfig{
		Host:     "db.example.com",
		Port:     5433,
		Name:     "catalog",
		User:     "admin",
		Password: "s3cret",
		SSLMode:  "require",
		PoolSize: 5,
	}
	assert.Equal(t,
		"host=db.example.com port=5433 dbname=catalog user=admin password=s3cret sslmode=require pool_max_conns=5",
		cfg.DSN(),
	)
}
