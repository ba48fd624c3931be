package fxrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/donaldgifford/catalog-aggregator/internal/metrics"
	domain "github.com/donaldgifford/catalog-aggregator/pkg/types"
)

const defaultCacheTTL = 10 * time.Minute

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	URL          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	DialTimeout  time.Duration
}

// NewRedisClient parses cfg.URL, applies timeouts, and pings the server.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

// RedisCache is a read-through cache in front of another Source. Redis
// failures are logged and fall through to the backing source.
type RedisCache struct {
	client redis.Cmdable
	next   Source
	ttl    time.Duration
	prefix string
	log    *slog.Logger
}

// RedisOption configures a RedisCache.
type RedisOption func(*RedisCache)

// WithTTL sets how long cached rates live.
func WithTTL(d time.Duration) RedisOption {
	return func(c *RedisCache) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithKeyPrefix sets the Redis key prefix.
func WithKeyPrefix(p string) RedisOption {
	return func(c *RedisCache) {
		c.prefix = p
	}
}

// WithRedisLogger sets the cache logger.
func WithRedisLogger(l *slog.Logger) RedisOption {
	return func(c *RedisCache) {
		c.log = l
	}
}

// NewRedisCache wraps next with a Redis cache.
func NewRedisCache(client redis.Cmdable, next Source, opts ...RedisOption) *RedisCache {
	c := &RedisCache{
		client: client,
		next:   next,
		ttl:    defaultCacheTTL,
		prefix: "catalog:fx:",
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetRate implements Source.
func (c *RedisCache) GetRate(ctx context.Context, base, target string) (domain.ExchangeRate, error) {
	key := c.key(base, target)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var r domain.ExchangeRate
		if jerr := json.Unmarshal(raw, &r); jerr == nil {
			metrics.RateCacheLookupsTotal.WithLabelValues("hit").Inc()
			return r, nil
		}
		c.log.Warn("discarding corrupt cached rate", "key", key)
		metrics.RateCacheLookupsTotal.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		metrics.RateCacheLookupsTotal.WithLabelValues("miss").Inc()
	default:
		c.log.Warn("rate cache read failed", "key", key, "error", err)
		metrics.RateCacheLookupsTotal.WithLabelValues("error").Inc()
	}

	r, err := c.next.GetRate(ctx, base, target)
	if err != nil {
		return domain.ExchangeRate{}, err
	}

	if b, merr := json.Marshal(r); merr == nil {
		if serr := c.client.Set(ctx, key, b, c.ttl).Err(); serr != nil {
			c.log.Warn("rate cache write failed", "key", key, "error", serr)
		}
	}
	return r, nil
}

// Invalidate drops the cached entry for a pair.
func (c *RedisCache) Invalidate(ctx context.Context, base, target string) error {
	if err := c.client.Del(ctx, c.key(base, target)).Err(); err != nil {
		return fmt.Errorf("invalidating cached rate %s: %w", pairKey(base, target), err)
	}
	return nil
}

func (c *RedisCache) key(base, target string) string {
	return c.prefix + pairKey(base, target)
}
