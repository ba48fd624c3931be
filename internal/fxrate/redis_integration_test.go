//go:build integration

package fxrate_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/donaldgifford/catalog-aggregator/internal/fxrate"
)

func TestRedisCache_ReadThrough(t *testing.T) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(ctx))
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := fxrate.NewRedisClient(ctx, fxrate.RedisConfig{
		URL: fmt.Sprintf("redis://%s:%s/0", host, port.Port()),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store := newFakeStore(rate("USD", "ETB", "150"))
	cache := fxrate.NewRedisCache(client, store, fxrate.WithTTL(time.Minute), fxrate.WithRedisLogger(quietLogger()))

	for range 3 {
		r, err := cache.GetRate(ctx, "USD", "ETB")
		require.NoError(t, err)
		assert.Equal(t, "150", r.Rate.String())
	}
	assert.Equal(t, int32(1), store.gets.Load(), "later reads are served from redis")

	require.NoError(t, cache.Invalidate(ctx, "USD", "ETB"))
	_, err = cache.GetRate(ctx, "USD", "ETB")
	require.NoError(t, err)
	assert.Equal(t, int32(2), store.gets.Load())
}
