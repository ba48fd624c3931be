//go:build integration

package fxrate_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/donaldgifford/catalog-aggregator/internal/fxrate"
)

func setupPostgres(t *testing.T) *fxrate.PostgresStore {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("catalog_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := fxrate.NewPostgresStore(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	applied, err := s.Migrate(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"001_exchange_rates.sql", "002_exchange_rate_history.sql"}, applied)
	return s
}

func TestPostgresStore_RoundTrip(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))

	// A second run finds nothing pending.
	again, err := s.Migrate(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)

	_, err := s.GetRate(ctx, "USD", "ETB")
	require.ErrorIs(t, err, fxrate.ErrNotFound)

	require.NoError(t, s.UpsertRate(ctx, rate("usd", "etb", "150.12345678")))
	got, err := s.GetRate(ctx, "USD", "ETB")
	require.NoError(t, err)
	assert.True(t, got.Rate.Equal(decimal.RequireFromString("150.12345678")))
	assert.Equal(t, "USD", got.Base)
	assert.False(t, got.UpdatedAt.IsZero())

	require.NoError(t, s.UpsertRate(ctx, rate("USD", "ETB", "151")))
	require.NoError(t, s.UpsertRate(ctx, rate("USD", "EUR", "0.91")))

	all, err := s.ListRates(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ETB", all[0].Target)
	assert.True(t, all[0].Rate.Equal(decimal.NewFromInt(151)))

	err = s.UpsertRate(ctx, rate("USD", "XAF", "0"))
	require.Error(t, err)
}

func TestPostgresStore_FeedsRefresher(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertRate(ctx, rate("USD", "KES", "129.5")))

	snap := fxrate.NewSnapshot()
	r, err := fxrate.NewRefresher(s, snap, time.Hour, quietLogger())
	require.NoError(t, err)
	require.NoError(t, r.Load(ctx))

	got, err := snap.Rate(ctx, "USD", "KES")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("129.5")))
}
