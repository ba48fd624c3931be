// Package fxrate supplies exchange rates to the pricing transform. Rates are
// stored in Postgres, cached in Redis, and served from an in-memory snapshot
// that a cron job refreshes.
package fxrate

import (
	"context"
	"errors"
	"strings"

	domain "github.com/donaldgifford/catalog-aggregator/pkg/types"
)

// ErrNotFound is returned when no rate exists for a currency pair.
var ErrNotFound = errors.New("exchange rate not found")

// Source looks up a single rate.
type Source interface {
	GetRate(ctx context.Context, base, target string) (domain.ExchangeRate, error)
}

// Store is the persistent rate table.
type Store interface {
	Source
	ListRates(ctx context.Context) ([]domain.ExchangeRate, error)
	UpsertRate(ctx context.Context, r domain.ExchangeRate) error
	Ping(ctx context.Context) error
}

func pairKey(base, target string) string {
	return strings.ToUpper(base) + "/" + strings.ToUpper(target)
}
