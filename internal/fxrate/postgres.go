package fxrate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	domain "github.com/donaldgifford/catalog-aggregator/pkg/types"
)

const defaultPoolSize = 5

const (
	queryGetRate = `
		SELECT base, target, rate::text, updated_at
		FROM exchange_rates
		WHERE base = $1 AND target = $2`

	queryListRates = `
		SELECT base, target, rate::text, updated_at
		FROM exchange_rates
		ORDER BY base, target`

	queryUpsertRate = `
		INSERT INTO exchange_rates (base, target, rate, updated_at)
		VALUES (@base, @target, @rate::numeric, now())
		ON CONFLICT (base, target)
		DO UPDATE SET rate = EXCLUDED.rate, updated_at = now()`

	queryInsertHistory = `
		INSERT INTO exchange_rate_history (base, target, rate)
		VALUES (@base, @target, @rate::numeric)`
)

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to Postgres and verifies the connection.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close shuts down the pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending schema migrations and returns their versions.
func (s *PostgresStore) Migrate(ctx context.Context) ([]string, error) {
	return RunMigrations(ctx, s.pool)
}

// GetRate implements Source.
func (s *PostgresStore) GetRate(ctx context.Context, base, target string) (domain.ExchangeRate, error) {
	r, err := scanRate(s.pool.QueryRow(ctx, queryGetRate, strings.ToUpper(base), strings.ToUpper(target)))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ExchangeRate{}, fmt.Errorf("%w: %s", ErrNotFound, pairKey(base, target))
	}
	if err != nil {
		return domain.ExchangeRate{}, fmt.Errorf("getting rate %s: %w", pairKey(base, target), err)
	}
	return r, nil
}

// ListRates returns every stored rate.
func (s *PostgresStore) ListRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	rows, err := s.pool.Query(ctx, queryListRates)
	if err != nil {
		return nil, fmt.Errorf("listing rates: %w", err)
	}
	defer rows.Close()

	var out []domain.ExchangeRate
	for rows.Next() {
		r, err := scanRate(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning rate: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpsertRate stores a rate and appends it to the rate history.
func (s *PostgresStore) UpsertRate(ctx context.Context, r domain.ExchangeRate) error {
	if !r.Rate.IsPositive() {
		return fmt.Errorf("rate %s must be positive, got %s", pairKey(r.Base, r.Target), r.Rate)
	}
	args := pgx.NamedArgs{
		"base":   strings.ToUpper(r.Base),
		"target": strings.ToUpper(r.Target),
		"rate":   r.Rate.String(),
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, queryUpsertRate, args); err != nil {
		return fmt.Errorf("upserting rate %s: %w", pairKey(r.Base, r.Target), err)
	}
	if _, err := tx.Exec(ctx, queryInsertHistory, args); err != nil {
		return fmt.Errorf("recording rate history %s: %w", pairKey(r.Base, r.Target), err)
	}
	return tx.Commit(ctx)
}

func scanRate(row pgx.Row) (domain.ExchangeRate, error) {
	var (
		r    domain.ExchangeRate
		rate string
	)
	if err := row.Scan(&r.Base, &r.Target, &rate, &r.UpdatedAt); err != nil {
		return domain.ExchangeRate{}, err
	}
	d, err := decimal.NewFromString(rate)
	if err != nil {
		return domain.ExchangeRate{}, fmt.Errorf("parsing rate %q: %w", rate, err)
	}
	r.Rate = d
	return r, nil
}
