package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/catalog-aggregator/internal/fxrate"
	"github.com/donaldgifford/catalog-aggregator/internal/pricing"
	domain "github.com/donaldgifford/catalog-aggregator/pkg/types"
)

func ratesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Manage stored exchange rates",
	}
	cmd.AddCommand(ratesSetCmd())
	return cmd
}

func ratesSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <base> <target> <rate>",
		Short: "Insert or update one exchange rate",
		Long: "Writes a rate to the database. Running servers pick it up on their " +
			"next scheduled refresh.",
		Example: "  catalog-aggregator rates set USD ETB 156.25",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, err := parseRateArgs(args[0], args[1], args[2])
			if err != nil {
				return err
			}
			return runRatesSet(cmd, rate)
		},
	}
}

func parseRateArgs(base, target, value string) (domain.ExchangeRate, error) {
	b, err := pricing.ParseCurrency(base)
	if err != nil {
		return domain.ExchangeRate{}, err
	}
	t, err := pricing.ParseCurrency(target)
	if err != nil {
		return domain.ExchangeRate{}, err
	}
	if b == t {
		return domain.ExchangeRate{}, errors.New("base and target must differ")
	}
	r, err := decimal.NewFromString(value)
	if err != nil {
		return domain.ExchangeRate{}, fmt.Errorf("parsing rate %q: %w", value, err)
	}
	if !r.IsPositive() {
		return domain.ExchangeRate{}, fmt.Errorf("rate must be positive, got %s", r)
	}
	return domain.ExchangeRate{Base: b, Target: t, Rate: r}, nil
}

func runRatesSet(cmd *cobra.Command, rate domain.ExchangeRate) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Database.Enabled() {
		return errors.New("database.host is not set")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	store, err := fxrate.NewPostgresStore(ctx, cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.UpsertRate(ctx, rate); err != nil {
		return err
	}
	log.Info("exchange rate stored", "base", rate.Base, "target", rate.Target, "rate", rate.Rate.String())
	return nil
}
