package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/catalog-aggregator/internal/fxrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending exchange rate schema migrations",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Database.Enabled() {
		return errors.New("database.host is not set")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	log = log.With("host", cfg.Database.Host, "database", cfg.Database.Name)
	applied, err := fxrate.RunMigrations(ctx, pool)
	for _, v := range applied {
		log.Info("migration applied", "version", v)
	}
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	if len(applied) == 0 {
		log.Info("schema up to date")
	}
	return nil
}
