// Package cmd implements the CLI commands for catalog-aggregator.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/catalog-aggregator/internal/config"
	"github.com/donaldgifford/catalog-aggregator/pkg/logger"
)

var (
	cfgFile string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "catalog-aggregator",
	Short: "Search many product catalogs as one",
	Long: "An API-first service that fans a product search out to every configured " +
		"catalog provider, guards each provider with a circuit breaker, rate limiter " +
		"and bulkhead, and returns one merged result priced in the customer's currency.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(ratesCmd())
	rootCmd.AddCommand(versionCommand())
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the optional dotenv file, then the config, and builds the
// process logger from it.
func loadConfig() (*config.Config, *slog.Logger, error) {
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)
	return cfg, log, nil
}
