// Package cmd implements the cagg CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/donaldgifford/catalog-aggregator/internal/api/client"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "cagg",
		Short: "CLI client for the catalog aggregator",
		Long: `cagg talks to a running catalog aggregator over its HTTP API.

Search every provider at once, fetch one item from one provider, inspect
provider breaker state, or list the exchange rates the service prices with.`,
		SilenceUsage: true,
	}
)

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default $HOME/.cagg.yaml)")
	flags.String("server", "http://localhost:8080", "catalog aggregator base URL")
	flags.String("output", "table", "output format: table or json")
	flags.Duration("timeout", 30*time.Second, "per-request timeout")
	for _, name := range []string{"server", "output", "timeout"} {
		cobra.CheckErr(viper.BindPFlag(name, flags.Lookup(name)))
	}

	rootCmd.AddCommand(searchCmd(), productCmd(), providersCmd(), ratesCmd())
}

// initConfig layers CAGG_* environment variables over the optional
// config file, which in turn sits over the flag defaults.
func initConfig() {
	viper.SetEnvPrefix("CAGG")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".cagg")
		viper.SetConfigType("yaml")
	}

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		fmt.Fprintln(os.Stderr, "config:", viper.ConfigFileUsed())
	case errors.As(err, &notFound):
	default:
		cobra.CheckErr(fmt.Errorf("reading config: %w", err))
	}
}

func newClient() *apiclient.Client {
	return apiclient.New(viper.GetString("server"), apiclient.WithTimeout(viper.GetDuration("timeout")))
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
