package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/catalog-aggregator/internal/api/client"
)

func searchCmd() *cobra.Command {
	var params apiclient.SearchParams

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search every provider",
		Long: "Fans the query out to every active provider and prints the merged,\n" +
			"priced items with a summary of how each provider answered.",
		Example: `  cagg search "galaxy s24"
  cagg search phone --currency ETB --country ET --size 10
  cagg search --category laptops --providers alpha,beta --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				params.Query = args[0]
			}
			res, err := newClient().Search(cmd.Context(), &params)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(res)
			}
			if len(res.Items) == 0 {
				fmt.Println("No items found.")
			} else if err := printItemsTable(res.Items); err != nil {
				return err
			}
			s := res.Stats
			coalesced := ""
			if s.Coalesced {
				coalesced = ", coalesced"
			}
			fmt.Printf("\n%d items from %d/%d providers (%d failed, %d timed out, %d dropped) in %dms%s\n",
				len(res.Items), s.ProvidersSucceeded, s.ProvidersQueried,
				s.ProvidersFailed, s.ProvidersTimedOut, s.ItemsDropped, s.DurationMs, coalesced,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&params.Category, "category", "", "category filter")
	cmd.Flags().StringVar(&params.Brand, "brand", "", "brand filter")
	cmd.Flags().StringSliceVar(&params.Providers, "providers", nil, "only query these providers")
	cmd.Flags().IntVar(&params.Page, "page", 0, "zero-based page")
	cmd.Flags().IntVar(&params.Size, "size", 0, "page size (server default when 0)")
	cmd.Flags().StringVar(&params.Country, "country", "", "ISO 3166-1 alpha-2 country")
	cmd.Flags().StringVar(&params.Currency, "currency", "", "ISO 4217 currency")

	return cmd
}

func productCmd() *cobra.Command {
	var country, currency string

	cmd := &cobra.Command{
		Use:   "product <provider> <id>",
		Short: "Show one provider item",
		Example: `  cagg product alpha sku-123
  cagg product alpha sku-123 --currency ETB --output json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := newClient().Product(cmd.Context(), args[0], args[1], country, currency)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(item)
			}
			return printItemDetail(item)
		},
	}

	cmd.Flags().StringVar(&country, "country", "", "ISO 3166-1 alpha-2 country")
	cmd.Flags().StringVar(&currency, "currency", "", "ISO 4217 currency")

	return cmd
}

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List providers and their breaker state",
		Example: `  cagg providers
  cagg providers --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			providers, err := newClient().ListProviders(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(providers)
			}
			if len(providers) == 0 {
				fmt.Println("No providers configured.")
				return nil
			}
			return printProvidersTable(providers)
		},
	}
}

func ratesCmd() *cobra.Command {
	var base string

	cmd := &cobra.Command{
		Use:   "rates [base target]",
		Short: "Show exchange rates",
		Long: "With no arguments, lists the rates the server holds in memory.\n" +
			"With a base and target, shows the rate used to price that pair.",
		Example: `  cagg rates
  cagg rates --base USD
  cagg rates USD ETB`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected no arguments or <base> <target>, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			if len(args) == 2 {
				rate, err := c.GetRate(cmd.Context(), strings.ToUpper(args[0]), strings.ToUpper(args[1]))
				if err != nil {
					return err
				}
				if jsonOutput() {
					return outputJSON(rate)
				}
				fmt.Printf("1 %s = %s %s\n", rate.Base, rate.Rate.String(), rate.Target)
				return nil
			}

			rates, err := c.ListRates(cmd.Context(), strings.ToUpper(base))
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(rates)
			}
			if len(rates) == 0 {
				fmt.Println("No rates loaded.")
				return nil
			}
			return printRatesTable(rates)
		},
	}

	cmd.Flags().StringVar(&base, "base", "", "only rates from this base currency")
	return cmd
}
