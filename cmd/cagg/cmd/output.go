package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/donaldgifford/catalog-aggregator/internal/api/handlers"
	domain "github.com/donaldgifford/catalog-aggregator/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printItemsTable(items []domain.CatalogItem) error {
	return writeItemsTable(os.Stdout, items)
}

func writeItemsTable(w io.Writer, items []domain.CatalogItem) error {
	tw := newTabWriter(w)
	tw.writef("PROVIDER\tID\tTITLE\tPRICE\tDISCOUNT\tSTOCK\n")
	for i := range items {
		it := &items[i]
		discount := "-"
		if it.Pricing.IsDiscounted {
			discount = it.Pricing.Display.DiscountLabel
		}
		tw.writef("%s\t%s\t%s\t%s\t%s\t%d\n",
			it.Provider,
			it.ID,
			truncate(it.Title, 40),
			it.Pricing.Display.CurrentPrice,
			discount,
			it.Stock,
		)
	}
	return tw.finish()
}

func printItemDetail(it *domain.CatalogItem) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID:\t%s\n", it.ID)
	tw.writef("Provider:\t%s\n", it.Provider)
	tw.writef("Title:\t%s\n", it.Title)
	if it.Brand != "" {
		tw.writef("Brand:\t%s\n", it.Brand)
	}
	if it.Category != "" {
		tw.writef("Category:\t%s\n", it.Category)
	}
	tw.writef("Price:\t%s\n", it.Pricing.Display.CurrentPrice)
	if it.Pricing.IsDiscounted {
		tw.writef("Was:\t%s\n", it.Pricing.Display.OriginalPrice)
		tw.writef("Discount:\t%s (%s)\n", it.Pricing.Display.DiscountLabel, it.Pricing.Display.Savings)
	}
	tw.writef("In Stock:\t%v (%d)\n", it.InStock, it.Stock)
	if it.ReviewCount > 0 {
		tw.writef("Rating:\t%.1f (%d reviews)\n", it.Rating, it.ReviewCount)
	}
	return tw.finish()
}

func printProvidersTable(providers []handlers.ProviderStatus) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("NAME\tBREAKER\tIN FLIGHT\tPERMITS\tCATEGORY\n")
	for i := range providers {
		p := &providers[i]
		category := p.CategoryOverride
		if category == "" {
			category = "-"
		}
		tw.writef("%s\t%s\t%d/%d\t%.0f\t%s\n",
			p.Name, p.BreakerState, p.InFlight, p.MaxConcurrent, p.AvailablePermits, category)
	}
	return tw.finish()
}

func printRatesTable(rates []domain.ExchangeRate) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("BASE\tTARGET\tRATE\tUPDATED\n")
	for i := range rates {
		updated := "-"
		if !rates[i].UpdatedAt.IsZero() {
			updated = rates[i].UpdatedAt.Format("2006-01-02 15:04:05")
		}
		tw.writef("%s\t%s\t%s\t%s\n", rates[i].Base, rates[i].Target, rates[i].Rate.String(), updated)
	}
	return tw.finish()
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
