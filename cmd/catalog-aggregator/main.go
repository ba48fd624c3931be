// Package main is the entry point for the catalog aggregator service.
package main

import (
	"os"

	"github.com/donaldgifford/catalog-aggregator/cmd/catalog-aggregator/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
