// Package main is the entry point for the cagg CLI.
package main

import "github.com/donaldgifford/catalog-aggregator/cmd/cagg/cmd"

func main() {
	cmd.Execute()
}
