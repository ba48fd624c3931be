// Package main generates reference documentation: markdown for both command
// trees and the OpenAPI description of the HTTP API.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	caggcmd "github.com/donaldgifford/catalog-aggregator/cmd/cagg/cmd"
	servercmd "github.com/donaldgifford/catalog-aggregator/cmd/catalog-aggregator/cmd"
	"github.com/donaldgifford/catalog-aggregator/internal/api"
)

func main() {
	output := flag.String("output", "docs", "output directory for generated documentation")
	flag.Parse()

	for name, root := range map[string]*cobra.Command{
		"cli":    caggcmd.Root(),
		"server": servercmd.Root(),
	} {
		if err := genCLI(root, filepath.Join(*output, name)); err != nil {
			log.Fatalf("generating %s docs: %v", name, err)
		}
	}

	if err := genOpenAPI(filepath.Join(*output, "openapi.yaml")); err != nil {
		log.Fatalf("generating openapi: %v", err)
	}

	fmt.Printf("docs generated in %s/\n", *output)
}

func genCLI(root *cobra.Command, dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	root.DisableAutoGenTag = true
	return doc.GenMarkdownTree(root, dir)
}

// genOpenAPI registers every operation against a throwaway router; handlers
// are never invoked, so no dependencies are needed.
func genOpenAPI(path string) error {
	humaAPI := humaecho.New(echo.New(), api.Config(servercmd.Version))
	api.Register(humaAPI, api.Deps{})

	spec, err := humaAPI.OpenAPI().YAML()
	if err != nil {
		return fmt.Errorf("encoding spec: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return os.WriteFile(path, spec, 0o600)
}
