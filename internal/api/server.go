// Package api assembles the HTTP surface of the catalog aggregator: the
// Echo router with its middleware stack and the Huma operations on top.
package api

import (
	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/donaldgifford/catalog-aggregator/api/openapi"
	"github.com/donaldgifford/catalog-aggregator/internal/api/handlers"
	"github.com/donaldgifford/catalog-aggregator/internal/api/middleware"
)

const title = "Catalog Aggregator API"

// Deps are the services the HTTP layer exposes.
type Deps struct {
	Searcher   handlers.Searcher
	Providers  handlers.ProviderCatalog
	Rates      handlers.RateSource
	RateLister handlers.RateLister // optional
	Ready      map[string]handlers.Pinger
	Logger     *slog.Logger
	Version    string
}

// NewServer builds the router. The returned huma.API describes every
// registered operation and backs /openapi.json, /docs and /swagger.
func NewServer(d Deps) (*echo.Echo, huma.API) {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLog(log))
	e.Use(middleware.Recovery(log))
	e.Use(middleware.Metrics())

	handlers.RegisterHealthRoutes(e, handlers.NewHealthHandler(d.Ready))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	humaAPI := humaecho.New(e, Config(d.Version))
	Register(humaAPI, d)
	openapi.RegisterRoutes(e, title)
	return e, humaAPI
}

// Config returns the OpenAPI configuration for the given build version.
func Config(version string) huma.Config {
	cfg := huma.DefaultConfig(title, version)
	cfg.Info.Description = "Searches every configured catalog provider at once and " +
		"returns one merged, priced result."
	return cfg
}

// Register adds every API operation to humaAPI.
func Register(humaAPI huma.API, d Deps) {
	handlers.RegisterSearchRoutes(humaAPI, handlers.NewSearchHandler(d.Searcher))
	handlers.RegisterProviderRoutes(humaAPI, handlers.NewProvidersHandler(d.Providers))
	handlers.RegisterRateRoutes(humaAPI, handlers.NewRatesHandler(d.Rates, d.RateLister))
}
