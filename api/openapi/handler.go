// Package openapi serves a Swagger UI over the OpenAPI document huma
// generates from the registered API operations.
package openapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// SpecPath is where huma serves the generated OpenAPI document.
const SpecPath = "/openapi.json"

const (
	uiPrefix      = "/swagger"
	uiIndex       = uiPrefix + "/index.html"
	defaultAssets = "https://unpkg.com/swagger-ui-dist@5"
)

type uiOptions struct {
	specURL string
	assets  string
}

// Option customizes the Swagger UI page.
type Option func(*uiOptions)

// WithSpecURL points the UI at a different OpenAPI document.
func WithSpecURL(url string) Option {
	return func(o *uiOptions) { o.specURL = url }
}

// WithAssets loads the swagger-ui-dist bundle from base instead of unpkg,
// for deployments without internet egress.
func WithAssets(base string) Option {
	return func(o *uiOptions) { o.assets = base }
}

// RegisterRoutes mounts the Swagger UI under /swagger.
func RegisterRoutes(e *echo.Echo, title string, opts ...Option) {
	o := uiOptions{specURL: SpecPath, assets: defaultAssets}
	for _, opt := range opts {
		opt(&o)
	}
	page := renderPage(title, o)

	g := e.Group(uiPrefix)
	g.GET("/index.html", func(c echo.Context) error {
		return c.HTML(http.StatusOK, page)
	})
	toIndex := func(c echo.Context) error {
		return c.Redirect(http.StatusMovedPermanently, uiIndex)
	}
	e.GET(uiPrefix, toIndex)
	g.GET("/", toIndex)
}

func renderPage(title string, o uiOptions) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>%[1]s</title>
  <link rel="stylesheet" href="%[2]s/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="%[2]s/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: %[3]q,
      dom_id: "#swagger-ui",
      deepLinking: true,
      presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
      layout: "BaseLayout",
    });
  </script>
</body>
</html>`, title, o.assets, o.specURL)
}
