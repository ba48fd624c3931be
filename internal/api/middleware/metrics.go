// Package middleware provides the Echo middleware stack of the catalog API.
package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/donaldgifford/catalog-aggregator/internal/metrics"
)

// Probe, scrape and documentation paths are not worth a latency series.
var metricsSkipPaths = map[string]struct{}{
	"/metrics":      {},
	"/healthz":      {},
	"/readyz":       {},
	"/docs":         {},
	"/openapi.json": {},
	"/openapi.yaml": {},
}

var healthGauges = map[string]prometheus.Gauge{
	"/healthz": metrics.HealthzUp,
	"/readyz":  metrics.ReadyzUp,
}

// Metrics returns Echo middleware that records request duration, count and
// in-flight requests, labelled by route template rather than raw URL so
// item ids do not explode cardinality. Probe paths only update their 0/1
// gauges.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := routePath(c)

			if _, skip := metricsSkipPaths[path]; skip {
				err := next(c)
				if gauge, ok := healthGauges[path]; ok {
					gauge.Set(boolFloat(isSuccess(c.Response().Status)))
				}
				return err
			}

			metrics.HTTPRequestsInFlight.Inc()
			defer metrics.HTTPRequestsInFlight.Dec()

			start := time.Now()
			err := next(c)
			if err != nil {
				// Let echo render the error so the recorded status is the real one.
				c.Error(err)
				err = nil
			}

			labels := []string{c.Request().Method, path, strconv.Itoa(c.Response().Status)}
			metrics.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			metrics.HTTPRequestsTotal.WithLabelValues(labels...).Inc()

			return err
		}
	}
}

func routePath(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	return c.Request().URL.Path
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
