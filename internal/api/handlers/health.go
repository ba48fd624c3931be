package handlers

import (
	"context"
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/labstack/echo/v4"
)

const pingTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProbeResponse is the body of /healthz and /readyz. Checks is only set on
// /readyz and maps each dependency to "ok" or its ping error.
type ProbeResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	names []string
	deps  map[string]Pinger
}

// NewHealthHandler creates a HealthHandler. Nil entries in deps are
// dependencies that are not configured and are left out of readiness.
func NewHealthHandler(deps map[string]Pinger) *HealthHandler {
	h := &HealthHandler{deps: make(map[string]Pinger, len(deps))}
	for name, p := range deps {
		if p != nil {
			h.deps[name] = p
		}
	}
	h.names = slices.Sorted(maps.Keys(h.deps))
	return h
}

// Healthz answers as long as the process can serve requests.
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, ProbeResponse{Status: "ok"})
}

// Readyz pings every dependency and answers 503 if any of them fails.
func (h *HealthHandler) Readyz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
	defer cancel()

	resp := ProbeResponse{Status: "ready"}
	code := http.StatusOK
	if len(h.names) > 0 {
		resp.Checks = make(map[string]string, len(h.names))
	}
	for _, name := range h.names {
		if err := h.deps[name].Ping(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "unavailable"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	return c.JSON(code, resp)
}

// RegisterHealthRoutes adds the probe endpoints to e.
func RegisterHealthRoutes(e *echo.Echo, h *HealthHandler) {
	e.GET("/healthz", h.Healthz)
	e.GET("/readyz", h.Readyz)
}
