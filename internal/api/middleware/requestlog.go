package middleware

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const requestIDHeader = echo.HeaderXRequestID

type requestIDKey struct{}

// RequestIDFromContext returns the request id stored by RequestLog, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

var probePaths = map[string]struct{}{
	"/healthz": {},
	"/readyz":  {},
}

// RequestLog returns Echo middleware that assigns every request an id
// (reusing X-Request-ID when the caller sent one), exposes it on the
// response, the echo context and the request context, and logs the outcome.
//
// Successful probes are logged once per path to keep the log readable;
// failing probes are always logged. 5xx responses are logged at warn.
func RequestLog(log *slog.Logger) echo.MiddlewareFunc {
	var probesSeen sync.Map

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			reqID := c.Request().Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			c.Set("request_id", reqID)
			c.Response().Header().Set(requestIDHeader, reqID)
			c.SetRequest(c.Request().WithContext(
				context.WithValue(c.Request().Context(), requestIDKey{}, reqID),
			))

			err := next(c)

			path := c.Request().URL.Path
			status := c.Response().Status
			if _, probe := probePaths[path]; probe && isSuccess(status) {
				if _, logged := probesSeen.LoadOrStore(path, true); logged {
					return err
				}
			}

			level := slog.LevelInfo
			if status >= 500 {
				level = slog.LevelWarn
			}
			log.LogAttrs(c.Request().Context(), level, "request",
				slog.String("method", c.Request().Method),
				slog.String("path", path),
				slog.Int("status", status),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.String("request_id", reqID),
			)

			return err
		}
	}
}
