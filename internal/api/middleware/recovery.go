package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/catalog-aggregator/internal/metrics"
)

const maxStackBytes = 8 << 10

// Recovery returns Echo middleware that turns a handler panic into a 500
// response. http.ErrAbortHandler is re-raised so net/http can abort the
// connection.
func Recovery(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if e, ok := r.(error); ok && errors.Is(e, http.ErrAbortHandler) {
					panic(r)
				}
				err = handlePanic(c, log, r)
			}()
			return next(c)
		}
	}
}

func handlePanic(c echo.Context, log *slog.Logger, r any) error {
	metrics.HTTPPanicsTotal.Inc()

	req := c.Request()
	log.Error("panic recovered",
		"error", fmt.Sprint(r),
		"method", req.Method,
		"path", req.URL.Path,
		"request_id", RequestIDFromContext(req.Context()),
		"stack", stack(),
	)

	// Headers are gone; the client sees a truncated body.
	if c.Response().Committed {
		return nil
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func stack() string {
	buf := make([]byte, maxStackBytes)
	return string(buf[:runtime.Stack(buf, false)])
}
