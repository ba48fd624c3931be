package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecovery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		method   string
		path     string
		handler  echo.HandlerFunc
		wantCode int
		wantBody string
		wantLog  []string
	}{
		{
			name:     "passes through without panic",
			method:   http.MethodGet,
			path:     "/api/v1/providers",
			handler:  func(c echo.Context) error { return c.String(http.StatusOK, "ok") },
			wantCode: http.StatusOK,
			wantBody: "ok",
		},
		{
			name:     "string panic becomes 500",
			method:   http.MethodPost,
			path:     "/api/v1/search",
			handler:  func(echo.Context) error { panic("merge exploded") },
			wantCode: http.StatusInternalServerError,
			wantBody: "internal server error",
			wantLog:  []string{"panic recovered", "merge exploded", "method=POST", "path=/api/v1/search"},
		},
		{
			name:     "non-string panic value is logged",
			method:   http.MethodGet,
			path:     "/api/v1/rates/USD/ETB",
			handler:  func(echo.Context) error { panic(42) },
			wantCode: http.StatusInternalServerError,
			wantLog:  []string{"error=42"},
		},
		{
			name:   "committed response is left alone",
			method: http.MethodGet,
			path:   "/metrics",
			handler: func(c echo.Context) error {
				c.Response().WriteHeader(http.StatusOK)
				panic("mid-stream")
			},
			wantCode: http.StatusOK,
			wantLog:  []string{"mid-stream"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			e := echo.New()
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			req.Header.Set(requestIDHeader, "req-42")
			rec := httptest.NewRecorder()

			chain := RequestLog(slog.New(slog.DiscardHandler))(
				Recovery(slog.New(slog.NewTextHandler(&buf, nil)))(tt.handler),
			)
			require.NoError(t, chain(e.NewContext(req, rec)))

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
			if len(tt.wantLog) == 0 {
				assert.Empty(t, buf.String())
				return
			}
			for _, want := range tt.wantLog {
				assert.Contains(t, buf.String(), want)
			}
			assert.Contains(t, buf.String(), "request_id=req-42")
		})
	}
}

func TestRecovery_RepanicsOnAbortHandler(t *testing.T) {
	t.Parallel()

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", http.NoBody), httptest.NewRecorder())
	handler := Recovery(slog.New(slog.DiscardHandler))(func(echo.Context) error {
		panic(http.ErrAbortHandler)
	})

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() { _ = handler(c) })
}
