package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/catalog-aggregator/pkg/logger"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"debug":    slog.LevelDebug,
		"DEBUG":    slog.LevelDebug,
		" info ":   slog.LevelInfo,
		"warn":     slog.LevelWarn,
		"Warning":  slog.LevelWarn,
		"error":    slog.LevelError,
		"":         slog.LevelInfo,
		"verbose":  slog.LevelInfo,
		"critical": slog.LevelInfo,
	}

	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, want, logger.ParseLevel(in))
		})
	}
}

func TestNew_WritesToStderr(t *testing.T) {
	t.Parallel()

	l := logger.New("debug", "json")
	require.NotNil(t, l)
	assert.True(t, l.Enabled(t.Context(), slog.LevelDebug))
}

func TestNewWithWriter_Formats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   []string
	}{
		{
			format: "text",
			want:   []string{"level=INFO", `msg="search served"`, "service=catalog-aggregator", "providers=4"},
		},
		{
			format: "json",
			want:   []string{`"level":"INFO"`, `"msg":"search served"`, `"service":"catalog-aggregator"`, `"providers":4`},
		},
		{
			format: "JSON",
			want:   []string{`"msg":"search served"`},
		},
		{
			format: "logfmt",
			want:   []string{`msg="search served"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger.NewWithWriter(&buf, "info", tt.format).Info("search served", "providers", 4)

			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestComponent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger.Component(logger.NewWithWriter(&buf, "info", "text"), "fxrate").
		Info("rates loaded", "count", 3)

	out := buf.String()
	assert.Contains(t, out, "component=fxrate")
	assert.Contains(t, out, "service=catalog-aggregator")
	assert.Contains(t, out, "count=3")
}

func TestComponent_NilFallsBackToDefault(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, logger.Component(nil, "gateway"))
}

func TestNewWithOptions_AddSource(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger.NewWithOptions(&buf, logger.Options{Format: "json", AddSource: true}).
		Warn("breaker opened", "provider", "alpha")

	out := buf.String()
	assert.Contains(t, out, `"source"`)
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"provider":"alpha"`)
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		configured string
		record     slog.Level
		visible    bool
	}{
		{configured: "debug", record: slog.LevelDebug, visible: true},
		{configured: "info", record: slog.LevelDebug, visible: false},
		{configured: "info", record: slog.LevelInfo, visible: true},
		{configured: "warn", record: slog.LevelInfo, visible: false},
		{configured: "warn", record: slog.LevelError, visible: true},
		{configured: "error", record: slog.LevelWarn, visible: false},
	}

	for _, tt := range tests {
		t.Run(tt.configured+"/"+tt.record.String(), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			l := logger.NewWithWriter(&buf, tt.configured, "text")
			l.Log(t.Context(), tt.record, "provider call")

			assert.Equal(t, tt.visible, buf.Len() > 0)
		})
	}
}
