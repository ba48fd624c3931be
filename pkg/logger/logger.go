// Package logger builds the service's slog loggers. Every logger carries the
// service name, and components get a child logger tagged with their name.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Service is attached to every record as the "service" attribute.
const Service = "catalog-aggregator"

// Options controls logger construction.
type Options struct {
	Level     string // debug, info, warn, error (default info)
	Format    string // text, json (default text)
	AddSource bool
}

// New creates a *slog.Logger writing to stderr.
func New(level, format string) *slog.Logger {
	return NewWithOptions(os.Stderr, Options{Level: level, Format: format})
}

// NewWithWriter creates a *slog.Logger writing to w.
func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	return NewWithOptions(w, Options{Level: level, Format: format})
}

// NewWithOptions creates a *slog.Logger writing to w.
func NewWithOptions(w io.Writer, o Options) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(o.Level),
		AddSource: o.AddSource,
	}

	var handler slog.Handler
	if strings.EqualFold(o.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With("service", Service)
}

// Component returns a child of l tagged with the component name.
func Component(l *slog.Logger, name string) *slog.Logger {
	if l == nil {
		l = slog.Default()
	}
	return l.With("component", name)
}

// ParseLevel converts a level string to slog.Level. Matching is
// case-insensitive and "warning" is accepted for warn. Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
