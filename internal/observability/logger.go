// Package observability provides simple logging utilities.
//
// This is a minimal implementation focused on structured logging with slog.
package observability

import (
	"log/slog"
	"os"
)

// NewLogger creates a structured logger for the given level and format.
// Format "json" selects the JSON handler; anything else selects text.
func NewLogger(level, format string) *slog.Logger {
	lvl := slog.LevelInfo
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level: lvl,
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// NewComponentLogger creates a logger scoped to a named component.
func NewComponentLogger(level, format, component string) *slog.Logger {
	return NewLogger(level, format).With(slog.String("component", component))
}
