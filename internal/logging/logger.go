// Package logging provides structured logging configuration using log/slog.
//
// Logs go to stderr so that stdout stays reserved for command output. A
// pipeline run carries a run_id through its context so that every entry of
// one run can be correlated.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Setup configures the global slog logger based on level and format.
//
// Level values: "debug", "info", "warn", "error" (default: "warn")
// Format values: "text", "json" (default: "text")
func Setup(level, format string, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(strings.TrimSpace(format)) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

type runIDKey struct{}

// WithRun returns a context tagged with a fresh run ID, and the ID itself.
func WithRun(ctx context.Context) (context.Context, string) {
	id := uuid.New().String()
	return context.WithValue(ctx, runIDKey{}, id), id
}

// RunID returns the run ID stored in ctx, or "".
func RunID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(runIDKey{}).(string); ok {
		return id
	}
	return ""
}

// FromContext returns the default logger, enriched with the run ID when ctx
// carries one.
//
// Usage:
//
//	ctx, _ = logging.WithRun(ctx)
//	logger := logging.FromContext(ctx)
//	logger.Debug("step finished", "step", "pivot", "rows", t.Len())
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if id := RunID(ctx); id != "" {
		logger = logger.With("run_id", id)
	}
	return logger
}

// WithFields returns a logger with additional structured fields.
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
