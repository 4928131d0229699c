// Package logging configures structured logging with log/slog.
//
// Every CLI invocation is tagged with a run ID so that the lines written by
// one list, insert or delete can be picked out of a shared log.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// ValidLevels and ValidFormats list the accepted configuration values.
var (
	ValidLevels  = []string{"debug", "info", "warn", "error"}
	ValidFormats = []string{"text", "json"}
)

// New builds a logger writing to w.
//
// Level values: "debug", "info", "warn", "error" (default: "info").
// Format values: "text", "json" (default: "text").
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Setup builds a logger with New and installs it as the slog default.
func Setup(w io.Writer, level, format string) *slog.Logger {
	logger := New(w, level, format)
	slog.SetDefault(logger)
	return logger
}

// ValidateLevel reports an error for a level outside ValidLevels.
func ValidateLevel(level string) error {
	return oneOf("log level", strings.ToLower(level), ValidLevels)
}

// ValidateFormat reports an error for a format outside ValidFormats.
func ValidateFormat(format string) error {
	return oneOf("log format", strings.ToLower(format), ValidFormats)
}

func oneOf(what, value string, allowed []string) error {
	for _, a := range allowed {
		if a == value {
			return nil
		}
	}
	return fmt.Errorf("invalid %s %q: must be one of %v", what, value, allowed)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// RunIDGenerator produces the ID attached to one CLI invocation.
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run IDs.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return logger
		}
	}
	return slog.Default()
}

// WithRun tags logger with a fresh run ID from gen and stores it in ctx.
// Returns the derived context and the run ID.
func WithRun(ctx context.Context, logger *slog.Logger, gen RunIDGenerator) (context.Context, string) {
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	runID := gen.Generate()
	return NewContext(ctx, logger.With("run_id", runID)), runID
}
