package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"
)

var L *slog.Logger // Global logger instance

type contextKey string

const jobIDKey = contextKey("importJobID")

// InitLogger initializes the global logger.
// Call this once at application startup, after loading config.
func InitLogger(logLevelStr string) {
	var level slog.Level
	switch strings.ToLower(logLevelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
		// L is not ready yet, so warn through slog directly.
		slog.Warn("Invalid LOG_LEVEL specified, defaulting to INFO", "configuredLevel", logLevelStr)
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339))
				}
			}
			return a
		},
	}

	L = slog.New(slog.NewJSONHandler(os.Stdout, opts))
	slog.SetDefault(L)
	L.Info("Logger initialized", "level", level.String())
}

// Get returns the global logger, or slog's default one when InitLogger was never
// called (library use and tests).
func Get() *slog.Logger {
	if L == nil {
		return slog.Default()
	}
	return L
}

// WithJobID tags the context with an import job id so FromContext can attach it.
func WithJobID(ctx context.Context, jobID string) context.Context {
	return context.WithValue(ctx, jobIDKey, jobID)
}

// FromContext retrieves a logger carrying the import job id when present,
// or the global logger otherwise.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if jobID, ok := ctx.Value(jobIDKey).(string); ok && jobID != "" {
			return Get().With("importJobID", jobID)
		}
	}
	return Get()
}
