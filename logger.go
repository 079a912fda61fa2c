package lsmkit

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with lsmkit-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses a default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithPath adds a file path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// WithCache adds a cache name field to the logger.
func (l *Logger) WithCache(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("cache", name),
	}
}

// WithShards adds a shard count field to the logger.
func (l *Logger) WithShards(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("shards", n),
	}
}

// LogTableFinish logs the completion of a table build.
func (l *Logger) LogTableFinish(ctx context.Context, path string, entries uint64, size int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "table build failed",
			"path", path,
			"entries", entries,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "table finished",
			"path", path,
			"entries", entries,
			"size", size,
		)
	}
}

// LogTableOpen logs the result of opening a table for reading.
func (l *Logger) LogTableOpen(ctx context.Context, path string, entries uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "table open failed",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "table opened",
			"path", path,
			"entries", entries,
		)
	}
}
