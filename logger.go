package zspatial

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/zspatial/join"
)

// Logger wraps slog.Logger with zspatial-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithID adds an object id field to the logger.
func (l *Logger) WithID(id int64) *Logger {
	return &Logger{
		Logger: l.Logger.With("id", id),
	}
}

// WithName adds a snapshot name field to the logger.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("name", name),
	}
}

// LogAdd logs an add operation.
func (l *Logger) LogAdd(ctx context.Context, id int64, records int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "add failed",
			"id", id,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "add completed",
			"id", id,
			"records", records,
		)
	}
}

// LogRemove logs a remove operation.
func (l *Logger) LogRemove(ctx context.Context, id int64, removed bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "remove failed",
			"id", id,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "remove completed",
			"id", id,
			"removed", removed,
		)
	}
}

// LogJoin logs a finished join.
func (l *Logger) LogJoin(ctx context.Context, stats join.Stats, err error) {
	if err != nil {
		l.ErrorContext(ctx, "join failed",
			"steps", stats.Steps,
			"emitted", stats.Emitted,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "join completed",
			"steps", stats.Steps,
			"skip_aheads", stats.SkipAheads,
			"candidates", stats.Candidates,
			"emitted", stats.Emitted,
			"memo_hit_rate", stats.MemoHitRate(),
		)
	}
}

// LogSnapshot logs a snapshot save.
func (l *Logger) LogSnapshot(ctx context.Context, name string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"name", name,
			"bytes", bytes,
		)
	}
}

// LogLoad logs a snapshot load.
func (l *Logger) LogLoad(ctx context.Context, name string, objects int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot loaded",
			"name", name,
			"objects", objects,
		)
	}
}
