package latentset

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with dataset-specific helpers.
// Field names are kept consistent across the package.
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

// WithIndex adds a sample index field.
func (l *Logger) WithIndex(i int) *Logger {
	return &Logger{
		Logger: l.Logger.With("index", i),
	}
}

// WithVideo adds a video path field.
func (l *Logger) WithVideo(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("video", path),
	}
}

// WithRunID tags every record with a run identifier.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// LogLoaded logs a successfully constructed dataset.
func (l *Logger) LogLoaded(ctx context.Context, root string, samples int) {
	l.InfoContext(ctx, "dataset loaded",
		"root", root,
		"samples", samples,
	)
}

// LogCacheHit logs a latent served from the cache.
func (l *Logger) LogCacheHit(ctx context.Context, key string) {
	l.DebugContext(ctx, "latent cache hit",
		"key", key,
	)
}

// LogCacheWrite logs the outcome of persisting a freshly encoded latent.
func (l *Logger) LogCacheWrite(ctx context.Context, key string, shape []int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "failed to save encoded video",
			"key", key,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "saved encoded video",
			"key", key,
			"shape", shape,
		)
	}
}

// LogWarm logs the summary of a warm pass.
func (l *Logger) LogWarm(ctx context.Context, cached, computed, failed uint64, elapsed time.Duration) {
	if failed > 0 {
		l.WarnContext(ctx, "cache warm completed with failures",
			"cached", cached,
			"computed", computed,
			"failed", failed,
			"elapsed", elapsed,
		)
	} else {
		l.InfoContext(ctx, "cache warm completed",
			"cached", cached,
			"computed", computed,
			"elapsed", elapsed,
		)
	}
}
