package loopgo

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/loopgo/core"
)

// Logger wraps slog.Logger with loopgo-specific context.
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

// WithFrame adds a frame field to the logger.
func (l *Logger) WithFrame(frame core.FrameID) *Logger {
	return &Logger{
		Logger: l.Logger.With("frame", frame),
	}
}

// LogDetection logs the outcome of one detection call. Loops are logged at
// Info, rejections at Debug.
func (l *Logger) LogDetection(ctx context.Context, res DetectionResult, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "detection failed",
			"query", res.Query,
			"error", err,
		)
	case res.Status == LoopDetected:
		l.InfoContext(ctx, "loop detected",
			"query", res.Query,
			"match", res.Match,
			"score", res.Score,
			"chain", res.ChainLength,
			"inliers", res.Inliers,
		)
	default:
		args := []any{
			"query", res.Query,
			"status", res.Status.String(),
			"score", res.Score,
		}
		if res.Candidate != nil {
			args = append(args, "candidate", res.Candidate.Frame)
		}
		l.DebugContext(ctx, "no loop", args...)
	}
}

// LogStream logs the end of a frame stream.
func (l *Logger) LogStream(ctx context.Context, processed, loops int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "stream stopped",
			"processed", processed,
			"loops", loops,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "stream completed",
			"processed", processed,
			"loops", loops,
		)
	}
}
