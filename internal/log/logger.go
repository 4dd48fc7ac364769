// Package log is rolegate's structured logger, a thin layer over log/slog
// that understands coded errors and keeps credentials out of the output.
package log

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"

	"github.com/felixgeelhaar/rolegate/internal/errors"
)

const redacted = "[redacted]"

// Logger provides structured logging with slog
type Logger struct {
	slog *slog.Logger
}

// New creates a new Logger with the given configuration
func New(config Config) *Logger {
	keys := config.RedactKeys
	if keys == nil {
		keys = DefaultRedactKeys
	}
	opts := &slog.HandlerOptions{
		Level:       config.Level.slogLevel(),
		ReplaceAttr: redactor(keys),
	}

	var handler slog.Handler
	switch config.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(config.Output.Writer(), opts)
	default:
		handler = slog.NewTextHandler(config.Output.Writer(), opts)
	}

	logger := slog.New(handler)
	if config.ServiceName != "" {
		logger = logger.With("service", config.ServiceName)
	}
	return &Logger{slog: logger}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return New(DiscardConfig())
}

func redactor(keys []string) func([]string, slog.Attr) slog.Attr {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[strings.ToLower(k)] = struct{}{}
	}
	return func(_ []string, a slog.Attr) slog.Attr {
		if _, ok := set[strings.ToLower(a.Key)]; ok && a.Value.Kind() != slog.KindGroup {
			return slog.String(a.Key, redacted)
		}
		return a
	}
}

// With returns a new Logger with the given attributes added to all log entries
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...)}
}

// WithError adds error details to the logger.
// A coded error anywhere in the chain contributes error_code.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}

	var coded *errors.Error
	if stderrors.As(err, &coded) {
		args := []any{
			"error", coded.Message,
			"error_code", string(coded.Code),
		}
		if coded.Cause != nil {
			args = append(args, "cause", coded.Cause.Error())
		}
		return l.With(args...)
	}

	return l.With("error", err.Error())
}

func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.slog.DebugContext(ctx, msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.slog.InfoContext(ctx, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.slog.WarnContext(ctx, msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
}

// Slog exposes the underlying *slog.Logger for libraries that take one
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}
