package logging

import (
	"log/slog"
	"os"
)

// Logger is a thin wrapper over slog that tags every record with the
// component that produced it.
type Logger struct {
	inner *slog.Logger
}

// Init installs the process-wide slog handler. JSON output is used when
// the service runs in production so log aggregation stays parseable.
func Init(prod bool, level slog.Level) {
	options := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if prod {
		handler = slog.NewJSONHandler(os.Stdout, options)
	} else {
		handler = slog.NewTextHandler(os.Stdout, options)
	}
	slog.SetDefault(slog.New(handler))
}

// New returns a logger scoped to one component of the system.
func New(component string) *Logger {
	return &Logger{
		inner: slog.Default().With("component", component),
	}
}

func (l *Logger) Info(msg string, args ...any) {
	l.inner.Info(msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.inner.Warn(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.inner.Error(msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.inner.Debug(msg, args...)
}

// With returns a child logger carrying extra key/value context,
// typically a trace id or a document hash.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{inner: l.inner.With(args...)}
}
