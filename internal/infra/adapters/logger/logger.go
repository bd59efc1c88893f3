// logger is an slog.Logger adapter to store an slog.Logger (using
// logger.WithLogger) into a context.Context and later retrieve it
// (using logger.FromContext). The default logger is
// github.com/charmbracelet/log writing to stderr.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

type contextKey struct{}

var loggerKey = &contextKey{}

// WithLogger returns a context with l as slog.Logger based off the
// ctx context. Retrieve the logger using FromContext.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// WithDefaultLogger returns a context with DefaultLogger set as the
// slog.Logger based off the ctx context. Retrieve the logger using
// FromContext.
func WithDefaultLogger(ctx context.Context) context.Context {
	return WithLogger(ctx, DefaultLogger())
}

// FromContext retrieves an slog.Logger saved by WithLogger from
// ctx. If there is not such logger in the context,
// logger.DefaultLogger() is returned ensuring this function will
// always return a valid slog.Logger.
func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(loggerKey).(*slog.Logger)
	if !ok {
		return DefaultLogger()
	}
	return l
}

// DefaultLogger returns the default logger for this adapter package
// which utilizes github.com/charmbracelet/log at warn level. Progress
// and results are printed by the commands, the log carries
// diagnostics only.
func DefaultLogger() *slog.Logger {
	return New(os.Stderr, false)
}

// New returns a charmbracelet/log backed slog.Logger writing to w. If
// verbose is true the level is debug, otherwise warn.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return slog.New(log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           level,
	}))
}

// Discard returns a logger that drops everything, for tests.
func Discard() *slog.Logger {
	return slog.New(log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel}))
}
