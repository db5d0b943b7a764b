// Package logger builds the process-wide slog logger from configuration,
// optionally fanning warnings and errors out to Sentry.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"

	"github.com/seenimoa/newsbrief/internal/config"
)

// Options controls handler construction.
type Options struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "text" or "json"
	Output io.Writer
}

// New creates a logger writing to opts.Output (stdout when nil).
func New(opts Options) *slog.Logger {
	return slog.New(newHandler(opts))
}

// NewFromConfig creates the application logger. When a Sentry DSN is
// configured, the returned flush function must be called before exit so
// buffered events are delivered.
func NewFromConfig(logCfg config.LoggingConfig, sentryCfg config.SentryConfig) (*slog.Logger, func()) {
	base := newHandler(Options{Level: logCfg.Level, Format: logCfg.Format})
	noop := func() {}

	if sentryCfg.DSN == "" {
		return slog.New(base), noop
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         sentryCfg.DSN,
		Environment: sentryCfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		log := slog.New(base)
		log.Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return log, noop
	}

	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError},
	}.NewSentryHandler(context.Background())

	flush := func() { sentry.Flush(2 * time.Second) }
	return slog.New(newMultiHandler(base, sentryHandler)), flush
}

// ParseLevel maps a level name to slog.Level. Unknown names map to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

func newHandler(opts Options) slog.Handler {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	hopts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	if strings.EqualFold(opts.Format, "json") {
		return slog.NewJSONHandler(out, hopts)
	}
	return slog.NewTextHandler(out, hopts)
}
