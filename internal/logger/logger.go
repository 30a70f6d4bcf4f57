package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

var sentryEnabled bool

// Init configures the global logger for the given environment.
// Development writes text at debug level, everything else JSON at info level.
// With a Sentry DSN, error records are also forwarded to Sentry.
func Init(env, sentryDSN string) {
	slog.SetDefault(New(os.Stdout, env, sentryDSN))
}

// New builds a logger without touching the process default.
func New(w io.Writer, env, sentryDSN string) *slog.Logger {
	var handlers []slog.Handler

	if env == "development" {
		handlers = append(handlers, slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	} else {
		handlers = append(handlers, slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	if sentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              sentryDSN,
			Environment:      env,
			TracesSampleRate: 0.2,
		})
		if err != nil {
			slog.New(handlers[0]).Warn("sentry disabled: invalid configuration", "error", err)
		} else {
			sentryEnabled = true
			handlers = append(handlers, slogsentry.Option{
				Level: slog.LevelError,
			}.NewSentryHandler())
		}
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = slogmulti.Fanout(handlers...)
	} else {
		handler = handlers[0]
	}

	return slog.New(handler)
}

// Flush waits for buffered Sentry events before shutdown.
func Flush() {
	if sentryEnabled {
		sentry.Flush(2 * time.Second)
	}
}
