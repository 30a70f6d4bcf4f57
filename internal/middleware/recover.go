package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/getsentry/sentry-go"
	"github.com/staybook/staybook-api/internal/ctxkeys"
	"github.com/staybook/staybook-api/internal/respond"
)

// Recover turns a handler panic into a 500 response and reports it.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			slog.Error("panic in handler",
				"panic", rec,
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", ctxkeys.RequestID(r.Context()),
				"stack", string(debug.Stack()),
			)
			sentry.CurrentHub().Recover(rec)

			respond.Internal(w)
		}()

		next.ServeHTTP(w, r)
	})
}
