package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"github.com/staybook/staybook-api/internal/ctxkeys"
)

const RequestIDHeader = "X-Request-ID"

// Incoming ids from a proxy are trusted only when they look like ids.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID tags every request with an id, reusing the caller's
// X-Request-ID when it is well formed, and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !validRequestID.MatchString(id) {
			id = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctxkeys.WithRequestID(r.Context(), id)))
	})
}
