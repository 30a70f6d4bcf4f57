package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/staybook/staybook-api/internal/ctxkeys"
	"github.com/staybook/staybook-api/internal/repository"
	"github.com/staybook/staybook-api/internal/respond"
	"github.com/staybook/staybook-api/internal/service"
)

// SessionAuth resolves the session cookie to a user and adds both to the
// context. Requests without a usable session continue anonymously, and a
// stale cookie is cleared.
func SessionAuth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(service.SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := authService.VerifySession(r.Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, service.ErrInvalidSession) {
					// Revocation store unreachable: treat as anonymous but keep the cookie
					slog.Error("failed to verify session", "error", err)
					next.ServeHTTP(w, r)
					return
				}
				authService.ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			user, err := authService.DeserializeUser(r.Context(), sess.UserID)
			if err != nil {
				if !errors.Is(err, repository.ErrUserNotFound) {
					slog.Error("failed to load session user", "error", err, "user_id", sess.UserID)
					next.ServeHTTP(w, r)
					return
				}
				authService.ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			annotateUser(r.Context(), user.ID)

			ctx := ctxkeys.WithUser(r.Context(), user)
			ctx = ctxkeys.WithSession(ctx, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth answers 401 unless SessionAuth resolved a user.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) == nil {
			respond.Error(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next(w, r)
	}
}
