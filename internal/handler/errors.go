package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/staybook/staybook-api/internal/ctxkeys"
	"github.com/staybook/staybook-api/internal/repository"
	"github.com/staybook/staybook-api/internal/respond"
	"github.com/staybook/staybook-api/internal/service"
	"github.com/staybook/staybook-api/internal/validation"
)

// writeError maps workflow errors to responses. Anything unrecognized is
// logged in full and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fe *validation.FieldError
	switch {
	case errors.As(err, &fe):
		respond.FieldError(w, fe.Field, fe.Message)
	case errors.Is(err, service.ErrPhoneNotRegistered):
		respond.Error(w, http.StatusNotFound, "Phone number not registered. Please verify phone number first.")
	case errors.Is(err, service.ErrPhoneAlreadyRegistered):
		respond.Error(w, http.StatusConflict, "Phone number already registered")
	case errors.Is(err, service.ErrPhoneTaken):
		respond.Error(w, http.StatusConflict, "Phone number is already linked to another account")
	case errors.Is(err, service.ErrEmailAlreadyRegistered):
		respond.Error(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, service.ErrProviderNotConfigured):
		respond.Error(w, http.StatusServiceUnavailable, "Google authentication is not configured")
	default:
		slog.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", ctxkeys.RequestID(r.Context()),
		)
		respond.Internal(w)
	}
}

// isNotFound reports whether err means the addressed user does not exist.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrUserNotFound)
}
