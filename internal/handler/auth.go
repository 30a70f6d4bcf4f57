package handler

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/staybook/staybook-api/internal/config"
	"github.com/staybook/staybook-api/internal/ctxkeys"
	"github.com/staybook/staybook-api/internal/respond"
	"github.com/staybook/staybook-api/internal/service"
	"github.com/staybook/staybook-api/internal/validation"
)

const oauthStateCookie = "oauth_state"

// Login markers appended to the client redirect after the Google callback
const (
	loginSuccess = "success"
	loginPending = "pending"
	loginFailed  = "failed"
)

type authHandler struct {
	authService  *service.AuthService
	userService  *service.UserService
	redirectURL  string
	isProduction bool
}

func NewAuthHandler(authService *service.AuthService, userService *service.UserService, cfg *config.Config) *authHandler {
	return &authHandler{
		authService:  authService,
		userService:  userService,
		redirectURL:  cfg.ClientRedirectURL(),
		isProduction: cfg.IsProduction(),
	}
}

// GoogleAuth redirects user to Google OAuth consent screen
func (h *authHandler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	if !h.authService.GoogleConfigured() {
		writeError(w, r, service.ErrProviderNotConfigured)
		return
	}

	state, err := generateOAuthState()
	if err != nil {
		writeError(w, r, err)
		return
	}

	authURL, err := h.authService.GoogleAuthURL(state)
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // 10 minutes
	})

	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// GoogleCallback handles the OAuth callback from Google. Every outcome the
// user can act on ends in a redirect to the client with a login marker;
// only internal failures answer 500.
func (h *authHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if !h.authService.GoogleConfigured() {
		writeError(w, r, service.ErrProviderNotConfigured)
		return
	}

	query := r.URL.Query()
	state := query.Get("state")
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || cookie.Value != state {
		slog.Warn("google oauth state validation failed", "error", err)
		h.redirectToClient(w, r, loginFailed, "state")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:   oauthStateCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if providerErr := query.Get("error"); providerErr != "" {
		slog.Info("google oauth declined", "error", providerErr)
		h.redirectToClient(w, r, loginFailed, "denied")
		return
	}

	code := query.Get("code")
	if code == "" {
		slog.Warn("google oauth callback missing code")
		h.redirectToClient(w, r, loginFailed, "provider")
		return
	}

	user, err := h.authService.LoginWithGoogle(r.Context(), code)
	switch {
	case errors.Is(err, service.ErrProviderExchange), errors.Is(err, service.ErrInvalidIdentity):
		slog.Warn("google oauth exchange failed", "error", err)
		h.redirectToClient(w, r, loginFailed, "provider")
		return
	case errors.Is(err, service.ErrEmailAlreadyRegistered):
		slog.Warn("google oauth email belongs to another account")
		h.redirectToClient(w, r, loginFailed, "email_in_use")
		return
	case err != nil:
		writeError(w, r, err)
		return
	}

	token, expiresAt, err := h.authService.GenerateSession(user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.authService.SetSessionCookie(w, token, expiresAt)

	slog.Info("user logged in with google oauth", "user_id", user.ID, "pending", user.IsPending(), "has_phone", user.HasPhone())

	if user.IsPending() {
		h.redirectToClient(w, r, loginPending, "")
		return
	}
	h.redirectToClient(w, r, loginSuccess, "")
}

func (h *authHandler) redirectToClient(w http.ResponseWriter, r *http.Request, marker, reason string) {
	u, err := url.Parse(h.redirectURL)
	if err != nil {
		writeError(w, r, fmt.Errorf("invalid client redirect url: %w", err))
		return
	}

	q := u.Query()
	q.Set("login", marker)
	if reason != "" {
		q.Set("reason", reason)
	}
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusFound)
}

type currentUserResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          *UserResponse `json:"user,omitempty"`
}

// CurrentUser reports who the session cookie belongs to.
func (h *authHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	if user == nil {
		respond.JSON(w, http.StatusOK, currentUserResponse{Authenticated: false})
		return
	}

	respond.JSON(w, http.StatusOK, currentUserResponse{
		Authenticated: true,
		User:          newUserResponse(user),
	})
}

// UpdatePhone attaches a phone number to the logged-in user, completing a
// pending Google account.
func (h *authHandler) UpdatePhone(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req phoneRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	form := phoneForm{Phone: req.phone()}
	err = validation.Struct(form)
	if err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.userService.BackfillPhone(r.Context(), user.ID, form.Phone)
	if isNotFound(err) {
		// Account removed while the session was live
		h.authService.ClearSessionCookie(w)
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, userEnvelope{
		Message: "Phone number updated",
		User:    newUserResponse(updated),
	})
}

// Logout ends the session. Calling it without a session still succeeds.
func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := ctxkeys.Session(r.Context())
	if sess == nil {
		h.authService.ClearSessionCookie(w)
		respond.JSON(w, http.StatusOK, map[string]any{"success": true, "message": "Not logged in"})
		return
	}

	err := h.authService.RevokeSession(r.Context(), sess)
	if err != nil {
		slog.Error("failed to revoke session", "error", err, "session_id", sess.ID)
		respond.Error(w, http.StatusInternalServerError, "Error during logout")
		return
	}

	h.authService.ClearSessionCookie(w)
	slog.Info("user logged out", "user_id", sess.UserID)
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out successfully"})
}

// generateOAuthState creates a random state token for OAuth CSRF protection
func generateOAuthState() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
