package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/staybook/staybook-api/internal/metrics"
	"github.com/staybook/staybook-api/internal/model"
	"github.com/staybook/staybook-api/internal/repository"
	"github.com/staybook/staybook-api/internal/session"
	"github.com/staybook/staybook-api/internal/validation"
)

const SessionCookieName = "auth_token"

var (
	ErrProviderNotConfigured = errors.New("identity provider is not configured")
	ErrProviderExchange      = errors.New("identity provider exchange failed")
	ErrInvalidIdentity       = errors.New("identity provider returned no user id")
	ErrInvalidSession        = errors.New("invalid session")
)

type AuthService struct {
	userRepository repository.UserRepository
	provider       IdentityProvider
	revoker        session.Revoker
	metrics        *metrics.Metrics
	sessionSecret  string
	sessionExpiry  time.Duration
	isProduction   bool
	now            func() time.Time
}

func NewAuthService(
	userRepository repository.UserRepository,
	provider IdentityProvider,
	revoker session.Revoker,
	m *metrics.Metrics,
	sessionSecret string,
	sessionExpiry time.Duration,
	isProduction bool,
) *AuthService {
	return &AuthService{
		userRepository: userRepository,
		provider:       provider,
		revoker:        revoker,
		metrics:        m,
		sessionSecret:  sessionSecret,
		sessionExpiry:  sessionExpiry,
		isProduction:   isProduction,
		now:            time.Now,
	}
}

// SerializeUser returns the durable value stored in a session for the user.
func SerializeUser(user *model.User) string {
	return user.ID
}

// DeserializeUser loads the user a session refers to, or
// repository.ErrUserNotFound if it no longer exists.
func (s *AuthService) DeserializeUser(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, repository.ErrUserNotFound
	}
	return s.userRepository.ByID(ctx, id)
}

// GoogleConfigured reports whether Google login can be attempted at all.
func (s *AuthService) GoogleConfigured() bool {
	return s.provider != nil && s.provider.Configured()
}

// GoogleAuthURL returns the consent screen URL carrying the CSRF state.
func (s *AuthService) GoogleAuthURL(state string) (string, error) {
	if !s.GoogleConfigured() {
		return "", ErrProviderNotConfigured
	}
	return s.provider.AuthCodeURL(state), nil
}

// LoginWithGoogle exchanges the callback code and signs the user in,
// creating a pending account on first login.
func (s *AuthService) LoginWithGoogle(ctx context.Context, code string) (*model.User, error) {
	if !s.GoogleConfigured() {
		return nil, ErrProviderNotConfigured
	}

	identity, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderExchange, err)
	}

	return s.AuthenticateExternal(ctx, identity)
}

// AuthenticateExternal finds the user linked to the external identity or
// creates one. A returning user is handed back unchanged. A new user has no
// phone number and starts pending until BackfillPhone supplies one.
func (s *AuthService) AuthenticateExternal(ctx context.Context, identity *model.ExternalIdentity) (*model.User, error) {
	if identity == nil || strings.TrimSpace(identity.Subject) == "" {
		return nil, ErrInvalidIdentity
	}

	user, err := s.userRepository.ByGoogleID(ctx, identity.Subject)
	if err == nil {
		slog.Info("user authenticated via oauth", "user_id", user.ID, "provider", identity.Provider)
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to lookup user: %w", err)
	}

	user = &model.User{
		ID:                uuid.New().String(),
		Email:             optional(validation.NormalizeEmail(identity.Email)),
		FirstName:         optional(validation.NormalizeName(identity.GivenName)),
		LastName:          optional(validation.NormalizeName(identity.FamilyName)),
		GoogleID:          &identity.Subject,
		ProfilePicture:    optional(strings.TrimSpace(identity.Picture)),
		GoogleAuthPending: true,
		CreatedAt:         s.now().UTC(),
	}

	err = s.userRepository.Create(ctx, user)
	switch {
	case errors.Is(err, repository.ErrDuplicateGoogleID):
		// A concurrent callback for the same account won the insert
		existing, lookupErr := s.userRepository.ByGoogleID(ctx, identity.Subject)
		if lookupErr != nil {
			return nil, fmt.Errorf("failed to load existing user: %w", lookupErr)
		}
		return existing, nil
	case errors.Is(err, repository.ErrDuplicateEmail):
		s.metrics.Conflict("email")
		return nil, ErrEmailAlreadyRegistered
	case err != nil:
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.Registered(metrics.MethodGoogle)
	slog.Info("new oauth user created", "user_id", user.ID, "provider", identity.Provider)
	return user, nil
}

// GenerateSession issues a signed session token for the user.
func (s *AuthService) GenerateSession(user *model.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.sessionExpiry)

	claims := jwt.MapClaims{
		"user_id": SerializeUser(user),
		"sid":     uuid.New().String(),
		"exp":     expiresAt.Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.sessionSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// VerifySession checks signature, expiry and revocation.
func (s *AuthService) VerifySession(ctx context.Context, tokenString string) (*model.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.sessionSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSession
	}

	userID, _ := claims["user_id"].(string)
	sessionID, _ := claims["sid"].(string)
	if userID == "" || sessionID == "" {
		return nil, ErrInvalidSession
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidSession
	}

	revoked, err := s.revoker.IsRevoked(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if revoked {
		return nil, ErrInvalidSession
	}

	return &model.Session{ID: sessionID, UserID: userID, ExpiresAt: exp.Time}, nil
}

// RevokeSession ends a session so its token is refused until it expires.
func (s *AuthService) RevokeSession(ctx context.Context, sess *model.Session) error {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.revoker.Revoke(ctx, sess.ID, ttl)
}

func (s *AuthService) SetSessionCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, s.sessionCookie(token, expiry))
}

func (s *AuthService) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, s.sessionCookie("", time.Unix(0, 0)))
}

// sessionCookie is cross-site in production (the SPA and API live on
// different hosts) and Lax elsewhere.
func (s *AuthService) sessionCookie(value string, expiry time.Time) *http.Cookie {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Expires:  expiry,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	}
	if s.isProduction {
		cookie.SameSite = http.SameSiteNoneMode
	}
	if value == "" {
		cookie.MaxAge = -1
	}
	return cookie
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
