package routes

import (
	"net/http"

	"github.com/staybook/staybook-api/internal/app"
	"github.com/staybook/staybook-api/internal/handler"
	"github.com/staybook/staybook-api/internal/middleware"
	"github.com/staybook/staybook-api/internal/respond"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	registration := handler.NewRegistrationHandler(app.UserService)
	auth := handler.NewAuthHandler(app.AuthService, app.UserService, app.Cfg)
	health := handler.NewHealthHandler(app.DB)

	// Registration and login are rate limited per client IP
	limit := middleware.RateLimit(middleware.NewRateLimiter(app.Cfg.RateLimitRequests, app.Cfg.RateLimitWindow))
	limited := func(h http.HandlerFunc) http.Handler {
		return limit(h)
	}

	mux := http.NewServeMux()

	// ============================================================================
	// REGISTRATION
	// ============================================================================

	mux.Handle("POST /register", limited(registration.Register))
	mux.Handle("POST /check-phone", limited(registration.CheckPhone))
	mux.Handle("POST /signup", limited(registration.Signup))

	// ============================================================================
	// GOOGLE LOGIN
	// ============================================================================

	mux.Handle("GET /auth/google", limited(auth.GoogleAuth))
	mux.Handle("GET /auth/google/callback", limited(auth.GoogleCallback))

	// ============================================================================
	// SESSION API
	// ============================================================================

	mux.HandleFunc("GET /api/current-user", auth.CurrentUser)
	mux.HandleFunc("POST /api/update-phone", middleware.RequireAuth(auth.UpdatePhone))
	mux.HandleFunc("GET /api/logout", auth.Logout)

	// ============================================================================
	// OPERATIONS
	// ============================================================================

	mux.HandleFunc("GET /test-db", health.TestDB)
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.Handle("GET /metrics", app.Metrics.Handler())

	// 404
	mux.HandleFunc("/{path...}", func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusNotFound, "Not Found")
	})

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.RequestLogging,
		middleware.Recover,
		middleware.CORS(app.Cfg.AllowedOrigins()),
		middleware.SessionAuth(app.AuthService),
		middleware.Metrics(app.Metrics), // Must be last: reads the mux's route pattern
	)

	return handler
}
