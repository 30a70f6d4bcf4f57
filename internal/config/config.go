package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Client redirect targets (SPA frontends)
	ClientURL     string
	ProductionURL string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Session
	SessionSecret string
	SessionExpiry time.Duration
	RedisURL      string // Optional: shared session revocation store

	// OAuth
	GoogleClientID     string
	GoogleClientSecret string

	// Rate limiting for registration and auth endpoints
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Observability (optional)
	SentryDSN string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	driver, connection := databaseSettings()

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "Staybook"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:  envString("APP_URL", "http://localhost:5000"),
		Port:    envString("PORT", "5000"),

		// Clients
		ClientURL:     strings.TrimRight(envString("CLIENT_URL", ""), "/"),
		ProductionURL: strings.TrimRight(envString("PRODUCTION_URL", ""), "/"),

		// Database
		DBDriver:     driver,
		DBConnection: connection,

		// Session
		SessionSecret: envRequired("SESSION_SECRET"),
		SessionExpiry: envDuration("SESSION_EXPIRY", 24*time.Hour),
		RedisURL:      envString("REDIS_URL", ""),

		// OAuth (optional, Google login answers 503 when missing)
		GoogleClientID:     envString("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: envString("GOOGLE_CLIENT_SECRET", ""),

		// Rate limiting
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 20),
		RateLimitWindow:   envDuration("RATE_LIMIT_WINDOW", 15*time.Minute),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),
	}

	cfg.logStatus()

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// LoadDatabase reads only the database settings, for tools that touch the
// schema without running the server.
func LoadDatabase() (driver, connection string) {
	_ = godotenv.Load()
	return databaseSettings()
}

// databaseSettings prefers DB_DRIVER/DB_CONNECTION and falls back to a
// DATABASE_URL (hosted Postgres) before defaulting to a local SQLite file.
func databaseSettings() (string, string) {
	if conn := os.Getenv("DB_CONNECTION"); conn != "" {
		return envString("DB_DRIVER", "sqlite"), conn
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return envString("DB_DRIVER", "pgx"), url
	}
	return envString("DB_DRIVER", "sqlite"), "./data/staybook.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

// validateProduction ensures deployments do not run with development defaults.
func validateProduction(cfg *Config) {
	if len(cfg.SessionSecret) < 32 {
		slog.Error("production deployment requires SESSION_SECRET of at least 32 characters")
		os.Exit(1)
	}
	if cfg.ProductionURL == "" && cfg.ClientURL == "" {
		slog.Error("production deployment requires PRODUCTION_URL or CLIENT_URL",
			"hint", "the Google callback redirects the browser there")
		os.Exit(1)
	}
}

// logStatus reports which optional settings are present without exposing values.
func (c *Config) logStatus() {
	slog.Info("environment status",
		"app_env", c.AppEnv,
		"db_driver", c.DBDriver,
		"client_url", isSet(c.ClientURL),
		"production_url", isSet(c.ProductionURL),
		"google_client_id", isSet(c.GoogleClientID),
		"google_client_secret", isSet(c.GoogleClientSecret),
		"redis_url", isSet(c.RedisURL),
		"sentry_dsn", isSet(c.SentryDSN),
	)
	if !c.GoogleConfigured() {
		slog.Warn("google oauth is not configured",
			"hint", "set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET to enable /auth/google")
	}
}

func isSet(v string) string {
	if v == "" {
		return "not set"
	}
	return "set"
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GoogleConfigured reports whether both Google client credentials are present.
func (c *Config) GoogleConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// ClientRedirectURL is where the browser lands after the Google callback.
// Production uses PRODUCTION_URL, everything else CLIENT_URL; APP_URL is the
// last resort so a redirect always has a target.
func (c *Config) ClientRedirectURL() string {
	if c.IsProduction() && c.ProductionURL != "" {
		return c.ProductionURL
	}
	if c.ClientURL != "" {
		return c.ClientURL
	}
	if c.ProductionURL != "" {
		return c.ProductionURL
	}
	return strings.TrimRight(c.AppURL, "/")
}

// AllowedOrigins lists the browser origins allowed to call the API with credentials.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range []string{c.ClientURL, c.ProductionURL} {
		if o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 && c.IsDevelopment() {
		origins = append(origins, "http://localhost:3000", "http://localhost:5173")
	}
	return origins
}
