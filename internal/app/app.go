package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/staybook/staybook-api/internal/config"
	"github.com/staybook/staybook-api/internal/db"
	"github.com/staybook/staybook-api/internal/metrics"
	"github.com/staybook/staybook-api/internal/repository"
	"github.com/staybook/staybook-api/internal/service"
	"github.com/staybook/staybook-api/internal/session"
)

type App struct {
	Cfg         *config.Config
	DB          *sqlx.DB
	Redis       *redis.Client
	Metrics     *metrics.Metrics
	AuthService *service.AuthService
	UserService *service.UserService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	a := &App{
		Cfg:     cfg,
		DB:      database,
		Metrics: metrics.New(),
	}

	// Session revocation: Redis when configured so logouts are shared across
	// instances, otherwise process memory
	var revoker session.Revoker = session.NewMemoryRevoker()
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		client, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		a.Redis = client
		revoker = session.NewRedisRevoker(client)
		slog.Info("session revocation store", "backend", "redis")
	} else {
		slog.Info("session revocation store", "backend", "memory")
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)

	// Services
	googleProvider := service.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.AppURL)
	a.UserService = service.NewUserService(userRepository, a.Metrics)
	a.AuthService = service.NewAuthService(
		userRepository,
		googleProvider,
		revoker,
		a.Metrics,
		cfg.SessionSecret,
		cfg.SessionExpiry,
		cfg.IsProduction(),
	)

	return a, nil
}

func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, db.Close(a.DB))
	}
	return errors.Join(errs...)
}
