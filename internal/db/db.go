package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func Init(driver, connection string) (*sqlx.DB, error) {
	// SQLite: create data directory if needed
	if driver == "sqlite" {
		path := strings.TrimPrefix(connection, "file:")
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
		if path != "" && path != ":memory:" {
			err := os.MkdirAll(filepath.Dir(path), 0755)
			if err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	db, err := sqlx.Connect(driver, connection)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	// One shared pool for the process; connections are acquired per query.
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	err = db.Ping()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("database connected", "driver", driver)

	return db, nil
}

func Close(db *sqlx.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// Health is the result of a store round trip used by the diagnostics route.
type Health struct {
	Driver    string `json:"driver"`
	Users     int    `json:"users"`
	LatencyMS int64  `json:"latency_ms"`
}

// Check pings the store and counts users.
func Check(ctx context.Context, db *sqlx.DB) (*Health, error) {
	start := time.Now()

	err := db.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	var users int
	err = db.GetContext(ctx, &users, `SELECT COUNT(*) FROM users`)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	return &Health{
		Driver:    db.DriverName(),
		Users:     users,
		LatencyMS: time.Since(start).Milliseconds(),
	}, nil
}
