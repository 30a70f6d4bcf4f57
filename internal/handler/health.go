package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/staybook/staybook-api/internal/db"
	"github.com/staybook/staybook-api/internal/respond"
)

type healthHandler struct {
	db *sqlx.DB
}

func NewHealthHandler(database *sqlx.DB) *healthHandler {
	return &healthHandler{db: database}
}

// TestDB runs a round trip against the store and reports the user count.
func (h *healthHandler) TestDB(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health, err := db.Check(ctx, h.db)
	if err != nil {
		slog.Error("database check failed", "error", err)
		respond.JSON(w, http.StatusInternalServerError, map[string]string{
			"message": "DB test failed",
			"error":   "Internal Server Error",
		})
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"message":    "DB working",
		"driver":     health.Driver,
		"users":      health.Users,
		"latency_ms": health.LatencyMS,
	})
}

// Healthz is a liveness probe that never touches the store.
func (h *healthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
