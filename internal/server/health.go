package server

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// HealthCheck is the status of one backend dependency.
type HealthCheck struct {
	Status string `json:"status"`
}

// HealthResponse maps dependency names to their check results.
type HealthResponse map[string]HealthCheck

func handleHealth(logger *slog.Logger, db *sql.DB, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := HealthResponse{
			"sqlite": {Status: "ok"},
			"redis":  {Status: "ok"},
		}
		status := http.StatusOK

		if err := db.PingContext(ctx); err != nil {
			logger.Error("health check failed", "name", "sqlite", "error", err)
			checks["sqlite"] = HealthCheck{Status: "error"}
			status = http.StatusServiceUnavailable
		}

		if rdb == nil {
			checks["redis"] = HealthCheck{Status: "disabled"}
		} else if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("health check failed", "name", "redis", "error", err)
			checks["redis"] = HealthCheck{Status: "error"}
			status = http.StatusServiceUnavailable
		}

		writeJSON(w, status, checks)
	}
}
