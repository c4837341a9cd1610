package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/lostfound-api/internal/platform/logger"
	"github.com/phrazzld/lostfound-api/internal/redact"
)

// healthTimeout bounds the database ping of a health check.
const healthTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler returns a handler that answers 200 "OK" when the database
// responds to a ping and 503 otherwise.
func HealthHandler(db Pinger, base *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := db.PingContext(ctx); err != nil {
			logger.FromContextOrDefault(r.Context(), base).Error("health check failed",
				slog.String("error", redact.Error(err)))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("Service Unavailable"))
			return
		}

		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.FromContextOrDefault(r.Context(), base).Error("failed to write health check response",
				slog.String("error", err.Error()))
		}
	}
}
