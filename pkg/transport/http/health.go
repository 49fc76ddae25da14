package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/nordweb/portal/pkg/transport"
)

// HealthChecker reports whether a dependency can serve requests.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// readyTimeout bounds a single readiness probe.
const readyTimeout = 2 * time.Second

type healthStatus struct {
	Status string `json:"status"`
}

// handleHealthz reports that the process is up.
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, healthStatus{Status: "ok"})
}

// readyHandler reports whether the store answers.
func readyHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker == nil {
			transport.WriteJSON(w, http.StatusOK, healthStatus{Status: "ok"})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := checker.HealthCheck(ctx); err != nil {
			slog.Warn("readiness check failed", "error", err)
			transport.WriteJSON(w, http.StatusServiceUnavailable, healthStatus{Status: "unavailable"})
			return
		}
		transport.WriteJSON(w, http.StatusOK, healthStatus{Status: "ok"})
	}
}
