package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/airsight/airsight/internal/api/response"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	db        Pinger
}

// NewOpsHandler creates a new OpsHandler. db may be nil when no database
// is wired, in which case readiness only covers the process itself.
func NewOpsHandler(version, buildTime string, db Pinger) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		db:        db,
	}
}

// HealthCheck handles GET /v1/ops/health. Liveness only.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, r, "healthy", map[string]interface{}{
		"version":   h.version,
		"buildTime": h.buildTime,
	})
}

// ReadinessCheck handles GET /v1/ops/ready. Fails when the database is
// unreachable.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			response.ServiceUnavailable(w, r, "not ready", "database is unreachable")
			return
		}
	}
	response.OK(w, r, "ready", nil)
}

// SystemStatus handles GET /v1/ops/status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	dbStatus := "ok"
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			dbStatus = "unreachable"
		}
	}

	response.OK(w, r, "status retrieved", map[string]interface{}{
		"version":   h.version,
		"buildTime": h.buildTime,
		"time":      time.Now().UTC(),
		"subsystems": map[string]string{
			"database": dbStatus,
		},
	})
}
