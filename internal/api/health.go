package api

import (
	"net/http"
	"time"

	respond "github.com/q-pitt/Medilense-3bros/internal/api/respond"
)

// HealthHandler handles GET /api/health.
type HealthHandler struct {
	isHealthy  func() bool
	components func() map[string]bool
}

// NewHealthHandler creates a health handler. components may be nil.
func NewHealthHandler(isHealthy func() bool, components func() map[string]bool) *HealthHandler {
	if isHealthy == nil {
		isHealthy = func() bool { return true }
	}
	return &HealthHandler{isHealthy: isHealthy, components: components}
}

// CheckHealth always returns 200; the body reports healthy/unhealthy.
// 500 indicates handler failure only.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "unhealthy"
	if h.isHealthy() {
		status = "healthy"
	}
	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if h.components != nil {
		response["components"] = h.components()
	}
	respond.WriteJSON(w, http.StatusOK, response)
}
