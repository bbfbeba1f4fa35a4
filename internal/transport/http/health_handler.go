package http

import (
	"net/http"

	"github.com/go-chi/render"

	"enrollscope/internal/services"
)

// HealthHandler serves the readiness endpoint.
type HealthHandler struct {
	health *services.HealthService
}

// NewHealthHandler creates the handler.
func NewHealthHandler(health *services.HealthService) *HealthHandler {
	return &HealthHandler{health: health}
}

// HandleHealthz reports dataset readiness. 503 until the first load lands so
// orchestrators hold traffic back.
func (h *HealthHandler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	status := h.health.Check(r.Context())
	if status.Status != "healthy" {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, status)
}
