package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/code-journal/internal/domain"
)

// HealthHandler reports service liveness and storage reachability.
type HealthHandler struct {
	users domain.UserRepository
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(users domain.UserRepository) *HealthHandler {
	return &HealthHandler{users: users}
}

// HandleHealth reads the master index to prove the storage backend is
// reachable.
// GET /healthz
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	index, err := h.users.Index(r.Context())
	if err != nil {
		slog.Error("health check", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":  "unhealthy",
			"storage": "unreachable",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"storage": "ok",
		"users":   len(index.Users),
	})
}
