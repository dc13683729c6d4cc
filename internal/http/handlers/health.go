package handlers

import (
	"net/http"

	"github.com/inhome/registry/internal/registry"
)

// HealthHandler reports service liveness and the current revision count.
type HealthHandler struct {
	service *registry.Service
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service *registry.Service) *HealthHandler {
	return &HealthHandler{service: service}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	revisions, err := h.service.RevisionCount(r.Context())
	if err != nil {
		respondServiceError(w, "health", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"revisions": revisions,
	})
}
