package handlers

import (
	"net/http"

	"collab-project/backend/management-service/services"
)

type AreaHandler struct {
	Service *services.AreaService
}

func NewAreaHandler(service *services.AreaService) *AreaHandler {
	return &AreaHandler{Service: service}
}

func (h *AreaHandler) ListAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	// The area set is fixed, so clients may cache it briefly.
	w.Header().Set("Cache-Control", "public, max-age=60")
	writeJSON(w, http.StatusOK, areas)
}
