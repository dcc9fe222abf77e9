package handlers

import (
	"encoding/json"
	"net/http"

	"collab-project/backend/management-service/middleware"
	"collab-project/backend/management-service/models"
	"collab-project/backend/management-service/services"
	"collab-project/backend/management-service/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CollaboratorHandler struct {
	Service *services.CollaboratorService
}

func NewCollaboratorHandler(service *services.CollaboratorService) *CollaboratorHandler {
	return &CollaboratorHandler{Service: service}
}

type createCollaboratorRequest struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Age       *int     `json:"age"`
	Regime    *string  `json:"regime"`
	Role      string   `json:"role"`
	AreaNames []string `json:"areaNames"`
}

type updateCollaboratorRequest struct {
	Name      *string   `json:"name"`
	Email     *string   `json:"email"`
	Password  *string   `json:"password"`
	Age       *int      `json:"age"`
	Regime    *string   `json:"regime"`
	Role      *string   `json:"role"`
	AreaNames *[]string `json:"areaNames"`
}

func (h *CollaboratorHandler) ListCollaborators(w http.ResponseWriter, r *http.Request) {
	page, perPage := parsePagination(r)
	q := r.URL.Query().Get("q")

	result, err := h.Service.List(r.Context(), middleware.ViewerRole(r.Context()), page, perPage, q)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *CollaboratorHandler) GetCollaborator(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid collaborator ID", http.StatusBadRequest)
		return
	}

	collaborator, err := h.Service.Get(r.Context(), middleware.ViewerRole(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, collaborator)
}

func (h *CollaboratorHandler) CreateCollaborator(w http.ResponseWriter, r *http.Request) {
	var req createCollaboratorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" {
		http.Error(w, "Name and email are required", http.StatusBadRequest)
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	role := models.RoleNormal
	if req.Role != "" {
		parsed, err := models.ParseRole(req.Role)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		role = parsed
	}

	areas, ok := parseAreaNames(w, req.AreaNames)
	if !ok {
		return
	}

	collaborator, err := h.Service.Create(r.Context(), services.CreateCollaboratorInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
		Regime:   req.Regime,
		Role:     role,
		Areas:    areas,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, collaborator)
}

func (h *CollaboratorHandler) UpdateCollaborator(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid collaborator ID", http.StatusBadRequest)
		return
	}

	var req updateCollaboratorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	input := services.UpdateCollaboratorInput{
		Name:   req.Name,
		Email:  req.Email,
		Age:    req.Age,
		Regime: req.Regime,
	}
	if req.Password != nil {
		if err := utils.ValidatePassword(*req.Password); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		input.Password = req.Password
	}
	if req.Role != nil {
		role, err := models.ParseRole(*req.Role)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		input.Role = &role
	}
	if req.AreaNames != nil {
		areas, ok := parseAreaNames(w, *req.AreaNames)
		if !ok {
			return
		}
		input.Areas = &areas
	}

	collaborator, err := h.Service.Update(r.Context(), id, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, collaborator)
}

func (h *CollaboratorHandler) DeleteCollaborator(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid collaborator ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseAreaNames(w http.ResponseWriter, raw []string) ([]models.AreaName, bool) {
	areas := make([]models.AreaName, 0, len(raw))
	for _, name := range raw {
		area, err := models.ParseAreaName(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return nil, false
		}
		areas = append(areas, area)
	}
	return areas, true
}
