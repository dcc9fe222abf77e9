package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"collab-project/backend/management-service/models"
	"collab-project/backend/management-service/services"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectHandler struct {
	Service *services.ProjectService
}

func NewProjectHandler(service *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{Service: service}
}

type createProjectRequest struct {
	Name         string     `json:"name"`
	Deadline     *time.Time `json:"deadline"`
	Description  *string    `json:"description"`
	Technologies []string   `json:"technologies"`
	MemberIDs    []string   `json:"memberIds"`
}

type updateProjectRequest struct {
	Name         *string    `json:"name"`
	Deadline     *time.Time `json:"deadline"`
	Description  *string    `json:"description"`
	Technologies *[]string  `json:"technologies"`
}

type addMemberRequest struct {
	CollaboratorID string `json:"collaboratorId"`
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if len(req.Name) < 2 {
		http.Error(w, "Project name must be at least 2 characters", http.StatusBadRequest)
		return
	}

	memberIDs := make([]primitive.ObjectID, 0, len(req.MemberIDs))
	for _, raw := range req.MemberIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			http.Error(w, "Invalid member ID", http.StatusBadRequest)
			return
		}
		memberIDs = append(memberIDs, id)
	}

	project, err := h.Service.CreateProject(r.Context(), services.CreateProjectInput{
		Name:         req.Name,
		Deadline:     req.Deadline,
		Description:  req.Description,
		Technologies: req.Technologies,
		MemberIDs:    memberIDs,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	page, perPage := parsePagination(r)
	q := r.URL.Query().Get("q")

	result, err := h.Service.ListProjects(r.Context(), page, perPage, q)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	project, err := h.Service.GetProject(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	update := models.ProjectUpdate{
		Name:         req.Name,
		Deadline:     req.Deadline,
		Description:  req.Description,
		Technologies: req.Technologies,
	}
	if update.Empty() {
		http.Error(w, "No fields to update", http.StatusBadRequest)
		return
	}
	if update.Name != nil && len(*update.Name) < 2 {
		http.Error(w, "Project name must be at least 2 characters", http.StatusBadRequest)
		return
	}

	project, err := h.Service.UpdateProject(r.Context(), projectID, update)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	collaboratorID, err := primitive.ObjectIDFromHex(req.CollaboratorID)
	if err != nil {
		http.Error(w, "Invalid collaborator ID", http.StatusBadRequest)
		return
	}

	project, err := h.Service.AddMember(r.Context(), projectID, collaboratorID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	collaboratorID, err := primitive.ObjectIDFromHex(mux.Vars(r)["collaboratorId"])
	if err != nil {
		http.Error(w, "Invalid collaborator ID", http.StatusBadRequest)
		return
	}

	project, err := h.Service.RemoveMember(r.Context(), projectID, collaboratorID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) CompleteProject(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.Service.CompleteProject)
}

func (h *ProjectHandler) CancelProject(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.Service.CancelProject)
}

func (h *ProjectHandler) ReopenProject(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.Service.ReopenProject)
}

func (h *ProjectHandler) lifecycle(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id primitive.ObjectID) (*models.ProjectView, error)) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	project, err := op(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.DeleteProject(r.Context(), projectID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)[name])
	if err != nil {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return primitive.NilObjectID, false
	}
	return id, true
}

func parsePagination(r *http.Request) (int64, int64) {
	page := int64(1)
	perPage := int64(10)

	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v >= 1 {
			page = v
		}
	}
	if raw := r.URL.Query().Get("perPage"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v >= 1 {
			if v > 100 {
				v = 100
			}
			perPage = v
		}
	}
	return page, perPage
}
