package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"collab-project/backend/management-service/logging"
	"collab-project/backend/management-service/models"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps the service error taxonomy onto HTTP statuses. Business
// outcomes stay 4xx; anything unrecognized is a persistence-grade failure and
// is logged before the 500 goes out.
func writeError(w http.ResponseWriter, err error) {
	var compositionErr *models.CompositionError
	var transitionErr *models.TransitionError

	switch {
	case errors.As(err, &compositionErr):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"message": compositionErr.Error(),
			"missing": compositionErr.Missing,
		})
	case errors.As(err, &transitionErr):
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"message":   transitionErr.Error(),
			"status":    transitionErr.Status,
			"operation": transitionErr.Operation,
		})
	case errors.Is(err, models.ErrProjectNotFound), errors.Is(err, models.ErrCollaboratorNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"message": err.Error()})
	case errors.Is(err, models.ErrEmailInUse):
		writeJSON(w, http.StatusConflict, map[string]string{"message": err.Error()})
	case errors.Is(err, models.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": err.Error()})
	default:
		logging.Logger.Errorf("Event ID: INTERNAL_ERROR, Description: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
	}
}
