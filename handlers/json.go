package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/facegate/backend/models"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Error encoding JSON response: %v", err)
		}
	}
}

// writeEngineError maps the engine error taxonomy onto HTTP statuses. Every
// engine error is recoverable at the request boundary; the store is never
// left modified by a failed request.
func writeEngineError(w http.ResponseWriter, err error) {
	var dup *models.DuplicatePersonError
	var quality *models.QualityError

	switch {
	case errors.Is(err, models.ErrInvalidFrame):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.As(err, &dup):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":         err.Error(),
			"existing_name": dup.ExistingName,
		})
	case errors.Is(err, models.ErrDuplicateName):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, models.ErrNoFaceDetected),
		errors.Is(err, models.ErrMultipleFacesDetected),
		errors.Is(err, models.ErrDegenerateFace),
		errors.As(err, &quality):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		log.Printf("Internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
}
