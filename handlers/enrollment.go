package handlers

import (
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"strings"

	"github.com/facegate/backend/services"
	"github.com/facegate/backend/vision"
)

type EnrollmentHandler struct {
	Service *services.EnrollmentService
}

// RegisterIdentity accepts a name plus the full set of enrollment frames
// (base64 data URLs) and runs the whole multi-shot registration
func (eh *EnrollmentHandler) RegisterIdentity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string   `json:"name"`
		Images []string `json:"images"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required field: name"})
		return
	}
	required := eh.Service.RequiredShots()
	if len(req.Images) != required {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("Exactly %d images are required, got %d", required, len(req.Images)),
		})
		return
	}

	frames := make([]image.Image, 0, required)
	for i, encoded := range req.Images {
		frame, err := vision.DecodeFrame(encoded)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("Invalid image format in photo %d", i+1),
			})
			return
		}
		frames = append(frames, frame)
	}

	identity, err := eh.Service.Register(req.Name, frames)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    fmt.Sprintf("Identity %q registered with %d photo(s)", identity.Name, len(identity.Signatures)),
		"name":       identity.Name,
		"created_at": identity.CreatedAt,
	})
}
