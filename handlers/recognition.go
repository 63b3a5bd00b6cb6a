package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/facegate/backend/services"
	"github.com/facegate/backend/vision"
)

type RecognitionHandler struct {
	Service *services.RecognitionService
}

type frameRequest struct {
	Image string `json:"image"`
}

func decodeFrameRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req frameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return "", false
	}
	if req.Image == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No image data provided"})
		return "", false
	}
	return req.Image, true
}

// DetectFaces is the lightweight live-overlay endpoint: bounding boxes plus
// the duplicate pre-check, no attendance recording
func (rh *RecognitionHandler) DetectFaces(w http.ResponseWriter, r *http.Request) {
	encoded, ok := decodeFrameRequest(w, r)
	if !ok {
		return
	}

	frame, err := vision.DecodeFrame(encoded)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	results, err := rh.Service.DetectPreview(frame)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"faces": results})
}

// Recognize classifies every face in the frame against the enrolled
// identities and records attendance for matches
func (rh *RecognitionHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	encoded, ok := decodeFrameRequest(w, r)
	if !ok {
		return
	}

	frame, err := vision.DecodeFrame(encoded)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	results, err := rh.Service.Recognize(frame, time.Now())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"faces": results})
}
