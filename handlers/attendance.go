package handlers

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/facegate/backend/services"
)

type AttendanceHandler struct {
	Tracker *services.AttendanceTracker
	// OnReset is called with the new session ID after a reset; the realtime
	// hub uses it to announce the session change. Optional.
	OnReset func(sessionID string)
}

// ListAttendance returns the current session's records as JSON
func (ah *AttendanceHandler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": ah.Tracker.SessionID(),
		"records":    ah.Tracker.Export(),
	})
}

// ExportAttendance renders the current session's records as CSV
func (ah *AttendanceHandler) ExportAttendance(w http.ResponseWriter, r *http.Request) {
	records := ah.Tracker.Export()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=attendance-%s.csv", time.Now().Format("2006-01-02")))

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"name", "status", "first_seen", "last_seen"}); err != nil {
		log.Printf("Error writing CSV header: %v", err)
		return
	}
	for _, rec := range records {
		row := []string{
			rec.Name,
			string(rec.Status),
			time.Unix(rec.FirstSeen, 0).UTC().Format(time.RFC3339),
			time.Unix(rec.LastSeen, 0).UTC().Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			log.Printf("Error writing CSV row for %q: %v", rec.Name, err)
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Printf("Error flushing CSV export: %v", err)
	}
}

// ResetSession ends the current attendance session and starts a new one
func (ah *AttendanceHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := ah.Tracker.Reset()
	if ah.OnReset != nil {
		ah.OnReset(sessionID)
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":    "Attendance session reset",
		"session_id": sessionID,
	})
}
