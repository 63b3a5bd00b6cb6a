package handlers

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/facegate/backend/services"
)

func TestListAttendance(t *testing.T) {
	tracker := services.NewAttendanceTracker(30 * time.Second)
	tracker.Record("Alice", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	handler := &AttendanceHandler{Tracker: tracker}

	rec := httptest.NewRecorder()
	handler.ListAttendance(rec, httptest.NewRequest(http.MethodGet, "/api/attendance", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	var body struct {
		SessionID string `json:"session_id"`
		Records   []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"records"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body.SessionID != tracker.SessionID() {
		t.Errorf("session_id = %q; want %q", body.SessionID, tracker.SessionID())
	}
	if len(body.Records) != 1 || body.Records[0].Name != "Alice" || body.Records[0].Status != "present" {
		t.Errorf("records = %+v; want one present record for Alice", body.Records)
	}
}

func TestExportAttendanceCSV(t *testing.T) {
	tracker := services.NewAttendanceTracker(30 * time.Second)
	seenAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tracker.Record("Alice", seenAt)
	tracker.Record("Bob", seenAt.Add(5*time.Second))
	handler := &AttendanceHandler{Tracker: tracker}

	rec := httptest.NewRecorder()
	handler.ExportAttendance(rec, httptest.NewRequest(http.MethodGet, "/api/attendance/export", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q; want text/csv", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q; want an attachment", cd)
	}

	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("response is not CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d CSV rows; want header plus 2 records", len(rows))
	}
	wantHeader := []string{"name", "status", "first_seen", "last_seen"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Fatalf("CSV header = %v; want %v", rows[0], wantHeader)
		}
	}
	if rows[1][0] != "Alice" || rows[1][1] != "present" {
		t.Errorf("first record = %v; want Alice present", rows[1])
	}
	if rows[1][2] != seenAt.Format(time.RFC3339) {
		t.Errorf("first_seen = %q; want %q", rows[1][2], seenAt.Format(time.RFC3339))
	}
}

func TestResetSession(t *testing.T) {
	tracker := services.NewAttendanceTracker(30 * time.Second)
	tracker.Record("Alice", time.Now())
	oldID := tracker.SessionID()

	var announced string
	handler := &AttendanceHandler{
		Tracker: tracker,
		OnReset: func(sessionID string) { announced = sessionID },
	}

	rec := httptest.NewRecorder()
	handler.ResetSession(rec, httptest.NewRequest(http.MethodPost, "/api/attendance/reset", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body["session_id"] == oldID || body["session_id"] == "" {
		t.Errorf("session_id = %q; want a fresh id", body["session_id"])
	}
	if announced != body["session_id"] {
		t.Errorf("OnReset announced %q; want %q", announced, body["session_id"])
	}
	if records := tracker.Export(); len(records) != 0 {
		t.Errorf("records survived reset: %+v", records)
	}
}
