package services

import (
	"log"
	"sync"
	"time"

	"github.com/facette/natsort"
	"github.com/google/uuid"

	"github.com/facegate/backend/models"
)

// AttendanceTracker records first-seen/last-seen times per identity for the
// current recognition session. It is session-scoped: Reset starts a fresh
// session and discards all records. Durable enrollment data is unaffected.
type AttendanceTracker struct {
	mu             sync.Mutex
	sessionID      string
	startedAt      time.Time
	records        map[string]*models.AttendanceRecord
	absenceTimeout time.Duration
}

// NewAttendanceTracker starts the first session immediately
func NewAttendanceTracker(absenceTimeout time.Duration) *AttendanceTracker {
	t := &AttendanceTracker{absenceTimeout: absenceTimeout}
	t.resetLocked(time.Now())
	return t
}

func (t *AttendanceTracker) resetLocked(now time.Time) {
	t.sessionID = uuid.NewString()
	t.startedAt = now
	t.records = make(map[string]*models.AttendanceRecord)
}

// SessionID identifies the current attendance session
func (t *AttendanceTracker) SessionID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessionID
}

// Record upserts the attendance record for a recognized identity, marking
// it present and advancing last_seen
func (t *AttendanceTracker) Record(name string, seenAt time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ts := seenAt.Unix()
	rec, ok := t.records[name]
	if !ok {
		t.records[name] = &models.AttendanceRecord{
			Name:      name,
			FirstSeen: ts,
			LastSeen:  ts,
			Status:    models.StatusPresent,
		}
		log.Printf("attendance: %q first seen in session %s", name, t.sessionID)
		return
	}
	if ts > rec.LastSeen {
		rec.LastSeen = ts
	}
	rec.Status = models.StatusPresent
}

// Sweep transitions records not seen within the absence timeout to absent.
// It is invoked by the caller on a timer, not owned by the tracker. Returns
// the number of records newly marked absent.
func (t *AttendanceTracker) Sweep(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := now.Add(-t.absenceTimeout).Unix()
	marked := 0
	for _, rec := range t.records {
		if rec.Status == models.StatusPresent && rec.LastSeen < cutoff {
			rec.Status = models.StatusAbsent
			marked++
			log.Printf("attendance: %q marked absent (last seen %s)", rec.Name, time.Unix(rec.LastSeen, 0).Format(time.RFC3339))
		}
	}
	return marked
}

// Export returns a snapshot of all records in the session, ordered by name
func (t *AttendanceTracker) Export() []models.AttendanceRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	names := make([]string, 0, len(t.records))
	for name := range t.records {
		names = append(names, name)
	}
	natsort.Sort(names)

	out := make([]models.AttendanceRecord, 0, len(names))
	for _, name := range names {
		out = append(out, *t.records[name])
	}
	return out
}

// Reset ends the current session and starts a new empty one
func (t *AttendanceTracker) Reset() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	old := t.sessionID
	t.resetLocked(time.Now())
	log.Printf("attendance: session %s closed, started session %s", old, t.sessionID)
	return t.sessionID
}
