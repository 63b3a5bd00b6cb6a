package models

// AttendanceStatus is the derived present/absent state of an identity
// within the current recognition session
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
)

// AttendanceRecord tracks when an identity was first and last recognized in
// the current session. It is session-scoped and never persisted; durable
// enrollment data lives in the identity store.
type AttendanceRecord struct {
	Name      string           `json:"name"`
	FirstSeen int64            `json:"first_seen"` // Unix timestamp
	LastSeen  int64            `json:"last_seen"`  // Unix timestamp
	Status    AttendanceStatus `json:"status"`
}
