package models

import "time"

// AttendanceEvent is a single badge swipe recorded at a campus gate.
// The scanner hardware only reports "badge X was seen at gate G at time T";
// direction (entering vs leaving) is inferred downstream.
type AttendanceEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	Gate       int       `json:"gate"`
	IdentityID string    `json:"identity_id"`
	Name       string    `json:"name"`
}
