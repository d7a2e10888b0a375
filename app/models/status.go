package models

import "time"

// CachePhase is the lifecycle phase of the change-driven cache.
type CachePhase string

const (
	PhaseIdle       CachePhase = "idle"
	PhaseChecking   CachePhase = "checking"
	PhaseRefreshing CachePhase = "refreshing"
	PhaseError      CachePhase = "error"
)

// CacheStatus is the externally visible state of the cache, used by the
// dashboard to show staleness ("last updated ...") next to the data.
type CacheStatus struct {
	Phase           CachePhase `json:"phase"`
	LastMarker      time.Time  `json:"last_marker"`
	LastRefresh     time.Time  `json:"last_refresh"`
	LastError       string     `json:"last_error,omitempty"`
	EventCount      int        `json:"event_count"`
	DroppedRows     int        `json:"dropped_rows"`
	EmptyIdentities int        `json:"empty_identities"`
}
