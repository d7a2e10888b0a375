package attendance

import (
	"time"

	"github.com/jhwlcrzzz/attendance-dashboard/app/models"
)

// Estimate derives an occupancy snapshot from a batch of events: each swipe
// toggles an identity's presence, so an odd swipe count means inside and an
// even nonzero count means outside.
//
// Known limitation: the gates report no direction, so one missed scan
// desynchronizes the toggle for that identity until another scan is missed.
// This is inherent to direction-free inference and deliberately not patched
// over.
func Estimate(events []models.AttendanceEvent) models.OccupancySnapshot {
	counts := make(map[string]int, len(events))
	for _, e := range events {
		counts[e.IdentityID]++
	}

	snap := models.OccupancySnapshot{CountsByIdentity: counts, TotalUnique: len(counts)}
	for _, n := range counts {
		if n%2 == 1 {
			snap.InsideCount++
		} else {
			snap.OutsideCount++
		}
	}
	return snap
}

// FilterSince returns the events at or after cutoff. Window selection is the
// caller's responsibility; Estimate itself never scopes its input.
func FilterSince(events []models.AttendanceEvent, cutoff time.Time) []models.AttendanceEvent {
	out := make([]models.AttendanceEvent, 0, len(events))
	for _, e := range events {
		if !e.Timestamp.Before(cutoff) {
			out = append(out, e)
		}
	}
	return out
}
