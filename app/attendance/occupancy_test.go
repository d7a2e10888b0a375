package attendance

import (
	"testing"
	"time"

	"github.com/jhwlcrzzz/attendance-dashboard/app/models"
)

func swipes(ids ...string) []models.AttendanceEvent {
	base := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)
	events := make([]models.AttendanceEvent, len(ids))
	for i, id := range ids {
		events[i] = models.AttendanceEvent{
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
			Gate:       1,
			IdentityID: id,
			Name:       "Test",
		}
	}
	return events
}

func TestEstimateEmpty(t *testing.T) {
	snap := Estimate(nil)
	if snap.InsideCount != 0 || snap.OutsideCount != 0 || snap.TotalUnique != 0 {
		t.Fatalf("expected zero snapshot, got %+v", snap)
	}
}

func TestEstimateParity(t *testing.T) {
	cases := []struct {
		name    string
		ids     []string
		inside  int
		outside int
		unique  int
	}{
		{"single swipe is inside", []string{"A"}, 1, 0, 1},
		{"two swipes is outside", []string{"A", "A"}, 0, 1, 1},
		{"three swipes is inside", []string{"A", "A", "A"}, 1, 0, 1},
		{"mixed identities", []string{"A", "B", "A", "C", "C"}, 1, 2, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := Estimate(swipes(tc.ids...))
			if snap.InsideCount != tc.inside {
				t.Errorf("inside = %d, want %d", snap.InsideCount, tc.inside)
			}
			if snap.OutsideCount != tc.outside {
				t.Errorf("outside = %d, want %d", snap.OutsideCount, tc.outside)
			}
			if snap.TotalUnique != tc.unique {
				t.Errorf("unique = %d, want %d", snap.TotalUnique, tc.unique)
			}
			if snap.InsideCount+snap.OutsideCount != snap.TotalUnique {
				t.Errorf("inside+outside != unique: %+v", snap)
			}
		})
	}
}

func TestEstimateCountsByIdentity(t *testing.T) {
	snap := Estimate(swipes("A", "B", "A", "A"))
	if snap.CountsByIdentity["A"] != 3 {
		t.Fatalf("expected A count 3, got %d", snap.CountsByIdentity["A"])
	}
	if snap.CountsByIdentity["B"] != 1 {
		t.Fatalf("expected B count 1, got %d", snap.CountsByIdentity["B"])
	}
	if _, ok := snap.CountsByIdentity["C"]; ok {
		t.Fatal("identity with zero swipes must not appear")
	}
}

func TestFilterSince(t *testing.T) {
	events := swipes("A", "B", "C", "D")
	cutoff := events[2].Timestamp

	got := FilterSince(events, cutoff)
	if len(got) != 2 {
		t.Fatalf("expected 2 events at or after cutoff, got %d", len(got))
	}
	for _, e := range got {
		if e.Timestamp.Before(cutoff) {
			t.Fatalf("event before cutoff leaked through: %+v", e)
		}
	}
}
