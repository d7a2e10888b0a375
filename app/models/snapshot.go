package models

// OccupancySnapshot aggregates per-identity swipe counts into inside/outside
// totals. An identity with an odd number of swipes is considered inside
// campus, an even (nonzero) number outside. Identities with no swipes in the
// window do not appear at all.
type OccupancySnapshot struct {
	CountsByIdentity map[string]int `json:"counts_by_identity"`
	InsideCount      int            `json:"inside_count"`
	OutsideCount     int            `json:"outside_count"`
	TotalUnique      int            `json:"total_unique"`
}
