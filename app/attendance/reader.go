package attendance

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/jhwlcrzzz/attendance-dashboard/app/models"
	"github.com/jhwlcrzzz/attendance-dashboard/app/sheets"
)

// RequiredColumns are the worksheet columns the attendance log must carry.
// A sheet missing any of them is unusable as a whole, not partially usable.
var RequiredColumns = []string{"Timestamp", "Gate No.", "Identification No.", "Name"}

// SchemaError reports required columns absent from the worksheet header.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("attendance sheet missing required columns: %s", strings.Join(e.Missing, ", "))
}

// ReadResult is a validated batch of attendance events plus row-level
// diagnostics. Dropped rows never abort the batch; they are only counted.
type ReadResult struct {
	Events []models.AttendanceEvent
	// DroppedRows counts rows discarded because their timestamp would not
	// parse. Gate and identity problems never drop a row.
	DroppedRows int
	// EmptyIdentities counts rows whose identification normalized to "".
	// They are kept (the swipe happened) but flagged as a data-quality signal.
	EmptyIdentities int
}

// ParseRows validates a raw worksheet against the attendance schema and
// normalizes its rows into events ordered by timestamp, newest first.
//
// Per-row policy:
//   - unparseable or missing timestamp: row dropped, counted
//   - non-numeric gate: 0 ("unknown gate")
//   - identification: trimmed; a trailing ".0" float artifact (sheets type
//     numeric-looking cells as floats) is stripped, and only that suffix
//   - missing name: "Unknown"
//
// A valid schema with zero surviving rows yields an empty result, not an
// error.
func ParseRows(table *sheets.Table, loc *time.Location) (*ReadResult, error) {
	if loc == nil {
		loc = time.Local
	}

	have := make(map[string]bool, len(table.Columns))
	for _, col := range table.Columns {
		have[col] = true
	}
	var missing []string
	for _, col := range RequiredColumns {
		if !have[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	res := &ReadResult{Events: make([]models.AttendanceEvent, 0, len(table.Rows))}
	for _, row := range table.Rows {
		raw := strings.TrimSpace(row["Timestamp"])
		if raw == "" {
			res.DroppedRows++
			continue
		}
		ts, err := dateparse.ParseIn(raw, loc)
		if err != nil {
			res.DroppedRows++
			continue
		}

		id := NormalizeIdentity(row["Identification No."])
		if id == "" {
			res.EmptyIdentities++
		}

		name := strings.TrimSpace(row["Name"])
		if name == "" {
			name = "Unknown"
		}

		res.Events = append(res.Events, models.AttendanceEvent{
			Timestamp:  ts,
			Gate:       parseGate(row["Gate No."]),
			IdentityID: id,
			Name:       name,
		})
	}

	sort.SliceStable(res.Events, func(i, j int) bool {
		return res.Events[i].Timestamp.After(res.Events[j].Timestamp)
	})

	return res, nil
}

// NormalizeIdentity canonicalizes an identification value: surrounding
// whitespace is removed and an exact trailing ".0" is stripped. "123456.50"
// stays as is; only the float formatting artifact goes.
func NormalizeIdentity(raw string) string {
	s := strings.TrimSpace(raw)
	return strings.TrimSuffix(s, ".0")
}

func parseGate(raw string) int {
	s := strings.TrimSuffix(strings.TrimSpace(raw), ".0")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
