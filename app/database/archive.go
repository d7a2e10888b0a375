package database

import (
	"database/sql"
	"time"

	"github.com/jhwlcrzzz/attendance-dashboard/app/attendance"
	"github.com/jhwlcrzzz/attendance-dashboard/app/models"
)

// SnapshotRecord is one archived refresh as shown by the history endpoint.
type SnapshotRecord struct {
	BatchID     string    `json:"batch_id"`
	Marker      time.Time `json:"marker"`
	FetchedAt   time.Time `json:"fetched_at"`
	EventCount  int       `json:"event_count"`
	DroppedRows int       `json:"dropped_rows"`
	Inside      int       `json:"inside"`
	Outside     int       `json:"outside"`
	TotalUnique int       `json:"total_unique"`
}

// SaveRefresh archives one successful refresh: the batch summary plus every
// event, in a single transaction.
func SaveRefresh(db *sql.DB, batchID string, marker, fetchedAt time.Time, res *attendance.ReadResult, snap models.OccupancySnapshot) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO refresh_batches (id, marker, fetched_at, event_count, dropped_rows, inside, outside, total_unique)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, batchID, marker, fetchedAt, len(res.Events), res.DroppedRows,
		snap.InsideCount, snap.OutsideCount, snap.TotalUnique)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO attendance_events (batch_id, swiped_at, gate, identity_id, name)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range res.Events {
		if _, err := stmt.Exec(batchID, e.Timestamp, e.Gate, e.IdentityID, e.Name); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetSnapshotHistory returns the most recent archived batches, newest first.
func GetSnapshotHistory(db *sql.DB, limit int) ([]SnapshotRecord, error) {
	rows, err := db.Query(`
		SELECT id, marker, fetched_at, event_count, dropped_rows, inside, outside, total_unique
		FROM refresh_batches
		ORDER BY fetched_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []SnapshotRecord
	for rows.Next() {
		var r SnapshotRecord
		if err := rows.Scan(
			&r.BatchID, &r.Marker, &r.FetchedAt, &r.EventCount,
			&r.DroppedRows, &r.Inside, &r.Outside, &r.TotalUnique,
		); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetBatchEvents returns the archived events of one batch, newest first.
func GetBatchEvents(db *sql.DB, batchID string) ([]models.AttendanceEvent, error) {
	rows, err := db.Query(`
		SELECT swiped_at, gate, identity_id, name
		FROM attendance_events
		WHERE batch_id = $1
		ORDER BY swiped_at DESC
	`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.AttendanceEvent
	for rows.Next() {
		var e models.AttendanceEvent
		if err := rows.Scan(&e.Timestamp, &e.Gate, &e.IdentityID, &e.Name); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
