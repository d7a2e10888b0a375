package database

import (
	"database/sql"
	"log"
)

// RunMigrations checks and applies the archive schema.
func RunMigrations(db *sql.DB) error {
	log.Println("Running archive migrations...")

	if err := createRefreshBatchesTable(db); err != nil {
		return err
	}
	if err := createAttendanceEventsTable(db); err != nil {
		return err
	}

	log.Println("Archive migrations completed successfully")
	return nil
}

func createRefreshBatchesTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS refresh_batches (
			id           TEXT PRIMARY KEY,
			marker       TIMESTAMPTZ NOT NULL,
			fetched_at   TIMESTAMPTZ NOT NULL,
			event_count  INTEGER NOT NULL,
			dropped_rows INTEGER NOT NULL DEFAULT 0,
			inside       INTEGER NOT NULL,
			outside      INTEGER NOT NULL,
			total_unique INTEGER NOT NULL
		)
	`
	if _, err := db.Exec(query); err != nil {
		log.Printf("Failed to create refresh_batches table: %v", err)
		return err
	}
	return nil
}

func createAttendanceEventsTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS attendance_events (
			id          BIGSERIAL PRIMARY KEY,
			batch_id    TEXT NOT NULL REFERENCES refresh_batches(id) ON DELETE CASCADE,
			swiped_at   TIMESTAMPTZ NOT NULL,
			gate        INTEGER NOT NULL DEFAULT 0,
			identity_id TEXT NOT NULL,
			name        TEXT NOT NULL DEFAULT 'Unknown'
		)
	`
	if _, err := db.Exec(query); err != nil {
		log.Printf("Failed to create attendance_events table: %v", err)
		return err
	}

	index := `
		CREATE INDEX IF NOT EXISTS idx_attendance_events_batch
		ON attendance_events (batch_id)
	`
	if _, err := db.Exec(index); err != nil {
		log.Printf("Failed to create attendance_events index: %v", err)
		return err
	}
	return nil
}
