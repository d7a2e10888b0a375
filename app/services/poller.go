package services

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/segmentio/ksuid"

	"github.com/jhwlcrzzz/attendance-dashboard/app/attendance"
	"github.com/jhwlcrzzz/attendance-dashboard/app/cache"
	"github.com/jhwlcrzzz/attendance-dashboard/app/database"
)

// Poller drives the cache on a cron schedule and archives successful
// refreshes. SkipIfStillRunning keeps cycles single-flight: a tick that fires
// while a fetch is in progress is skipped, not queued.
type Poller struct {
	cron    *cron.Cron
	cache   *cache.Cache
	db      *sql.DB // nil when the archive is disabled
	timeout time.Duration
}

// StartPoller schedules polling cycles per the given cron spec (or
// "@every <duration>") and starts the scheduler.
func StartPoller(schedule string, ca *cache.Cache, db *sql.DB, timeout time.Duration) (*Poller, error) {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	p := &Poller{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(log.Default())))),
		cache:   ca,
		db:      db,
		timeout: timeout,
	}

	if _, err := p.cron.AddFunc(schedule, p.RunCycle); err != nil {
		return nil, err
	}

	p.cron.Start()
	log.Printf("Poller started (schedule %q)", schedule)
	return p, nil
}

// RunCycle executes one polling cycle with a deadline on the external reads.
// A timed-out fetch surfaces as a fetch failure; the cache keeps its prior
// snapshot.
func (p *Poller) RunCycle() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	refreshed, err := p.cache.Poll(ctx)
	if err != nil {
		log.Printf("Polling cycle failed: %v", err)
		return
	}
	if refreshed {
		p.archive()
	}
}

// ForceRefresh invalidates the marker and runs a cycle immediately.
func (p *Poller) ForceRefresh() {
	p.cache.ForceRefresh()
	p.RunCycle()
}

// Stop halts the scheduler; a running cycle finishes first.
func (p *Poller) Stop() {
	ctx := p.cron.Stop()
	<-ctx.Done()
}

func (p *Poller) archive() {
	if p.db == nil {
		return
	}

	st := p.cache.Status()
	res := &attendance.ReadResult{
		Events:          p.cache.Events(),
		DroppedRows:     st.DroppedRows,
		EmptyIdentities: st.EmptyIdentities,
	}

	batchID := ksuid.New().String()
	if err := database.SaveRefresh(p.db, batchID, st.LastMarker, st.LastRefresh, res, p.cache.Snapshot()); err != nil {
		// Archive problems never disturb the cache; the dashboard keeps
		// serving the in-memory snapshot.
		log.Printf("Failed to archive refresh batch %s: %v", batchID, err)
	}
}
