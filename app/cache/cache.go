package cache

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jhwlcrzzz/attendance-dashboard/app/attendance"
	"github.com/jhwlcrzzz/attendance-dashboard/app/metrics"
	"github.com/jhwlcrzzz/attendance-dashboard/app/models"
)

// Fetcher abstracts the two spreadsheet reads the cache needs: the cheap
// change-marker lookup and the expensive full event fetch. A marker that
// cannot be read or parsed must be returned as an error; the cache then
// treats it as "no newer data", never as "infinitely new".
type Fetcher interface {
	FetchMarker(ctx context.Context) (time.Time, error)
	FetchEvents(ctx context.Context) (*attendance.ReadResult, error)
}

// Cache holds the most recent successfully parsed attendance data and only
// refetches when the external change marker moves forward.
//
// Lifecycle: Idle -> Checking -> (Refreshing -> Idle | Error) -> Idle ...
// The held snapshot is replaced whole on a successful refresh and never
// touched on any failure, so readers always see either the previous complete
// state or the next one.
type Cache struct {
	fetcher Fetcher
	m       *metrics.Registry

	// pollMu serializes polling cycles (single-flight).
	pollMu sync.Mutex

	mu              sync.RWMutex
	phase           models.CachePhase
	lastMarker      time.Time
	events          []models.AttendanceEvent
	snapshot        models.OccupancySnapshot
	lastRefresh     time.Time
	lastErr         error
	droppedRows     int
	emptyIdentities int
}

// New creates an empty cache: zero-time marker, no events. The first marker
// observed will therefore always trigger a refresh. metrics may be nil.
func New(f Fetcher, m *metrics.Registry) *Cache {
	c := &Cache{
		fetcher:  f,
		m:        m,
		phase:    models.PhaseIdle,
		snapshot: models.OccupancySnapshot{CountsByIdentity: map[string]int{}},
	}
	m.SetPhase(models.PhaseIdle)
	return c
}

// Poll runs one polling cycle: check the marker and, if it advanced, refetch
// and swap in the new data. It reports whether a refresh happened. The
// returned error is non-nil only for a failed refresh; marker problems are
// absorbed as "no change".
func (c *Cache) Poll(ctx context.Context) (bool, error) {
	c.pollMu.Lock()
	defer c.pollMu.Unlock()

	c.setPhase(models.PhaseChecking)

	marker, err := c.fetcher.FetchMarker(ctx)
	if err != nil {
		// Fail safe: a flaky marker read must not trigger fetch storms.
		log.Printf("Marker check failed, keeping current snapshot: %v", err)
		c.m.ObserveMarkerCheck("error")
		c.setPhase(models.PhaseIdle)
		return false, nil
	}

	c.mu.RLock()
	last := c.lastMarker
	c.mu.RUnlock()

	if !marker.After(last) {
		c.m.ObserveMarkerCheck("unchanged")
		c.setPhase(models.PhaseIdle)
		return false, nil
	}
	c.m.ObserveMarkerCheck("changed")

	c.setPhase(models.PhaseRefreshing)
	res, err := c.fetcher.FetchEvents(ctx)
	c.m.ObserveRefresh(err)
	if err != nil {
		// Previous events and marker stay untouched; the stale snapshot
		// remains visible alongside the error.
		c.mu.Lock()
		c.phase = models.PhaseError
		c.lastErr = err
		c.mu.Unlock()
		c.m.SetPhase(models.PhaseError)
		return false, err
	}

	snap := attendance.Estimate(res.Events)
	now := time.Now()

	c.mu.Lock()
	c.events = res.Events
	c.snapshot = snap
	c.lastMarker = marker
	c.lastRefresh = now
	c.lastErr = nil
	c.droppedRows = res.DroppedRows
	c.emptyIdentities = res.EmptyIdentities
	c.phase = models.PhaseIdle
	c.mu.Unlock()

	c.m.SetPhase(models.PhaseIdle)
	c.m.ObserveBatch(res.DroppedRows, res.EmptyIdentities)
	c.m.SetOccupancy(snap)
	c.m.SetLastRefresh(now)

	log.Printf("Sheet refreshed: %d events (%d dropped), inside=%d outside=%d",
		len(res.Events), res.DroppedRows, snap.InsideCount, snap.OutsideCount)
	return true, nil
}

// ForceRefresh resets the marker to the epoch minimum so the next poll is
// guaranteed to observe a change. The cached data stays in place until that
// poll succeeds.
func (c *Cache) ForceRefresh() {
	c.mu.Lock()
	c.lastMarker = time.Time{}
	c.mu.Unlock()
}

// Snapshot returns the current occupancy aggregate.
func (c *Cache) Snapshot() models.OccupancySnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Events returns a copy of the cached events, newest first.
func (c *Cache) Events() []models.AttendanceEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.AttendanceEvent, len(c.events))
	copy(out, c.events)
	return out
}

// Status reports the cache lifecycle state for the staleness display.
func (c *Cache) Status() models.CacheStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st := models.CacheStatus{
		Phase:           c.phase,
		LastMarker:      c.lastMarker,
		LastRefresh:     c.lastRefresh,
		EventCount:      len(c.events),
		DroppedRows:     c.droppedRows,
		EmptyIdentities: c.emptyIdentities,
	}
	if c.lastErr != nil {
		st.LastError = c.lastErr.Error()
	}
	return st
}

func (c *Cache) setPhase(p models.CachePhase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
	c.m.SetPhase(p)
}
