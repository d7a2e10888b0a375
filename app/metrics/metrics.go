package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhwlcrzzz/attendance-dashboard/app/models"
)

var phases = []models.CachePhase{
	models.PhaseIdle,
	models.PhaseChecking,
	models.PhaseRefreshing,
	models.PhaseError,
}

// Registry bundles the dashboard's Prometheus metrics. All observe helpers
// are nil-safe so components can run without metrics in tests.
type Registry struct {
	markerChecks *prometheus.CounterVec
	refreshTotal *prometheus.CounterVec
	rowsDropped  prometheus.Counter
	emptyIDs     prometheus.Counter

	inside      prometheus.Gauge
	outside     prometheus.Gauge
	totalUnique prometheus.Gauge
	cachePhase  *prometheus.GaugeVec
	lastRefresh prometheus.Gauge
}

func New(reg prometheus.Registerer) *Registry {
	m := &Registry{
		markerChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "marker_checks_total",
			Help:      "Change-marker checks by outcome (changed, unchanged, error)",
		}, []string{"result"}),
		refreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "refresh_total",
			Help:      "Full sheet refresh attempts by outcome",
		}, []string{"result"}),
		rowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "rows_dropped_total",
			Help:      "Rows discarded during parsing (unparseable timestamp)",
		}),
		emptyIDs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "empty_identities_total",
			Help:      "Rows kept with an empty identification after normalization",
		}),
		inside: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "attendance",
			Name:      "inside_count",
			Help:      "Identities currently inferred to be inside campus",
		}),
		outside: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "attendance",
			Name:      "outside_count",
			Help:      "Identities currently inferred to be outside campus",
		}),
		totalUnique: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "attendance",
			Name:      "unique_identities",
			Help:      "Distinct identities in the cached event window",
		}),
		cachePhase: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "attendance",
			Name:      "cache_phase",
			Help:      "Cache lifecycle phase (1 for the active phase)",
		}, []string{"phase"}),
		lastRefresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "attendance",
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix time of the last successful refresh",
		}),
	}

	reg.MustRegister(
		m.markerChecks, m.refreshTotal, m.rowsDropped, m.emptyIDs,
		m.inside, m.outside, m.totalUnique, m.cachePhase, m.lastRefresh,
	)
	return m
}

// ObserveMarkerCheck records a marker check outcome: "changed", "unchanged"
// or "error".
func (m *Registry) ObserveMarkerCheck(result string) {
	if m == nil {
		return
	}
	m.markerChecks.WithLabelValues(result).Inc()
}

// ObserveRefresh records a full refresh outcome.
func (m *Registry) ObserveRefresh(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.refreshTotal.WithLabelValues("error").Inc()
		return
	}
	m.refreshTotal.WithLabelValues("success").Inc()
}

// ObserveBatch records row-level diagnostics of a successful refresh.
func (m *Registry) ObserveBatch(dropped, emptyIdentities int) {
	if m == nil {
		return
	}
	m.rowsDropped.Add(float64(dropped))
	m.emptyIDs.Add(float64(emptyIdentities))
}

// SetOccupancy publishes the aggregate counts of the current snapshot.
func (m *Registry) SetOccupancy(snap models.OccupancySnapshot) {
	if m == nil {
		return
	}
	m.inside.Set(float64(snap.InsideCount))
	m.outside.Set(float64(snap.OutsideCount))
	m.totalUnique.Set(float64(snap.TotalUnique))
}

// SetPhase marks the active cache phase.
func (m *Registry) SetPhase(phase models.CachePhase) {
	if m == nil {
		return
	}
	for _, p := range phases {
		v := 0.0
		if p == phase {
			v = 1.0
		}
		m.cachePhase.WithLabelValues(string(p)).Set(v)
	}
}

// SetLastRefresh publishes the time of the last successful refresh.
func (m *Registry) SetLastRefresh(t time.Time) {
	if m == nil {
		return
	}
	m.lastRefresh.Set(float64(t.Unix()))
}
