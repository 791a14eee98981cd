package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors for BGG traffic, cache usage and sync runs.
// All methods are safe on a nil receiver so components can run without it.
type Metrics struct {
	bggRequests  *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
	cacheWrites  *prometheus.CounterVec
	syncRuns     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		bggRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamenight",
			Name:      "bgg_requests_total",
			Help:      "Requests sent to the BGG XML API by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamenight",
			Name:      "cache_lookups_total",
			Help:      "Game ids looked up in the cache store by result.",
		}, []string{"result"}),
		cacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamenight",
			Name:      "cache_writes_total",
			Help:      "Game cache writes by outcome (created, merged, skipped, failed).",
		}, []string{"outcome"}),
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamenight",
			Name:      "sync_runs_total",
			Help:      "Collection sync runs by source (cache, remote, failed).",
		}, []string{"source"}),
	}
	if reg != nil {
		reg.MustRegister(m.bggRequests, m.cacheLookups, m.cacheWrites, m.syncRuns)
	}
	return m
}

func (m *Metrics) BGGRequest(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.bggRequests.WithLabelValues(endpoint, outcome).Inc()
}

func (m *Metrics) CacheLookup(hits, misses int) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues("hit").Add(float64(hits))
	m.cacheLookups.WithLabelValues("miss").Add(float64(misses))
}

func (m *Metrics) CacheWrite(outcome string) {
	if m == nil {
		return
	}
	m.cacheWrites.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SyncRun(source string) {
	if m == nil {
		return
	}
	m.syncRuns.WithLabelValues(source).Inc()
}
