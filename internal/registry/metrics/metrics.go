package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for registry lookups and their cache.
type Metrics struct {
	// Cache lookup outcomes
	CacheLookups *prometheus.CounterVec

	// Live registry search latency on cache misses
	SearchLatency prometheus.Histogram
}

// New creates a new Metrics instance with all registry metrics registered.
func New() *Metrics {
	return &Metrics{
		CacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dossier_registry_cache_lookups_total",
			Help: "Total registry cache lookups by outcome",
		}, []string{"outcome"}), // outcome: "hit", "miss", "bypass"

		SearchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "dossier_registry_search_duration_seconds",
			Help:    "Duration of live registry searches",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// RecordCacheHit records a lookup served from the cache.
func (m *Metrics) RecordCacheHit() {
	if m != nil {
		m.CacheLookups.WithLabelValues("hit").Inc()
	}
}

// RecordCacheMiss records a lookup that fell through to the live registry.
func (m *Metrics) RecordCacheMiss() {
	if m != nil {
		m.CacheLookups.WithLabelValues("miss").Inc()
	}
}

// RecordCacheBypass records a lookup that skipped the cache because it was
// unreachable or returned an unusable entry.
func (m *Metrics) RecordCacheBypass() {
	if m != nil {
		m.CacheLookups.WithLabelValues("bypass").Inc()
	}
}

// ObserveSearchLatency records the duration of a live registry search.
func (m *Metrics) ObserveSearchLatency(d time.Duration) {
	if m != nil {
		m.SearchLatency.Observe(d.Seconds())
	}
}
