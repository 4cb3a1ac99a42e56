package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the dossier pipeline. A nil *Metrics
// records nothing, so tests can pass nil.
type Metrics struct {
	// Per-stage latency
	StageLatency *prometheus.HistogramVec

	// Identity resolution outcomes
	Resolutions *prometheus.CounterVec

	// Publication candidates by confidence tier
	PublicationTiers *prometheus.CounterVec

	// End-to-end build latency
	BuildLatency prometheus.Histogram
}

// New creates a new Metrics instance with all pipeline metrics registered.
func New() *Metrics {
	return &Metrics{
		StageLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dossier_stage_duration_seconds",
			Help:    "Duration of each dossier pipeline stage",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}), // stage: "identity", "payments", "publications", "enrichment"

		Resolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dossier_resolution_outcomes_total",
			Help: "Identity resolution outcomes by source",
		}, []string{"source"}), // source: "payments_store", "registry", "not_found"

		PublicationTiers: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dossier_publication_tiers_total",
			Help: "Matched publication candidates by confidence tier",
		}, []string{"tier"}), // tier: "high", "medium", "low"

		BuildLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "dossier_build_duration_seconds",
			Help:    "End-to-end dossier build duration",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}

// ObserveStage records the duration of one pipeline stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// RecordResolution counts an identity resolution outcome.
func (m *Metrics) RecordResolution(source string) {
	if m != nil {
		m.Resolutions.WithLabelValues(source).Inc()
	}
}

// RecordPublicationTier counts matched candidates in one confidence tier.
func (m *Metrics) RecordPublicationTier(tier string, count int) {
	if m != nil && count > 0 {
		m.PublicationTiers.WithLabelValues(tier).Add(float64(count))
	}
}

// ObserveBuild records the end-to-end duration of one dossier build.
func (m *Metrics) ObserveBuild(d time.Duration) {
	if m != nil {
		m.BuildLatency.Observe(d.Seconds())
	}
}
