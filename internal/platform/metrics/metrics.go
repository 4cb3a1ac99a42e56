// Package metrics registers the HTTP-level Prometheus collectors. Pipeline
// stage metrics live with the dossier service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the request-level collectors fed by the logging middleware.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
}

// New creates and registers the HTTP collectors on the default registry.
func New() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dossier_http_requests_total",
			Help: "HTTP requests served, by route, method, and status class.",
		}, []string{"route", "method", "status"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dossier_http_request_duration_seconds",
			Help:    "HTTP request latency, by route.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"route"}),
		RequestsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "dossier_http_requests_in_flight",
			Help: "HTTP requests currently being served.",
		}),
	}
}

// Observe records one completed request. Nil-safe so middleware can run
// without collectors in tests.
func (m *Metrics) Observe(route, method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, method, status).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(seconds)
}

// TrackInFlight increments the in-flight gauge and returns the matching
// decrement. Nil-safe.
func (m *Metrics) TrackInFlight() func() {
	if m == nil {
		return func() {}
	}
	m.RequestsInFlight.Inc()
	return m.RequestsInFlight.Dec
}
