package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "harara_dashboard"

// Metrics holds the Prometheus counters and histograms for the dashboard.
type Metrics struct {
	// Backend API metrics.
	BackendRequests *prometheus.CounterVec   // labels: operation, outcome={success,error,unauthorized}
	BackendDuration *prometheus.HistogramVec // labels: operation
	Unauthorized    prometheus.Counter

	// Operator activity.
	Logins            *prometheus.CounterVec // labels: outcome={success,failure}
	PageRenders       *prometheus.CounterVec // labels: view
	TownFetchFailures *prometheus.CounterVec // labels: town
	Exports           *prometheus.CounterVec // labels: kind, outcome
	AuditEvents       *prometheus.CounterVec // labels: outcome={published,error}
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.BackendRequests,
		m.BackendDuration,
		m.Unauthorized,
		m.Logins,
		m.PageRenders,
		m.TownFetchFailures,
		m.Exports,
		m.AuditEvents,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests can
// build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		BackendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Harara API requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		BackendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Harara API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
		Unauthorized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unauthorized_responses_total",
			Help:      "Backend 401 responses that forced an operator logout.",
		}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Operator login attempts by outcome.",
		}, []string{"outcome"}),
		PageRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_renders_total",
			Help:      "Rendered dashboard pages by view.",
		}, []string{"view"}),
		TownFetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "town_fetch_failures_total",
			Help:      "Per-town user list fetches that failed and were shown as empty.",
		}, []string{"town"}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Export downloads by kind and outcome.",
		}, []string{"kind", "outcome"}),
		AuditEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_events_total",
			Help:      "Operator action audit events by outcome.",
		}, []string{"outcome"}),
	}
}
