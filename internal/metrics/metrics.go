package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the capture engine
type Metrics struct {
	registry *prometheus.Registry

	// Session metrics
	SessionsStartedTotal   prometheus.Counter
	SessionsCompletedTotal prometheus.Counter
	SessionsAbortedTotal   prometheus.Counter
	SessionsActive         prometheus.Gauge

	// Edge metrics
	EdgesTotal *prometheus.CounterVec

	// Failure metrics
	SessionInitErrorsTotal  prometheus.Counter
	WriteErrorsTotal        prometheus.Counter
	ProtocolViolationsTotal prometheus.Counter
}

// NewMetrics creates and registers all metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		// Session metrics
		SessionsStartedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "capture_sessions_started_total",
				Help: "Total number of capture sessions started",
			},
		),
		SessionsCompletedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "capture_sessions_completed_total",
				Help: "Total number of capture sessions completed normally",
			},
		),
		SessionsAbortedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "capture_sessions_aborted_total",
				Help: "Total number of capture sessions force-closed by the host",
			},
		),
		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "capture_sessions_active",
				Help: "Number of currently active capture sessions",
			},
		),

		// Edge metrics
		EdgesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capture_edges_total",
				Help: "Total number of graph edges emitted",
			},
			[]string{"kind"},
		),

		// Failure metrics
		SessionInitErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "capture_session_init_errors_total",
				Help: "Total number of capture sessions that failed to initialize",
			},
		),
		WriteErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "capture_write_errors_total",
				Help: "Total number of capture file write failures",
			},
		),
		ProtocolViolationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "capture_protocol_violations_total",
				Help: "Total number of enter/leave protocol violations",
			},
		),
	}

	// Register all metrics
	m.registerMetrics()

	return m
}

// registerMetrics registers all metrics with the registry
func (m *Metrics) registerMetrics() {
	// Session metrics
	m.registry.MustRegister(m.SessionsStartedTotal)
	m.registry.MustRegister(m.SessionsCompletedTotal)
	m.registry.MustRegister(m.SessionsAbortedTotal)
	m.registry.MustRegister(m.SessionsActive)

	// Edge metrics
	m.registry.MustRegister(m.EdgesTotal)

	// Failure metrics
	m.registry.MustRegister(m.SessionInitErrorsTotal)
	m.registry.MustRegister(m.WriteErrorsTotal)
	m.registry.MustRegister(m.ProtocolViolationsTotal)
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
