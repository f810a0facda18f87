package monitor

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Call outcomes recorded by Metrics.
const (
	OutcomeOK           = "ok"
	OutcomeTimeout      = "timeout"
	OutcomeNoConnection = "no_connection"
	OutcomeRemoteError  = "remote_error"
	OutcomeSendError    = "send_error"
	OutcomeCanceled     = "canceled"
)

// Metrics holds the relay's Prometheus collectors.
type Metrics struct {
	registry    *prometheus.Registry
	calls       *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	pending     prometheus.Gauge
	connections *prometheus.CounterVec
}

// NewMetrics creates collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "browsermcp",
			Name:      "relay_calls_total",
			Help:      "Relayed browser actions by action type and outcome.",
		}, []string{"action", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "browsermcp",
			Name:      "relay_call_duration_seconds",
			Help:      "Time from send to correlated reply.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"action"}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "browsermcp",
			Name:      "relay_pending_calls",
			Help:      "Calls waiting for a reply.",
		}),
		connections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "browsermcp",
			Name:      "extension_connections_total",
			Help:      "Extension connection events (accepted, replaced, closed).",
		}, []string{"event"}),
	}
	m.registry.MustRegister(m.calls, m.latency, m.pending, m.connections)
	return m
}

// ObserveCall records one finished call.
func (m *Metrics) ObserveCall(action, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(action, outcome).Inc()
	if outcome == OutcomeOK {
		m.latency.WithLabelValues(action).Observe(elapsed.Seconds())
	}
}

// SetPending publishes the pending call count.
func (m *Metrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(n))
}

// ConnectionEvent counts an accept, replace or close.
func (m *Metrics) ConnectionEvent(event string) {
	if m == nil {
		return
	}
	m.connections.WithLabelValues(event).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
