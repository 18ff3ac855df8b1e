// Package metrics exposes Prometheus metrics for the reactor, dispatcher,
// and codec layers, grounded on the teacher's internal/adapter/nlm
// metrics.go (a *Metrics struct with nil-receiver-safe Record/Set methods,
// registered once against a prometheus.Registerer and passed down by
// pointer) generalized from NLM's lock-manager counters to this runtime's
// connection and call counters.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics tracks thriftrtd's Prometheus metrics, all under the thriftrt_
// prefix. A nil *Metrics is safe to call methods on — every method is a
// no-op — so components can be built and tested without a registry.
type Metrics struct {
	ConnectionsAccepted prometheus.Counter
	ConnectionsClosed   prometheus.Counter
	ActiveConnections   prometheus.Gauge

	FramesRead    prometheus.Counter
	FramesWritten prometheus.Counter
	DecodeErrors  *prometheus.CounterVec

	CallsInFlight  prometheus.Gauge
	CallDuration   *prometheus.HistogramVec
	CallsTotal     *prometheus.CounterVec
	ReconnectTotal prometheus.Counter
}

// New creates thriftrtd metrics and registers them against reg. Panics on
// registration failure, which can only happen during startup wiring.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ConnectionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thriftrt_connections_accepted_total",
			Help: "Total connections added to the reactor, inbound (accepted) or outbound (dialed).",
		}),
		ConnectionsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thriftrt_connections_closed_total",
			Help: "Total connections closed, inbound or outbound.",
		}),
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "thriftrt_active_connections",
			Help: "Current number of open reactor connections.",
		}),
		FramesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thriftrt_frames_read_total",
			Help: "Total framed messages decoded off the wire.",
		}),
		FramesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thriftrt_frames_written_total",
			Help: "Total framed messages written to the wire.",
		}),
		DecodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "thriftrt_decode_errors_total",
			Help: "Total frame or message decode failures by cause.",
		}, []string{"cause"}),
		CallsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "thriftrt_calls_in_flight",
			Help: "Current number of dispatcher calls awaiting a reply.",
		}),
		CallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "thriftrt_call_duration_seconds",
			Help:    "Call round-trip latency in seconds, by method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		CallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "thriftrt_calls_total",
			Help: "Total calls completed, by method and outcome.",
		}, []string{"method", "outcome"}),
		ReconnectTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thriftrt_reconnect_attempts_total",
			Help: "Total outbound reconnect attempts made by dialWithBackoff.",
		}),
	}

	reg.MustRegister(
		m.ConnectionsAccepted,
		m.ConnectionsClosed,
		m.ActiveConnections,
		m.FramesRead,
		m.FramesWritten,
		m.DecodeErrors,
		m.CallsInFlight,
		m.CallDuration,
		m.CallsTotal,
		m.ReconnectTotal,
	)
	return m
}

func (m *Metrics) RecordConnectionAccepted() {
	if m == nil {
		return
	}
	m.ConnectionsAccepted.Inc()
}

func (m *Metrics) RecordConnectionClosed() {
	if m == nil {
		return
	}
	m.ConnectionsClosed.Inc()
}

func (m *Metrics) SetActiveConnections(count int) {
	if m == nil {
		return
	}
	m.ActiveConnections.Set(float64(count))
}

func (m *Metrics) RecordFrameRead() {
	if m == nil {
		return
	}
	m.FramesRead.Inc()
}

func (m *Metrics) RecordFrameWritten() {
	if m == nil {
		return
	}
	m.FramesWritten.Inc()
}

func (m *Metrics) RecordDecodeError(cause string) {
	if m == nil {
		return
	}
	m.DecodeErrors.WithLabelValues(cause).Inc()
}

func (m *Metrics) SetCallsInFlight(count int) {
	if m == nil {
		return
	}
	m.CallsInFlight.Set(float64(count))
}

func (m *Metrics) RecordCall(method, outcome string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.CallsTotal.WithLabelValues(method, outcome).Inc()
	m.CallDuration.WithLabelValues(method).Observe(durationSeconds)
}

func (m *Metrics) RecordReconnectAttempt() {
	if m == nil {
		return
	}
	m.ReconnectTotal.Inc()
}

// Null returns nil, the no-op Metrics value, for tests and callers that
// don't want metrics wired.
func Null() *Metrics { return nil }
