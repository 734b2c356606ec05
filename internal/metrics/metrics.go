// Package metrics exposes Prometheus collectors for the relay.
//
// Every method is safe to call on a nil *Metrics, so components can be
// built without instrumentation in tests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "warelay"

// Turn outcomes.
const (
	OutcomeReplied = "replied"
	OutcomeFailed  = "failed"
)

// Metrics groups the relay's collectors.
type Metrics struct {
	turns         *prometheus.CounterVec
	turnDuration  prometheus.Histogram
	ignored       *prometheus.CounterVec
	aiDuration    *prometheus.HistogramVec
	reconnects    prometheus.Counter
	backendUp     *prometheus.GaugeVec
	turnsInFlight prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Completed turns by outcome.",
		}, []string{"outcome"}),
		turnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Wall time from inbound message to reply.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		ignored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ignored_events_total",
			Help:      "Inbound deliveries that produced no turn, by reason.",
		}, []string{"reason"}),
		aiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ai_request_duration_seconds",
			Help:      "Latency of calls to the AI endpoint.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"status"}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconnects_total",
			Help:      "Transport reconnect attempts.",
		}),
		backendUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "backend_up",
			Help:      "1 when the backend answered the last health probe.",
		}, []string{"backend"}),
		turnsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "turns_in_flight",
			Help:      "Turns currently being processed.",
		}),
	}
	reg.MustRegister(m.turns, m.turnDuration, m.ignored, m.aiDuration,
		m.reconnects, m.backendUp, m.turnsInFlight)
	return m
}

// TurnStarted marks a turn as in flight.
func (m *Metrics) TurnStarted() {
	if m == nil {
		return
	}
	m.turnsInFlight.Inc()
}

// TurnFinished records a turn's outcome and duration.
func (m *Metrics) TurnFinished(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.turnsInFlight.Dec()
	m.turns.WithLabelValues(outcome).Inc()
	m.turnDuration.Observe(d.Seconds())
}

// Ignored records an inbound delivery that was skipped.
func (m *Metrics) Ignored(reason string) {
	if m == nil {
		return
	}
	m.ignored.WithLabelValues(reason).Inc()
}

// ObserveAIRequest records one AI endpoint call.
func (m *Metrics) ObserveAIRequest(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.aiDuration.WithLabelValues(status).Observe(d.Seconds())
}

// Reconnect records a transport reconnect attempt.
func (m *Metrics) Reconnect() {
	if m == nil {
		return
	}
	m.reconnects.Inc()
}

// SetBackendUp records a health probe result.
func (m *Metrics) SetBackendUp(backend string, up bool) {
	if m == nil {
		return
	}
	v := 0.0
	if up {
		v = 1
	}
	m.backendUp.WithLabelValues(backend).Set(v)
}
