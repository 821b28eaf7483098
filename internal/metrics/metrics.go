// Package metrics holds the Prometheus collectors for the anagram client.
//
// Every method is safe to call on a nil *Metrics so components can run
// without instrumentation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for Requests.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeFailure = "failure"
)

// Metrics bundles the collectors and the registry they live in.
type Metrics struct {
	Registry *prometheus.Registry

	Requests          *prometheus.CounterVec
	Attempts          prometheus.Counter
	Retries           prometheus.Counter
	AttemptDuration   prometheus.Histogram
	TelemetryEvents   *prometheus.CounterVec
	IdentityFallbacks prometheus.Counter
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roachagram_requests_total",
			Help: "Anagram submissions by final outcome.",
		}, []string{"outcome"}),
		Attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roachagram_request_attempts_total",
			Help: "HTTP attempts made against the anagram endpoint.",
		}),
		Retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roachagram_request_retries_total",
			Help: "Attempts that were retried after a transient failure.",
		}),
		AttemptDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "roachagram_request_attempt_duration_seconds",
			Help:    "Latency of individual anagram attempts.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		TelemetryEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roachagram_telemetry_events_total",
			Help: "Telemetry events by kind and delivery result.",
		}, []string{"kind", "result"}),
		IdentityFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roachagram_identity_fallbacks_total",
			Help: "Times the device identity fell back to an ephemeral value.",
		}),
	}
	m.Registry.MustRegister(
		m.Requests,
		m.Attempts,
		m.Retries,
		m.AttemptDuration,
		m.TelemetryEvents,
		m.IdentityFallbacks,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RequestDone(outcome string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AttemptDone(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Attempts.Inc()
	m.AttemptDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) RetryScheduled() {
	if m == nil {
		return
	}
	m.Retries.Inc()
}

func (m *Metrics) TelemetryResult(kind, result string) {
	if m == nil {
		return
	}
	m.TelemetryEvents.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) IdentityFallback() {
	if m == nil {
		return
	}
	m.IdentityFallbacks.Inc()
}
