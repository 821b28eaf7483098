package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RecordsCounters(t *testing.T) {
	m := New()

	m.RequestDone(OutcomeSuccess)
	m.RequestDone(OutcomeFailure)
	m.RequestDone(OutcomeFailure)
	m.AttemptDone(120 * time.Millisecond)
	m.RetryScheduled()
	m.TelemetryResult("trace", "sent")
	m.IdentityFallback()

	if got := testutil.ToFloat64(m.Requests.WithLabelValues(OutcomeFailure)); got != 2 {
		t.Fatalf("failure requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Attempts); got != 1 {
		t.Fatalf("attempts = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Retries); got != 1 {
		t.Fatalf("retries = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.TelemetryEvents.WithLabelValues("trace", "sent")); got != 1 {
		t.Fatalf("telemetry sent = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.IdentityFallbacks); got != 1 {
		t.Fatalf("identity fallbacks = %v, want 1", got)
	}
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.RequestDone(OutcomeSuccess)
	m.AttemptDone(time.Second)
	m.RetryScheduled()
	m.TelemetryResult("trace", "dropped")
	m.IdentityFallback()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("nil handler status = %d, want 404", rec.Code)
	}
}

func TestMetrics_HandlerExposesRegistry(t *testing.T) {
	m := New()
	m.RequestDone(OutcomeSuccess)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `roachagram_requests_total{outcome="success"} 1`) {
		t.Fatalf("metrics body missing request counter:\n%s", rec.Body.String())
	}
}
