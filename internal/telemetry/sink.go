package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/five82/roachagram/internal/logging"
	"github.com/five82/roachagram/internal/metrics"
)

// Sink accepts events without reporting delivery results.
type Sink interface {
	Emit(evt Event)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Emit(Event) {}

const (
	deliveryTimeout  = 10 * time.Second
	defaultUserAgent = "roachagram/0.1"
)

type payload struct {
	Type                string             `json:"type"`
	Name                string             `json:"name"`
	Message             string             `json:"message"`
	Properties          map[string]string  `json:"properties"`
	SerializedException *ExceptionSnapshot `json:"serializedException,omitempty"`
}

// HTTPSink posts events to the collector endpoint. Each Emit delivers in its
// own goroutine; failures are logged at debug level and dropped.
type HTTPSink struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger
	metrics  *metrics.Metrics
	wg       sync.WaitGroup
}

// Option customizes an HTTPSink.
type Option func(*HTTPSink)

func WithHTTPClient(c *http.Client) Option {
	return func(s *HTTPSink) { s.http = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *HTTPSink) { s.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *HTTPSink) { s.metrics = m }
}

// NewHTTPSink creates a sink that posts to endpoint (the full collector URL).
func NewHTTPSink(endpoint string, opts ...Option) *HTTPSink {
	s := &HTTPSink{
		endpoint: endpoint,
		http:     &http.Client{Timeout: deliveryTimeout},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Emit schedules delivery and returns immediately. Delivery is detached from
// any caller context and may outlive the request that produced the event.
func (s *HTTPSink) Emit(evt Event) {
	if s == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Debug("telemetry delivery panicked", "panic", r)
				s.metrics.TelemetryResult(string(evt.Kind), "dropped")
			}
		}()
		if err := s.deliver(evt); err != nil {
			s.logger.Debug("telemetry delivery failed", "kind", evt.Kind, "error", err)
			s.metrics.TelemetryResult(string(evt.Kind), "dropped")
			return
		}
		s.metrics.TelemetryResult(string(evt.Kind), "sent")
	}()
}

// Wait blocks until in-flight deliveries finish or ctx is done.
func (s *HTTPSink) Wait(ctx context.Context) error {
	if s == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *HTTPSink) deliver(evt Event) error {
	body, err := json.Marshal(toPayload(evt))
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("collector returned status %d", resp.StatusCode)
	}
	return nil
}

func toPayload(evt Event) payload {
	p := payload{
		Type:                string(evt.Kind),
		Message:             evt.Message,
		Properties:          evt.Properties,
		SerializedException: evt.Exception,
	}
	if p.Properties == nil {
		p.Properties = map[string]string{}
	}
	if evt.Kind == KindException {
		p.Name = "remote exception"
	} else {
		p.Name = "remote trace"
	}
	return p
}
