package roachagram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/five82/roachagram/internal/logging"
	"github.com/five82/roachagram/internal/metrics"
	"github.com/five82/roachagram/internal/telemetry"
)

// Submitter fetches an anagram narrative for an input.
// This interface is implemented by *Client and can be used for testing.
type Submitter interface {
	Submit(ctx context.Context, input string) (string, error)
}

// Ensure Client implements Submitter at compile time.
var _ Submitter = (*Client)(nil)

// IdentityProvider supplies the device identifier sent with each request.
type IdentityProvider interface {
	GetOrCreate(ctx context.Context) string
}

// Client talks to the anagram HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	identity  IdentityProvider
	sink      telemetry.Sink
	logger    *slog.Logger
	metrics   *metrics.Metrics
	policy    RetryPolicy
	timeout   *time.Duration
	maxInput  int
	sleep     func(ctx context.Context, d time.Duration) error

	idGroup  singleflight.Group
	idMu     sync.RWMutex
	deviceID string
}

const (
	defaultUserAgent      = "roachagram/0.1"
	defaultRequestTimeout = 60 * time.Second
	deviceIDHeader        = "X-Device-ID"
	anagramPath           = "api/anagram"
	maxBodyBytes          = 1 << 20
)

// Option customizes a Client.
type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRequestTimeout bounds each individual attempt. Zero disables the bound.
// It never mutates a client supplied through WithHTTPClient.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = &d }
}

// WithMaxInputLength lowers the accepted input length. Values outside
// 1..MaxInputLength keep the default.
func WithMaxInputLength(n int) Option {
	return func(c *Client) { c.maxInput = n }
}

func WithIdentity(p IdentityProvider) Option {
	return func(c *Client) { c.identity = p }
}

func WithSink(s telemetry.Sink) Option {
	return func(c *Client) { c.sink = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.policy = p }
}

// WithSleep replaces the backoff wait. Tests use it to record delays.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = fn }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient builds a Client rooted at baseURL (the ApiBaseUrl setting).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		userAgent: defaultUserAgent,
		sink:      telemetry.Nop{},
		logger:    logging.NewNop(),
		policy:    DefaultRetryPolicy(),
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}

	httpClient := http.Client{Timeout: defaultRequestTimeout}
	if c.http != nil {
		httpClient = *c.http
	}
	if c.timeout != nil {
		httpClient.Timeout = *c.timeout
	}
	c.http = &httpClient
	return c, nil
}

// Submit validates input and fetches the raw anagram text, retrying
// transient failures per the client's RetryPolicy. Every call performs a
// fresh round trip.
//
// Errors wrap ErrInvalidInput (nothing was sent), ErrPersistentFailure
// (retries exhausted), or the context's error when ctx ends first.
func (c *Client) Submit(ctx context.Context, input string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("client is nil")
	}
	req, err := NewLimitedRequest(input, c.maxInput)
	if err != nil {
		c.metrics.RequestDone(metrics.OutcomeInvalid)
		return "", err
	}

	deviceID := c.deviceIdentity(ctx)
	body, attempts, err := c.withRetry(ctx, func(ctx context.Context) (string, error) {
		return c.fetch(ctx, req, deviceID)
	})
	if err != nil {
		c.metrics.RequestDone(metrics.OutcomeFailure)
		c.logger.Warn("anagram request failed", "attempts", attempts, "error", err)
		if errors.Is(err, ErrPersistentFailure) {
			c.sink.Emit(telemetry.Exception(err, map[string]string{
				"Component": "api",
				"Attempts":  strconv.Itoa(attempts),
			}))
		}
		return "", err
	}

	c.metrics.RequestDone(metrics.OutcomeSuccess)
	c.logger.Debug("anagram request succeeded", "attempts", attempts, "bytes", len(body))
	return body, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) fetch(ctx context.Context, req Request, deviceID string) (string, error) {
	values := url.Values{}
	values.Set("input", req.Input)
	rel := &url.URL{Path: anagramPath, RawQuery: values.Encode()}
	reqURL := c.baseURL.ResolveReference(rel)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "text/plain, */*")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if deviceID != "" {
		httpReq.Header.Set(deviceIDHeader, deviceID)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	c.metrics.AttemptDone(time.Since(start))
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: snippet(body)}
	}
	if readErr != nil {
		return "", fmt.Errorf("read response: %w", readErr)
	}
	return string(body), nil
}

// deviceIdentity resolves the identity header once per Client. Concurrent
// first calls share a single lookup.
func (c *Client) deviceIdentity(ctx context.Context) string {
	c.idMu.RLock()
	id := c.deviceID
	c.idMu.RUnlock()
	if id != "" || c.identity == nil {
		return id
	}

	v, _, _ := c.idGroup.Do("device-id", func() (any, error) {
		c.idMu.RLock()
		cached := c.deviceID
		c.idMu.RUnlock()
		if cached != "" {
			return cached, nil
		}
		resolved := c.identity.GetOrCreate(ctx)
		c.idMu.Lock()
		c.deviceID = resolved
		c.idMu.Unlock()
		return resolved, nil
	})
	return v.(string)
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit]
	}
	return s
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("api base url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("api base url %q has no host", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
