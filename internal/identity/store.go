package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/five82/roachagram/internal/logging"
	"github.com/five82/roachagram/internal/metrics"
	"github.com/five82/roachagram/internal/telemetry"
)

// DeviceKey is the storage key holding the install identifier.
const DeviceKey = "device_uuid"

// Store resolves the per-install device identifier.
//
// Two concurrent first-use calls may both generate and persist an ID; the
// last write wins. The identifier only tags requests, so that is acceptable.
type Store struct {
	storage Storage
	sink    telemetry.Sink
	logger  *slog.Logger
	metrics *metrics.Metrics
	newID   func() string

	mu        sync.Mutex
	ephemeral string
}

// Option customizes a Store.
type Option func(*Store)

func WithSink(sink telemetry.Sink) Option {
	return func(s *Store) { s.sink = sink }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// NewStore creates a Store over storage. A nil storage behaves as if the
// persistent store were unavailable.
func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		sink:    telemetry.Nop{},
		logger:  logging.NewNop(),
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreate returns the persisted identifier, creating and persisting one
// on first use. Storage failures never reach the caller: a process-lifetime
// identifier is returned instead and the failure is reported to telemetry.
// Once that happens the Store keeps the ephemeral identifier and stops
// consulting storage, so a session never carries two identities.
func (s *Store) GetOrCreate(ctx context.Context) string {
	s.mu.Lock()
	ephemeral := s.ephemeral
	s.mu.Unlock()
	if ephemeral != "" {
		return ephemeral
	}

	if s.storage == nil {
		return s.fallback(errors.New("no persistent storage configured"))
	}

	id, err := s.storage.Get(ctx, DeviceKey)
	switch {
	case err == nil:
		if _, perr := uuid.Parse(id); perr == nil {
			return id
		}
		s.logger.Warn("stored device id is not a uuid, regenerating")
	case errors.Is(err, ErrNotFound):
	default:
		return s.fallback(fmt.Errorf("read device id: %w", err))
	}

	id = s.newID()
	if err := s.storage.Set(ctx, DeviceKey, id); err != nil {
		return s.fallback(fmt.Errorf("persist device id: %w", err))
	}
	s.logger.Debug("created device id")
	return id
}

func (s *Store) fallback(cause error) string {
	s.mu.Lock()
	if s.ephemeral == "" {
		s.ephemeral = s.newID()
	}
	id := s.ephemeral
	s.mu.Unlock()

	s.logger.Warn("device id storage unavailable, using ephemeral id", "error", cause)
	s.metrics.IdentityFallback()
	s.sink.Emit(telemetry.Exception(cause, map[string]string{"Component": "identity"}))
	return id
}
