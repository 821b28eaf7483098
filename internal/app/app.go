package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/five82/roachagram/internal/config"
	"github.com/five82/roachagram/internal/connectivity"
	"github.com/five82/roachagram/internal/document"
	"github.com/five82/roachagram/internal/identity"
	"github.com/five82/roachagram/internal/logging"
	"github.com/five82/roachagram/internal/metrics"
	"github.com/five82/roachagram/internal/roachagram"
	"github.com/five82/roachagram/internal/state"
	"github.com/five82/roachagram/internal/telemetry"
)

// Runtime holds the wired components for one process.
type Runtime struct {
	Config    config.Config
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Sink      telemetry.Sink
	Identity  *identity.Store
	Client    *roachagram.Client
	Presenter *Presenter
	Store     *state.Store

	httpSink      *telemetry.HTTPSink
	closeStorage  func() error
	metricsServer *http.Server
}

// RuntimeOptions tweak NewRuntime.
type RuntimeOptions struct {
	Version   string
	Theme     string // overrides cfg.Theme when set
	Caption   bool
	Checker   connectivity.Checker
	Storage   identity.Storage // overrides cfg.Storage when set
	SkipProbe bool             // disable the connectivity check
}

// NewRuntime wires storage, telemetry, the API client and the Presenter
// from cfg. Close must be called to flush telemetry and release storage.
func NewRuntime(cfg config.Config, logger *slog.Logger, opts RuntimeOptions) (*Runtime, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	rt := &Runtime{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
		Sink:    telemetry.Nop{},
		Store:   &state.Store{},
	}

	if cfg.Telemetry {
		rt.httpSink = telemetry.NewHTTPSink(cfg.TelemetryEndpoint(),
			telemetry.WithLogger(logger),
			telemetry.WithMetrics(rt.Metrics),
		)
		rt.Sink = rt.httpSink
	}

	storage := opts.Storage
	if storage == nil {
		opened, closeFn, err := OpenStorage(cfg.Storage)
		if err != nil {
			return nil, err
		}
		storage = opened
		rt.closeStorage = closeFn
	}
	rt.Identity = identity.NewStore(storage,
		identity.WithSink(rt.Sink),
		identity.WithLogger(logger),
		identity.WithMetrics(rt.Metrics),
	)

	client, err := roachagram.NewClient(cfg.APIBaseURL,
		roachagram.WithRequestTimeout(cfg.RequestTimeout),
		roachagram.WithMaxInputLength(cfg.MaxInputLength),
		roachagram.WithIdentity(rt.Identity),
		roachagram.WithSink(rt.Sink),
		roachagram.WithLogger(logger),
		roachagram.WithMetrics(rt.Metrics),
		roachagram.WithUserAgent(userAgent(opts.Version)),
	)
	if err != nil {
		_ = rt.Close(context.Background())
		return nil, fmt.Errorf("init api client: %w", err)
	}
	rt.Client = client

	checker := opts.Checker
	if checker == nil && !opts.SkipProbe {
		dial, err := connectivity.ForURL(cfg.APIBaseURL)
		if err != nil {
			_ = rt.Close(context.Background())
			return nil, fmt.Errorf("init connectivity check: %w", err)
		}
		checker = dial
	}

	theme := cfg.Theme
	if opts.Theme != "" {
		theme = opts.Theme
	}

	presenterOpts := []PresenterOption{
		WithStore(rt.Store),
		WithSink(rt.Sink),
		WithLogger(logger),
		WithDocumentOptions(DocumentOptions(cfg, theme)),
		WithInfo(DefaultInfo(opts.Version)),
		WithCaption(opts.Caption),
		WithMaxInputLength(cfg.MaxInputLength),
	}
	if checker != nil {
		presenterOpts = append(presenterOpts, WithChecker(checker))
	}
	rt.Presenter = NewPresenter(client, presenterOpts...)
	return rt, nil
}

// DocumentOptions merges the theme defaults with configured overrides.
func DocumentOptions(cfg config.Config, theme string) document.Options {
	opts := document.OptionsForTheme(theme)
	if cfg.FontFamily != "" {
		opts.FontFamily = cfg.FontFamily
	}
	if cfg.RevealSpeedMs > 0 {
		opts.RevealSpeedMs = cfg.RevealSpeedMs
	}
	return opts
}

// OpenStorage builds the identity storage backend named by cfg, wrapped in
// encryption when a key is configured. The returned close func is never nil.
func OpenStorage(cfg config.Storage) (identity.Storage, func() error, error) {
	noop := func() error { return nil }

	var (
		storage identity.Storage
		closeFn = noop
	)
	switch cfg.Backend {
	case config.BackendMemory:
		storage = identity.NewMemoryStorage()
	case config.BackendRedis:
		rs := identity.NewRedisStorage(cfg.RedisAddr)
		storage = rs
		closeFn = rs.Close
	case config.BackendFile, "":
		storage = identity.NewFileStorage(cfg.Path)
	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}

	if cfg.EncryptionKey == "" {
		return storage, closeFn, nil
	}
	key, err := identity.ParseKey(cfg.EncryptionKey)
	if err != nil {
		_ = closeFn()
		return nil, noop, fmt.Errorf("storage encryption key: %w", err)
	}
	enc, err := identity.NewEncrypted(storage, key)
	if err != nil {
		_ = closeFn()
		return nil, noop, fmt.Errorf("storage encryption: %w", err)
	}
	return enc, closeFn, nil
}

// ServeMetrics exposes the Prometheus registry on addr until Close.
func (rt *Runtime) ServeMetrics(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", rt.Metrics.Handler())
	rt.metricsServer = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := rt.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.Logger.Warn("metrics server stopped", "addr", addr, "error", err)
		}
	}()
}

// Close flushes pending telemetry (bounded by ctx) and releases storage.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if rt.metricsServer != nil {
		errs = append(errs, rt.metricsServer.Shutdown(ctx))
	}
	if err := rt.httpSink.Wait(ctx); err != nil {
		errs = append(errs, fmt.Errorf("flush telemetry: %w", err))
	}
	if rt.closeStorage != nil {
		errs = append(errs, rt.closeStorage())
	}
	return errors.Join(errs...)
}

func userAgent(version string) string {
	if version == "" {
		version = "dev"
	}
	return "roachagram/" + version
}
