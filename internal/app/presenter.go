package app

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"

	"github.com/five82/roachagram/internal/connectivity"
	"github.com/five82/roachagram/internal/document"
	"github.com/five82/roachagram/internal/logging"
	"github.com/five82/roachagram/internal/roachagram"
	"github.com/five82/roachagram/internal/state"
	"github.com/five82/roachagram/internal/telemetry"
	"github.com/five82/roachagram/internal/textformat"
)

// Messages shown in place of a narrative.
const (
	FallbackMessage = "An error occurred while fetching anagrams. Please try again."
	OfflineMessage  = "No internet connection. Check your network and try again."
)

// ErrOffline is returned when the connectivity check fails before submitting.
var ErrOffline = errors.New("no network connection")

// Info describes the running client for failure telemetry.
type Info struct {
	AppVersion  string
	DeviceModel string
	OS          string
}

// DefaultInfo fills DeviceModel and OS from the Go runtime.
func DefaultInfo(version string) Info {
	return Info{
		AppVersion:  version,
		DeviceModel: runtime.GOARCH,
		OS:          runtime.GOOS,
	}
}

// Result is one presentation. Document is always set unless the input was
// rejected.
type Result struct {
	Input    string
	Fragment string
	Document string
	Mode     document.Mode
	Fallback bool
}

// Presenter turns user input into a renderable document:
// submit, then pipeline, then builder. Failures take the same route with a
// fixed message.
type Presenter struct {
	client   roachagram.Submitter
	checker  connectivity.Checker
	pipeline *textformat.Pipeline
	store    *state.Store
	sink     telemetry.Sink
	logger   *slog.Logger
	info     Info
	caption  bool
	maxInput int

	mu      sync.RWMutex
	docOpts document.Options
}

// PresenterOption customizes a Presenter.
type PresenterOption func(*Presenter)

func WithChecker(c connectivity.Checker) PresenterOption {
	return func(p *Presenter) { p.checker = c }
}

func WithStore(s *state.Store) PresenterOption {
	return func(p *Presenter) { p.store = s }
}

func WithSink(s telemetry.Sink) PresenterOption {
	return func(p *Presenter) { p.sink = s }
}

func WithLogger(l *slog.Logger) PresenterOption {
	return func(p *Presenter) { p.logger = l }
}

func WithDocumentOptions(o document.Options) PresenterOption {
	return func(p *Presenter) { p.docOpts = o }
}

func WithInfo(info Info) PresenterOption {
	return func(p *Presenter) { p.info = info }
}

// WithCaption prepends the submitted input above the narrative.
func WithCaption(enabled bool) PresenterOption {
	return func(p *Presenter) { p.caption = enabled }
}

// WithMaxInputLength lowers the accepted input length, matching the client.
func WithMaxInputLength(n int) PresenterOption {
	return func(p *Presenter) { p.maxInput = n }
}

// NewPresenter creates a Presenter around client.
func NewPresenter(client roachagram.Submitter, opts ...PresenterOption) *Presenter {
	p := &Presenter{
		client:   client,
		pipeline: textformat.Default(),
		store:    &state.Store{},
		sink:     telemetry.Nop{},
		logger:   logging.NewNop(),
		docOpts:  document.LightOptions(),
		info:     DefaultInfo("dev"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Store exposes the session state the Presenter records into.
func (p *Presenter) Store() *state.Store {
	return p.store
}

// DocumentOptions returns the styling applied to built documents.
func (p *Presenter) DocumentOptions() document.Options {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.docOpts
}

// SetDocumentOptions replaces the styling, e.g. after a theme toggle.
func (p *Presenter) SetDocumentOptions(o document.Options) {
	p.mu.Lock()
	p.docOpts = o
	p.mu.Unlock()
}

// Present submits input and renders the outcome.
//
// Invalid input returns an error wrapping roachagram.ErrInvalidInput and an
// empty Result. Offline and fetch failures still return a document carrying
// the corresponding message, together with the error.
func (p *Presenter) Present(ctx context.Context, input string, mode document.Mode) (Result, error) {
	req, err := roachagram.NewLimitedRequest(input, p.maxInput)
	if err != nil {
		return Result{}, err
	}
	trimmed := req.Input

	if p.checker != nil && !p.checker.IsConnected(ctx) {
		res := p.render(trimmed, OfflineMessage, mode, textformat.FinalizeOptions{}, true)
		p.store.Record(p.submission(res), ErrOffline)
		p.logger.Warn("submission skipped, network unavailable", "input", trimmed)
		return res, ErrOffline
	}

	raw, err := p.client.Submit(ctx, input)
	switch {
	case errors.Is(err, roachagram.ErrInvalidInput):
		return Result{}, err
	case err != nil:
		res := p.render(trimmed, FallbackMessage, mode, textformat.FinalizeOptions{}, true)
		p.store.Record(p.submission(res), err)
		p.sink.Emit(telemetry.Trace("anagram submission failed", p.traceProps(err)))
		p.logger.Warn("anagram submission failed", "input", trimmed, "error", err)
		return res, err
	}

	opts := textformat.FinalizeOptions{StripApostrophes: mode == document.ModeReveal}
	if p.caption {
		opts.Caption = trimmed
	}
	res := p.render(trimmed, raw, mode, opts, false)
	p.store.Record(p.submission(res), nil)
	p.logger.Info("anagram presented", "input", trimmed, "mode", mode, "fragment_bytes", len(res.Fragment))
	return res, nil
}

func (p *Presenter) render(input, raw string, mode document.Mode, opts textformat.FinalizeOptions, fallback bool) Result {
	fragment := textformat.Finalize(p.pipeline.Run(raw), opts)
	return Result{
		Input:    input,
		Fragment: fragment,
		Document: document.Build(fragment, mode, p.DocumentOptions()),
		Mode:     mode,
		Fallback: fallback,
	}
}

func (p *Presenter) submission(res Result) state.Submission {
	return state.Submission{
		Input:    res.Input,
		Mode:     res.Mode.String(),
		Fallback: res.Fallback,
	}
}

func (p *Presenter) traceProps(err error) map[string]string {
	return map[string]string{
		"Page":        "roachagram",
		"Handler":     "Present",
		"AppVersion":  p.info.AppVersion,
		"DeviceModel": p.info.DeviceModel,
		"OS":          p.info.OS,
		"Error":       err.Error(),
	}
}
