package textformat

import (
	"html"
	"strings"
)

// Stage is a single named rewrite applied by a Pipeline.
type Stage struct {
	Name  string
	Apply func(string) string
}

// Stages in the order the default pipeline runs them.
var (
	UnicodeEscapeDecode   = Stage{Name: "unicode-escape-decode", Apply: decodeEscapes}
	HTMLEntityDecode      = Stage{Name: "html-entity-decode", Apply: html.UnescapeString}
	NewlineToBreak        = Stage{Name: "newline-to-break", Apply: newlinesToBreaks}
	BoldMarkdown          = Stage{Name: "bold-markdown", Apply: boldMarkdown}
	HeadingColonBold      = Stage{Name: "heading-colon-bold", Apply: boldHeadings}
	QuotedPhraseTitleCase = Stage{Name: "quoted-phrase-title-case", Apply: titleCaseQuotes}
)

// Pipeline runs its stages in order. It holds no state between runs and is
// safe for concurrent use.
type Pipeline struct {
	stages []Stage
}

// New builds a pipeline from the given stages. Stage order matters: the
// heading and quote rewrites expect newlines to already be <br> markers.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: append([]Stage(nil), stages...)}
}

var defaultPipeline = New(
	UnicodeEscapeDecode,
	HTMLEntityDecode,
	NewlineToBreak,
	BoldMarkdown,
	HeadingColonBold,
	QuotedPhraseTitleCase,
)

// Default returns the standard response pipeline.
func Default() *Pipeline {
	return defaultPipeline
}

// Run applies every stage to raw and returns the resulting fragment.
func (p *Pipeline) Run(raw string) string {
	out := raw
	for _, stage := range p.stages {
		out = stage.Apply(out)
	}
	return out
}

// Stages returns the stage names in execution order.
func (p *Pipeline) Stages() []string {
	names := make([]string, 0, len(p.stages))
	for _, stage := range p.stages {
		names = append(names, stage.Name)
	}
	return names
}

// FinalizeOptions controls the last, variant-dependent step.
type FinalizeOptions struct {
	// Caption is the user's original input; when non-blank it is prepended
	// as a bold paragraph.
	Caption string
	// StripApostrophes removes ' from the body so the fragment can be
	// dropped into a script literal.
	StripApostrophes bool
}

// Finalize applies the caption and apostrophe options to a fragment.
func Finalize(fragment string, opts FinalizeOptions) string {
	if opts.StripApostrophes {
		fragment = strings.ReplaceAll(fragment, "'", "")
	}
	if caption := strings.TrimSpace(opts.Caption); caption != "" {
		fragment = "<p><b>" + html.EscapeString(caption) + "</b></p>" + fragment
	}
	return fragment
}

// Format runs the default pipeline and then Finalize.
func Format(raw string, opts FinalizeOptions) string {
	return Finalize(defaultPipeline.Run(raw), opts)
}
