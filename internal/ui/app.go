package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/roachagram/internal/app"
	"github.com/five82/roachagram/internal/document"
	"github.com/five82/roachagram/internal/prefs"
	"github.com/five82/roachagram/internal/roachagram"
	"github.com/five82/roachagram/internal/state"
)

// Presenter renders a submission. *app.Presenter satisfies it.
type Presenter interface {
	Present(ctx context.Context, input string, mode document.Mode) (app.Result, error)
}

// themeSetter is implemented by presenters whose document styling follows
// the UI theme.
type themeSetter interface {
	SetDocumentOptions(document.Options)
}

// sessionSource is implemented by presenters that record submissions.
type sessionSource interface {
	Store() *state.Store
}

// Options configures the UI.
type Options struct {
	Context        context.Context
	Presenter      Presenter
	ThemeName      string
	PrefsPath      string
	RevealSpeed    time.Duration
	MaxInputLength int
	Mode           document.Mode
	// DocumentOptions builds document styling for a theme name. Optional.
	DocumentOptions func(theme string) document.Options
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	presenter Presenter
	prefsPath string
	docOpts   func(string) document.Options
	keys      keyMap

	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool

	input    textinput.Model
	maxInput int
	spinner  spinner.Model
	help     help.Model
	output   viewport.Model

	// busy blocks further submissions until the in-flight one returns.
	busy        bool
	mode        document.Mode
	revealSpeed time.Duration

	result    app.Result
	hasResult bool
	lastErr   error
	segments  []segment
	revealed  int
	total     int
	revealGen int

	session    *state.Store
	snapshot   state.Snapshot
	historyPos int // -1 while editing fresh input
}

const (
	defaultRevealSpeed = 30 * time.Millisecond
	defaultMaxInput    = roachagram.MaxInputLength
	headerLines        = 2
	inputLines         = 3
	footerLines        = 2
)

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	speed := opts.RevealSpeed
	if speed <= 0 {
		speed = defaultRevealSpeed
	}

	maxInput := opts.MaxInputLength
	if maxInput <= 0 || maxInput > defaultMaxInput {
		maxInput = defaultMaxInput
	}

	docOpts := opts.DocumentOptions
	if docOpts == nil {
		docOpts = document.OptionsForTheme
	}

	ti := textinput.New()
	ti.Placeholder = "Enter a word or name"
	ti.Prompt = "› "
	ti.CharLimit = maxInput
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:         ctx,
		presenter:   opts.Presenter,
		prefsPath:   prefsPath,
		docOpts:     docOpts,
		keys:        DefaultKeyMap(),
		input:       ti,
		maxInput:    maxInput,
		spinner:     sp,
		help:        help.New(),
		output:      viewport.New(80, 10),
		mode:        opts.Mode,
		revealSpeed: speed,
		total:       -1,
		historyPos:  -1,
	}
	if src, ok := opts.Presenter.(sessionSource); ok {
		m.session = src.Store()
		m.refreshSession()
	}
	m.applyTheme(GetTheme(opts.ThemeName))
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case resultMsg:
		return m.handleResult(msg)

	case revealTickMsg:
		return m.handleRevealTick(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Clear):
		m.clearResult()
		return m, nil

	case key.Matches(msg, m.keys.ToggleMode):
		if m.mode == document.ModeReveal {
			m.mode = document.ModeStatic
			m.finishReveal()
		} else {
			m.mode = document.ModeReveal
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleTheme):
		m.applyTheme(GetTheme(prefs.Prefs{Theme: m.theme.Name}.Toggle().Theme))
		_ = prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name})
		m.refreshOutput()
		return m, nil

	case key.Matches(msg, m.keys.HistoryPrev):
		m.recallHistory(1)
		return m, nil

	case key.Matches(msg, m.keys.HistoryNext):
		m.recallHistory(-1)
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); filterInput(v, m.maxInput) != v {
		m.input.SetValue(filterInput(v, m.maxInput))
	}
	return m, cmd
}

// canSubmit reports whether the submit action is enabled.
func (m Model) canSubmit() bool {
	return !m.busy && m.presenter != nil && strings.TrimSpace(m.input.Value()) != ""
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if !m.canSubmit() {
		return m, nil
	}
	m.busy = true
	m.historyPos = -1
	m.lastErr = nil
	m.clearResult()
	input := m.input.Value()
	return m, tea.Batch(presentCmd(m.ctx, m.presenter, input, m.mode), m.spinner.Tick)
}

func (m Model) handleResult(msg resultMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.lastErr = msg.err
	m.refreshSession()
	if errors.Is(msg.err, roachagram.ErrInvalidInput) {
		return m, nil
	}

	m.result = msg.result
	m.hasResult = true
	m.segments = parseFragment(msg.result.Fragment)
	m.total = runeCount(m.segments)
	m.input.SetValue("")
	m.revealGen++

	if msg.result.Mode != document.ModeReveal || m.total == 0 {
		m.finishReveal()
		return m, nil
	}
	m.revealed = 0
	m.refreshOutput()
	return m, revealTickCmd(m.revealSpeed, m.revealGen)
}

func (m Model) handleRevealTick(msg revealTickMsg) (tea.Model, tea.Cmd) {
	// Ticks from an earlier result are dropped.
	if msg.gen != m.revealGen || m.revealed >= m.total {
		return m, nil
	}
	m.revealed++
	m.refreshOutput()
	if m.revealed >= m.total {
		return m, nil
	}
	return m, revealTickCmd(m.revealSpeed, m.revealGen)
}

func (m *Model) refreshSession() {
	if m.session != nil {
		m.snapshot = m.session.Snapshot()
	}
}

// recallHistory moves through earlier inputs, most recent first. A positive
// step goes further back; stepping past the newest entry clears the input.
func (m *Model) recallHistory(step int) {
	history := m.snapshot.History
	if len(history) == 0 {
		return
	}
	pos := m.historyPos + step
	if pos >= len(history) {
		pos = len(history) - 1
	}
	if pos < 0 {
		m.historyPos = -1
		m.input.SetValue("")
		return
	}
	m.historyPos = pos
	m.input.SetValue(filterInput(history[pos], m.maxInput))
	m.input.CursorEnd()
}

func (m *Model) finishReveal() {
	m.revealed = m.total
	m.refreshOutput()
}

func (m *Model) clearResult() {
	m.hasResult = false
	m.result = app.Result{}
	m.segments = nil
	m.revealed = 0
	m.total = -1
	m.revealGen++
	m.output.SetContent("")
}

func (m *Model) applyTheme(t Theme) {
	m.theme = t
	styles := t.Styles()
	m.input.PromptStyle = styles.AccentText
	m.input.TextStyle = styles.Text
	m.input.PlaceholderStyle = styles.FaintText
	m.spinner.Style = styles.AccentText
	m.help.Styles.ShortKey = styles.WarningText
	m.help.Styles.ShortDesc = styles.MutedText
	m.help.Styles.ShortSeparator = styles.FaintText
	if setter, ok := m.presenter.(themeSetter); ok {
		setter.SetDocumentOptions(m.docOpts(t.Name))
	}
}

func (m *Model) resize() {
	width := m.width - 4
	if width < 10 {
		width = 10
	}
	height := m.height - headerLines - inputLines - footerLines - 2
	if height < 3 {
		height = 3
	}
	m.input.Width = width - 4
	m.output.Width = width
	m.output.Height = height
	m.help.Width = m.width
	m.refreshOutput()
}

func (m *Model) refreshOutput() {
	if !m.hasResult {
		m.output.SetContent("")
		return
	}
	styles := m.theme.Styles()
	content := renderSegments(m.segments, m.revealed, styles)
	if m.output.Width > 0 {
		content = lipgloss.NewStyle().Width(m.output.Width).Render(content)
	}
	m.output.SetContent(content)
	if m.revealed < m.total {
		m.output.GotoBottom()
	}
}

func (m Model) renderMain() string {
	styles := m.theme.Styles()
	var b strings.Builder

	b.WriteString(m.renderHeader(styles))
	b.WriteString("\n\n")

	b.WriteString(styles.Input.Render(m.input.View()))
	b.WriteString("\n")

	b.WriteString(styles.Panel.Render(m.renderOutput(styles)))
	b.WriteString("\n")

	b.WriteString(styles.Footer.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) renderHeader(styles Styles) string {
	parts := []string{styles.Logo.Render("roachagram")}
	if m.busy {
		parts = append(parts, m.spinner.View()+styles.MutedText.Render(" fetching anagrams..."))
	}
	switch snap := m.snapshot; {
	case snap.IsOffline():
		parts = append(parts, styles.DangerText.Render(fmt.Sprintf("API unreachable (%d failed)", snap.ConsecutiveFailures)))
	case snap.HasLast:
		parts = append(parts, styles.FaintText.Render(fmt.Sprintf("last: %s at %s", snap.Last.Input, snap.Last.At.Format("15:04"))))
	}
	parts = append(parts, styles.FaintText.Render("mode: "+m.mode.String()))
	parts = append(parts, styles.FaintText.Render("theme: "+m.theme.Name))
	return styles.Header.Render(strings.Join(parts, "  "))
}

func (m Model) renderOutput(styles Styles) string {
	if m.lastErr != nil && !m.hasResult {
		return styles.DangerText.Render(m.lastErr.Error())
	}
	if !m.hasResult {
		hint := "Type a word or name and press enter."
		if m.busy {
			hint = "Working on it..."
		}
		return lipgloss.NewStyle().Width(m.output.Width).Render(styles.MutedText.Render(hint))
	}
	out := m.output.View()
	if m.result.Fallback {
		notice := "Showing fallback message"
		if m.snapshot.LastError != nil {
			notice += ": " + m.snapshot.LastError.Error()
		}
		out = styles.WarningText.Render(notice) + "\n" + out
	}
	return out
}

// Messages

type resultMsg struct {
	result app.Result
	err    error
}

type revealTickMsg struct {
	gen int
}

// Commands

func presentCmd(ctx context.Context, p Presenter, input string, mode document.Mode) tea.Cmd {
	return func() tea.Msg {
		res, err := p.Present(ctx, input, mode)
		return resultMsg{result: res, err: err}
	}
}

func revealTickCmd(d time.Duration, gen int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return revealTickMsg{gen: gen}
	})
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	var progOpts []tea.ProgramOption
	progOpts = append(progOpts, tea.WithAltScreen())
	if opts.Context != nil {
		progOpts = append(progOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, progOpts...)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}
