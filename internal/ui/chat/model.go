// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/jaml-tui/internal/app"
	"github.com/jeranaias/jaml-tui/internal/model"
	"github.com/jeranaias/jaml-tui/internal/ui/components"
	"github.com/jeranaias/jaml-tui/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current mode of the chat screen.
type State int

const (
	StateOnboarding State = iota // Choosing gender and avatar
	StateReady                   // Accepting input
	StateBusy                    // A request is in flight
	StateSidebar                 // Browsing conversations
)

// onboardStep is the position in the first-run flow.
type onboardStep int

const (
	onboardGender onboardStep = iota
	onboardAvatar
)

const (
	banPollInterval = time.Second
	noticeDuration  = 4 * time.Second
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Options configure a new Model.
type Options struct {
	App   *app.App
	Theme *styles.Theme

	// Provider is shown in the status bar.
	Provider string

	// Context bounds every request. Defaults to context.Background().
	Context context.Context
}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	app   *app.App
	ctx   context.Context
	state State

	// Styling
	theme    *styles.Theme
	markdown *components.Markdown

	// Dimensions
	width  int
	height int

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keyMap   KeyMap

	provider string

	// Per-send toggles
	thinking bool
	staged   *app.StagedImage

	// Transient status line text. noticeSeq discards stale expiry ticks.
	notice    string
	noticeSeq int

	// overlay replaces the conversation in the viewport until dismissed
	// (help, search results, the system instruction).
	overlay string

	// Sidebar cursor
	cursor int

	// Onboarding selection
	onboard onboardStep
	gender  model.Gender

	// Ban countdown, "" when not banned.
	countdown string
}

// New creates a chat model for opts.App.
func New(opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "اكتب رسالتك..."
	ti.CharLimit = 8192
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = styles.ThinkingSpinner

	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(opts.App.Theme())
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	m := Model{
		app:      opts.App,
		ctx:      ctx,
		state:    StateReady,
		theme:    theme,
		markdown: components.NewMarkdown(theme.GlamourStyle()),
		viewport: vp,
		input:    ti,
		spinner:  sp,
		keyMap:   DefaultKeyMap(),
		provider: opts.Provider,
	}
	if !opts.App.OnboardingComplete() {
		m.state = StateOnboarding
		m.input.Blur()
	}
	m.updateCountdown()
	return m
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink and the ban poll.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, banTickCmd())
}

// State returns the current screen mode.
func (m Model) State() State {
	return m.state
}

// Thinking reports whether deep thinking is on for the next send.
func (m Model) Thinking() bool {
	return m.thinking
}

// Staged returns the image attached to the next send, if any.
func (m Model) Staged() *app.StagedImage {
	return m.staged
}

// Notice returns the current status line notice.
func (m Model) Notice() string {
	return m.notice
}

// =============================================================================
// STATE HELPERS
// =============================================================================

// canSend reports whether the input accepts a request right now.
func (m Model) canSend() bool {
	return m.state == StateReady && m.countdown == "" && !m.app.Quota().Exhausted()
}

func (m *Model) setNotice(text string) tea.Cmd {
	m.notice = text
	m.noticeSeq++
	seq := m.noticeSeq
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

// withNotice sets a notice on a copy of m and returns it with the expiry.
func (m Model) withNotice(text string) (tea.Model, tea.Cmd) {
	cmd := m.setNotice(text)
	return m, cmd
}

func (m *Model) updateCountdown() {
	if st := m.app.Abuse().Status(); st.Banned {
		m.countdown = app.BanCountdown(st.Remaining)
		return
	}
	m.countdown = ""
}

func (m *Model) setTheme(th model.Theme) {
	theme := styles.NewTheme(th)
	theme.SetSize(m.width, m.height)
	m.theme = theme
	m.markdown = components.NewMarkdown(theme.GlamourStyle())
	m.refresh()
}

// layout sizes the viewport to what the chrome leaves.
func (m *Model) layout() {
	m.theme.SetSize(m.width, m.height)

	chrome := 5 // header, input (3 with border), status
	if m.countdown != "" {
		chrome++
	}
	if m.staged != nil {
		chrome++
	}
	h := m.height - chrome
	if h < 3 {
		h = 3
	}
	w := m.width
	if m.state == StateSidebar {
		w -= sidebarWidth(m.width)
	}
	if w < 20 {
		w = 20
	}
	m.viewport.Width = w
	m.viewport.Height = h
	m.input.Width = m.width - 6
}

// refresh re-renders the active conversation into the viewport.
func (m *Model) refresh() {
	if m.overlay != "" {
		m.viewport.SetContent(m.overlay)
		m.viewport.GotoTop()
		return
	}
	var msgs []model.Message
	if c, ok := m.app.Conversations().Active(); ok {
		msgs = c.Messages
	}
	m.viewport.SetContent(components.RenderMessages(
		msgs, m.app.Persona(), m.viewport.Width, -1, m.theme, m.markdown))
	m.viewport.GotoBottom()
}

func (m *Model) showOverlay(text string) {
	m.overlay = text
	m.refresh()
}

func (m *Model) closeOverlay() {
	m.overlay = ""
	m.refresh()
}

func sidebarWidth(total int) int {
	w := total / 3
	if w < 24 {
		w = 24
	}
	if w > 40 {
		w = 40
	}
	return w
}
