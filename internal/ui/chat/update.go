// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/jaml-tui/internal/ai"
	"github.com/jeranaias/jaml-tui/internal/app"
	"github.com/jeranaias/jaml-tui/internal/model"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.state != StateBusy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case resultMsg:
		return m.handleResult(msg)

	case titleMsg:
		if msg.OK {
			m.refresh()
		}
		return m, nil

	case saveMsg:
		if msg.Err != nil {
			return m.withNotice("تعذر حفظ الصورة: " + msg.Err.Error())
		}
		return m.withNotice("تم حفظ الصورة في " + msg.Path)

	case banTickMsg:
		wasBanned := m.countdown != ""
		if m.app.Abuse().Poll(time.Time(msg)) {
			slog.Debug("ban_countdown_finished")
		}
		m.updateCountdown()
		if wasBanned != (m.countdown != "") {
			m.layout()
		}
		return m, banTickCmd()

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case ThemeChangedMsg:
		if msg.Theme == m.app.Theme() {
			return m, nil
		}
		if err := m.app.SetTheme(msg.Theme); err != nil {
			slog.Warn("theme_persist_failed", "theme", msg.Theme, "error", err)
		}
		m.setTheme(msg.Theme)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Quit) {
		return m, tea.Quit
	}

	switch m.state {
	case StateOnboarding:
		return m.handleOnboardingKey(msg)
	case StateSidebar:
		return m.handleSidebarKey(msg)
	}

	switch {
	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	case key.Matches(msg, m.keyMap.Top):
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keyMap.Bottom):
		m.viewport.GotoBottom()
		return m, nil
	case key.Matches(msg, m.keyMap.Cancel):
		switch {
		case m.overlay != "":
			m.closeOverlay()
		case m.staged != nil:
			m.staged = nil
			m.layout()
		default:
			m.input.Reset()
		}
		return m, nil
	case key.Matches(msg, m.keyMap.Thinking):
		m.thinking = !m.thinking
		if m.thinking {
			return m.withNotice("التفكير العميق مفعل")
		}
		return m.withNotice("التفكير العميق متوقف")
	case key.Matches(msg, m.keyMap.Sidebar):
		m.openSidebar()
		return m, nil
	case key.Matches(msg, m.keyMap.New):
		if m.state == StateBusy {
			return m, nil
		}
		return m.newConversation()
	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleOnboardingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	choice := msg.String()
	switch m.onboard {
	case onboardGender:
		switch choice {
		case "1":
			m.gender = model.GenderMale
		case "2":
			m.gender = model.GenderFemale
		default:
			return m, nil
		}
		m.onboard = onboardAvatar
		return m, nil

	case onboardAvatar:
		if len(choice) != 1 || choice[0] < '1' || int(choice[0]-'0') > len(model.Avatars) {
			if key.Matches(msg, m.keyMap.Cancel) {
				m.onboard = onboardGender
			}
			return m, nil
		}
		p := model.Persona{Avatar: model.Avatars[choice[0]-'1'], Gender: m.gender}
		if err := m.app.CompleteOnboarding(p); err != nil {
			return m.withNotice(err.Error())
		}
		m.state = StateReady
		m.input.Focus()
		m.layout()
		if _, ok := m.app.Conversations().Active(); !ok {
			return m.newConversation()
		}
		m.refresh()
		return m, nil
	}
	return m, nil
}

func (m *Model) openSidebar() {
	if m.state == StateBusy {
		return
	}
	m.state = StateSidebar
	m.cursor = 0
	active := m.app.Conversations().ActiveID()
	for i, c := range m.app.Conversations().List() {
		if c.ID == active {
			m.cursor = i
			break
		}
	}
	m.input.Blur()
	m.layout()
	m.refresh()
}

func (m *Model) closeSidebar() {
	m.state = StateReady
	m.input.Focus()
	m.layout()
	m.refresh()
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	convs := m.app.Conversations().List()
	switch {
	case key.Matches(msg, m.keyMap.Cancel), key.Matches(msg, m.keyMap.Sidebar):
		m.closeSidebar()
	case key.Matches(msg, m.keyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keyMap.Down):
		if m.cursor < len(convs)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keyMap.Submit):
		if m.cursor < len(convs) {
			if err := m.app.Conversations().Select(convs[m.cursor].ID); err != nil {
				return m.withNotice(err.Error())
			}
		}
		m.closeSidebar()
	case key.Matches(msg, m.keyMap.Delete):
		if m.cursor < len(convs) {
			if err := m.app.Conversations().Delete(convs[m.cursor].ID); err != nil {
				return m.withNotice(err.Error())
			}
			if m.cursor >= m.app.Conversations().Len() && m.cursor > 0 {
				m.cursor--
			}
			m.refresh()
		}
	}
	return m, nil
}

// =============================================================================
// SUBMIT
// =============================================================================

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if strings.HasPrefix(text, "/") {
		return m.handleCommand(text)
	}
	if m.state == StateBusy {
		return m, nil
	}
	if m.countdown != "" {
		return m.withNotice(app.MsgBan)
	}
	if m.app.Quota().Exhausted() {
		return m.withNotice(app.MsgQuotaExhausted)
	}
	if text == "" && m.staged == nil {
		return m, nil
	}

	m.input.Reset()
	m.overlay = ""
	opts := app.SendOptions{Thinking: m.thinking}
	a, ctx := m.app, m.ctx

	if staged := m.staged; staged != nil {
		m.staged = nil
		m.layout()
		return m.startRequest(func() (app.Result, error) {
			return a.SendImage(ctx, text, *staged, opts)
		})
	}
	return m.startRequest(func() (app.Result, error) {
		return a.Send(ctx, text, opts)
	})
}

// startRequest runs fn in the background and shows the spinner until its
// resultMsg arrives. The user message shows up right away since the app
// records it before calling the model.
func (m Model) startRequest(fn func() (app.Result, error)) (tea.Model, tea.Cmd) {
	m.state = StateBusy
	return m, tea.Batch(
		func() tea.Msg {
			res, err := fn()
			return resultMsg{Result: res, Err: err}
		},
		m.spinner.Tick,
	)
}

func (m Model) handleResult(msg resultMsg) (tea.Model, tea.Cmd) {
	if m.state == StateBusy {
		m.state = StateReady
	}
	m.updateCountdown()
	m.layout()
	m.refresh()

	var cmds []tea.Cmd
	if msg.Err != nil {
		if text := errorNotice(msg.Err); text != "" {
			cmds = append(cmds, m.setNotice(text))
		}
		return m, tea.Batch(cmds...)
	}

	res := msg.Result
	switch {
	case res.Unlocked:
		cmds = append(cmds, m.setNotice("DEV"))
	case res.Banned:
		cmds = append(cmds, m.setNotice(app.MsgBan))
	case res.Warning > 0:
		cmds = append(cmds, m.setNotice(fmt.Sprintf("تحذير %d", res.Warning)))
	}
	if res.NeedsTitle {
		cmds = append(cmds, titleCmd(m.ctx, m.app, res.ConversationID))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) newConversation() (tea.Model, tea.Cmd) {
	if _, err := m.app.NewConversation(); err != nil {
		return m.withNotice(err.Error())
	}
	m.overlay = ""
	m.refresh()
	return m, nil
}

// errorNotice maps a rejected request to the status line text.
func errorNotice(err error) string {
	switch {
	case errors.Is(err, app.ErrBusy), errors.Is(err, app.ErrEmptyPrompt):
		return ""
	case errors.Is(err, app.ErrBanned):
		return app.MsgBan
	case errors.Is(err, app.ErrQuotaExhausted):
		return app.MsgQuotaExhausted
	case errors.Is(err, app.ErrDevModeRequired):
		return app.MsgDevModeRequired
	case errors.Is(err, ai.ErrNotConfigured):
		return "لم يتم إعداد مفتاح الذكاء الاصطناعي. شغّل: jaml config set ai.gemini_api_key <key>"
	case errors.Is(err, ai.ErrTooFewMessages):
		return "المحادثة قصيرة جداً للتلخيص"
	}
	return err.Error()
}

// =============================================================================
// COMMAND CREATORS
// =============================================================================

func banTickCmd() tea.Cmd {
	return tea.Tick(banPollInterval, func(t time.Time) tea.Msg {
		return banTickMsg(t)
	})
}

func titleCmd(ctx context.Context, a *app.App, id string) tea.Cmd {
	return func() tea.Msg {
		title, ok, err := a.AutoTitle(ctx, id)
		if err != nil {
			return titleMsg{ConversationID: id}
		}
		return titleMsg{ConversationID: id, Title: title, OK: ok}
	}
}

func saveCmd(a *app.App, msgID, path string) tea.Cmd {
	return func() tea.Msg {
		return saveMsg{Path: path, Err: a.SaveImage(msgID, path)}
	}
}
