// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/jaml-tui/internal/app"
	"github.com/jeranaias/jaml-tui/internal/model"
	"github.com/jeranaias/jaml-tui/internal/ui/components"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the chat screen.
func (m Model) View() string {
	if m.width == 0 {
		return "..."
	}
	if m.state == StateOnboarding {
		return m.renderOnboarding()
	}

	sections := []string{m.renderHeader()}
	if m.countdown != "" {
		sections = append(sections, components.BanBanner(m.theme, m.countdown, m.width))
	}

	main := m.viewport.View()
	if m.state == StateSidebar {
		sw := sidebarWidth(m.width)
		side := components.Sidebar(m.theme, m.app.Conversations().List(),
			m.app.Conversations().ActiveID(), m.cursor, sw, m.viewport.Height)
		main = lipgloss.JoinHorizontal(lipgloss.Top, side, main)
	}
	sections = append(sections, main)

	if m.staged != nil {
		sections = append(sections, m.renderStaged())
	}
	sections = append(sections, m.renderInput(), m.renderStatus())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	p := m.app.Persona()
	title := model.DefaultTitle
	if c, ok := m.app.Conversations().Active(); ok {
		title = c.Title
	}
	left := m.theme.HeaderTitle.Render(components.AvatarGlyph(p.Avatar) + " " + p.Name())
	right := m.theme.HeaderSubtitle.Render(title)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderStaged() string {
	label := "تعديل صورة"
	if m.staged.Kind == app.StageHomework {
		label = "حل واجب"
	}
	return m.theme.Staged.Render(fmt.Sprintf("[%s] %s  (esc للإلغاء)", label, filepath.Base(m.staged.Path)))
}

func (m Model) renderInput() string {
	w := m.width - 2
	switch {
	case m.state == StateBusy:
		return m.theme.InputDisabled.Width(w).Render(m.spinner.View() + " " + m.app.Persona().Name() + " يكتب")
	case m.countdown != "":
		return m.theme.InputDisabled.Width(w).Render("الإرسال متوقف " + m.countdown)
	case m.app.Quota().Exhausted():
		return m.theme.InputDisabled.Width(w).Render(app.MsgQuotaExhausted)
	}
	return m.theme.InputContainer.Width(w).Render(m.input.View())
}

func (m Model) renderStatus() string {
	return components.StatusBar(m.theme, components.StatusInfo{
		Remaining:     m.app.Quota().Remaining(),
		Allowance:     m.app.Quota().Allowance(),
		Provider:      m.provider,
		Thinking:      m.thinking,
		DevMode:       m.app.DevMode(),
		Impersonating: m.app.Impersonating(),
		Busy:          m.state == StateBusy,
		Notice:        m.notice,
	}, m.width)
}

// =============================================================================
// ONBOARDING
// =============================================================================

func (m Model) renderOnboarding() string {
	var b strings.Builder
	b.WriteString(m.theme.HeaderTitle.Render("مرحباً بك"))
	b.WriteString("\n\n")

	switch m.onboard {
	case onboardGender:
		b.WriteString("اختر المساعد:\n\n")
		male := model.Persona{Gender: model.GenderMale}
		female := model.Persona{Gender: model.GenderFemale}
		fmt.Fprintf(&b, "  1  %s (%s)\n", male.Name(), male.LatinName())
		fmt.Fprintf(&b, "  2  %s (%s)\n", female.Name(), female.LatinName())
	case onboardAvatar:
		b.WriteString("اختر الصورة الرمزية:\n\n")
		for i, a := range model.Avatars {
			fmt.Fprintf(&b, "  %d  %-6s %s\n", i+1, components.AvatarGlyph(a), a)
		}
		b.WriteString("\n" + m.theme.Help.Render("esc للرجوع"))
	}
	if m.notice != "" {
		b.WriteString("\n\n" + m.theme.Error.Render(m.notice))
	}

	box := m.theme.InputContainer.Padding(1, 4).Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
