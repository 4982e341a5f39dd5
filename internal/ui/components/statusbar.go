// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/jaml-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusInfo is what the status bar shows.
type StatusInfo struct {
	Remaining     int
	Allowance     int
	Provider      string
	Thinking      bool
	DevMode       bool
	Impersonating bool
	Busy          bool
	Notice        string
}

// StatusBar renders the bottom status line at width.
func StatusBar(theme *styles.Theme, info StatusInfo, width int) string {
	quota := theme.StatusValue.Render(fmt.Sprintf("%d/%d", info.Remaining, info.Allowance))
	switch {
	case info.Remaining == 0:
		quota = theme.Error.Render(fmt.Sprintf("%d/%d", info.Remaining, info.Allowance))
	case info.Remaining <= info.Allowance/10:
		quota = theme.Warning.Render(fmt.Sprintf("%d/%d", info.Remaining, info.Allowance))
	}

	left := []string{theme.StatusKey.Render("الرسائل") + " " + quota}
	if info.Provider != "" {
		left = append(left, theme.StatusKey.Render(info.Provider))
	}
	if info.Thinking {
		left = append(left, theme.Badge.Render("تفكير عميق"))
	}
	if info.DevMode {
		left = append(left, theme.DevBadge.Render("DEV"))
	}
	if info.Impersonating {
		left = append(left, theme.DevBadge.Render("انتحال"))
	}

	right := theme.Help.Render("ctrl+n جديد  ctrl+t تفكير  ctrl+b المحادثات  /help")
	if info.Busy {
		right = theme.Accent.Render("...")
	}
	if info.Notice != "" {
		right = theme.Warning.Render(info.Notice)
	}

	leftStr := strings.Join(left, "  ")
	gap := width - lipgloss.Width(leftStr) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return theme.StatusBar.Width(width).Render(leftStr + strings.Repeat(" ", gap) + right)
}

// BanBanner renders the countdown shown while sending is blocked.
func BanBanner(theme *styles.Theme, countdown string, width int) string {
	return theme.BanBanner.Width(width).Render("تم إيقاف الإرسال مؤقتاً. الوقت المتبقي " + countdown)
}
