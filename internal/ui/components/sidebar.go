// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/jaml-tui/internal/model"
	"github.com/jeranaias/jaml-tui/internal/ui/styles"
	"github.com/jeranaias/jaml-tui/internal/util"
)

// Sidebar renders the conversation list. cursor is the highlighted row;
// the active conversation is marked.
func Sidebar(theme *styles.Theme, convs []model.Conversation, activeID string, cursor, width, height int) string {
	inner := width - 4
	if inner < 10 {
		inner = 10
	}

	lines := []string{theme.HeaderTitle.Render("المحادثات"), ""}
	if len(convs) == 0 {
		lines = append(lines, theme.Muted.Render("لا توجد محادثات"))
	}

	// Keep the cursor visible when the list is taller than the panel.
	visible := height - 4
	if visible < 1 {
		visible = 1
	}
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}

	for i := start; i < len(convs) && i < start+visible; i++ {
		c := convs[i]
		marker := "  "
		if c.ID == activeID {
			marker = "> "
		}
		title := util.PadWidth(util.TruncateWidth(util.SingleLine(c.Title), inner-2), inner-2)
		row := marker + title
		switch {
		case i == cursor:
			row = theme.Selected.Render(theme.SidebarActive.Render(row))
		case c.ID == activeID:
			row = theme.SidebarActive.Render(row)
		default:
			row = theme.SidebarItem.Render(row)
		}
		lines = append(lines, row)
	}

	lines = append(lines, "", theme.Help.Render("enter فتح  d حذف  esc رجوع"))
	return theme.Sidebar.Width(width).Height(height).Render(strings.Join(lines, "\n"))
}
