// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/jaml-tui/internal/ai"
	"github.com/jeranaias/jaml-tui/internal/model"
	"github.com/jeranaias/jaml-tui/internal/ui/styles"
	"github.com/jeranaias/jaml-tui/internal/util"
)

// =============================================================================
// MESSAGE BUBBLE
// =============================================================================

// MessageView renders one conversation message.
type MessageView struct {
	Message  model.Message
	Persona  model.Persona
	Width    int
	Selected bool
	// Index is the 1-based position shown in the header, used by the
	// message commands (/edit, /delete, /save).
	Index int

	Theme    *styles.Theme
	Markdown *Markdown
}

// View renders the message for its role and payload.
func (v MessageView) View() string {
	var out string
	if v.Message.IsUser() {
		out = v.renderUser()
	} else {
		out = v.renderModel()
	}
	if v.Selected {
		out = v.Theme.Selected.Render(out)
	}
	return out
}

func (v MessageView) contentWidth() int {
	w := v.Width - 10
	if w < 20 {
		w = 20
	}
	return w
}

func (v MessageView) header(name string, nameStyle lipgloss.Style) string {
	parts := []string{nameStyle.Render(name)}
	if v.Index > 0 {
		parts = append(parts, v.Theme.Muted.Render(fmt.Sprintf("#%d", v.Index)))
	}
	if !v.Message.Timestamp.IsZero() {
		parts = append(parts, v.Theme.Timestamp.Render(v.Message.Timestamp.Format("15:04")))
	}
	return strings.Join(parts, " ")
}

func (v MessageView) renderUser() string {
	var body []string
	if fi := v.Message.FileInfo; fi != nil {
		body = append(body, v.Theme.Attachment.Render("[ملف] "+fi.Name))
	}
	if v.Message.ImageURL != "" {
		body = append(body, v.Theme.Attachment.Render("[صورة] "+imageLabel(v.Message.ImageURL)))
	}
	if v.Message.FileInfo == nil && strings.TrimSpace(v.Message.Content) != "" {
		body = append(body, lipgloss.NewStyle().Width(v.contentWidth()).Render(v.Message.Content))
	}

	bubble := v.Theme.UserBubble.Render(strings.Join(body, "\n"))
	return lipgloss.JoinVertical(lipgloss.Right,
		v.header("أنت", v.Theme.Muted),
		bubble,
	)
}

func (v MessageView) renderModel() string {
	msg := v.Message
	name := AvatarGlyph(v.Persona.Avatar) + " " + v.Persona.Name()
	header := v.header(name, v.Theme.Avatar)

	switch {
	case msg.Code != nil:
		code := CodeView{Block: *msg.Code, Width: v.Width - 2, Theme: v.Theme}
		return lipgloss.JoinVertical(lipgloss.Left, header, code.View())

	case msg.ImageURL != "":
		var body []string
		if strings.TrimSpace(msg.Content) != "" {
			body = append(body, v.markdown(msg.Content))
		}
		body = append(body, v.Theme.Attachment.Render(
			fmt.Sprintf("[صورة] %s  (/save %d <path>)", imageLabel(msg.ImageURL), v.Index)))
		return lipgloss.JoinVertical(lipgloss.Left, header, v.Theme.ModelBubble.Render(strings.Join(body, "\n")))

	case msg.IsSummary:
		return lipgloss.JoinVertical(lipgloss.Left, header, v.Theme.SummaryBubble.Render(v.markdown(msg.Content)))
	}

	content := msg.Content
	if strings.TrimSpace(content) == "" {
		content = "..."
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, v.Theme.ModelBubble.Render(v.markdown(content)))
}

func (v MessageView) markdown(content string) string {
	if v.Markdown == nil {
		return lipgloss.NewStyle().Width(v.contentWidth()).Render(content)
	}
	return v.Markdown.Render(content, v.contentWidth())
}

// imageLabel describes an image URL: a data URL by type and size, a path
// by its (truncated) file name.
func imageLabel(url string) string {
	if strings.HasPrefix(url, "data:") {
		img, err := ai.ParseDataURL(url)
		if err != nil {
			return "generated"
		}
		return fmt.Sprintf("%s, %s", img.MIMEType, formatBytes(len(img.Data)))
	}
	return util.TruncateWidth(url, 40)
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// =============================================================================
// MESSAGE LIST
// =============================================================================

// RenderMessages renders a conversation top to bottom. selected is the
// index of the highlighted message, or -1.
func RenderMessages(msgs []model.Message, persona model.Persona, width, selected int, theme *styles.Theme, md *Markdown) string {
	if len(msgs) == 0 {
		return theme.Notice.Width(width).Render("ابدأ المحادثة بكتابة رسالة")
	}
	parts := make([]string, 0, len(msgs))
	for i, msg := range msgs {
		parts = append(parts, MessageView{
			Message:  msg,
			Persona:  persona,
			Width:    width,
			Selected: i == selected,
			Index:    i + 1,
			Theme:    theme,
			Markdown: md,
		}.View())
	}
	return strings.Join(parts, "\n\n")
}
