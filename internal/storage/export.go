// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/jaml-tui/internal/model"
	"github.com/jeranaias/jaml-tui/internal/util"
)

// =============================================================================
// CONVERSATION EXPORT
// =============================================================================

// ExportMarkdown renders a conversation as Markdown with role labels and
// timestamps. Images are linked, code is fenced.
func ExportMarkdown(c model.Conversation, persona model.Persona) string {
	var sb strings.Builder
	sb.WriteString("# " + c.Title + "\n\n")
	sb.WriteString("Created: " + c.CreatedAt.Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, msg := range c.Messages {
		role := "**You**"
		if msg.IsModel() {
			role = "**" + persona.LatinName() + "**"
		}
		if msg.IsSummary {
			role += " (summary)"
		}
		sb.WriteString(role + " (" + msg.Timestamp.Format("15:04") + "):\n\n")
		if msg.Content != "" {
			sb.WriteString(msg.Content)
			sb.WriteString("\n\n")
		}
		if msg.FileInfo != nil {
			sb.WriteString("_File: " + msg.FileInfo.Name + "_\n\n")
		}
		if msg.ImageURL != "" {
			if strings.HasPrefix(msg.ImageURL, "data:") {
				sb.WriteString("_[generated image]_\n\n")
			} else {
				sb.WriteString("![image](" + msg.ImageURL + ")\n\n")
			}
		}
		if msg.Code != nil {
			sb.WriteString("```" + msg.Code.Language + "\n" + msg.Code.Content + "\n```\n\n")
		}
		sb.WriteString("---\n\n")
	}

	return sb.String()
}

// ExportJSON renders a conversation as pretty-printed JSON.
func ExportJSON(c model.Conversation) ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// =============================================================================
// LIST FORMATTING
// =============================================================================

// Preview returns the first user text of a conversation, shortened.
func Preview(c model.Conversation, maxRunes int) string {
	for _, msg := range c.Messages {
		if msg.IsUser() && msg.Content != "" {
			return util.TruncateRunes(util.SingleLine(msg.Content), maxRunes)
		}
	}
	return ""
}

// FormatConversationList formats conversations as a plain table.
func FormatConversationList(convs []model.Conversation, activeID string) string {
	if len(convs) == 0 {
		return "No conversations found."
	}

	var sb strings.Builder
	sb.WriteString("  " + util.PadWidth("#", 4) + util.PadWidth("Title", 32) + " " +
		util.PadWidth("Updated", 17) + " Messages\n")
	sb.WriteString(strings.Repeat("-", 64) + "\n")

	for i, c := range convs {
		marker := "  "
		if c.ID == activeID {
			marker = "* "
		}
		sb.WriteString(marker +
			util.PadWidth(strconv.Itoa(i+1), 4) +
			util.PadWidth(c.Title, 32) + " " +
			util.PadWidth(c.UpdatedAt.Format("2006-01-02 15:04"), 17) + " " +
			strconv.Itoa(len(c.Messages)) + "\n")
	}
	return sb.String()
}
