// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jeranaias/jaml-tui/internal/model"
)

// =============================================================================
// HTML EXPORT
// =============================================================================

// htmlColors are the light-mode colours of each theme.
var htmlColors = map[model.Theme]struct {
	accent, surface, text, muted, userBg, modelBg string
}{
	model.ThemeEarthy: {"#9A5B2E", "#FBF7F0", "#2E2218", "#A08F7D", "#F3E2CC", "#ECEFE3"},
	model.ThemePurple: {"#7C3AED", "#FFFFFF", "#1F1637", "#8B80A8", "#EDE9FE", "#F5F3FF"},
}

var (
	fencedCode = regexp.MustCompile("```([a-zA-Z0-9_+-]*)\n([\\s\\S]*?)```")
	inlineCode = regexp.MustCompile("`([^`\n]+)`")
)

// ExportHTML renders a conversation as a standalone right-to-left HTML page.
// Generated images are embedded; attached images are named only.
func ExportHTML(c model.Conversation, persona model.Persona, theme model.Theme) string {
	colors, ok := htmlColors[theme]
	if !ok {
		colors = htmlColors[model.ThemeEarthy]
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"ar\" dir=\"rtl\">\n<head>\n")
	sb.WriteString("<meta charset=\"UTF-8\">\n")
	sb.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&sb, "<title>%s</title>\n", html.EscapeString(c.Title))
	sb.WriteString("<meta name=\"generator\" content=\"jaml\">\n")
	fmt.Fprintf(&sb, "<style>\n"+htmlCSS+"</style>\n",
		colors.surface, colors.text, colors.accent, colors.muted, colors.userBg, colors.modelBg)
	sb.WriteString("</head>\n<body>\n<div class=\"container\">\n")

	sb.WriteString("<header>\n")
	fmt.Fprintf(&sb, "<h1>%s</h1>\n", html.EscapeString(c.Title))
	fmt.Fprintf(&sb, "<p class=\"meta\">%s · %d</p>\n",
		c.CreatedAt.Format("2006-01-02 15:04"), len(c.Messages))
	sb.WriteString("</header>\n<main>\n")

	for _, msg := range c.Messages {
		writeHTMLMessage(&sb, msg, persona)
	}

	sb.WriteString("</main>\n")
	fmt.Fprintf(&sb, "<footer>jaml · %s</footer>\n", time.Now().Format("2006-01-02 15:04"))
	sb.WriteString("</div>\n</body>\n</html>\n")
	return sb.String()
}

func writeHTMLMessage(sb *strings.Builder, msg model.Message, persona model.Persona) {
	class, label := "user", "أنت"
	if msg.IsModel() {
		class, label = "model", persona.Name()
	}
	if msg.IsSummary {
		class += " summary"
	}

	fmt.Fprintf(sb, "<section class=\"message %s\">\n", class)
	fmt.Fprintf(sb, "<div class=\"who\">%s <span class=\"time\">%s</span></div>\n",
		html.EscapeString(label), msg.Timestamp.Format("15:04"))

	if msg.Content != "" {
		sb.WriteString("<div class=\"content\">")
		sb.WriteString(formatHTMLContent(msg.Content))
		sb.WriteString("</div>\n")
	}
	if msg.FileInfo != nil {
		fmt.Fprintf(sb, "<p class=\"file\">%s</p>\n", html.EscapeString(msg.FileInfo.Name))
	}
	switch {
	case strings.HasPrefix(msg.ImageURL, "data:image/"):
		fmt.Fprintf(sb, "<img src=\"%s\" alt=\"\">\n", html.EscapeString(msg.ImageURL))
	case msg.ImageURL != "":
		fmt.Fprintf(sb, "<p class=\"file\">%s</p>\n", html.EscapeString(filepath.Base(msg.ImageURL)))
	}
	if msg.Code != nil {
		writeHTMLCode(sb, msg.Code.Language, msg.Code.Content)
	}
	sb.WriteString("</section>\n")
}

func writeHTMLCode(sb *strings.Builder, lang, code string) {
	sb.WriteString("<div class=\"code\" dir=\"ltr\">")
	if lang != "" {
		fmt.Fprintf(sb, "<div class=\"lang\">%s</div>", html.EscapeString(lang))
	}
	fmt.Fprintf(sb, "<pre><code>%s</code></pre></div>\n", html.EscapeString(strings.TrimRight(code, "\n")))
}

// formatHTMLContent escapes text, turns fenced blocks into code boxes and
// splits the rest into paragraphs.
func formatHTMLContent(content string) string {
	var sb strings.Builder
	rest := content
	for {
		loc := fencedCode.FindStringSubmatchIndex(rest)
		if loc == nil {
			writeParagraphs(&sb, rest)
			return sb.String()
		}
		writeParagraphs(&sb, rest[:loc[0]])
		writeHTMLCode(&sb, rest[loc[2]:loc[3]], rest[loc[4]:loc[5]])
		rest = rest[loc[1]:]
	}
}

func writeParagraphs(sb *strings.Builder, text string) {
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		escaped := html.EscapeString(para)
		escaped = inlineCode.ReplaceAllString(escaped, "<code>$1</code>")
		escaped = strings.ReplaceAll(escaped, "\n", "<br>\n")
		sb.WriteString("<p>" + escaped + "</p>\n")
	}
}

// htmlCSS takes surface, text, accent, muted, user and model colours.
const htmlCSS = `* { box-sizing: border-box; margin: 0; padding: 0; }
body { font-family: "Noto Naskh Arabic", "Segoe UI", Tahoma, sans-serif; line-height: 1.8; background: %[1]s; color: %[2]s; padding: 24px; }
.container { max-width: 860px; margin: 0 auto; }
header { border-bottom: 2px solid %[3]s; padding-bottom: 12px; margin-bottom: 20px; }
h1 { color: %[3]s; font-size: 26px; }
.meta, .time, footer, .file { color: %[4]s; font-size: 13px; }
.message { border-radius: 12px; padding: 12px 16px; margin-bottom: 14px; }
.message.user { background: %[5]s; margin-left: 15%%; }
.message.model { background: %[6]s; margin-right: 15%%; }
.message.summary { border: 1px dashed %[3]s; }
.who { font-weight: 700; margin-bottom: 6px; }
.content p { margin-bottom: 8px; }
img { max-width: 100%%; border-radius: 8px; margin-top: 8px; }
.code { background: #1e1e1e; color: #e6e6e6; border-radius: 8px; margin: 8px 0; overflow-x: auto; text-align: left; }
.code .lang { font-size: 12px; padding: 4px 10px; border-bottom: 1px solid #333; color: #aaa; }
.code pre { padding: 10px; font-family: "Fira Code", Consolas, monospace; font-size: 13px; }
code { font-family: "Fira Code", Consolas, monospace; }
footer { text-align: center; margin-top: 24px; }
`
