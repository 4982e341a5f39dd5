// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"path"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/jaml-tui/internal/model"
	"github.com/jeranaias/jaml-tui/internal/ui/styles"
)

// CodeView renders a generated code payload in a numbered, highlighted frame.
type CodeView struct {
	Block model.CodeBlock
	Width int
	Theme *styles.Theme
}

// View returns the framed block. Code labelled "text" is highlighted by
// its shebang when it has one; the label keeps what the model said.
func (v CodeView) View() string {
	code := strings.TrimRight(v.Block.Content, "\n")
	label := v.Block.Language
	if label == "" {
		label = "text"
	}
	lang := label
	if lang == "text" {
		lang = detectLanguage(code)
	}

	gutter := v.Theme.Muted.Width(4).Align(lipgloss.Right).MarginRight(1)
	rows := []string{v.Theme.CodeHeader.Render(label)}
	for i, line := range strings.Split(highlight(code, lang, v.Theme.ChromaStyle()), "\n") {
		rows = append(rows, gutter.Render(fmt.Sprint(i+1))+line)
	}

	return v.Theme.CodeFrame.MaxWidth(max(v.Width-2, 20)).Render(strings.Join(rows, "\n"))
}

// highlight colours code for a 256-colour terminal, or returns it as is.
func highlight(code, lang, style string) string {
	var b strings.Builder
	if err := quick.Highlight(&b, code, lang, "terminal256", style); err != nil {
		return code
	}
	return b.String()
}

// plainText is the lexer used when the language is not known.
const plainText = "plaintext"

// detectLanguage names a lexer for unlabelled code. Only a shebang line is
// trusted; anything else is plain text.
func detectLanguage(code string) string {
	first, _, _ := strings.Cut(code, "\n")
	if !strings.HasPrefix(first, "#!") {
		return plainText
	}
	fields := strings.Fields(strings.TrimPrefix(first, "#!"))
	if len(fields) == 0 {
		return plainText
	}
	interp := path.Base(fields[0])
	if interp == "env" {
		interp = ""
		for _, f := range fields[1:] {
			if !strings.HasPrefix(f, "-") && !strings.Contains(f, "=") {
				interp = f
				break
			}
		}
	}
	for _, name := range []string{interp, strings.TrimRight(interp, "0123456789.")} {
		if name == "" {
			continue
		}
		if l := lexers.Get(name); l != nil {
			return strings.ToLower(l.Config().Name)
		}
	}
	return plainText
}
