// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"
)

// Markdown renders model replies. Renderers are cached per width since
// building one is comparatively slow.
type Markdown struct {
	style string

	mu        sync.Mutex
	renderers map[int]*glamour.TermRenderer
}

// NewMarkdown creates a renderer using a glamour standard style name
// ("dark", "light", ...). An empty style auto-detects.
func NewMarkdown(style string) *Markdown {
	return &Markdown{style: style, renderers: make(map[int]*glamour.TermRenderer)}
}

// NewPlainMarkdown creates a renderer for output that is not a terminal.
// It lays text out but emits no escape sequences.
func NewPlainMarkdown() *Markdown {
	return NewMarkdown(glamourstyles.NoTTYStyle)
}

// Render renders content wrapped at width. It returns content unchanged
// if rendering fails.
func (m *Markdown) Render(content string, width int) string {
	r := m.renderer(width)
	if r == nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}

func (m *Markdown) renderer(width int) *glamour.TermRenderer {
	if width < 20 {
		width = 20
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.renderers[width]; ok {
		return r
	}

	styleOpt := glamour.WithAutoStyle()
	if m.style != "" {
		styleOpt = glamour.WithStandardStyle(m.style)
	}
	opts := []glamour.TermRendererOption{styleOpt, glamour.WithWordWrap(width)}
	if m.style == glamourstyles.NoTTYStyle {
		opts = append(opts, glamour.WithColorProfile(termenv.Ascii))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil
	}
	m.renderers[width] = r
	return r
}
