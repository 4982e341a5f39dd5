// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/jaml-tui/internal/model"
)

func TestPaletteFor(t *testing.T) {
	assert.Equal(t, model.ThemePurple, PaletteFor(model.ThemePurple).Name)
	assert.Equal(t, model.ThemeEarthy, PaletteFor(model.ThemeEarthy).Name)
	assert.Equal(t, model.ThemeEarthy, PaletteFor("unknown").Name)
}

func TestNewTheme(t *testing.T) {
	for _, name := range []model.Theme{model.ThemeEarthy, model.ThemePurple} {
		theme := NewTheme(name)
		assert.Equal(t, name, theme.Palette.Name)
		assert.Contains(t, theme.Header.Render("جمل"), "جمل")
		assert.NotEmpty(t, theme.ChromaStyle())
		assert.Contains(t, []string{"dark", "light"}, theme.GlamourStyle())
	}
}

func TestLayoutMode(t *testing.T) {
	theme := NewTheme(model.ThemeEarthy)
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{80, LayoutMedium},
		{120, LayoutWide},
	}
	for _, tt := range tests {
		theme.SetSize(tt.width, 30)
		assert.Equal(t, tt.want, theme.GetLayoutMode(), "width %d", tt.width)
	}
}

func TestThinkingSpinner(t *testing.T) {
	assert.NotEmpty(t, ThinkingSpinner.Frames)
	assert.Positive(t, ThinkingSpinner.FPS)
}
