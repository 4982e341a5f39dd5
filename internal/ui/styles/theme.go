// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/jaml-tui/internal/model"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	Palette Palette

	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER AND STATUS
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style
	StatusBar      lipgloss.Style
	StatusKey      lipgloss.Style
	StatusValue    lipgloss.Style
	Badge          lipgloss.Style
	DevBadge       lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserBubble    lipgloss.Style
	ModelBubble   lipgloss.Style
	SummaryBubble lipgloss.Style
	Notice        lipgloss.Style
	Avatar        lipgloss.Style
	Timestamp     lipgloss.Style
	Attachment    lipgloss.Style
	CodeFrame     lipgloss.Style
	CodeHeader    lipgloss.Style

	// ==========================================================================
	// INPUT AND OVERLAYS
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	InputDisabled  lipgloss.Style
	Staged         lipgloss.Style
	BanBanner      lipgloss.Style
	Sidebar        lipgloss.Style
	SidebarItem    lipgloss.Style
	SidebarActive  lipgloss.Style
	Selected       lipgloss.Style

	// ==========================================================================
	// TEXT
	// ==========================================================================

	Muted   lipgloss.Style
	Accent  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Help    lipgloss.Style
}

// NewTheme creates a theme for the named palette.
func NewTheme(name model.Theme) *Theme {
	colorProfile := termenv.ColorProfile()

	t := &Theme{
		Palette:      PaletteFor(name),
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	p := t.Palette

	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Accent).
		Background(p.SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.AccentDeep).
		Padding(0, 2)
	t.HeaderTitle = lipgloss.NewStyle().Bold(true).Foreground(p.Accent)
	t.HeaderSubtitle = lipgloss.NewStyle().Foreground(p.TextSecondary).Italic(true)

	t.StatusBar = lipgloss.NewStyle().
		Background(p.SurfaceDim).
		Foreground(p.TextSecondary).
		Padding(0, 1)
	t.StatusKey = lipgloss.NewStyle().Foreground(p.TextMuted)
	t.StatusValue = lipgloss.NewStyle().Foreground(p.TextPrimary).Bold(true)
	t.Badge = lipgloss.NewStyle().
		Foreground(p.Surface).
		Background(p.Secondary).
		Padding(0, 1)
	t.DevBadge = lipgloss.NewStyle().
		Foreground(p.Surface).
		Background(p.Warning).
		Bold(true).
		Padding(0, 1)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(p.UserFg).
		Background(p.UserBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.AccentDeep).
		Padding(0, 2).
		MarginLeft(4)
	t.ModelBubble = lipgloss.NewStyle().
		Foreground(p.ModelFg).
		Background(p.ModelBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Secondary).
		Padding(0, 2).
		MarginRight(4)
	t.SummaryBubble = lipgloss.NewStyle().
		Foreground(p.TextPrimary).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(p.Accent).
		Padding(0, 2)
	t.Notice = lipgloss.NewStyle().
		Foreground(p.TextSecondary).
		Italic(true).
		Align(lipgloss.Center)
	t.Avatar = lipgloss.NewStyle().Foreground(p.Accent).Bold(true)
	t.Timestamp = lipgloss.NewStyle().Foreground(p.TextMuted)
	t.Attachment = lipgloss.NewStyle().
		Foreground(p.Secondary).
		Underline(true)
	t.CodeFrame = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(p.Overlay).
		BorderLeft(true).
		PaddingLeft(1)
	t.CodeHeader = lipgloss.NewStyle().Foreground(p.TextMuted).Italic(true)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(p.Overlay).
		Padding(0, 1)
	t.InputPrompt = lipgloss.NewStyle().Foreground(p.Accent).Bold(true)
	t.InputDisabled = lipgloss.NewStyle().Foreground(p.TextMuted).Italic(true)
	t.Staged = lipgloss.NewStyle().
		Foreground(p.Secondary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Secondary).
		Padding(0, 1)
	t.BanBanner = lipgloss.NewStyle().
		Foreground(p.Surface).
		Background(p.Danger).
		Bold(true).
		Padding(0, 2).
		Align(lipgloss.Center)
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Overlay).
		Padding(0, 1)
	t.SidebarItem = lipgloss.NewStyle().Foreground(p.TextSecondary)
	t.SidebarActive = lipgloss.NewStyle().Foreground(p.Accent).Bold(true)
	t.Selected = lipgloss.NewStyle().Background(p.Overlay)

	t.Muted = lipgloss.NewStyle().Foreground(p.TextMuted)
	t.Accent = lipgloss.NewStyle().Foreground(p.Accent)
	t.Success = lipgloss.NewStyle().Foreground(p.Success)
	t.Warning = lipgloss.NewStyle().Foreground(p.Warning)
	t.Error = lipgloss.NewStyle().Foreground(p.Danger).Bold(true)
	t.Help = lipgloss.NewStyle().Foreground(p.TextMuted)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// GlamourStyle returns the glamour standard style matching the background.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

// ChromaStyle returns the chroma style name used for code blocks.
func (t *Theme) ChromaStyle() string {
	switch {
	case t.Palette.Name == model.ThemePurple && t.IsDark:
		return "dracula"
	case t.Palette.Name == model.ThemePurple:
		return "friendly"
	case t.IsDark:
		return "gruvbox"
	default:
		return "gruvbox-light"
	}
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
