// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/jaml-tui/internal/model"
)

// Palette is the set of colours a theme is built from.
type Palette struct {
	Name model.Theme

	Accent     lipgloss.AdaptiveColor
	AccentDeep lipgloss.AdaptiveColor
	Secondary  lipgloss.AdaptiveColor

	Surface    lipgloss.AdaptiveColor
	SurfaceDim lipgloss.AdaptiveColor
	Overlay    lipgloss.AdaptiveColor

	TextPrimary   lipgloss.AdaptiveColor
	TextSecondary lipgloss.AdaptiveColor
	TextMuted     lipgloss.AdaptiveColor

	UserBg  lipgloss.AdaptiveColor
	UserFg  lipgloss.AdaptiveColor
	ModelBg lipgloss.AdaptiveColor
	ModelFg lipgloss.AdaptiveColor

	Success lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Danger  lipgloss.AdaptiveColor
}

// =============================================================================
// PALETTES
// =============================================================================

// Earthy is the default palette.
var Earthy = Palette{
	Name: model.ThemeEarthy,

	Accent:     lipgloss.AdaptiveColor{Light: "#9A5B2E", Dark: "#D9A066"},
	AccentDeep: lipgloss.AdaptiveColor{Light: "#6F3E1D", Dark: "#8C5A32"},
	Secondary:  lipgloss.AdaptiveColor{Light: "#5E6B3A", Dark: "#A3B18A"},

	Surface:    lipgloss.AdaptiveColor{Light: "#FBF7F0", Dark: "#1F1A16"},
	SurfaceDim: lipgloss.AdaptiveColor{Light: "#F1E8DA", Dark: "#171310"},
	Overlay:    lipgloss.AdaptiveColor{Light: "#E3D5C0", Dark: "#3A3129"},

	TextPrimary:   lipgloss.AdaptiveColor{Light: "#2E2218", Dark: "#EDE3D6"},
	TextSecondary: lipgloss.AdaptiveColor{Light: "#6B5A4A", Dark: "#BFAF9C"},
	TextMuted:     lipgloss.AdaptiveColor{Light: "#A08F7D", Dark: "#7D6E60"},

	UserBg:  lipgloss.AdaptiveColor{Light: "#F3E2CC", Dark: "#5C3D24"},
	UserFg:  lipgloss.AdaptiveColor{Light: "#4A2C15", Dark: "#F7EBDD"},
	ModelBg: lipgloss.AdaptiveColor{Light: "#ECEFE3", Dark: "#2C3024"},
	ModelFg: lipgloss.AdaptiveColor{Light: "#2F3820", Dark: "#E4E9D8"},

	Success: lipgloss.AdaptiveColor{Light: "#4D7C0F", Dark: "#A3C46B"},
	Warning: lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F0B35A"},
	Danger:  lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F38B7A"},
}

// Purple is the alternative palette.
var Purple = Palette{
	Name: model.ThemePurple,

	Accent:     lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"},
	AccentDeep: lipgloss.AdaptiveColor{Light: "#5B21B6", Dark: "#4C1D95"},
	Secondary:  lipgloss.AdaptiveColor{Light: "#C026D3", Dark: "#E879F9"},

	Surface:    lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1B2E"},
	SurfaceDim: lipgloss.AdaptiveColor{Light: "#F5F3FF", Dark: "#17142A"},
	Overlay:    lipgloss.AdaptiveColor{Light: "#E4DCFB", Dark: "#332D4F"},

	TextPrimary:   lipgloss.AdaptiveColor{Light: "#1F1637", Dark: "#E9E4F5"},
	TextSecondary: lipgloss.AdaptiveColor{Light: "#5B4B8A", Dark: "#B8AEDB"},
	TextMuted:     lipgloss.AdaptiveColor{Light: "#9C90C0", Dark: "#6E6590"},

	UserBg:  lipgloss.AdaptiveColor{Light: "#EDE9FE", Dark: "#4C1D95"},
	UserFg:  lipgloss.AdaptiveColor{Light: "#3B0764", Dark: "#F3E8FF"},
	ModelBg: lipgloss.AdaptiveColor{Light: "#F5F3FF", Dark: "#3B3655"},
	ModelFg: lipgloss.AdaptiveColor{Light: "#5B4B8A", Dark: "#E9E4F5"},

	Success: lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"},
	Warning: lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"},
	Danger:  lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"},
}

// PaletteFor returns the palette for th, defaulting to Earthy.
func PaletteFor(th model.Theme) Palette {
	if th == model.ThemePurple {
		return Purple
	}
	return Earthy
}
