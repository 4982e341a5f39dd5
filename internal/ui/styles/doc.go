// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the jaml TUI.

# Palettes (palette.go)

Two palettes match the themes a user can pick in settings:

	Earthy - sand, clay and olive tones (default)
	Purple - violet and lavender tones

Every colour is a Lip Gloss AdaptiveColor, so light and dark terminals both
get readable contrast.

# Theme (theme.go)

Theme holds the rendered Lip Gloss styles for one palette plus the detected
terminal capabilities:

	theme := styles.NewTheme(model.ThemePurple)
	header := theme.Header.Render("جمل")

Switching themes at runtime builds a new Theme; styles are never mutated in
place.

# Spinner (spinner.go)

The thinking indicator frames used while a request is in flight.
*/
package styles
