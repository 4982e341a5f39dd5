// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import "github.com/jeranaias/jaml-tui/internal/model"

var avatarGlyphs = map[model.Avatar]string{
	model.AvatarOrb:       "(o)",
	model.AvatarBot:       "[^_^]",
	model.AvatarGeometric: "<>",
	model.AvatarCrystal:   "<*>",
	model.AvatarNebula:    "~*~",
}

// AvatarGlyph returns the text glyph for a.
func AvatarGlyph(a model.Avatar) string {
	if g, ok := avatarGlyphs[a]; ok {
		return g
	}
	return avatarGlyphs[model.AvatarOrb]
}
