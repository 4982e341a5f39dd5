// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "fmt"

// =============================================================================
// PERSONA
// =============================================================================

// Gender selects the persona's name and grammatical voice.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Avatar is the visual identity shown next to model messages.
type Avatar string

const (
	AvatarOrb       Avatar = "orb"
	AvatarBot       Avatar = "bot"
	AvatarGeometric Avatar = "geometric"
	AvatarCrystal   Avatar = "crystal"
	AvatarNebula    Avatar = "nebula"
)

// Avatars lists every avatar in display order.
var Avatars = []Avatar{AvatarOrb, AvatarBot, AvatarGeometric, AvatarCrystal, AvatarNebula}

// Persona is the user's choice of assistant identity.
type Persona struct {
	Avatar Avatar `json:"avatar"`
	Gender Gender `json:"gender"`
}

// DefaultPersona returns the persona used before onboarding.
func DefaultPersona() Persona {
	return Persona{Avatar: AvatarOrb, Gender: GenderMale}
}

// Name returns the persona's display name.
func (p Persona) Name() string {
	if p.Gender == GenderFemale {
		return "ناقة"
	}
	return "جمل"
}

// LatinName returns the persona's name in Latin script.
func (p Persona) LatinName() string {
	if p.Gender == GenderFemale {
		return "Naqa"
	}
	return "Jaml"
}

// Validate checks the persona fields against the known values.
func (p Persona) Validate() error {
	if p.Gender != GenderMale && p.Gender != GenderFemale {
		return fmt.Errorf("unknown gender %q", p.Gender)
	}
	if _, err := ParseAvatar(string(p.Avatar)); err != nil {
		return err
	}
	return nil
}

// ParseAvatar converts a user supplied string to an Avatar.
func ParseAvatar(s string) (Avatar, error) {
	for _, a := range Avatars {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown avatar %q", s)
}

// ParseGender converts a user supplied string to a Gender.
func ParseGender(s string) (Gender, error) {
	switch Gender(s) {
	case GenderMale, GenderFemale:
		return Gender(s), nil
	}
	return "", fmt.Errorf("unknown gender %q", s)
}

// =============================================================================
// MODEL CONFIG
// =============================================================================

// ModelConfig holds the sampling parameters sent with every request.
type ModelConfig struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

// DefaultModelConfig returns the default sampling parameters.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{Temperature: 0.7, TopP: 0.95}
}

// Clamped returns a copy with both values limited to [0, 1].
func (c ModelConfig) Clamped() ModelConfig {
	return ModelConfig{
		Temperature: clamp01(c.Temperature),
		TopP:        clamp01(c.TopP),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// =============================================================================
// THEME
// =============================================================================

// Theme names the colour scheme.
type Theme string

const (
	ThemeEarthy Theme = "earthy"
	ThemePurple Theme = "purple"
)

// ParseTheme converts a user supplied string to a Theme.
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeEarthy, ThemePurple:
		return Theme(s), nil
	}
	return "", fmt.Errorf("unknown theme %q", s)
}
