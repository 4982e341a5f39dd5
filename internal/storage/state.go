// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"log/slog"

	"github.com/jeranaias/jaml-tui/internal/model"
)

// =============================================================================
// TYPED STATE
// =============================================================================

// State wraps a KV with typed accessors for client settings. Reads never
// fail: an absent or malformed value yields the default and a malformed one
// is logged.
type State struct {
	kv KV
}

// NewState wraps kv.
func NewState(kv KV) *State {
	return &State{kv: kv}
}

// KV returns the underlying store.
func (s *State) KV() KV {
	return s.kv
}

// Load decodes key into v, leaving v untouched when the key is absent or
// malformed. It reports whether v was populated.
func (s *State) Load(key string, v any) bool {
	ok, err := GetJSON(s.kv, key, v)
	if err != nil {
		slog.Warn("storage_value_unreadable", "key", key, "error", err)
		return false
	}
	return ok
}

// Save encodes v under key.
func (s *State) Save(key string, v any) error {
	return SetJSON(s.kv, key, v)
}

// Theme returns the persisted theme or earthy.
func (s *State) Theme() model.Theme {
	var raw string
	if !s.Load(KeyTheme, &raw) {
		return model.ThemeEarthy
	}
	th, err := model.ParseTheme(raw)
	if err != nil {
		slog.Warn("storage_value_unreadable", "key", KeyTheme, "error", err)
		return model.ThemeEarthy
	}
	return th
}

// SetTheme persists the theme.
func (s *State) SetTheme(th model.Theme) error {
	return s.Save(KeyTheme, string(th))
}

// OnboardingComplete reports whether the persona picker has been completed.
func (s *State) OnboardingComplete() bool {
	var done bool
	s.Load(KeyOnboarding, &done)
	return done
}

// SetOnboardingComplete persists the onboarding flag.
func (s *State) SetOnboardingComplete(done bool) error {
	return s.Save(KeyOnboarding, done)
}

// Persona returns the persisted persona or the default.
func (s *State) Persona() model.Persona {
	p := model.DefaultPersona()
	if !s.Load(KeyPersona, &p) {
		return model.DefaultPersona()
	}
	if err := p.Validate(); err != nil {
		slog.Warn("storage_value_unreadable", "key", KeyPersona, "error", err)
		return model.DefaultPersona()
	}
	return p
}

// SetPersona persists the persona.
func (s *State) SetPersona(p model.Persona) error {
	return s.Save(KeyPersona, p)
}

// ModelConfig returns the persisted sampling parameters, clamped to range.
func (s *State) ModelConfig() model.ModelConfig {
	cfg := model.DefaultModelConfig()
	if !s.Load(KeyModelConfig, &cfg) {
		return model.DefaultModelConfig()
	}
	return cfg.Clamped()
}

// SetModelConfig persists the sampling parameters.
func (s *State) SetModelConfig(cfg model.ModelConfig) error {
	return s.Save(KeyModelConfig, cfg.Clamped())
}

// Conversations returns the persisted collection and active id. Either is
// empty when absent or malformed.
func (s *State) Conversations() ([]model.Conversation, string) {
	var convs []model.Conversation
	if !s.Load(KeyConversations, &convs) || convs == nil {
		convs = []model.Conversation{}
	}
	var active string
	s.Load(KeyActiveID, &active)
	return convs, active
}

// SaveConversations persists the collection and the active id together.
func (s *State) SaveConversations(convs []model.Conversation, activeID string) error {
	if err := s.Save(KeyConversations, convs); err != nil {
		return err
	}
	if activeID == "" {
		return s.kv.Delete(KeyActiveID)
	}
	return s.Save(KeyActiveID, activeID)
}

// Reset wipes every persisted value.
func (s *State) Reset() error {
	return Reset(s.kv)
}
