// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestMessage_Payload(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want Payload
	}{
		{"text", NewUserMessage("hi"), PayloadText},
		{"empty", NewUserMessage("   "), 0},
		{"image", NewImageMessage(RoleModel, "", "data:image/png;base64,AA=="), PayloadImage},
		{"code", NewCodeMessage("go", "package main"), PayloadCode},
		{"summary", NewSummaryMessage("short"), PayloadText | PayloadSummary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.msg.Payload())
		})
	}
}

func TestMessage_IsPlainText(t *testing.T) {
	assert.True(t, NewUserMessage("hello").IsPlainText())

	withFile := NewUserMessage("reviewing a.go")
	withFile.FileInfo = &FileInfo{Name: "a.go", MIMEType: "text/x-go"}
	assert.False(t, withFile.IsPlainText())
	assert.False(t, NewSummaryMessage("s").IsPlainText())
	assert.False(t, NewCodeMessage("go", "x").IsPlainText())
}

func TestMessage_CloneIsDeep(t *testing.T) {
	orig := NewCodeMessage("go", "a")
	c := orig.Clone()
	c.Code.Content = "b"
	assert.Equal(t, "a", orig.Code.Content)
}

func TestNewMessageID_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewMessageID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversation_NeedsTitle(t *testing.T) {
	c := NewConversation()
	assert.Equal(t, DefaultTitle, c.Title)
	assert.False(t, c.NeedsTitle())

	c.AddMessage(NewUserMessage("1"))
	c.AddMessage(NewModelMessage("2"))
	assert.False(t, c.NeedsTitle(), "two messages is not enough")

	c.AddMessage(NewUserMessage("3"))
	assert.True(t, c.NeedsTitle())

	c.Title = "Go questions"
	assert.False(t, c.NeedsTitle())
}

func TestConversation_FindAndLast(t *testing.T) {
	c := NewConversation()
	_, ok := c.LastMessage()
	assert.False(t, ok)

	m := NewUserMessage("x")
	c.AddMessage(m)
	assert.Equal(t, 0, c.FindMessage(m.ID))
	assert.Equal(t, -1, c.FindMessage("missing"))

	last, ok := c.LastMessage()
	require.True(t, ok)
	assert.Equal(t, m.ID, last.ID)
}

func TestConversation_CloneIsIndependent(t *testing.T) {
	c := NewConversation()
	c.AddMessage(NewUserMessage("x"))
	cp := c.Clone()
	cp.Messages[0].Content = "y"
	assert.Equal(t, "x", c.Messages[0].Content)
}

// =============================================================================
// PERSONA / CONFIG TESTS
// =============================================================================

func TestPersona(t *testing.T) {
	p := DefaultPersona()
	assert.Equal(t, AvatarOrb, p.Avatar)
	assert.Equal(t, "Jaml", p.LatinName())
	require.NoError(t, p.Validate())

	p.Gender = GenderFemale
	assert.Equal(t, "Naqa", p.LatinName())
	assert.Equal(t, "ناقة", p.Name())

	_, err := ParseAvatar("dragon")
	assert.Error(t, err)
	assert.Error(t, Persona{Avatar: AvatarBot, Gender: "x"}.Validate())
}

func TestModelConfig_Clamped(t *testing.T) {
	c := ModelConfig{Temperature: 1.7, TopP: -0.2}.Clamped()
	assert.Equal(t, 1.0, c.Temperature)
	assert.Equal(t, 0.0, c.TopP)

	d := DefaultModelConfig()
	assert.Equal(t, d, d.Clamped())
}

func TestParseTheme(t *testing.T) {
	th, err := ParseTheme("purple")
	require.NoError(t, err)
	assert.Equal(t, ThemePurple, th)

	_, err = ParseTheme("neon")
	assert.Error(t, err)
}
