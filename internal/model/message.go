// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModel
}

// =============================================================================
// PAYLOADS
// =============================================================================

// FileInfo describes an uploaded file a message refers to.
type FileInfo struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
}

// CodeBlock is a generated code payload.
type CodeBlock struct {
	Language string `json:"language"`
	Content  string `json:"content"`
}

// Payload is a bit set describing what a message carries.
type Payload uint8

const (
	PayloadText Payload = 1 << iota
	PayloadImage
	PayloadFile
	PayloadCode
	PayloadSummary
)

// Has reports whether every bit of other is set in p.
func (p Payload) Has(other Payload) bool {
	return p&other == other
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single entry in a conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Optional payloads. ImageURL is either a data URL for generated images
	// or a local path for images the user attached.
	ImageURL  string     `json:"image_url,omitempty"`
	FileInfo  *FileInfo  `json:"file_info,omitempty"`
	Code      *CodeBlock `json:"code,omitempty"`
	IsSummary bool       `json:"is_summary,omitempty"`
}

// NewMessage creates a text message with a fresh ID.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        NewMessageID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a user text message.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewModelMessage creates a model text message.
func NewModelMessage(content string) Message {
	return NewMessage(RoleModel, content)
}

// NewImageMessage creates a message carrying an image.
func NewImageMessage(role Role, content, imageURL string) Message {
	msg := NewMessage(role, content)
	msg.ImageURL = imageURL
	return msg
}

// NewCodeMessage creates a model message carrying generated code.
func NewCodeMessage(lang, code string) Message {
	msg := NewMessage(RoleModel, "")
	msg.Code = &CodeBlock{Language: lang, Content: code}
	return msg
}

// NewSummaryMessage creates a model message flagged as a summary.
func NewSummaryMessage(content string) Message {
	msg := NewMessage(RoleModel, content)
	msg.IsSummary = true
	return msg
}

// NewMessageID returns a short unique message identifier.
func NewMessageID() string {
	return shortuuid.New()
}

// Payload reports which kinds of content the message carries.
func (m Message) Payload() Payload {
	var p Payload
	if strings.TrimSpace(m.Content) != "" {
		p |= PayloadText
	}
	if m.ImageURL != "" {
		p |= PayloadImage
	}
	if m.FileInfo != nil {
		p |= PayloadFile
	}
	if m.Code != nil {
		p |= PayloadCode
	}
	if m.IsSummary {
		p |= PayloadSummary
	}
	return p
}

// IsPlainText reports whether the message is a text-only turn that can be
// replayed to the model as chat history.
func (m Message) IsPlainText() bool {
	return m.ImageURL == "" && m.FileInfo == nil && m.Code == nil && !m.IsSummary
}

// IsUser returns true if this is a user message.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// IsModel returns true if this is a model message.
func (m Message) IsModel() bool {
	return m.Role == RoleModel
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	c := m
	if m.FileInfo != nil {
		fi := *m.FileInfo
		c.FileInfo = &fi
	}
	if m.Code != nil {
		cb := *m.Code
		c.Code = &cb
	}
	return c
}
