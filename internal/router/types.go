// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

// ============================================================================
// INTENT TYPE
// ============================================================================

// Intent is the capability a prompt is routed to.
type Intent int

const (
	// IntentChat is a normal conversational turn.
	IntentChat Intent = iota
	// IntentLogo asks for a logo image.
	IntentLogo
	// IntentImage asks for a generated picture.
	IntentImage
	// IntentCode asks for a code snippet.
	IntentCode
)

// String returns the human-readable name of the intent.
func (i Intent) String() string {
	switch i {
	case IntentChat:
		return "chat"
	case IntentLogo:
		return "logo"
	case IntentImage:
		return "image"
	case IntentCode:
		return "code"
	default:
		return "unknown"
	}
}

// Decision records which rule matched a prompt.
type Decision struct {
	Intent Intent
	// Keyword is the matched text, empty for the chat fallback.
	Keyword string
}
