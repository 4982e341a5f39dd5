// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrConversationNotFound is returned when a conversation doesn't exist.
	// Use errors.Is(err, ErrConversationNotFound) to check for this error.
	ErrConversationNotFound = &Error{Message: "conversation not found"}

	// ErrMessageNotFound is returned when a message id is not in the active
	// conversation.
	ErrMessageNotFound = &Error{Message: "message not found"}

	// ErrNoConversation is returned by Append when there is nothing to
	// append to.
	ErrNoConversation = &Error{Message: "no conversation to append to"}

	// ErrEmptyTitle is returned by Rename for a blank title.
	ErrEmptyTitle = &Error{Message: "title must not be empty"}
)

// Error represents a conversation-related error.
// It implements the error interface and can be compared using errors.Is.
type Error struct {
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing conversation errors.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Message == t.Message
}
