// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/jeranaias/jaml-tui/internal/app"
	"github.com/jeranaias/jaml-tui/internal/model"
)

// =============================================================================
// REQUEST MESSAGES
// =============================================================================

// resultMsg reports a finished send, review or summary.
type resultMsg struct {
	Result app.Result
	Err    error
}

// titleMsg reports a finished auto-title.
type titleMsg struct {
	ConversationID string
	Title          string
	OK             bool
}

// saveMsg reports a finished /save.
type saveMsg struct {
	Path string
	Err  error
}

// =============================================================================
// TIMER MESSAGES
// =============================================================================

// banTickMsg fires once a second to poll the ban.
type banTickMsg time.Time

// noticeExpiredMsg clears a status notice if it is still the current one.
type noticeExpiredMsg struct {
	seq int
}

// =============================================================================
// EXTERNAL MESSAGES
// =============================================================================

// ThemeChangedMsg switches the palette.
type ThemeChangedMsg struct {
	Theme model.Theme
}
