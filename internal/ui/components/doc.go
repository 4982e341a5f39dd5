// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the jaml TUI:
// message bubbles for every payload kind, syntax-highlighted code blocks,
// markdown rendering, the status bar, the conversation sidebar and the ban
// banner. Components are plain render functions over a styles.Theme; none
// of them hold Bubble Tea state.
package components
