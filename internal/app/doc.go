// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app holds the application state shared by the TUI and the
// command line: the active persona and settings, the conversation store,
// the daily quota, the abuse monitor and the developer-mode unlock.
//
// Every outbound action goes through App, which applies the gates in a
// fixed order: unlock sequence, ban, quota, then dispatch to the AI service.
// Failures of the AI service never surface as errors; they are appended to
// the conversation as a localized error message.
package app
