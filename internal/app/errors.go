// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import "errors"

// Send rejections. The UI shows these as a disabled input, not as failures.
var (
	// ErrBusy is returned when a send is already in flight.
	ErrBusy = errors.New("a request is already in progress")

	// ErrBanned is returned while a temporary ban is active.
	ErrBanned = errors.New("sending is blocked by a temporary ban")

	// ErrQuotaExhausted is returned once the daily allowance is used up.
	ErrQuotaExhausted = errors.New("daily message limit reached")

	// ErrEmptyPrompt is returned for a send with no text, file or image.
	ErrEmptyPrompt = errors.New("nothing to send")

	// ErrDevModeRequired is returned by developer-only operations while
	// developer mode is locked.
	ErrDevModeRequired = errors.New("developer mode is not active")
)
