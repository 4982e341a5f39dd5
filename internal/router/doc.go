// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router picks the capability that should answer a text prompt.
//
// Routing is an ordered list of keyword rules evaluated first-match-wins:
//
//	Logo -> Image -> Code -> Chat
//
// A prompt mentioning both a logo and an image is a logo request; chat is
// the fallback when nothing matches. Keywords cover Arabic and English and
// match case-insensitively anywhere in the prompt.
//
// # Usage
//
//	r := router.Default()
//	switch r.Route(prompt) {
//	case router.IntentLogo:
//	    // generate a logo
//	case router.IntentChat:
//	    // plain chat turn
//	}
package router
