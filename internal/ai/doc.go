// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ai turns user requests into calls against a generative model.
//
// The package is split in two layers:
//
//   - Backend: the provider surface (text generation with optional images,
//     image generation, image editing). Implementations live in the gemini
//     and openai subpackages.
//   - Client: the capabilities jaml offers (chat, image and logo design,
//     code generation, file review, homework solving, summaries, titles),
//     built from prompts in this package on top of any Backend.
//
// # Abuse marker
//
// The persona instruction tells the model to answer abusive input with
// AbuseMarker and nothing else. Callers detect it with IsAbuseMarker and
// never display it.
package ai
