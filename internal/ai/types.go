// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/jaml-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoImage is returned when an image request produced no image.
	ErrNoImage = errors.New("model returned no image")

	// ErrEmptyEdit is returned when an image edit produced neither text nor
	// an image.
	ErrEmptyEdit = errors.New("image edit returned no content")

	// ErrEmptyResponse is returned when a text request produced no text.
	ErrEmptyResponse = errors.New("model returned an empty response")

	// ErrTooFewMessages is returned by Summarize for conversations with
	// fewer than two messages.
	ErrTooFewMessages = errors.New("conversation is too short")

	// ErrNotConfigured is returned when no API key is available.
	ErrNotConfigured = errors.New("ai provider is not configured")
)

// =============================================================================
// VALUES
// =============================================================================

// Image is raw image bytes with their MIME type.
type Image struct {
	Data     []byte
	MIMEType string
}

// DataURL encodes the image as a data: URL.
func (i Image) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// ParseDataURL decodes a base64 data: URL.
func ParseDataURL(s string) (Image, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return Image{}, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, fmt.Errorf("malformed data URL")
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return Image{}, fmt.Errorf("data URL is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("failed to decode data URL: %w", err)
	}
	return Image{Data: data, MIMEType: mime}, nil
}

// Turn is one prior message replayed to the model.
type Turn struct {
	Role model.Role
	Text string
}

// TextRequest is a single text generation call.
type TextRequest struct {
	// System is the system instruction, empty for none.
	System string
	// History holds prior turns, oldest first.
	History []Turn
	// Prompt is the new user text.
	Prompt string
	// Images are attached to the new user turn.
	Images []Image
	// Sampling overrides the provider defaults when non-nil.
	Sampling *model.ModelConfig
}

// EditResult is the outcome of an image edit. Either field may be empty,
// but not both.
type EditResult struct {
	Text  string
	Image *Image
}

// =============================================================================
// BACKEND
// =============================================================================

// Backend is a generative model provider.
type Backend interface {
	// Name identifies the provider in logs.
	Name() string
	// GenerateText returns the model's text reply.
	GenerateText(ctx context.Context, req TextRequest) (string, error)
	// GenerateImage returns one square PNG for prompt.
	GenerateImage(ctx context.Context, prompt string) (Image, error)
	// EditImage applies prompt to img.
	EditImage(ctx context.Context, prompt string, img Image) (EditResult, error)
}
