// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini implements ai.Backend on the Google Gen AI SDK.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/jeranaias/jaml-tui/internal/ai"
)

// Default model names.
const (
	DefaultChatModel      = "gemini-2.5-flash"
	DefaultImageModel     = "imagen-4.0-generate-001"
	DefaultImageEditModel = "gemini-2.5-flash-image-preview"
)

// Config holds backend settings.
type Config struct {
	APIKey            string
	ChatModel         string
	ImageModel        string
	ImageEditModel    string
	RequestsPerMinute int
	Timeout           time.Duration
}

// Backend talks to the Gemini API.
type Backend struct {
	client   *genai.Client
	cfg      Config
	throttle *ai.Throttle
}

var _ ai.Backend = (*Backend)(nil)

// New creates a Gemini backend.
func New(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.APIKey == "" {
		return nil, ai.ErrNotConfigured
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultChatModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = DefaultImageModel
	}
	if cfg.ImageEditModel == "" {
		cfg.ImageEditModel = DefaultImageEditModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Backend{
		client:   client,
		cfg:      cfg,
		throttle: ai.NewThrottle(cfg.RequestsPerMinute, cfg.Timeout),
	}, nil
}

// Name implements ai.Backend.
func (b *Backend) Name() string {
	return "gemini"
}

// GenerateText implements ai.Backend.
func (b *Backend) GenerateText(ctx context.Context, req ai.TextRequest) (string, error) {
	ctx, cancel, err := b.throttle.Begin(ctx)
	defer cancel()
	if err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := b.client.Models.GenerateContent(ctx, b.cfg.ChatModel, buildContents(req), buildConfig(req))
	if err != nil {
		slog.Error("gemini_generate_failed", "model", b.cfg.ChatModel, "error", err)
		return "", err
	}
	slog.Debug("gemini_generate_done", "model", b.cfg.ChatModel, "duration", time.Since(start))

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ai.ErrEmptyResponse
	}
	return text, nil
}

// GenerateImage implements ai.Backend.
func (b *Backend) GenerateImage(ctx context.Context, prompt string) (ai.Image, error) {
	ctx, cancel, err := b.throttle.Begin(ctx)
	defer cancel()
	if err != nil {
		return ai.Image{}, err
	}

	resp, err := b.client.Models.GenerateImages(ctx, b.cfg.ImageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/png",
		AspectRatio:    "1:1",
	})
	if err != nil {
		slog.Error("gemini_image_failed", "model", b.cfg.ImageModel, "error", err)
		return ai.Image{}, err
	}
	return firstImage(resp)
}

// EditImage implements ai.Backend.
func (b *Backend) EditImage(ctx context.Context, prompt string, img ai.Image) (ai.EditResult, error) {
	ctx, cancel, err := b.throttle.Begin(ctx)
	defer cancel()
	if err != nil {
		return ai.EditResult{}, err
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(img.Data, img.MIMEType),
		genai.NewPartFromText(prompt),
	}
	resp, err := b.client.Models.GenerateContent(ctx, b.cfg.ImageEditModel,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseModalities: []string{string(genai.ModalityImage), string(genai.ModalityText)},
		})
	if err != nil {
		slog.Error("gemini_edit_failed", "model", b.cfg.ImageEditModel, "error", err)
		return ai.EditResult{}, err
	}
	return editResult(resp), nil
}
