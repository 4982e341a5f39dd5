// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package openai implements ai.Backend on any OpenAI-compatible API.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	oai "github.com/sashabaranov/go-openai"

	"github.com/jeranaias/jaml-tui/internal/ai"
	"github.com/jeranaias/jaml-tui/internal/model"
)

// Default model names.
const (
	DefaultChatModel  = "gpt-4o-mini"
	DefaultImageModel = oai.CreateImageModelDallE3
	DefaultEditModel  = oai.CreateImageModelGptImage1
)

// Config holds backend settings.
type Config struct {
	APIKey            string
	BaseURL           string
	ChatModel         string
	ImageModel        string
	ImageEditModel    string
	RequestsPerMinute int
	Timeout           time.Duration
}

// Backend talks to an OpenAI-compatible endpoint.
type Backend struct {
	client   *oai.Client
	cfg      Config
	throttle *ai.Throttle
}

var _ ai.Backend = (*Backend)(nil)

// New creates an OpenAI backend.
func New(cfg Config) (*Backend, error) {
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
		cfg.ImageEditModel = DefaultEditModel
	}

	clientConfig := oai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Backend{
		client:   oai.NewClientWithConfig(clientConfig),
		cfg:      cfg,
		throttle: ai.NewThrottle(cfg.RequestsPerMinute, cfg.Timeout),
	}, nil
}

// Name implements ai.Backend.
func (b *Backend) Name() string {
	return "openai"
}

// GenerateText implements ai.Backend.
func (b *Backend) GenerateText(ctx context.Context, req ai.TextRequest) (string, error) {
	ctx, cancel, err := b.throttle.Begin(ctx)
	defer cancel()
	if err != nil {
		return "", err
	}

	creq := oai.ChatCompletionRequest{
		Model:    b.cfg.ChatModel,
		Messages: buildMessages(req),
	}
	if req.Sampling != nil {
		s := req.Sampling.Clamped()
		creq.Temperature = float32(s.Temperature)
		creq.TopP = float32(s.TopP)
	}

	resp, err := b.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		slog.Error("openai_chat_failed", "model", b.cfg.ChatModel, "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ai.ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateImage implements ai.Backend.
func (b *Backend) GenerateImage(ctx context.Context, prompt string) (ai.Image, error) {
	ctx, cancel, err := b.throttle.Begin(ctx)
	defer cancel()
	if err != nil {
		return ai.Image{}, err
	}

	resp, err := b.client.CreateImage(ctx, oai.ImageRequest{
		Prompt:         prompt,
		Model:          b.cfg.ImageModel,
		N:              1,
		Size:           oai.CreateImageSize1024x1024,
		ResponseFormat: oai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		slog.Error("openai_image_failed", "model", b.cfg.ImageModel, "error", err)
		return ai.Image{}, err
	}
	return decodeImage(resp)
}

// EditImage implements ai.Backend. The images endpoint returns no text, so
// the result only ever carries an image.
func (b *Backend) EditImage(ctx context.Context, prompt string, img ai.Image) (ai.EditResult, error) {
	ctx, cancel, err := b.throttle.Begin(ctx)
	defer cancel()
	if err != nil {
		return ai.EditResult{}, err
	}

	resp, err := b.client.CreateEditImage(ctx, oai.ImageEditRequest{
		Image:          oai.WrapReader(bytes.NewReader(img.Data), "image"+extensionFor(img.MIMEType), img.MIMEType),
		Prompt:         prompt,
		Model:          b.cfg.ImageEditModel,
		N:              1,
		Size:           oai.CreateImageSize1024x1024,
		ResponseFormat: oai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		slog.Error("openai_edit_failed", "model", b.cfg.ImageEditModel, "error", err)
		return ai.EditResult{}, err
	}
	out, err := decodeImage(resp)
	if err != nil {
		return ai.EditResult{}, err
	}
	return ai.EditResult{Image: &out}, nil
}

// =============================================================================
// CONVERSION
// =============================================================================

func buildMessages(req ai.TextRequest) []oai.ChatCompletionMessage {
	msgs := make([]oai.ChatCompletionMessage, 0, len(req.History)+2)
	if req.System != "" {
		msgs = append(msgs, oai.ChatCompletionMessage{Role: oai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, turn := range req.History {
		role := oai.ChatMessageRoleUser
		if turn.Role == model.RoleModel {
			role = oai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, oai.ChatCompletionMessage{Role: role, Content: turn.Text})
	}

	if len(req.Images) == 0 {
		return append(msgs, oai.ChatCompletionMessage{Role: oai.ChatMessageRoleUser, Content: req.Prompt})
	}
	parts := []oai.ChatMessagePart{{Type: oai.ChatMessagePartTypeText, Text: req.Prompt}}
	for _, img := range req.Images {
		parts = append(parts, oai.ChatMessagePart{
			Type:     oai.ChatMessagePartTypeImageURL,
			ImageURL: &oai.ChatMessageImageURL{URL: img.DataURL(), Detail: oai.ImageURLDetailAuto},
		})
	}
	return append(msgs, oai.ChatCompletionMessage{Role: oai.ChatMessageRoleUser, MultiContent: parts})
}

func decodeImage(resp oai.ImageResponse) (ai.Image, error) {
	for _, d := range resp.Data {
		if d.B64JSON == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(d.B64JSON)
		if err != nil {
			return ai.Image{}, fmt.Errorf("failed to decode image: %w", err)
		}
		return ai.Image{Data: data, MIMEType: "image/png"}, nil
	}
	return ai.Image{}, ai.ErrNoImage
}

func extensionFor(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
