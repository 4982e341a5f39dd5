// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jeranaias/jaml-tui/internal/model"
)

// =============================================================================
// SERVICE
// =============================================================================

// ChatRequest is one conversational turn.
type ChatRequest struct {
	Persona model.Persona
	// History is the conversation before this turn. Non-text messages are
	// dropped before it reaches the model.
	History []model.Message
	Prompt  string
	// Sampling is only set while developer mode is active.
	Sampling *model.ModelConfig
}

// Service is the set of capabilities the application dispatches to.
type Service interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
	GenerateImage(ctx context.Context, prompt string, history []model.Message, p model.Persona) (Image, error)
	GenerateLogo(ctx context.Context, prompt string, history []model.Message, p model.Persona) (Image, error)
	GenerateCode(ctx context.Context, prompt string, history []model.Message, p model.Persona) (model.CodeBlock, error)
	EditImage(ctx context.Context, prompt string, img Image) (EditResult, error)
	ReviewText(ctx context.Context, content, filename string) (string, error)
	ReviewCode(ctx context.Context, content, filename string) (string, error)
	SolveFromImage(ctx context.Context, prompt string, img Image) (string, error)
	Summarize(ctx context.Context, history []model.Message, p model.Persona) (string, error)
	Title(ctx context.Context, history []model.Message, p model.Persona) (string, error)
}

// Client implements Service on top of a Backend.
type Client struct {
	backend Backend
}

var _ Service = (*Client)(nil)

// NewClient creates a client for backend.
func NewClient(backend Backend) *Client {
	return &Client{backend: backend}
}

// Backend returns the underlying provider.
func (c *Client) Backend() Backend {
	return c.backend
}

// Chat sends one turn with the persona instruction and prior text history.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	reply, err := c.backend.GenerateText(ctx, TextRequest{
		System:   SystemInstruction(req.Persona),
		History:  ChatHistory(req.History),
		Prompt:   req.Prompt,
		Sampling: req.Sampling,
	})
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	return reply, nil
}

// GenerateImage designs a photographic image from the (context-enhanced)
// prompt.
func (c *Client) GenerateImage(ctx context.Context, prompt string, history []model.Message, p model.Persona) (Image, error) {
	enhanced := c.enhance(ctx, taskImage, prompt, history, p)
	img, err := c.backend.GenerateImage(ctx, fmt.Sprintf(imageTemplate, enhanced))
	if err != nil {
		return Image{}, fmt.Errorf("generate image: %w", err)
	}
	return img, nil
}

// GenerateLogo designs a minimalist logo from the (context-enhanced) prompt.
func (c *Client) GenerateLogo(ctx context.Context, prompt string, history []model.Message, p model.Persona) (Image, error) {
	enhanced := c.enhance(ctx, taskLogo, prompt, history, p)
	img, err := c.backend.GenerateImage(ctx, fmt.Sprintf(logoTemplate, enhanced))
	if err != nil {
		return Image{}, fmt.Errorf("generate logo: %w", err)
	}
	return img, nil
}

// GenerateCode writes code for the (context-enhanced) prompt and parses the
// fenced reply.
func (c *Client) GenerateCode(ctx context.Context, prompt string, history []model.Message, p model.Persona) (model.CodeBlock, error) {
	enhanced := c.enhance(ctx, taskCode, prompt, history, p)
	reply, err := c.backend.GenerateText(ctx, TextRequest{Prompt: fmt.Sprintf(codeTemplate, enhanced)})
	if err != nil {
		return model.CodeBlock{}, fmt.Errorf("generate code: %w", err)
	}
	return ParseCodeBlock(reply), nil
}

// EditImage applies prompt to img. A result with neither text nor image is
// an error.
func (c *Client) EditImage(ctx context.Context, prompt string, img Image) (EditResult, error) {
	res, err := c.backend.EditImage(ctx, prompt, img)
	if err != nil {
		return EditResult{}, fmt.Errorf("edit image: %w", err)
	}
	if strings.TrimSpace(res.Text) == "" && res.Image == nil {
		return EditResult{}, ErrEmptyEdit
	}
	return res, nil
}

// ReviewText reviews a prose document.
func (c *Client) ReviewText(ctx context.Context, content, filename string) (string, error) {
	return c.text(ctx, "review text", fmt.Sprintf(reviewTextTemplate, filename, content))
}

// ReviewCode reviews a source file.
func (c *Client) ReviewCode(ctx context.Context, content, filename string) (string, error) {
	return c.text(ctx, "review code", fmt.Sprintf(reviewCodeTemplate, filename, content))
}

// SolveFromImage solves the questions pictured in img.
func (c *Client) SolveFromImage(ctx context.Context, prompt string, img Image) (string, error) {
	reply, err := c.backend.GenerateText(ctx, TextRequest{
		Prompt: HomeworkPrefix + prompt,
		Images: []Image{img},
	})
	if err != nil {
		return "", fmt.Errorf("solve homework: %w", err)
	}
	return reply, nil
}

// Summarize produces a bullet summary of the conversation.
func (c *Client) Summarize(ctx context.Context, history []model.Message, p model.Persona) (string, error) {
	if len(history) < 2 {
		return "", ErrTooFewMessages
	}
	conv := transcript(history, "المستخدم", p.Name())
	return c.text(ctx, "summarize", fmt.Sprintf(summaryTemplate, p.Name(), conv))
}

// Title names a conversation from its first few messages. Conversations
// shorter than two messages keep the default title without a model call.
func (c *Client) Title(ctx context.Context, history []model.Message, p model.Persona) (string, error) {
	if len(history) < 2 {
		return model.DefaultTitle, nil
	}
	conv := transcript(firstN(history, titleContextSize), "User", p.LatinName())
	reply, err := c.text(ctx, "title", fmt.Sprintf(titleTemplate, conv))
	if err != nil {
		return "", err
	}
	title := strings.TrimSpace(strings.ReplaceAll(reply, `"`, ""))
	if title == "" {
		return model.DefaultTitle, nil
	}
	return title, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (c *Client) text(ctx context.Context, op, prompt string) (string, error) {
	reply, err := c.backend.GenerateText(ctx, TextRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return reply, nil
}

// enhance rewrites prompt into a self-contained request using recent
// history. It returns prompt unchanged when there is no history or the
// rewrite fails.
func (c *Client) enhance(ctx context.Context, task, prompt string, history []model.Message, p model.Persona) string {
	if len(history) == 0 {
		return prompt
	}
	conv := transcript(lastN(history, enhanceContextSize), "User", p.LatinName())
	reply, err := c.backend.GenerateText(ctx, TextRequest{
		Prompt: fmt.Sprintf(enhanceTemplate, prompt, task, conv),
	})
	if err != nil {
		slog.Warn("prompt_enhance_failed", "task", task, "backend", c.backend.Name(), "error", err)
		return prompt
	}
	if enhanced := strings.TrimSpace(reply); enhanced != "" {
		return enhanced
	}
	return prompt
}
