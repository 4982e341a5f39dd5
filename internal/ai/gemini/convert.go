// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"google.golang.org/genai"

	"github.com/jeranaias/jaml-tui/internal/ai"
	"github.com/jeranaias/jaml-tui/internal/model"
)

// buildContents maps history and the new prompt to genai contents. Adjacent
// turns with the same role are merged so the request alternates.
func buildContents(req ai.TextRequest) []*genai.Content {
	var contents []*genai.Content
	for _, turn := range req.History {
		role := genai.Role(genai.RoleUser)
		if turn.Role == model.RoleModel {
			role = genai.RoleModel
		}
		part := genai.NewPartFromText(turn.Text)
		if n := len(contents); n > 0 && contents[n-1].Role == string(role) {
			contents[n-1].Parts = append(contents[n-1].Parts, part)
			continue
		}
		contents = append(contents, genai.NewContentFromParts([]*genai.Part{part}, role))
	}

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	for _, img := range req.Images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MIMEType))
	}
	if n := len(contents); n > 0 && contents[n-1].Role == genai.RoleUser {
		contents[n-1].Parts = append(contents[n-1].Parts, parts...)
		return contents
	}
	return append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
}

// buildConfig sets the system instruction and sampling overrides.
func buildConfig(req ai.TextRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	if req.Sampling != nil {
		s := req.Sampling.Clamped()
		cfg.Temperature = genai.Ptr(float32(s.Temperature))
		cfg.TopP = genai.Ptr(float32(s.TopP))
	}
	return cfg
}

func firstImage(resp *genai.GenerateImagesResponse) (ai.Image, error) {
	if resp == nil {
		return ai.Image{}, ai.ErrNoImage
	}
	for _, gi := range resp.GeneratedImages {
		if gi == nil || gi.Image == nil || len(gi.Image.ImageBytes) == 0 {
			continue
		}
		mime := gi.Image.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		return ai.Image{Data: gi.Image.ImageBytes, MIMEType: mime}, nil
	}
	return ai.Image{}, ai.ErrNoImage
}

// editResult keeps the last text part and the last inline image.
func editResult(resp *genai.GenerateContentResponse) ai.EditResult {
	var res ai.EditResult
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return res
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		switch {
		case part == nil || part.Thought:
		case part.Text != "":
			res.Text = part.Text
		case part.InlineData != nil && len(part.InlineData.Data) > 0:
			res.Image = &ai.Image{Data: part.InlineData.Data, MIMEType: part.InlineData.MIMEType}
		}
	}
	return res
}
