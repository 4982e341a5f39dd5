// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/jeranaias/jaml-tui/internal/ai"
	"github.com/jeranaias/jaml-tui/internal/model"
)

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.ErrorIs(t, err, ai.ErrNotConfigured)
}

func TestBuildContents_AlternatesRoles(t *testing.T) {
	req := ai.TextRequest{
		History: []ai.Turn{
			{Role: model.RoleModel, Text: "greeting"},
			{Role: model.RoleUser, Text: "a"},
			{Role: model.RoleUser, Text: "b"},
			{Role: model.RoleModel, Text: "c"},
		},
		Prompt: "d",
	}
	contents := buildContents(req)
	require.Len(t, contents, 4)
	assert.Equal(t, genai.RoleModel, contents[0].Role)
	assert.Equal(t, genai.RoleUser, contents[1].Role)
	assert.Len(t, contents[1].Parts, 2, "consecutive user turns merge")
	assert.Equal(t, genai.RoleModel, contents[2].Role)
	assert.Equal(t, "d", contents[3].Parts[0].Text)
}

func TestBuildContents_PromptMergesIntoTrailingUser(t *testing.T) {
	contents := buildContents(ai.TextRequest{
		History: []ai.Turn{{Role: model.RoleUser, Text: "earlier"}},
		Prompt:  "now",
		Images:  []ai.Image{{Data: []byte{1}, MIMEType: "image/png"}},
	})
	require.Len(t, contents, 1)
	parts := contents[0].Parts
	require.Len(t, parts, 3)
	assert.Equal(t, "now", parts[1].Text)
	require.NotNil(t, parts[2].InlineData)
	assert.Equal(t, "image/png", parts[2].InlineData.MIMEType)
}

func TestBuildConfig(t *testing.T) {
	cfg := buildConfig(ai.TextRequest{})
	assert.Nil(t, cfg.SystemInstruction)
	assert.Nil(t, cfg.Temperature)

	cfg = buildConfig(ai.TextRequest{
		System:   "be nice",
		Sampling: &model.ModelConfig{Temperature: 2, TopP: 0.5},
	})
	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, "be nice", cfg.SystemInstruction.Parts[0].Text)
	assert.Equal(t, float32(1), *cfg.Temperature)
	assert.Equal(t, float32(0.5), *cfg.TopP)
}

func TestFirstImage(t *testing.T) {
	_, err := firstImage(&genai.GenerateImagesResponse{})
	assert.ErrorIs(t, err, ai.ErrNoImage)

	img, err := firstImage(&genai.GenerateImagesResponse{
		GeneratedImages: []*genai.GeneratedImage{
			{RAIFilteredReason: "filtered"},
			{Image: &genai.Image{ImageBytes: []byte{7}}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, ai.Image{Data: []byte{7}, MIMEType: "image/png"}, img)
}

func TestEditResult(t *testing.T) {
	assert.Equal(t, ai.EditResult{}, editResult(&genai.GenerateContentResponse{}))

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking", Thought: true},
				{Text: "here it is"},
				{InlineData: &genai.Blob{Data: []byte{1, 2}, MIMEType: "image/png"}},
			}},
		}},
	}
	res := editResult(resp)
	assert.Equal(t, "here it is", res.Text)
	require.NotNil(t, res.Image)
	assert.Equal(t, []byte{1, 2}, res.Image.Data)
}
