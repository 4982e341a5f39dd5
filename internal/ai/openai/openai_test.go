// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package openai

import (
	"encoding/base64"
	"testing"

	oai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/jaml-tui/internal/ai"
	"github.com/jeranaias/jaml-tui/internal/model"
)

func TestNew(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ai.ErrNotConfigured)

	b, err := New(Config{APIKey: "sk-test", BaseURL: "http://localhost:8080/v1"})
	require.NoError(t, err)
	assert.Equal(t, "openai", b.Name())
	assert.Equal(t, DefaultChatModel, b.cfg.ChatModel)
}

func TestBuildMessages(t *testing.T) {
	msgs := buildMessages(ai.TextRequest{
		System: "sys",
		History: []ai.Turn{
			{Role: model.RoleUser, Text: "hi"},
			{Role: model.RoleModel, Text: "hello"},
		},
		Prompt: "next",
	})
	require.Len(t, msgs, 4)
	assert.Equal(t, oai.ChatMessageRoleSystem, msgs[0].Role)
	assert.Equal(t, oai.ChatMessageRoleUser, msgs[1].Role)
	assert.Equal(t, oai.ChatMessageRoleAssistant, msgs[2].Role)
	assert.Equal(t, "next", msgs[3].Content)
}

func TestBuildMessages_WithImage(t *testing.T) {
	msgs := buildMessages(ai.TextRequest{
		Prompt: "solve",
		Images: []ai.Image{{Data: []byte("x"), MIMEType: "image/jpeg"}},
	})
	require.Len(t, msgs, 1)
	assert.Empty(t, msgs[0].Content)
	require.Len(t, msgs[0].MultiContent, 2)
	assert.Equal(t, "solve", msgs[0].MultiContent[0].Text)
	assert.Equal(t, "data:image/jpeg;base64,eA==", msgs[0].MultiContent[1].ImageURL.URL)
}

func TestDecodeImage(t *testing.T) {
	_, err := decodeImage(oai.ImageResponse{})
	assert.ErrorIs(t, err, ai.ErrNoImage)

	img, err := decodeImage(oai.ImageResponse{Data: []oai.ImageResponseDataInner{
		{URL: "https://example.invalid/x.png"},
		{B64JSON: base64.StdEncoding.EncodeToString([]byte("png"))},
	}})
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), img.Data)

	_, err = decodeImage(oai.ImageResponse{Data: []oai.ImageResponseDataInner{{B64JSON: "!!"}}})
	assert.Error(t, err)
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".jpg", extensionFor("image/jpeg"))
	assert.Equal(t, ".webp", extensionFor("image/webp"))
	assert.Equal(t, ".png", extensionFor(""))
}
