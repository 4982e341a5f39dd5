// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/jaml-tui/internal/ai"
	"github.com/jeranaias/jaml-tui/internal/model"
	"github.com/jeranaias/jaml-tui/internal/ui/styles"
)

func testTheme() *styles.Theme {
	th := styles.NewTheme(model.ThemeEarthy)
	th.SetSize(100, 40)
	return th
}

func TestAvatarGlyph(t *testing.T) {
	for _, a := range model.Avatars {
		assert.NotEmpty(t, AvatarGlyph(a), a)
	}
	assert.Equal(t, AvatarGlyph(model.AvatarOrb), AvatarGlyph("unknown"))
}

func TestCodeView(t *testing.T) {
	block := model.CodeBlock{Language: "go", Content: "package main\n\nfunc main() {}\n"}
	out := CodeView{Block: block, Width: 80, Theme: testTheme()}.View()
	assert.Contains(t, out, "go")
	assert.Contains(t, out, "1")
	assert.Contains(t, out, "3")
	assert.Contains(t, out, "main")
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"package main\n\nfunc main() {}", "plaintext"},
		{"print(1)", "plaintext"},
		{"", "plaintext"},
		{"#!/usr/bin/env python3\nprint(1)", "python"},
		{"#!/usr/bin/env -S python3.12 -u\nprint(1)", "python"},
		{"#!/bin/bash\necho hi", "bash"},
		{"#!\n", "plaintext"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, detectLanguage(tt.code), tt.code)
	}
}

func TestPlainMarkdown(t *testing.T) {
	out := NewPlainMarkdown().Render("**مرحبا** بك\n\n- `x := 1`", 40)
	assert.Contains(t, out, "مرحبا")
	assert.Contains(t, out, "x := 1")
	assert.NotContains(t, out, "\x1b[")
}

func TestMessageView_Text(t *testing.T) {
	th := testTheme()
	user := MessageView{Message: model.NewUserMessage("مرحبا"), Persona: model.DefaultPersona(), Width: 80, Index: 1, Theme: th}
	out := user.View()
	assert.Contains(t, out, "مرحبا")
	assert.Contains(t, out, "#1")

	reply := MessageView{Message: model.NewModelMessage("اهلا"), Persona: model.Persona{Avatar: model.AvatarBot, Gender: model.GenderFemale}, Width: 80, Theme: th}
	out = reply.View()
	assert.Contains(t, out, "اهلا")
	assert.Contains(t, out, "ناقة")
	assert.Contains(t, out, AvatarGlyph(model.AvatarBot))
}

func TestMessageView_Payloads(t *testing.T) {
	th := testTheme()

	img := ai.Image{Data: []byte("png-bytes"), MIMEType: "image/png"}
	gen := MessageView{Message: model.NewImageMessage(model.RoleModel, "", img.DataURL()), Width: 80, Index: 4, Theme: th}
	out := gen.View()
	assert.Contains(t, out, "image/png")
	assert.Contains(t, out, "/save 4")

	file := model.NewUserMessage("مراجعة الكود main.go")
	file.FileInfo = &model.FileInfo{Name: "main.go", MIMEType: "text/x-go"}
	assert.Contains(t, MessageView{Message: file, Width: 80, Theme: th}.View(), "main.go")

	code := MessageView{Message: model.NewCodeMessage("python", "print(1)"), Width: 80, Theme: th}
	assert.Contains(t, code.View(), "python")

	summary := MessageView{Message: model.NewSummaryMessage("ملخص"), Width: 80, Theme: th}
	assert.Contains(t, summary.View(), "ملخص")
}

func TestRenderMessages_Empty(t *testing.T) {
	out := RenderMessages(nil, model.DefaultPersona(), 80, -1, testTheme(), nil)
	assert.Contains(t, out, "ابدأ")
}

func TestImageLabel(t *testing.T) {
	assert.Equal(t, "/tmp/cat.png", imageLabel("/tmp/cat.png"))
	assert.Equal(t, "generated", imageLabel("data:broken"))
	assert.Equal(t, "2.0 KB", formatBytes(2048))
	assert.Equal(t, "12 B", formatBytes(12))
}

func TestStatusBar(t *testing.T) {
	th := testTheme()
	out := StatusBar(th, StatusInfo{Remaining: 42, Allowance: 50, DevMode: true, Thinking: true}, 100)
	assert.Contains(t, out, "42/50")
	assert.Contains(t, out, "DEV")
	assert.Contains(t, out, "تفكير")

	out = StatusBar(th, StatusInfo{Remaining: 0, Allowance: 50, Notice: "تم"}, 100)
	assert.Contains(t, out, "0/50")
	assert.Contains(t, out, "تم")
}

func TestBanBanner(t *testing.T) {
	assert.Contains(t, BanBanner(testTheme(), "4:59", 80), "4:59")
}

func TestSidebar(t *testing.T) {
	a := model.NewConversation()
	a.Title = "الأولى"
	b := model.NewConversation()
	b.Title = strings.Repeat("طويل ", 30)

	out := Sidebar(testTheme(), []model.Conversation{a, b}, a.ID, 1, 30, 20)
	assert.Contains(t, out, "الأولى")
	assert.Contains(t, out, "> ")

	empty := Sidebar(testTheme(), nil, "", 0, 30, 20)
	assert.Contains(t, empty, "لا توجد")
}
