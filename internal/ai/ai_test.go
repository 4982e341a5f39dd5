// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ai

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/jaml-tui/internal/model"
)

// fakeBackend records requests and replies from queues.
type fakeBackend struct {
	mu        sync.Mutex
	texts     []TextRequest
	imgPrompt []string
	replies   []string
	textErr   error
	img       Image
	imgErr    error
	edit      EditResult
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) GenerateText(_ context.Context, req TextRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, req)
	if f.textErr != nil {
		return "", f.textErr
	}
	if len(f.replies) == 0 {
		return "ok", nil
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r, nil
}

func (f *fakeBackend) GenerateImage(_ context.Context, prompt string) (Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imgPrompt = append(f.imgPrompt, prompt)
	return f.img, f.imgErr
}

func (f *fakeBackend) EditImage(context.Context, string, Image) (EditResult, error) {
	return f.edit, nil
}

func history(texts ...string) []model.Message {
	var out []model.Message
	for i, t := range texts {
		if i%2 == 0 {
			out = append(out, model.NewUserMessage(t))
		} else {
			out = append(out, model.NewModelMessage(t))
		}
	}
	return out
}

// =============================================================================
// CHAT
// =============================================================================

func TestClient_ChatFiltersHistory(t *testing.T) {
	fb := &fakeBackend{replies: []string{"hello back"}}
	c := NewClient(fb)

	h := history("hi", "hey")
	img := model.NewImageMessage(model.RoleModel, "", "data:image/png;base64,AA==")
	h = append(h, img, model.NewCodeMessage("go", "x"), model.NewSummaryMessage("sum"))
	withFile := model.NewUserMessage("reviewing a.go")
	withFile.FileInfo = &model.FileInfo{Name: "a.go"}
	h = append(h, withFile)

	cfg := model.ModelConfig{Temperature: 0.2, TopP: 0.5}
	reply, err := c.Chat(context.Background(), ChatRequest{
		Persona:  model.DefaultPersona(),
		History:  h,
		Prompt:   "how are you",
		Sampling: &cfg,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello back", reply)

	require.Len(t, fb.texts, 1)
	req := fb.texts[0]
	assert.Equal(t, []Turn{{Role: model.RoleUser, Text: "hi"}, {Role: model.RoleModel, Text: "hey"}}, req.History)
	assert.Equal(t, "how are you", req.Prompt)
	assert.Contains(t, req.System, "جمل")
	assert.Contains(t, req.System, AbuseMarker)
	assert.Equal(t, &cfg, req.Sampling)
}

func TestClient_ChatWrapsError(t *testing.T) {
	boom := errors.New("boom")
	c := NewClient(&fakeBackend{textErr: boom})
	_, err := c.Chat(context.Background(), ChatRequest{Prompt: "x"})
	assert.ErrorIs(t, err, boom)
}

func TestSystemInstruction_Gender(t *testing.T) {
	male := SystemInstruction(model.Persona{Gender: model.GenderMale})
	female := SystemInstruction(model.Persona{Gender: model.GenderFemale})
	assert.Contains(t, male, "'جمل'")
	assert.Contains(t, female, "'ناقة'")
	assert.Contains(t, female, "تتحدثين كصفة أنثى")
}

func TestIsAbuseMarker(t *testing.T) {
	assert.True(t, IsAbuseMarker("[ABUSE_DETECTED]"))
	assert.True(t, IsAbuseMarker("  [ABUSE_DETECTED]\n"))
	assert.False(t, IsAbuseMarker("[ABUSE_DETECTED] you were rude"))
	assert.False(t, IsAbuseMarker("fine"))
}

func TestWithThinking(t *testing.T) {
	assert.Equal(t, ThinkingPrefix+"why?", WithThinking("why?"))
}

// =============================================================================
// IMAGES / ENHANCEMENT
// =============================================================================

func TestClient_GenerateImageWithoutHistorySkipsEnhancement(t *testing.T) {
	fb := &fakeBackend{img: Image{Data: []byte{1}, MIMEType: "image/png"}}
	c := NewClient(fb)

	img, err := c.GenerateImage(context.Background(), "a camel", nil, model.DefaultPersona())
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Empty(t, fb.texts, "no enhancement call without history")
	require.Len(t, fb.imgPrompt, 1)
	assert.Equal(t, "cinematic, professional photograph of a camel. ultra-realistic, high detail, 4k, masterpiece, artistic.", fb.imgPrompt[0])
}

func TestClient_GenerateLogoUsesEnhancedPrompt(t *testing.T) {
	fb := &fakeBackend{replies: []string{"  a logo for a coffee shop \n"}, img: Image{Data: []byte{1}, MIMEType: "image/png"}}
	c := NewClient(fb)

	_, err := c.GenerateLogo(context.Background(), "make a logo for it", history("I own a coffee shop", "nice"), model.DefaultPersona())
	require.NoError(t, err)

	require.Len(t, fb.texts, 1)
	assert.Contains(t, fb.texts[0].Prompt, "User: I own a coffee shop\nJaml: nice")
	assert.Contains(t, fb.texts[0].Prompt, "design a logo")
	assert.True(t, strings.HasPrefix(fb.imgPrompt[0], "Design a modern, minimalist vector logo for a logo for a coffee shop."))
}

func TestClient_EnhanceFallsBackOnError(t *testing.T) {
	fb := &fakeBackend{textErr: errors.New("down"), img: Image{Data: []byte{1}}}
	c := NewClient(fb)

	_, err := c.GenerateImage(context.Background(), "a horse", history("a", "b"), model.DefaultPersona())
	require.NoError(t, err)
	assert.Contains(t, fb.imgPrompt[0], "photograph of a horse.")
}

func TestClient_EnhanceUsesLastTenMessages(t *testing.T) {
	fb := &fakeBackend{img: Image{Data: []byte{1}}}
	c := NewClient(fb)

	var texts []string
	for i := 0; i < 14; i++ {
		texts = append(texts, "m"+string(rune('a'+i)))
	}
	_, err := c.GenerateImage(context.Background(), "x", history(texts...), model.DefaultPersona())
	require.NoError(t, err)

	p := fb.texts[0].Prompt
	assert.NotContains(t, p, ": md\n")
	assert.Contains(t, p, ": me\n")
	assert.Contains(t, p, ": mn\n")
}

func TestClient_ImageErrorPropagates(t *testing.T) {
	c := NewClient(&fakeBackend{imgErr: ErrNoImage})
	_, err := c.GenerateImage(context.Background(), "x", nil, model.DefaultPersona())
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestClient_EditImage(t *testing.T) {
	c := NewClient(&fakeBackend{})
	_, err := c.EditImage(context.Background(), "brighter", Image{})
	assert.ErrorIs(t, err, ErrEmptyEdit)

	out := &Image{Data: []byte{9}, MIMEType: "image/png"}
	c = NewClient(&fakeBackend{edit: EditResult{Image: out}})
	res, err := c.EditImage(context.Background(), "brighter", Image{})
	require.NoError(t, err)
	assert.Equal(t, out, res.Image)
}

// =============================================================================
// CODE / REVIEW / SUMMARY / TITLE
// =============================================================================

func TestParseCodeBlock(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  model.CodeBlock
	}{
		{
			name:  "fenced",
			reply: "```python\nprint('hi')\n```",
			want:  model.CodeBlock{Language: "python", Content: "print('hi')"},
		},
		{
			name:  "surrounding text",
			reply: "Here you go:\n```go\nfunc main() {}\n```\nEnjoy",
			want:  model.CodeBlock{Language: "go", Content: "func main() {}"},
		},
		{
			name:  "no language",
			reply: "```\nls -la\n```",
			want:  model.CodeBlock{Language: "text", Content: "\nls -la\n"},
		},
		{
			name:  "plain",
			reply: "echo hi",
			want:  model.CodeBlock{Language: "text", Content: "echo hi"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCodeBlock(tt.reply))
		})
	}
}

func TestClient_GenerateCode(t *testing.T) {
	fb := &fakeBackend{replies: []string{"```js\nconsole.log(1)\n```"}}
	c := NewClient(fb)
	code, err := c.GenerateCode(context.Background(), "log one", nil, model.DefaultPersona())
	require.NoError(t, err)
	assert.Equal(t, model.CodeBlock{Language: "js", Content: "console.log(1)"}, code)
	assert.Contains(t, fb.texts[0].Prompt, `الطلب: "log one"`)
}

func TestClient_Reviews(t *testing.T) {
	fb := &fakeBackend{}
	c := NewClient(fb)

	_, err := c.ReviewCode(context.Background(), "package x", "x.go")
	require.NoError(t, err)
	_, err = c.ReviewText(context.Background(), "dear sir", "letter.txt")
	require.NoError(t, err)

	assert.Contains(t, fb.texts[0].Prompt, `"x.go"`)
	assert.Contains(t, fb.texts[0].Prompt, "package x")
	assert.Contains(t, fb.texts[1].Prompt, `"letter.txt"`)
	assert.Contains(t, fb.texts[1].Prompt, "dear sir")
}

func TestClient_SolveFromImage(t *testing.T) {
	fb := &fakeBackend{}
	c := NewClient(fb)
	img := Image{Data: []byte{1, 2}, MIMEType: "image/jpeg"}
	_, err := c.SolveFromImage(context.Background(), "question 2 only", img)
	require.NoError(t, err)
	assert.Equal(t, HomeworkPrefix+"question 2 only", fb.texts[0].Prompt)
	assert.Equal(t, []Image{img}, fb.texts[0].Images)
}

func TestClient_Summarize(t *testing.T) {
	c := NewClient(&fakeBackend{})
	_, err := c.Summarize(context.Background(), history("only one"), model.DefaultPersona())
	assert.ErrorIs(t, err, ErrTooFewMessages)

	fb := &fakeBackend{replies: []string{"- point"}}
	c = NewClient(fb)
	s, err := c.Summarize(context.Background(), history("q", "a"), model.Persona{Gender: model.GenderFemale})
	require.NoError(t, err)
	assert.Equal(t, "- point", s)
	assert.Contains(t, fb.texts[0].Prompt, "المستخدم: q\nناقة: a")
}

func TestClient_Title(t *testing.T) {
	fb := &fakeBackend{}
	c := NewClient(fb)
	title, err := c.Title(context.Background(), history("one"), model.DefaultPersona())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultTitle, title)
	assert.Empty(t, fb.texts)

	fb = &fakeBackend{replies: []string{` "وصفات القهوة" ` + "\n"}}
	c = NewClient(fb)
	title, err = c.Title(context.Background(), history("a", "b", "c", "d", "e", "f"), model.DefaultPersona())
	require.NoError(t, err)
	assert.Equal(t, "وصفات القهوة", title)
	assert.Contains(t, fb.texts[0].Prompt, "User: c\nJaml: d")
	assert.NotContains(t, fb.texts[0].Prompt, "User: e")
}

// =============================================================================
// HELPERS
// =============================================================================

func TestReviewKindFor(t *testing.T) {
	assert.Equal(t, ReviewCode, ReviewKindFor("main.GO"))
	assert.Equal(t, ReviewCode, ReviewKindFor("dir/page.tsx"))
	assert.Equal(t, ReviewText, ReviewKindFor("notes.txt"))
	assert.Equal(t, ReviewText, ReviewKindFor("Makefile"))
	assert.Equal(t, "codeReviewing", ReviewCode.String())
}

func TestDataURLRoundTrip(t *testing.T) {
	img := Image{Data: []byte("png-bytes"), MIMEType: "image/png"}
	url := img.DataURL()
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	back, err := ParseDataURL(url)
	require.NoError(t, err)
	assert.Equal(t, img, back)

	_, err = ParseDataURL("/tmp/cat.png")
	assert.Error(t, err)
}

func TestThrottle(t *testing.T) {
	var nilThrottle *Throttle
	ctx, cancel, err := nilThrottle.Begin(context.Background())
	require.NoError(t, err)
	cancel()
	assert.NotNil(t, ctx)

	th := NewThrottle(0, 50*time.Millisecond)
	ctx, cancel, err = th.Begin(context.Background())
	require.NoError(t, err)
	defer cancel()
	_, hasDeadline := ctx.Deadline()
	assert.True(t, hasDeadline)

	th = NewThrottle(1, 0)
	_, c1, err := th.Begin(context.Background())
	require.NoError(t, err)
	c1()
	canceled, stop := context.WithCancel(context.Background())
	stop()
	_, c2, err := th.Begin(canceled)
	c2()
	assert.Error(t, err, "second call waits for the next slot and sees the cancelled context")
}
