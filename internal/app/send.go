// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/jeranaias/jaml-tui/internal/ai"
	"github.com/jeranaias/jaml-tui/internal/devmode"
	"github.com/jeranaias/jaml-tui/internal/model"
	"github.com/jeranaias/jaml-tui/internal/router"
)

// =============================================================================
// TYPES
// =============================================================================

// StageKind is what a staged image is for.
type StageKind string

const (
	StageEdit     StageKind = "edit"
	StageHomework StageKind = "homework"
)

// StagedImage is an image attached to the next send.
type StagedImage struct {
	Kind StageKind
	// Path is shown in the conversation; Image is what is sent.
	Path  string
	Image ai.Image
}

// SendOptions modify a single send.
type SendOptions struct {
	// Thinking prefixes the prompt sent to the model with a request to
	// reason carefully. The stored user message is unchanged.
	Thinking bool
}

// Result describes what a send appended.
type Result struct {
	ConversationID string
	Intent         router.Intent
	Messages       []model.Message

	// Warning is the abuse warning issued by this send, if any.
	Warning int
	// Banned is true when this send started a ban.
	Banned bool
	// Step is the unlock sequence position after this send.
	Step devmode.Step
	// Unlocked is true when this send completed the unlock sequence.
	Unlocked bool
	// NeedsTitle is true when the conversation should now be auto-titled.
	NeedsTitle bool
}

// Failed reports whether the send ended with the generic error message.
func (r Result) Failed() bool {
	if len(r.Messages) == 0 {
		return false
	}
	last := r.Messages[len(r.Messages)-1]
	return last.Content == MsgError || last.Content == MsgFileReadError
}

// =============================================================================
// SEND
// =============================================================================

// Send handles a text prompt: the unlock sequence first, then the ban and
// quota gates, then dispatch by intent.
func (a *App) Send(ctx context.Context, text string, opts SendOptions) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, ErrEmptyPrompt
	}
	res, done, err := a.begin(text)
	if done || err != nil {
		return res, err
	}
	defer a.busy.Store(false)

	history := a.history(res.ConversationID)

	role := model.RoleUser
	if a.Impersonating() {
		role = model.RoleModel
	}
	a.record(&res, model.NewMessage(role, text))

	prompt := text
	if opts.Thinking {
		prompt = ai.WithThinking(text)
	}

	res.Intent = a.router.Route(text)
	persona := a.Persona()
	switch res.Intent {
	case router.IntentLogo:
		img, err := a.ai.GenerateLogo(ctx, prompt, history, persona)
		a.recordImage(&res, "logo", img, err, MsgLogoPolicy)
	case router.IntentImage:
		img, err := a.ai.GenerateImage(ctx, prompt, history, persona)
		a.recordImage(&res, "image", img, err, MsgImagePolicy)
	case router.IntentCode:
		code, err := a.ai.GenerateCode(ctx, prompt, history, persona)
		if err != nil {
			a.fail(&res, "code", err)
			break
		}
		a.record(&res, model.NewCodeMessage(code.Language, code.Content))
	default:
		a.chat(ctx, &res, prompt, history, persona)
	}

	a.finish(&res)
	return res, nil
}

// SendImage handles a prompt with a staged image: edit applies the prompt
// to the image, homework solves the questions pictured in it.
func (a *App) SendImage(ctx context.Context, text string, staged StagedImage, opts SendOptions) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" && staged.Kind == StageHomework {
		text = MsgHomeworkPrompt
	}
	if text == "" {
		return Result{}, ErrEmptyPrompt
	}
	res, done, err := a.begin(text)
	if done || err != nil {
		return res, err
	}
	defer a.busy.Store(false)

	prompt := text
	if opts.Thinking {
		prompt = ai.WithThinking(text)
	}
	a.record(&res, model.NewImageMessage(model.RoleUser, text, staged.Path))

	switch staged.Kind {
	case StageHomework:
		res.Intent = router.IntentChat
		reply, err := a.ai.SolveFromImage(ctx, prompt, staged.Image)
		if err != nil {
			a.fail(&res, "homework", err)
			break
		}
		a.record(&res, model.NewModelMessage(reply))
	default:
		res.Intent = router.IntentImage
		out, err := a.ai.EditImage(ctx, prompt, staged.Image)
		if err != nil {
			a.fail(&res, "edit", err)
			break
		}
		if strings.TrimSpace(out.Text) != "" {
			a.record(&res, model.NewModelMessage(out.Text))
		}
		if out.Image != nil {
			a.record(&res, model.NewImageMessage(model.RoleModel, "", out.Image.DataURL()))
		}
	}

	a.finish(&res)
	return res, nil
}

// ReviewFile sends the file at path for review. Source files get a code
// review, everything else a document review.
func (a *App) ReviewFile(ctx context.Context, path string) (Result, error) {
	if !a.busy.CompareAndSwap(false, true) {
		return Result{}, ErrBusy
	}
	defer a.busy.Store(false)

	if err := a.admit(); err != nil {
		return Result{}, err
	}
	res, err := a.target()
	if err != nil {
		return res, err
	}

	name := filepath.Base(path)
	kind := ai.ReviewKindFor(name)
	label := MsgTextReviewing
	if kind == ai.ReviewCode {
		label = MsgCodeReviewing
	}
	msg := model.NewUserMessage(fmt.Sprintf("%s %s", label, name))
	msg.FileInfo = &model.FileInfo{Name: name, MIMEType: ai.MIMETypeFor(name)}
	a.record(&res, msg)

	data, err := os.ReadFile(path)
	if err == nil && !utf8.Valid(data) {
		err = errBinaryFile
	}
	if err != nil {
		slog.Error("file_read_failed", "file", name, "error", err)
		a.record(&res, model.NewModelMessage(MsgFileReadError))
		a.finish(&res)
		return res, nil
	}

	var reply string
	if kind == ai.ReviewCode {
		reply, err = a.ai.ReviewCode(ctx, string(data), name)
	} else {
		reply, err = a.ai.ReviewText(ctx, string(data), name)
	}
	if err != nil {
		a.fail(&res, kind.String(), err)
	} else {
		a.record(&res, model.NewModelMessage(reply))
	}

	a.finish(&res)
	return res, nil
}

// Summarize appends a summary of the active conversation. Conversations
// with fewer than two messages return ai.ErrTooFewMessages.
func (a *App) Summarize(ctx context.Context) (Result, error) {
	c, ok := a.convs.Active()
	if !ok {
		return Result{}, ai.ErrTooFewMessages
	}
	history := visible(c.Messages)
	if len(history) < 2 {
		return Result{}, ai.ErrTooFewMessages
	}
	if !a.busy.CompareAndSwap(false, true) {
		return Result{}, ErrBusy
	}
	defer a.busy.Store(false)

	if err := a.admit(); err != nil {
		return Result{}, err
	}

	res := Result{ConversationID: c.ID}
	summary, err := a.ai.Summarize(ctx, history, a.Persona())
	if err != nil {
		a.fail(&res, "summarize", err)
	} else {
		a.record(&res, model.NewSummaryMessage(summary))
	}
	a.finish(&res)
	return res, nil
}

// =============================================================================
// HELPERS
// =============================================================================

var errBinaryFile = errors.New("file is not valid UTF-8 text")

// begin runs the gates shared by text sends. done is true when the input
// was consumed by the unlock sequence. On success the busy flag is held and
// the caller must release it.
func (a *App) begin(text string) (Result, bool, error) {
	if !a.busy.CompareAndSwap(false, true) {
		return Result{}, false, ErrBusy
	}
	release := true
	defer func() {
		if release {
			a.busy.Store(false)
		}
	}()

	if step := a.unlock.Feed(text); step.Consumed {
		res, err := a.target()
		if err != nil {
			return res, true, err
		}
		a.record(&res, model.NewModelMessage(step.Reply))
		res.Step = a.unlock.Step()
		res.Unlocked = step.Unlocked
		return res, true, nil
	}

	if err := a.admit(); err != nil {
		return Result{}, false, err
	}
	res, err := a.target()
	if err != nil {
		return res, false, err
	}
	res.Step = a.unlock.Step()
	release = false
	return res, false, nil
}

// admit applies the ban and quota gates. The quota is consumed only when
// the request will actually be made.
func (a *App) admit() error {
	if a.ai == nil {
		return ai.ErrNotConfigured
	}
	if a.abuse.IsBanned() {
		return ErrBanned
	}
	if !a.quota.CheckAndConsume() {
		return ErrQuotaExhausted
	}
	return nil
}

// target resolves the conversation this request writes to.
func (a *App) target() (Result, error) {
	c, err := a.EnsureConversation()
	if err != nil {
		return Result{}, err
	}
	return Result{ConversationID: c.ID}, nil
}

func (a *App) history(id string) []model.Message {
	c, ok := a.convs.Get(id)
	if !ok {
		return nil
	}
	return visible(c.Messages)
}

// visible drops messages that carry nothing.
func visible(msgs []model.Message) []model.Message {
	out := make([]model.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Payload() == 0 {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (a *App) chat(ctx context.Context, res *Result, prompt string, history []model.Message, p model.Persona) {
	reply, err := a.ai.Chat(ctx, ai.ChatRequest{
		Persona:  p,
		History:  history,
		Prompt:   prompt,
		Sampling: a.sampling(),
	})
	if err != nil {
		a.fail(res, "chat", err)
		return
	}
	if !ai.IsAbuseMarker(reply) {
		a.record(res, model.NewModelMessage(reply))
		return
	}

	out := a.abuse.RecordMarker()
	if out.Banned {
		res.Banned = true
		a.record(res, model.NewModelMessage(MsgBan))
		return
	}
	res.Warning = out.Warning
	a.record(res, model.NewModelMessage(WarningMessage(out.Warning)))
}

func (a *App) recordImage(res *Result, op string, img ai.Image, err error, policyMsg string) {
	switch {
	case errors.Is(err, ai.ErrNoImage):
		slog.Warn("ai_no_image", "op", op)
		a.record(res, model.NewModelMessage(policyMsg))
	case err != nil:
		a.fail(res, op, err)
	default:
		a.record(res, model.NewImageMessage(model.RoleModel, "", img.DataURL()))
	}
}

// record appends msg to the request's conversation. A persistence failure
// is logged by the store and the message stays in memory.
func (a *App) record(res *Result, msg model.Message) {
	if err := a.convs.AppendTo(res.ConversationID, msg); err != nil {
		slog.Warn("message_append_failed", "conversation", res.ConversationID, "error", err)
	}
	res.Messages = append(res.Messages, msg)
}

func (a *App) fail(res *Result, op string, err error) {
	slog.Error("ai_request_failed", "op", op, "error", err)
	a.record(res, model.NewModelMessage(MsgError))
}

func (a *App) finish(res *Result) {
	if c, ok := a.convs.Get(res.ConversationID); ok {
		res.NeedsTitle = c.NeedsTitle()
	}
}
