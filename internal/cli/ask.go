// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/jaml-tui/internal/app"
	"github.com/jeranaias/jaml-tui/internal/model"
)

// askOptions are the ask command's flags.
type askOptions struct {
	think     bool
	ephemeral bool
	newConv   bool
	review    string
	edit      string
	homework  string
	summarize bool
	out       string
}

// askData is the ask command's JSON payload.
type askData struct {
	ConversationID string          `json:"conversation_id"`
	Intent         string          `json:"intent,omitempty"`
	Messages       []model.Message `json:"messages"`
	Warning        int             `json:"warning,omitempty"`
	Banned         bool            `json:"banned,omitempty"`
	Unlocked       bool            `json:"unlocked,omitempty"`
	Title          string          `json:"title,omitempty"`
	Saved          string          `json:"saved,omitempty"`
	Remaining      int             `json:"remaining"`
}

func newAskCmd(e *env) *cobra.Command {
	var opts askOptions

	cmd := &cobra.Command{
		Use:   "ask [prompt...]",
		Short: "Send one prompt and print the reply",
		Long: `Send a single prompt to the active conversation and print the reply.
The prompt is read from stdin when no arguments are given.

Image prompts ("ارسم ...", "صمم شعار ...") produce an image; use --out to
save it.`,
		Example: `  jaml ask "كيف حالك؟"
  jaml ask --think "اشرح النسبية"
  jaml ask --edit photo.png "اجعل الخلفية زرقاء" --out edited.png
  jaml ask --homework page.jpg
  jaml ask --review main.go
  echo "مرحبا" | jaml ask --ephemeral`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			if prompt == "" && needsPrompt(opts) && !IsTTY() {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				prompt = string(data)
			}
			if strings.TrimSpace(prompt) == "" && needsPrompt(opts) {
				return usageErrorf("a prompt is required")
			}

			s, err := e.openSession(cmd.Context(), openOptions{Ephemeral: opts.ephemeral})
			if err != nil {
				return err
			}
			defer s.Close()

			if opts.newConv {
				if _, err := s.app.NewConversation(); err != nil {
					return err
				}
			}

			d, err := ask(cmd.Context(), s.app, prompt, opts)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), e.flags.json, "ask", d, func(w io.Writer) {
				writeAsk(w, s, d)
			})
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&opts.think, "think", "t", false, "ask the model to reason step by step")
	f.BoolVar(&opts.ephemeral, "ephemeral", false, "keep nothing: no history, quota or ban state is read or written")
	f.BoolVarP(&opts.newConv, "new", "n", false, "start a new conversation first")
	f.StringVar(&opts.review, "review", "", "review a source or text file")
	f.StringVar(&opts.edit, "edit", "", "edit an image with the prompt")
	f.StringVar(&opts.homework, "homework", "", "solve the questions in an image")
	f.BoolVar(&opts.summarize, "summarize", false, "summarize the active conversation")
	f.StringVarP(&opts.out, "out", "o", "", "save a generated image to this path")
	cmd.MarkFlagsMutuallyExclusive("review", "edit", "homework", "summarize")
	return cmd
}

// needsPrompt reports whether opts require prompt text. Review, summary
// and homework work without one.
func needsPrompt(opts askOptions) bool {
	return opts.review == "" && opts.homework == "" && !opts.summarize
}

// ask runs one request and titles the conversation when due.
func ask(ctx context.Context, a *app.App, prompt string, opts askOptions) (askData, error) {
	sendOpts := app.SendOptions{Thinking: opts.think}

	var (
		res app.Result
		err error
	)
	switch {
	case opts.review != "":
		res, err = a.ReviewFile(ctx, opts.review)
	case opts.summarize:
		res, err = a.Summarize(ctx)
	case opts.edit != "" || opts.homework != "":
		staged := app.StagedImage{Kind: app.StageEdit, Path: opts.edit}
		if opts.homework != "" {
			staged = app.StagedImage{Kind: app.StageHomework, Path: opts.homework}
		}
		if staged.Image, err = app.LoadImage(staged.Path); err != nil {
			return askData{}, fmt.Errorf("%s: %w", app.MsgFileReadError, err)
		}
		res, err = a.SendImage(ctx, prompt, staged, sendOpts)
	default:
		res, err = a.Send(ctx, prompt, sendOpts)
	}
	if err != nil {
		return askData{}, err
	}

	d := askData{
		ConversationID: res.ConversationID,
		Intent:         res.Intent.String(),
		Warning:        res.Warning,
		Banned:         res.Banned,
		Unlocked:       res.Unlocked,
		Remaining:      a.Quota().Remaining(),
	}
	for _, m := range res.Messages {
		if m.IsUser() {
			continue
		}
		d.Messages = append(d.Messages, m)
		if opts.out != "" && d.Saved == "" && m.ImageURL != "" {
			if err := a.SaveImage(m.ID, opts.out); err != nil {
				return d, err
			}
			d.Saved = opts.out
		}
	}
	if opts.out != "" && d.Saved == "" {
		slog.Info("ask_no_image_to_save", "path", opts.out)
	}

	if res.NeedsTitle {
		title, ok, err := a.AutoTitle(ctx, res.ConversationID)
		switch {
		case err != nil && !errors.Is(err, context.Canceled):
			slog.Warn("auto_title_failed", "error", err)
		case ok:
			d.Title = title
		}
	}
	return d, nil
}

func writeAsk(w io.Writer, s *session, d askData) {
	c, ok := s.app.Conversations().Get(d.ConversationID)
	if !ok {
		c = model.Conversation{Messages: d.Messages}
	}
	r := newREPL(s.app, s.provider, w, GetTerminalWidth(), IsStdoutTTY())
	r.printMessages(c, d.Messages)

	if d.Saved != "" {
		fmt.Fprintln(w, SuccessStyle.Render("Saved image to ")+d.Saved)
	}
	if d.Unlocked {
		fmt.Fprintln(w, SuccessStyle.Render("DEV"))
	}
}
