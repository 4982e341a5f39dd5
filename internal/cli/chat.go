// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/jaml-tui/internal/abuse"
	"github.com/jeranaias/jaml-tui/internal/ai"
	"github.com/jeranaias/jaml-tui/internal/app"
	"github.com/jeranaias/jaml-tui/internal/config"
	"github.com/jeranaias/jaml-tui/internal/model"
	"github.com/jeranaias/jaml-tui/internal/storage"
	"github.com/jeranaias/jaml-tui/internal/ui/components"
	"github.com/jeranaias/jaml-tui/internal/ui/styles"
)

func newChatCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Line-based chat with input history",
		Long: `Start a line-based chat. Arrow keys walk the input history, which is
kept in $JAML_HOME/chat_history. Type /help for commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd, e)
		},
	}
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineInput provides line editing and persistent history.
type lineInput struct {
	line        *liner.State
	historyFile string
}

func newLineInput(historyFile string) *lineInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	in := &lineInput{line: line, historyFile: historyFile}
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	return in
}

// ReadLine prompts and adds non-empty input to the history.
func (l *lineInput) ReadLine(prompt string) (string, error) {
	input, err := l.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		l.line.AppendHistory(input)
	}
	return input, nil
}

// Close writes the history with owner-only permissions and restores the
// terminal.
func (l *lineInput) Close() {
	defer l.line.Close()
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(l.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	l.line.WriteHistory(f)
}

// =============================================================================
// REPL
// =============================================================================

// repl is the line-based chat loop. readLine is liner in production and a
// scripted reader in tests.
type repl struct {
	app      *app.App
	provider string
	out      io.Writer
	readLine func(prompt string) (string, error)

	theme    *styles.Theme
	markdown *components.Markdown
	width    int

	thinking bool
	staged   *app.StagedImage

	// banned mirrors the monitor so the lift notice prints once.
	banned atomic.Bool
}

// newREPL builds a REPL writing to out. When out is not a terminal,
// replies are laid out without colour.
func newREPL(a *app.App, provider string, out io.Writer, width int, tty bool) *repl {
	theme := styles.NewTheme(a.Theme())
	md := components.NewPlainMarkdown()
	if tty {
		md = components.NewMarkdown(theme.GlamourStyle())
	}
	return &repl{
		app:      a,
		provider: provider,
		out:      out,
		theme:    theme,
		markdown: md,
		width:    width,
	}
}

func runREPL(cmd *cobra.Command, e *env) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	s, err := e.openSession(ctx, openOptions{})
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	r := newREPL(s.app, s.provider, out, GetTerminalWidth(), IsStdoutTTY())

	if !s.app.OnboardingComplete() {
		if err := onboard(cmd.InOrStdin(), out, s.app, IsTTY()); err != nil {
			return err
		}
	}

	input := newLineInput(historyPath())
	defer input.Close()
	r.readLine = input.ReadLine

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.app.Abuse().Watch(gctx, abuse.PollInterval, r.onBanTick)
		return nil
	})
	g.Go(func() error {
		defer cancel()
		return r.run(gctx)
	})
	return g.Wait()
}

// onBanTick announces the end of a ban.
func (r *repl) onBanTick(st abuse.Status) {
	if r.banned.Swap(st.Banned) && !st.Banned {
		fmt.Fprintln(r.out, "\n"+SuccessStyle.Render("انتهى الإيقاف، يمكنك المتابعة."))
	}
}

func (r *repl) run(ctx context.Context) error {
	if _, err := r.app.EnsureConversation(); err != nil {
		return err
	}
	r.banned.Store(r.app.Abuse().IsBanned())
	r.printWelcome()

	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := r.readLine(r.prompt())
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				return nil
			}
			return err
		}
		more, err := r.handleLine(ctx, strings.TrimSpace(line))
		if err != nil {
			fmt.Fprintln(r.out, ErrorStyle.Render("[خطأ]")+" "+err.Error())
		}
		if !more {
			return nil
		}
	}
}

// prompt is plain text since liner measures it.
func (r *repl) prompt() string {
	var b strings.Builder
	if st := r.app.Abuse().Status(); st.Banned {
		b.WriteString("[" + app.BanCountdown(st.Remaining) + "] ")
	}
	if r.thinking {
		b.WriteString("[تفكير] ")
	}
	if r.staged != nil {
		b.WriteString("[" + string(r.staged.Kind) + "] ")
	}
	fmt.Fprintf(&b, "%d/%d > ", r.app.Quota().Remaining(), r.app.Quota().Allowance())
	return b.String()
}

func (r *repl) printWelcome() {
	p := r.app.Persona()
	fmt.Fprintln(r.out, TitleStyle.Render(components.AvatarGlyph(p.Avatar)+" "+p.Name()+" ("+p.LatinName()+")"))
	if c, ok := r.app.Conversations().Active(); ok {
		fmt.Fprintln(r.out, DimStyle.Render(c.Title))
		r.printMessages(c, c.Messages)
	}
	if !r.app.Configured() {
		fmt.Fprintln(r.out, WarningStyle.Render(errorText(ai.ErrNotConfigured)))
	}
	fmt.Fprintln(r.out, DimStyle.Render("/help للأوامر، /quit للخروج"))
}

// handleLine processes one input line. It returns false to end the REPL.
func (r *repl) handleLine(ctx context.Context, line string) (bool, error) {
	switch {
	case line == "":
		return true, nil
	case strings.HasPrefix(line, "/"):
		return r.handleSlashCommand(ctx, line)
	case strings.EqualFold(line, "exit"), strings.EqualFold(line, "quit"):
		return false, nil
	}
	return true, r.send(ctx, line)
}

func (r *repl) send(ctx context.Context, text string) error {
	opts := app.SendOptions{Thinking: r.thinking}
	var (
		res app.Result
		err error
	)
	if staged := r.staged; staged != nil {
		r.staged = nil
		res, err = r.app.SendImage(ctx, text, *staged, opts)
	} else {
		res, err = r.app.Send(ctx, text, opts)
	}
	return r.finish(ctx, res, err)
}

// finish prints what a request appended and titles the conversation when
// it is due.
func (r *repl) finish(ctx context.Context, res app.Result, err error) error {
	if err != nil {
		if errors.Is(err, app.ErrEmptyPrompt) {
			return nil
		}
		return errors.New(errorText(err))
	}
	c, ok := r.app.Conversations().Get(res.ConversationID)
	if !ok {
		return nil
	}
	var replies []model.Message
	for _, m := range res.Messages {
		if !m.IsUser() {
			replies = append(replies, m)
		}
	}
	r.printMessages(c, replies)

	switch {
	case res.Unlocked:
		fmt.Fprintln(r.out, SuccessStyle.Render("DEV"))
	case res.Banned:
		r.banned.Store(true)
	}

	if res.NeedsTitle {
		title, ok, err := r.app.AutoTitle(ctx, res.ConversationID)
		if err != nil {
			slog.Warn("auto_title_failed", "error", err)
		} else if ok {
			fmt.Fprintln(r.out, DimStyle.Render("« "+title+" »"))
		}
	}
	return nil
}

// printMessages renders msgs with their position in c.
func (r *repl) printMessages(c model.Conversation, msgs []model.Message) {
	p := r.app.Persona()
	for _, m := range msgs {
		view := components.MessageView{
			Message:  m,
			Persona:  p,
			Width:    r.width,
			Index:    messageIndex(c, m.ID),
			Theme:    r.theme,
			Markdown: r.markdown,
		}
		fmt.Fprintln(r.out, view.View())
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand returns (continue, error); continue is false to exit.
func (r *repl) handleSlashCommand(ctx context.Context, line string) (bool, error) {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	args := parts[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(line, parts[0]))

	switch command {
	case "/help", "/h", "/?", "/":
		r.printHelp()

	case "/quit", "/q", "/exit":
		return false, nil

	case "/new", "/n":
		c, err := r.app.NewConversation()
		if err != nil {
			return true, err
		}
		r.printMessages(c, c.Messages)

	case "/list", "/l":
		convs := r.app.Conversations()
		fmt.Fprintln(r.out, strings.TrimRight(storage.FormatConversationList(convs.List(), convs.ActiveID()), "\n"))

	case "/select":
		c, err := r.conversationArg(args)
		if err != nil {
			return true, err
		}
		if err := r.app.Conversations().Select(c.ID); err != nil {
			return true, err
		}
		fmt.Fprintln(r.out, DimStyle.Render(c.Title))
		r.printMessages(c, c.Messages)

	case "/rename":
		c, ok := r.app.Conversations().Active()
		if !ok || rest == "" {
			return true, usageErrorf("usage: /rename <title>")
		}
		if err := r.app.Conversations().Rename(c.ID, rest); err != nil {
			return true, err
		}

	case "/search":
		if rest == "" {
			return true, usageErrorf("usage: /search <text>")
		}
		matches := r.app.Conversations().Search(rest)
		if len(matches) == 0 {
			fmt.Fprintln(r.out, DimStyle.Render("لا توجد نتائج"))
			break
		}
		fmt.Fprintln(r.out, strings.TrimRight(storage.FormatConversationList(matches, r.app.Conversations().ActiveID()), "\n"))

	case "/think", "/t":
		r.thinking = !r.thinking

	case "/summarize":
		res, err := r.app.Summarize(ctx)
		return true, r.finish(ctx, res, err)

	case "/review":
		if rest == "" {
			return true, usageErrorf("usage: /review <file>")
		}
		res, err := r.app.ReviewFile(ctx, rest)
		return true, r.finish(ctx, res, err)

	case "/edit", "/homework":
		if rest == "" {
			return true, usageErrorf("usage: %s <image>", command)
		}
		img, err := app.LoadImage(rest)
		if err != nil {
			return true, errors.New(app.MsgFileReadError)
		}
		kind := app.StageEdit
		if command == "/homework" {
			kind = app.StageHomework
		}
		r.staged = &app.StagedImage{Kind: kind, Path: rest, Image: img}

	case "/save":
		if len(args) != 2 {
			return true, usageErrorf("usage: /save <n> <path>")
		}
		m, err := r.messageArg(args[0])
		if err != nil {
			return true, err
		}
		if err := r.app.SaveImage(m.ID, args[1]); err != nil {
			return true, err
		}
		fmt.Fprintln(r.out, SuccessStyle.Render("تم حفظ الصورة في "+args[1]))

	case "/status":
		printStatus(r.out, r.app, r.provider)

	default:
		return true, usageErrorf("unknown command: %s (type /help for commands)", command)
	}
	return true, nil
}

func (r *repl) printHelp() {
	help := [][2]string{
		{"/new", "محادثة جديدة"},
		{"/list", "عرض المحادثات"},
		{"/select <n>", "فتح محادثة"},
		{"/rename <title>", "إعادة التسمية"},
		{"/search <text>", "بحث"},
		{"/think", "التفكير العميق"},
		{"/summarize", "تلخيص المحادثة"},
		{"/review <file>", "مراجعة ملف"},
		{"/edit <image>", "تعديل صورة"},
		{"/homework <image>", "حل واجب"},
		{"/save <n> <path>", "حفظ صورة"},
		{"/status", "الرصيد والحالة"},
		{"/quit", "خروج"},
	}
	for _, h := range help {
		fmt.Fprintln(r.out, field(h[0], h[1]))
	}
}

func (r *repl) conversationArg(args []string) (model.Conversation, error) {
	if len(args) != 1 {
		return model.Conversation{}, usageErrorf("usage: /select <n>")
	}
	return findConversation(r.app, args[0])
}

// messageArg resolves a 1-based message number in the active conversation.
func (r *repl) messageArg(arg string) (model.Message, error) {
	c, ok := r.app.Conversations().Active()
	if !ok {
		return model.Message{}, &NotFoundError{Kind: "conversation", Ref: "active"}
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(c.Messages) {
		return model.Message{}, &NotFoundError{Kind: "message", Ref: arg}
	}
	return c.Messages[n-1], nil
}

func messageIndex(c model.Conversation, id string) int {
	for i, m := range c.Messages {
		if m.ID == id {
			return i + 1
		}
	}
	return 0
}

// =============================================================================
// ERROR TEXT
// =============================================================================

// errorText maps a rejected request to what the user sees.
func errorText(err error) string {
	switch {
	case errors.Is(err, app.ErrBanned):
		return app.MsgBan
	case errors.Is(err, app.ErrQuotaExhausted):
		return app.MsgQuotaExhausted
	case errors.Is(err, app.ErrBusy):
		return "طلب آخر قيد التنفيذ"
	case errors.Is(err, app.ErrDevModeRequired):
		return app.MsgDevModeRequired
	case errors.Is(err, ai.ErrNotConfigured):
		return "لم يتم إعداد مفتاح الذكاء الاصطناعي. شغّل: jaml config set ai.gemini_api_key <key>"
	case errors.Is(err, ai.ErrTooFewMessages):
		return "المحادثة قصيرة جداً للتلخيص"
	}
	return err.Error()
}
