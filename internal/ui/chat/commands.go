// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/jaml-tui/internal/app"
	"github.com/jeranaias/jaml-tui/internal/model"
	"github.com/jeranaias/jaml-tui/internal/storage"
	"github.com/jeranaias/jaml-tui/internal/util"
)

// =============================================================================
// COMMAND HANDLER REGISTRY
// =============================================================================

// CommandHandler handles one slash command.
type CommandHandler func(m *Model, args []string) (tea.Model, tea.Cmd)

// command is a registry entry.
type command struct {
	handler CommandHandler
	usage   string
	help    string
	// request commands call the model and are refused while busy.
	request bool
	dev     bool
}

// commandHandlers maps command names to their handlers.
var commandHandlers map[string]command

// commandOrder is the order /help lists commands in.
var commandOrder = []string{
	"new", "list", "select", "rename", "delete", "search", "export",
	"summarize", "review", "edit", "homework", "save",
	"think", "theme", "persona", "reset", "help", "quit",
	"temp", "topp", "system", "impersonate", "editmsg", "delmsg", "lock",
}

func init() {
	commandHandlers = map[string]command{
		"help":   {handler: handleHelpCommand, usage: "/help", help: "عرض الأوامر"},
		"quit":   {handler: handleQuitCommand, usage: "/quit", help: "خروج"},
		"new":    {handler: handleNewCommand, usage: "/new", help: "محادثة جديدة"},
		"list":   {handler: handleListCommand, usage: "/list", help: "قائمة المحادثات"},
		"select": {handler: handleSelectCommand, usage: "/select <n>", help: "فتح المحادثة رقم n"},
		"rename": {handler: handleRenameCommand, usage: "/rename <title>", help: "إعادة تسمية المحادثة الحالية"},
		"delete": {handler: handleDeleteCommand, usage: "/delete [n]", help: "حذف محادثة"},
		"search": {handler: handleSearchCommand, usage: "/search <text>", help: "البحث في المحادثات"},
		"export": {handler: handleExportCommand, usage: "/export <file>", help: "تصدير المحادثة (md أو json أو html)"},

		"summarize": {handler: handleSummarizeCommand, usage: "/summarize", help: "تلخيص المحادثة", request: true},
		"review":    {handler: handleReviewCommand, usage: "/review <file>", help: "مراجعة ملف نصي أو كود", request: true},
		"edit":      {handler: handleStageCommand(app.StageEdit), usage: "/edit <image>", help: "تعديل صورة مع الرسالة التالية"},
		"homework":  {handler: handleStageCommand(app.StageHomework), usage: "/homework <image>", help: "حل واجب من صورة"},
		"save":      {handler: handleSaveCommand, usage: "/save <n> <file>", help: "حفظ صورة الرسالة رقم n"},

		"think":   {handler: handleThinkCommand, usage: "/think", help: "تبديل التفكير العميق"},
		"theme":   {handler: handleThemeCommand, usage: "/theme [earthy|purple]", help: "تغيير المظهر"},
		"persona": {handler: handlePersonaCommand, usage: "/persona <male|female> [avatar]", help: "تغيير الشخصية"},
		"reset":   {handler: handleResetCommand, usage: "/reset confirm", help: "حذف جميع البيانات"},

		"temp":        {handler: handleTempCommand, usage: "/temp <0-1>", help: "درجة الحرارة", dev: true},
		"topp":        {handler: handleTopPCommand, usage: "/topp <0-1>", help: "Top-P", dev: true},
		"system":      {handler: handleSystemCommand, usage: "/system", help: "عرض تعليمات النظام", dev: true},
		"impersonate": {handler: handleImpersonateCommand, usage: "/impersonate", help: "الكتابة بصوت المساعد", dev: true},
		"editmsg":     {handler: handleEditMsgCommand, usage: "/editmsg <n> <text>", help: "تعديل نص رسالة", dev: true},
		"delmsg":      {handler: handleDelMsgCommand, usage: "/delmsg <n> [n...]", help: "حذف رسائل"},
		"lock":        {handler: handleLockCommand, usage: "/lock", help: "إيقاف وضع المطور", dev: true},
	}
}

// handleCommand parses and dispatches a slash command.
func (m Model) handleCommand(content string) (tea.Model, tea.Cmd) {
	m.input.Reset()

	parts := strings.Fields(content)
	if len(parts) == 0 {
		return m, nil
	}
	name := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	args := parts[1:]

	cmd, ok := commandHandlers[name]
	if !ok {
		return m.withNotice("أمر غير معروف: " + parts[0] + " (اكتب /help)")
	}
	if cmd.request && (m.state == StateBusy || !m.canSend()) {
		if m.countdown != "" {
			return m.withNotice(app.MsgBan)
		}
		if m.app.Quota().Exhausted() {
			return m.withNotice(app.MsgQuotaExhausted)
		}
		return m, nil
	}
	if cmd.dev && !m.app.DevMode() {
		return m.withNotice(app.MsgDevModeRequired)
	}
	next, c := cmd.handler(&m, args)
	if p, ok := next.(*Model); ok {
		return *p, c
	}
	return next, c
}

func usageNotice(m *Model, name string) (tea.Model, tea.Cmd) {
	return m, m.setNotice("الاستخدام: " + commandHandlers[name].usage)
}

// messageAt resolves a 1-based message number in the active conversation.
func (m *Model) messageAt(arg string) (model.Message, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return model.Message{}, fmt.Errorf("رقم رسالة غير صالح: %s", arg)
	}
	c, ok := m.app.Conversations().Active()
	if !ok || n < 1 || n > len(c.Messages) {
		return model.Message{}, fmt.Errorf("لا توجد رسالة رقم %d", n)
	}
	return c.Messages[n-1], nil
}

// conversationAt resolves a 1-based position in the conversation list.
func (m *Model) conversationAt(arg string) (model.Conversation, error) {
	n, err := strconv.Atoi(arg)
	convs := m.app.Conversations().List()
	if err != nil || n < 1 || n > len(convs) {
		return model.Conversation{}, fmt.Errorf("لا توجد محادثة رقم %s", arg)
	}
	return convs[n-1], nil
}

// =============================================================================
// HELP AND META COMMANDS
// =============================================================================

func handleHelpCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	var b strings.Builder
	b.WriteString(m.theme.HeaderTitle.Render("الأوامر"))
	b.WriteString("\n\n")
	dev := m.app.DevMode()
	for _, name := range commandOrder {
		cmd := commandHandlers[name]
		if cmd.dev && !dev {
			continue
		}
		b.WriteString(util.PadWidth(cmd.usage, 36))
		b.WriteString(m.theme.Muted.Render(cmd.help))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	for _, k := range m.keyMap.ShortHelp() {
		h := k.Help()
		b.WriteString(util.PadWidth(h.Key, 12) + m.theme.Muted.Render(h.Desc) + "\n")
	}
	b.WriteString("\n" + m.theme.Help.Render("esc للعودة"))
	m.showOverlay(b.String())
	return m, nil
}

func handleQuitCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	return m, tea.Quit
}

// =============================================================================
// CONVERSATION COMMANDS
// =============================================================================

func handleNewCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	if m.state == StateBusy {
		return m, nil
	}
	return m.newConversation()
}

func handleListCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	m.openSidebar()
	return m, nil
}

func handleSelectCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) != 1 {
		return usageNotice(m, "select")
	}
	c, err := m.conversationAt(args[0])
	if err != nil {
		return m, m.setNotice(err.Error())
	}
	if err := m.app.Conversations().Select(c.ID); err != nil {
		return m, m.setNotice(err.Error())
	}
	m.closeOverlay()
	return m, nil
}

func handleRenameCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return usageNotice(m, "rename")
	}
	id := m.app.Conversations().ActiveID()
	if err := m.app.Conversations().Rename(id, title); err != nil {
		return m, m.setNotice(err.Error())
	}
	return m, m.setNotice("تمت إعادة التسمية")
}

func handleDeleteCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	id := m.app.Conversations().ActiveID()
	if len(args) > 0 {
		c, err := m.conversationAt(args[0])
		if err != nil {
			return m, m.setNotice(err.Error())
		}
		id = c.ID
	}
	if err := m.app.Conversations().Delete(id); err != nil {
		return m, m.setNotice(err.Error())
	}
	m.refresh()
	return m, m.setNotice("تم حذف المحادثة")
}

func handleSearchCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return usageNotice(m, "search")
	}
	found := m.app.Conversations().Search(query)
	if len(found) == 0 {
		return m, m.setNotice("لا توجد نتائج")
	}
	list := m.app.Conversations().List()
	var b strings.Builder
	b.WriteString(m.theme.HeaderTitle.Render("نتائج البحث: " + query))
	b.WriteString("\n\n")
	for _, c := range found {
		n := 0
		for i := range list {
			if list[i].ID == c.ID {
				n = i + 1
				break
			}
		}
		fmt.Fprintf(&b, "%3d  %s\n     %s\n", n, c.Title, m.theme.Muted.Render(storage.Preview(c, 60)))
	}
	b.WriteString("\n" + m.theme.Help.Render("/select <n> للفتح، esc للعودة"))
	m.showOverlay(b.String())
	return m, nil
}

func handleExportCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) != 1 {
		return usageNotice(m, "export")
	}
	c, ok := m.app.Conversations().Active()
	if !ok {
		return m, m.setNotice("لا توجد محادثة")
	}
	path := args[0]
	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var err error
		if data, err = storage.ExportJSON(c); err != nil {
			return m, m.setNotice(err.Error())
		}
	case ".html", ".htm":
		data = []byte(storage.ExportHTML(c, m.app.Persona(), m.app.Theme()))
	default:
		data = []byte(storage.ExportMarkdown(c, m.app.Persona()))
	}
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return m, m.setNotice(err.Error())
	}
	return m, m.setNotice("تم التصدير إلى " + path)
}

// =============================================================================
// REQUEST COMMANDS
// =============================================================================

func handleSummarizeCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	a, ctx := m.app, m.ctx
	return m.startRequest(func() (app.Result, error) {
		return a.Summarize(ctx)
	})
}

func handleReviewCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return usageNotice(m, "review")
	}
	path := strings.Join(args, " ")
	a, ctx := m.app, m.ctx
	return m.startRequest(func() (app.Result, error) {
		return a.ReviewFile(ctx, path)
	})
}

func handleStageCommand(kind app.StageKind) CommandHandler {
	return func(m *Model, args []string) (tea.Model, tea.Cmd) {
		if len(args) == 0 {
			return usageNotice(m, string(kind))
		}
		path := strings.Join(args, " ")
		img, err := app.LoadImage(path)
		if err != nil {
			return m, m.setNotice(app.MsgFileReadError)
		}
		m.staged = &app.StagedImage{Kind: kind, Path: path, Image: img}
		m.layout()
		return m, m.setNotice("الصورة جاهزة، اكتب طلبك ثم اضغط enter")
	}
}

func handleSaveCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) < 2 {
		return usageNotice(m, "save")
	}
	msg, err := m.messageAt(args[0])
	if err != nil {
		return m, m.setNotice(err.Error())
	}
	if msg.ImageURL == "" {
		return m, m.setNotice("الرسالة لا تحتوي على صورة")
	}
	return m, saveCmd(m.app, msg.ID, strings.Join(args[1:], " "))
}

// =============================================================================
// SETTINGS COMMANDS
// =============================================================================

func handleThinkCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	m.thinking = !m.thinking
	if m.thinking {
		return m, m.setNotice("التفكير العميق مفعل")
	}
	return m, m.setNotice("التفكير العميق متوقف")
}

func handleThemeCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	next := model.ThemePurple
	if m.app.Theme() == model.ThemePurple {
		next = model.ThemeEarthy
	}
	if len(args) > 0 {
		th, err := model.ParseTheme(args[0])
		if err != nil {
			return m, m.setNotice(err.Error())
		}
		next = th
	}
	if err := m.app.SetTheme(next); err != nil {
		return m, m.setNotice(err.Error())
	}
	m.setTheme(next)
	return m, nil
}

func handlePersonaCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return usageNotice(m, "persona")
	}
	p := m.app.Persona()
	g, err := model.ParseGender(args[0])
	if err != nil {
		return m, m.setNotice(err.Error())
	}
	p.Gender = g
	if len(args) > 1 {
		av, err := model.ParseAvatar(args[1])
		if err != nil {
			return m, m.setNotice(err.Error())
		}
		p.Avatar = av
	}
	if err := m.app.SetPersona(p); err != nil {
		return m, m.setNotice(err.Error())
	}
	m.refresh()
	return m, m.setNotice("أنا الآن " + p.Name())
}

func handleResetCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) != 1 || args[0] != "confirm" {
		return m, m.setNotice("سيتم حذف كل شيء. اكتب /reset confirm للتأكيد")
	}
	if err := m.app.Reset(); err != nil {
		return m, m.setNotice(err.Error())
	}
	m.thinking = false
	m.staged = nil
	m.overlay = ""
	m.state = StateOnboarding
	m.onboard = onboardGender
	m.input.Blur()
	m.updateCountdown()
	m.setTheme(m.app.Theme())
	m.layout()
	return m, nil
}

// =============================================================================
// DEVELOPER COMMANDS
// =============================================================================

func parseUnit(arg string) (float64, error) {
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil || v < 0 || v > 1 {
		return 0, fmt.Errorf("القيمة يجب أن تكون بين 0 و 1")
	}
	return v, nil
}

func handleTempCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	cfg := m.app.ModelConfig()
	if len(args) == 0 {
		return m, m.setNotice(fmt.Sprintf("temperature = %.2f", cfg.Temperature))
	}
	v, err := parseUnit(args[0])
	if err != nil {
		return m, m.setNotice(err.Error())
	}
	cfg.Temperature = v
	if err := m.app.SetModelConfig(cfg); err != nil {
		return m, m.setNotice(err.Error())
	}
	return m, m.setNotice(fmt.Sprintf("temperature = %.2f", v))
}

func handleTopPCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	cfg := m.app.ModelConfig()
	if len(args) == 0 {
		return m, m.setNotice(fmt.Sprintf("top_p = %.2f", cfg.TopP))
	}
	v, err := parseUnit(args[0])
	if err != nil {
		return m, m.setNotice(err.Error())
	}
	cfg.TopP = v
	if err := m.app.SetModelConfig(cfg); err != nil {
		return m, m.setNotice(err.Error())
	}
	return m, m.setNotice(fmt.Sprintf("top_p = %.2f", v))
}

func handleSystemCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	text, err := m.app.SystemInstruction()
	if err != nil {
		return m, m.setNotice(err.Error())
	}
	m.showOverlay(m.theme.HeaderTitle.Render("تعليمات النظام") + "\n\n" +
		m.markdown.Render(text, m.viewport.Width-4) + "\n\n" + m.theme.Help.Render("esc للعودة"))
	return m, nil
}

func handleImpersonateCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	on := !m.app.Impersonating()
	if err := m.app.SetImpersonate(on); err != nil {
		return m, m.setNotice(err.Error())
	}
	if on {
		return m, m.setNotice("رسائلك ستظهر باسم " + m.app.Persona().Name())
	}
	return m, m.setNotice("انتهى الانتحال")
}

func handleLockCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	m.app.LockDevMode()
	return m, m.setNotice("تم إيقاف وضع المطور")
}

func handleEditMsgCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) < 2 {
		return usageNotice(m, "editmsg")
	}
	msg, err := m.messageAt(args[0])
	if err != nil {
		return m, m.setNotice(err.Error())
	}
	if err := m.app.EditMessage(msg.ID, strings.Join(args[1:], " ")); err != nil {
		return m, m.setNotice(err.Error())
	}
	m.refresh()
	return m, nil
}

func handleDelMsgCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return usageNotice(m, "delmsg")
	}
	ids := make([]string, 0, len(args))
	for _, arg := range args {
		msg, err := m.messageAt(arg)
		if err != nil {
			return m, m.setNotice(err.Error())
		}
		ids = append(ids, msg.ID)
	}
	n, err := m.app.DeleteMessages(ids...)
	if err != nil {
		return m, m.setNotice(err.Error())
	}
	m.refresh()
	return m, m.setNotice(fmt.Sprintf("تم حذف %d", n))
}

