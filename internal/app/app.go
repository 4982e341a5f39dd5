// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jeranaias/jaml-tui/internal/abuse"
	"github.com/jeranaias/jaml-tui/internal/ai"
	"github.com/jeranaias/jaml-tui/internal/conversation"
	"github.com/jeranaias/jaml-tui/internal/devmode"
	"github.com/jeranaias/jaml-tui/internal/model"
	"github.com/jeranaias/jaml-tui/internal/quota"
	"github.com/jeranaias/jaml-tui/internal/router"
	"github.com/jeranaias/jaml-tui/internal/storage"
	"github.com/jeranaias/jaml-tui/internal/util"
)

// =============================================================================
// APP
// =============================================================================

// Deps are the collaborators of an App. Only State is required; nil gates
// are created with their defaults and a nil AI service makes every send
// fail with ai.ErrNotConfigured.
type Deps struct {
	State  *storage.State
	AI     ai.Service
	Quota  *quota.Gate
	Abuse  *abuse.Monitor
	Router *router.Router
}

// App is the application state. It is safe for concurrent use, but only one
// send may be in flight at a time.
type App struct {
	state  *storage.State
	ai     ai.Service
	quota  *quota.Gate
	abuse  *abuse.Monitor
	router *router.Router
	convs  *conversation.Store
	unlock devmode.Unlocker

	mu          sync.RWMutex
	persona     model.Persona
	modelCfg    model.ModelConfig
	theme       model.Theme
	impersonate bool

	busy    atomic.Bool
	titling sync.Map
}

// New loads persisted state and returns a ready App.
func New(d Deps) *App {
	if d.Quota == nil {
		d.Quota = quota.New(d.State)
	}
	if d.Abuse == nil {
		d.Abuse = abuse.New(d.State)
	}
	if d.Router == nil {
		d.Router = router.Default()
	}

	a := &App{
		state:  d.State,
		ai:     d.AI,
		quota:  d.Quota,
		abuse:  d.Abuse,
		router: d.Router,
	}
	a.load()
	return a
}

func (a *App) load() {
	a.quota.Load()
	a.abuse.Load()
	a.convs = conversation.Load(a.state, a.state)

	a.mu.Lock()
	a.persona = a.state.Persona()
	a.modelCfg = a.state.ModelConfig()
	a.theme = a.state.Theme()
	a.mu.Unlock()
}

// Conversations returns the conversation store.
func (a *App) Conversations() *conversation.Store {
	return a.convs
}

// Quota returns the daily quota gate.
func (a *App) Quota() *quota.Gate {
	return a.quota
}

// Abuse returns the abuse monitor.
func (a *App) Abuse() *abuse.Monitor {
	return a.abuse
}

// Configured reports whether an AI service is available.
func (a *App) Configured() bool {
	return a.ai != nil
}

// Busy reports whether a send is in flight.
func (a *App) Busy() bool {
	return a.busy.Load()
}

// =============================================================================
// SETTINGS
// =============================================================================

// Persona returns the active persona.
func (a *App) Persona() model.Persona {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.persona
}

// SetPersona validates, applies and persists p.
func (a *App) SetPersona(p model.Persona) error {
	if err := p.Validate(); err != nil {
		return err
	}
	a.mu.Lock()
	a.persona = p
	a.mu.Unlock()
	return a.state.SetPersona(p)
}

// Theme returns the colour scheme.
func (a *App) Theme() model.Theme {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.theme
}

// SetTheme applies and persists th.
func (a *App) SetTheme(th model.Theme) error {
	a.mu.Lock()
	a.theme = th
	a.mu.Unlock()
	return a.state.SetTheme(th)
}

// OnboardingComplete reports whether the persona setup has been done.
func (a *App) OnboardingComplete() bool {
	return a.state.OnboardingComplete()
}

// CompleteOnboarding stores the chosen persona and marks setup as done.
func (a *App) CompleteOnboarding(p model.Persona) error {
	if err := a.SetPersona(p); err != nil {
		return err
	}
	return a.state.SetOnboardingComplete(true)
}

// DevMode reports whether developer mode is unlocked.
func (a *App) DevMode() bool {
	return a.unlock.Unlocked()
}

// LockDevMode turns developer mode off and disables impersonation.
func (a *App) LockDevMode() {
	a.unlock.Lock()
	a.mu.Lock()
	a.impersonate = false
	a.mu.Unlock()
}

// ModelConfig returns the sampling settings.
func (a *App) ModelConfig() model.ModelConfig {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.modelCfg
}

// SetModelConfig clamps, applies and persists cfg. Developer mode only.
func (a *App) SetModelConfig(cfg model.ModelConfig) error {
	if !a.DevMode() {
		return ErrDevModeRequired
	}
	cfg = cfg.Clamped()
	a.mu.Lock()
	a.modelCfg = cfg
	a.mu.Unlock()
	return a.state.SetModelConfig(cfg)
}

// Impersonating reports whether outbound messages are sent as the model.
func (a *App) Impersonating() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.impersonate && a.unlock.Unlocked()
}

// SetImpersonate toggles impersonation. Developer mode only.
func (a *App) SetImpersonate(on bool) error {
	if !a.DevMode() {
		return ErrDevModeRequired
	}
	a.mu.Lock()
	a.impersonate = on
	a.mu.Unlock()
	return nil
}

// SystemInstruction returns the persona instruction. Developer mode only.
func (a *App) SystemInstruction() (string, error) {
	if !a.DevMode() {
		return "", ErrDevModeRequired
	}
	return ai.SystemInstruction(a.Persona()), nil
}

// Reset wipes all persisted state and reloads defaults. Developer mode and
// the unlock sequence are reset too.
func (a *App) Reset() error {
	if err := a.state.Reset(); err != nil {
		return fmt.Errorf("failed to reset state: %w", err)
	}
	a.LockDevMode()
	a.load()
	slog.Info("app_reset")
	return nil
}

// sampling returns the model settings to send, which is only done in
// developer mode.
func (a *App) sampling() *model.ModelConfig {
	if !a.DevMode() {
		return nil
	}
	cfg := a.ModelConfig()
	return &cfg
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

// NewConversation creates an active conversation opened with the persona's
// greeting.
func (a *App) NewConversation() (model.Conversation, error) {
	c, err := a.convs.Create()
	if err != nil {
		return c, err
	}
	if err := a.convs.AppendTo(c.ID, model.NewModelMessage(Greeting(a.Persona()))); err != nil {
		return c, err
	}
	c, _ = a.convs.Get(c.ID)
	return c, nil
}

// EnsureConversation returns the active conversation, creating one when
// the store is empty.
func (a *App) EnsureConversation() (model.Conversation, error) {
	if c, ok := a.convs.Active(); ok {
		return c, nil
	}
	if list := a.convs.List(); len(list) > 0 {
		if err := a.convs.Select(list[0].ID); err != nil {
			return model.Conversation{}, err
		}
		return list[0], nil
	}
	return a.NewConversation()
}

// EditMessage replaces the text of a message in the active conversation.
// Developer mode only.
func (a *App) EditMessage(msgID, content string) error {
	if !a.DevMode() {
		return ErrDevModeRequired
	}
	return a.convs.EditMessageContent(a.convs.ActiveID(), msgID, content)
}

// DeleteMessages removes the given messages from the active conversation.
func (a *App) DeleteMessages(ids ...string) (int, error) {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return a.convs.DeleteMessages(a.convs.ActiveID(), set)
}

// AutoTitle names conversation id from its messages if it still has the
// default title and holds enough messages. It reports whether a title was
// set. Concurrent calls for the same conversation do nothing.
func (a *App) AutoTitle(ctx context.Context, id string) (string, bool, error) {
	if a.ai == nil {
		return "", false, ai.ErrNotConfigured
	}
	c, ok := a.convs.Get(id)
	if !ok {
		return "", false, conversation.ErrConversationNotFound
	}
	if !c.NeedsTitle() {
		return "", false, nil
	}
	if _, running := a.titling.LoadOrStore(id, true); running {
		return "", false, nil
	}
	defer a.titling.Delete(id)

	title, err := a.ai.Title(ctx, c.Messages, a.Persona())
	if err != nil {
		slog.Warn("auto_title_failed", "conversation", id, "error", err)
		return "", false, err
	}
	if title == model.DefaultTitle {
		return "", false, nil
	}
	if err := a.convs.Rename(id, title); err != nil {
		return "", false, err
	}
	return title, true, nil
}

// SaveImage writes the image carried by msgID in the active conversation to
// path. Generated images are data URLs; uploaded ones are copied from disk.
func (a *App) SaveImage(msgID, path string) error {
	c, ok := a.convs.Active()
	if !ok {
		return conversation.ErrNoConversation
	}
	i := c.FindMessage(msgID)
	if i < 0 {
		return conversation.ErrMessageNotFound
	}
	src := c.Messages[i].ImageURL
	if src == "" {
		return ai.ErrNoImage
	}

	var data []byte
	if strings.HasPrefix(src, "data:") {
		img, err := ai.ParseDataURL(src)
		if err != nil {
			return err
		}
		data = img.Data
	} else {
		b, err := os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		data = b
	}
	return util.AtomicWriteFile(path, data, 0644)
}

// LoadImage reads an image file for staging.
func LoadImage(path string) (ai.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ai.Image{}, fmt.Errorf("failed to read image: %w", err)
	}
	mime := ai.MIMETypeFor(path)
	if !strings.HasPrefix(mime, "image/") {
		return ai.Image{}, fmt.Errorf("%s: %w", path, errNotAnImage)
	}
	return ai.Image{Data: data, MIMEType: mime}, nil
}

var errNotAnImage = errors.New("not an image file")
