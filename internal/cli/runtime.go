// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jeranaias/jaml-tui/internal/abuse"
	"github.com/jeranaias/jaml-tui/internal/ai"
	"github.com/jeranaias/jaml-tui/internal/ai/gemini"
	"github.com/jeranaias/jaml-tui/internal/ai/openai"
	"github.com/jeranaias/jaml-tui/internal/app"
	"github.com/jeranaias/jaml-tui/internal/config"
	"github.com/jeranaias/jaml-tui/internal/model"
	"github.com/jeranaias/jaml-tui/internal/quota"
	"github.com/jeranaias/jaml-tui/internal/storage"
)

// =============================================================================
// SESSION
// =============================================================================

// session is an App wired to its storage and provider.
type session struct {
	app      *app.App
	provider string
	kv       storage.KV
}

func (s *session) Close() error {
	return s.kv.Close()
}

// openOptions tune openSession.
type openOptions struct {
	// Ephemeral keeps everything in memory; nothing is read or written.
	Ephemeral bool
}

// openSession builds the App from the loaded config. A missing API key is
// not an error here: the App reports ai.ErrNotConfigured on first send so
// local commands keep working.
func (e *env) openSession(ctx context.Context, opts openOptions) (*session, error) {
	cfg := e.cfg

	kv, err := openStore(cfg, opts.Ephemeral)
	if err != nil {
		return nil, err
	}

	svc, provider, err := newService(ctx, cfg)
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		slog.Info("ai_not_configured", "provider", provider)
	case err != nil:
		kv.Close()
		return nil, err
	}

	st := storage.NewState(kv)
	a := app.New(app.Deps{
		State: st,
		AI:    svc,
		Quota: quota.New(st, quota.WithAllowance(cfg.Limits.DailyMessages)),
		Abuse: abuse.New(st,
			abuse.WithWarnings(cfg.Limits.AbuseWarnings),
			abuse.WithBanDuration(cfg.BanDuration())),
	})

	// ui.theme is the starting theme until the user picks one in the app.
	if !a.OnboardingComplete() {
		if th, err := model.ParseTheme(cfg.UI.Theme); err == nil && th != a.Theme() {
			if err := a.SetTheme(th); err != nil {
				slog.Warn("theme_persist_failed", "error", err)
			}
		}
	}

	slog.Debug("session_opened", "provider", provider, "storage", cfg.Storage.Backend, "ephemeral", opts.Ephemeral)
	return &session{app: a, provider: provider, kv: kv}, nil
}

func openStore(cfg *config.Config, ephemeral bool) (storage.KV, error) {
	if ephemeral {
		return storage.NewMemoryStore(), nil
	}
	dir, err := cfg.DataDir()
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	kv, err := storage.Open(storage.Backend(cfg.Storage.Backend), dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return kv, nil
}

// newService creates the AI client for the configured provider. The
// returned Service is nil when err is non-nil.
func newService(ctx context.Context, cfg *config.Config) (ai.Service, string, error) {
	switch cfg.AI.Provider {
	case config.ProviderOpenAI:
		b, err := openai.New(openai.Config{
			APIKey:            cfg.AI.OpenAIAPIKey,
			BaseURL:           cfg.AI.OpenAIBaseURL,
			ChatModel:         cfg.AI.ChatModel,
			ImageModel:        cfg.AI.ImageModel,
			ImageEditModel:    cfg.AI.ImageEditModel,
			RequestsPerMinute: cfg.AI.RequestsPerMinute,
			Timeout:           cfg.Timeout(),
		})
		if err != nil {
			return nil, config.ProviderOpenAI, err
		}
		return ai.NewClient(b), config.ProviderOpenAI, nil

	default:
		b, err := gemini.New(ctx, gemini.Config{
			APIKey:            cfg.AI.GeminiAPIKey,
			ChatModel:         cfg.AI.ChatModel,
			ImageModel:        cfg.AI.ImageModel,
			ImageEditModel:    cfg.AI.ImageEditModel,
			RequestsPerMinute: cfg.AI.RequestsPerMinute,
			Timeout:           cfg.Timeout(),
		})
		if err != nil {
			return nil, config.ProviderGemini, err
		}
		return ai.NewClient(b), config.ProviderGemini, nil
	}
}
