// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/jaml-tui/internal/config"
	"github.com/jeranaias/jaml-tui/internal/model"
	"github.com/jeranaias/jaml-tui/internal/ui/chat"
)

// runTUI runs the full-screen chat alongside a config watcher that pushes
// ui.theme edits into the running program.
func runTUI(cmd *cobra.Command, e *env) error {
	parent := cmd.Context()
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	s, err := e.openSession(ctx, openOptions{})
	if err != nil {
		return err
	}
	defer s.Close()

	m := chat.New(chat.Options{
		App:      s.app,
		Provider: s.provider,
		Context:  ctx,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		return err
	})
	if e.cfgPath != "" {
		g.Go(func() error {
			watchTheme(gctx, e.cfgPath, e.cfg.UI.Theme, p.Send)
			return nil
		})
	}

	err = g.Wait()
	if parent.Err() != nil {
		return nil
	}
	return err
}

// watchTheme sends a ThemeChangedMsg whenever ui.theme changes in the file
// at path. Other edits are ignored so they cannot undo an in-app choice.
func watchTheme(ctx context.Context, path, current string, send func(tea.Msg)) {
	if err := config.EnsureConfigDir(); err != nil {
		slog.Warn("config_watch_failed", "error", err)
		return
	}
	err := config.Watch(ctx, path, func(cfg *config.Config) {
		if cfg.UI.Theme == current {
			return
		}
		current = cfg.UI.Theme
		th, err := model.ParseTheme(current)
		if err != nil {
			return
		}
		slog.Info("config_theme_changed", "theme", th)
		send(chat.ThemeChangedMsg{Theme: th})
	})
	if err != nil {
		slog.Warn("config_watch_failed", "path", path, "error", err)
	}
}
