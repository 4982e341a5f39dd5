// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the interactive chat screen for the jaml TUI.

The chat package implements a terminal chat interface on the Bubble Tea
framework. All state lives in an app.App; the Model only drives it and
renders what it holds.

# Key Components

## Model (model.go)

The Model struct is the Bubble Tea model:
  - Onboarding (assistant gender, then avatar) on first run
  - Viewport over the active conversation
  - Text input, disabled while a request runs, during a ban, or once the
    daily allowance is used up
  - A staged image for /edit and /homework
  - The conversation sidebar (ctrl+b)

## Update Loop (update.go)

Requests run as tea.Cmds and report back with a resultMsg. A one-second
tick polls the ban so the countdown and the input unlock on time.
Conversations that cross the title threshold are named in the background.

## Commands (commands.go)

Slash commands live in a registry keyed by name. Developer-only commands
(/temp, /topp, /system, /impersonate, /editmsg) report an error while
developer mode is locked.

# Usage

	m := chat.New(chat.Options{App: a, Theme: styles.NewTheme(a.Theme())})
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}

Send ThemeChangedMsg to the program to switch the palette live, for
example when the config file changes.
*/
package chat
