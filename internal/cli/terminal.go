// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Width used when stdout is not a terminal, and the narrowest layout the
// message views support.
const (
	DefaultTerminalWidth = 80
	MinTerminalWidth     = 40
)

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// IsTTY reports whether stdin is a terminal, i.e. whether prompting works.
func IsTTY() bool { return isTerminal(os.Stdin) }

// IsStdoutTTY reports whether stdout is a terminal.
func IsStdoutTTY() bool { return isTerminal(os.Stdout) }

// GetTerminalWidth returns the usable stdout width.
func GetTerminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	switch {
	case err != nil, w <= 0:
		return DefaultTerminalWidth
	case w < MinTerminalWidth:
		return MinTerminalWidth
	}
	return w
}

var colorProfile = sync.OnceValue(func() termenv.Profile {
	// Honours NO_COLOR and CLICOLOR_FORCE, and falls back to Ascii when
	// stdout is redirected.
	return termenv.EnvColorProfile()
})

// GetColorProfile returns the profile output is rendered with.
func GetColorProfile() termenv.Profile {
	return colorProfile()
}

// TTYRequiredError is returned when a command would need to prompt but
// stdin is not a terminal.
type TTYRequiredError struct {
	Operation string
}

func (e *TTYRequiredError) Error() string {
	return "stdin is not a terminal; pass flags to " + e.Operation + " non-interactively"
}
