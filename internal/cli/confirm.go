// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// =============================================================================
// CONFIRMATION
// =============================================================================

// ErrConfirmationRequired is returned when a destructive action needs
// --confirm and cannot prompt for it.
var ErrConfirmationRequired = errors.New("this action requires --confirm")

// ConfirmationOptions controls RequireConfirmation.
type ConfirmationOptions struct {
	// ConfirmFlag is set when --confirm was passed.
	ConfirmFlag bool
	// JSONMode never prompts.
	JSONMode bool
	// Interactive is false when stdin is not a terminal.
	Interactive bool
}

// RequireConfirmation asks before a destructive action. --confirm skips
// the prompt; JSON mode and non-interactive input require it.
func RequireConfirmation(in io.Reader, out io.Writer, action string, opts ConfirmationOptions) (bool, error) {
	if opts.ConfirmFlag {
		return true, nil
	}
	if opts.JSONMode || !opts.Interactive {
		return false, ErrConfirmationRequired
	}
	return PromptYesNo(in, out, fmt.Sprintf("%s?", action), false)
}

// =============================================================================
// PROMPTS
// =============================================================================

// PromptYesNo asks a yes/no question. An empty answer returns def.
func PromptYesNo(in io.Reader, out io.Writer, question string, def bool) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	fmt.Fprintf(out, "%s %s ", question, hint)

	answer, err := readLine(in)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "":
		return def, nil
	case "y", "yes", "نعم":
		return true, nil
	}
	return false, nil
}

// PromptChoice shows numbered options and returns the chosen index. An
// empty answer returns def.
func PromptChoice(in io.Reader, out io.Writer, question string, options []string, def int) (int, error) {
	fmt.Fprintln(out, question)
	for i, opt := range options {
		marker := " "
		if i == def {
			marker = "*"
		}
		fmt.Fprintf(out, "  %s%d) %s\n", marker, i+1, opt)
	}
	fmt.Fprintf(out, "choice [%d]: ", def+1)

	answer, err := readLine(in)
	if err != nil {
		return def, err
	}
	if answer == "" {
		return def, nil
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(options) {
		return def, usageErrorf("invalid choice %q", answer)
	}
	return n - 1, nil
}

// readLine reads one line a byte at a time so consecutive prompts can
// share an unbuffered reader. EOF ends the line.
func readLine(in io.Reader) (string, error) {
	var b strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				break
			}
			b.WriteByte(buf[0])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(b.String()), nil
}
