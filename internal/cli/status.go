// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/jaml-tui/internal/app"
)

// statusData is the status command's JSON payload.
type statusData struct {
	Provider      string    `json:"provider"`
	Configured    bool      `json:"configured"`
	Persona       string    `json:"persona"`
	Theme         string    `json:"theme"`
	Remaining     int       `json:"remaining"`
	Allowance     int       `json:"allowance"`
	ResetsAt      time.Time `json:"resets_at"`
	Banned        bool      `json:"banned"`
	BanRemaining  string    `json:"ban_remaining,omitempty"`
	Warnings      int       `json:"warnings"`
	Conversations int       `json:"conversations"`
}

func collectStatus(a *app.App, provider string) statusData {
	ban := a.Abuse().Status()
	d := statusData{
		Provider:      provider,
		Configured:    a.Configured(),
		Persona:       a.Persona().LatinName(),
		Theme:         string(a.Theme()),
		Remaining:     a.Quota().Remaining(),
		Allowance:     a.Quota().Allowance(),
		ResetsAt:      a.Quota().ResetsAt(),
		Banned:        ban.Banned,
		Warnings:      ban.Warnings,
		Conversations: a.Conversations().Len(),
	}
	if ban.Banned {
		d.BanRemaining = app.BanCountdown(ban.Remaining)
	}
	return d
}

func newStatusCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the daily quota and ban state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.openSession(cmd.Context(), openOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			d := collectStatus(s.app, s.provider)
			return emit(cmd.OutOrStdout(), e.flags.json, "status", d, func(w io.Writer) {
				writeStatus(w, d)
			})
		},
	}
}

// printStatus writes the human status block for a.
func printStatus(w io.Writer, a *app.App, provider string) {
	writeStatus(w, collectStatus(a, provider))
}

func writeStatus(w io.Writer, d statusData) {
	provider := d.Provider
	if !d.Configured {
		provider += " " + WarningStyle.Render("(no API key)")
	}
	fmt.Fprintln(w, field("Assistant", d.Persona))
	fmt.Fprintln(w, field("Provider", provider))
	fmt.Fprintln(w, field("Theme", d.Theme))
	fmt.Fprintln(w, field("Messages today", fmt.Sprintf("%d/%d", d.Remaining, d.Allowance)))
	fmt.Fprintln(w, field("Resets at", d.ResetsAt.Format("2006-01-02 15:04")))
	fmt.Fprintln(w, field("Conversations", strconv.Itoa(d.Conversations)))

	switch {
	case d.Banned:
		fmt.Fprintln(w, field("Ban", ErrorStyle.Render(d.BanRemaining)))
	case d.Warnings > 0:
		fmt.Fprintln(w, field("Warnings", WarningStyle.Render(strconv.Itoa(d.Warnings))))
	}
}
