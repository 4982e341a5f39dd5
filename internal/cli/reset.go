// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newResetCmd(e *env) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all conversations and settings",
		Long: `Delete every conversation, the persona and theme, the daily counter
and any ban. The config file is kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := RequireConfirmation(cmd.InOrStdin(), cmd.OutOrStdout(),
				"Delete all local jaml data",
				ConfirmationOptions{ConfirmFlag: confirm, JSONMode: e.flags.json, Interactive: IsTTY()})
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), DimStyle.Render("Cancelled."))
				return nil
			}

			return withSession(cmd, e, func(s *session) error {
				if err := s.app.Reset(); err != nil {
					return err
				}
				return emit(cmd.OutOrStdout(), e.flags.json, "reset", map[string]bool{"reset": true}, func(w io.Writer) {
					fmt.Fprintln(w, SuccessStyle.Render("All local data deleted."))
				})
			})
		},
	}
	cmd.Flags().BoolVarP(&confirm, "confirm", "y", false, "skip the confirmation prompt")
	return cmd
}
