// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/jaml-tui/internal/app"
	"github.com/jeranaias/jaml-tui/internal/model"
	"github.com/jeranaias/jaml-tui/internal/storage"
	"github.com/jeranaias/jaml-tui/internal/util"
)

// conversationSummary is one row of list and search output.
type conversationSummary struct {
	Index     int       `json:"index"`
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  int       `json:"messages"`
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updated_at"`
	Preview   string    `json:"preview,omitempty"`
}

func newConversationsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"convs", "conv"},
		Short:   "Manage saved conversations",
		Long: `List, show, rename, delete, search and export saved conversations.

A conversation is referred to by its number in "jaml conversations list"
or by its ID.`,
	}
	cmd.AddCommand(
		newConvListCmd(e),
		newConvShowCmd(e),
		newConvRenameCmd(e),
		newConvDeleteCmd(e),
		newConvSearchCmd(e),
		newConvExportCmd(e),
	)
	return cmd
}

// withSession opens the session for a subcommand and closes it after fn.
func withSession(cmd *cobra.Command, e *env, fn func(s *session) error) error {
	s, err := e.openSession(cmd.Context(), openOptions{})
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func newConvListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List conversations, most recent first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, e, func(s *session) error {
				store := s.app.Conversations()
				convs := store.List()
				return emit(cmd.OutOrStdout(), e.flags.json, "conversations list",
					summarize(convs, store.ActiveID()), func(w io.Writer) {
						fmt.Fprintln(w, strings.TrimRight(storage.FormatConversationList(convs, store.ActiveID()), "\n"))
					})
			})
		},
	}
}

func newConvShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <n|id>",
		Short: "Print a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, e, func(s *session) error {
				c, err := findConversation(s.app, args[0])
				if err != nil {
					return err
				}
				return emit(cmd.OutOrStdout(), e.flags.json, "conversations show", c, func(w io.Writer) {
					r := newREPL(s.app, s.provider, w, GetTerminalWidth(), IsStdoutTTY())
					fmt.Fprintln(w, TitleStyle.Render(c.Title))
					r.printMessages(c, c.Messages)
				})
			})
		},
	}
}

func newConvRenameCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <n|id> <title...>",
		Short: "Rename a conversation",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, e, func(s *session) error {
				c, err := findConversation(s.app, args[0])
				if err != nil {
					return err
				}
				title := strings.Join(args[1:], " ")
				if err := s.app.Conversations().Rename(c.ID, title); err != nil {
					return err
				}
				return emit(cmd.OutOrStdout(), e.flags.json, "conversations rename",
					map[string]string{"id": c.ID, "title": title}, func(w io.Writer) {
						fmt.Fprintln(w, SuccessStyle.Render("Renamed: ")+title)
					})
			})
		},
	}
}

func newConvDeleteCmd(e *env) *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:     "delete <n|id>",
		Aliases: []string{"rm"},
		Short:   "Delete a conversation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, e, func(s *session) error {
				c, err := findConversation(s.app, args[0])
				if err != nil {
					return err
				}
				ok, err := RequireConfirmation(cmd.InOrStdin(), cmd.OutOrStdout(),
					fmt.Sprintf("Delete %q (%d messages)", c.Title, len(c.Messages)),
					ConfirmationOptions{ConfirmFlag: confirm, JSONMode: e.flags.json, Interactive: IsTTY()})
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), DimStyle.Render("Cancelled."))
					return nil
				}
				if err := s.app.Conversations().Delete(c.ID); err != nil {
					return err
				}
				return emit(cmd.OutOrStdout(), e.flags.json, "conversations delete",
					map[string]string{"id": c.ID}, func(w io.Writer) {
						fmt.Fprintln(w, SuccessStyle.Render("Deleted: ")+c.Title)
					})
			})
		},
	}
	cmd.Flags().BoolVarP(&confirm, "confirm", "y", false, "skip the confirmation prompt")
	return cmd
}

func newConvSearchCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "search <text...>",
		Short: "Find conversations by title or message text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, e, func(s *session) error {
				store := s.app.Conversations()
				matches := store.Search(strings.Join(args, " "))
				rows := summarize(matches, store.ActiveID())
				// Numbers refer to the full list so they work with show.
				for i := range rows {
					rows[i].Index = indexOf(store.List(), rows[i].ID)
				}
				return emit(cmd.OutOrStdout(), e.flags.json, "conversations search", rows, func(w io.Writer) {
					if len(rows) == 0 {
						fmt.Fprintln(w, DimStyle.Render("No matches."))
						return
					}
					for _, r := range rows {
						fmt.Fprintf(w, "%s %s  %s\n",
							util.PadWidth(strconv.Itoa(r.Index), 4),
							util.PadWidth(r.Title, 32),
							DimStyle.Render(r.Preview))
					}
				})
			})
		},
	}
}

func newConvExportCmd(e *env) *cobra.Command {
	var format, outPath string
	cmd := &cobra.Command{
		Use:   "export <n|id>",
		Short: "Export a conversation as Markdown, JSON or HTML",
		Example: `  jaml conversations export 1
  jaml conversations export 1 --format json --out chat.json
  jaml conversations export 2 --out chat.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, e, func(s *session) error {
				c, err := findConversation(s.app, args[0])
				if err != nil {
					return err
				}
				if format == "" {
					switch strings.ToLower(filepath.Ext(outPath)) {
					case ".json":
						format = "json"
					case ".html", ".htm":
						format = "html"
					default:
						format = "md"
					}
				}
				data, err := exportConversation(c, s.app.Persona(), s.app.Theme(), format)
				if err != nil {
					return err
				}
				if outPath == "" {
					_, err := cmd.OutOrStdout().Write(data)
					return err
				}
				if err := util.AtomicWriteFile(outPath, data, 0644); err != nil {
					return err
				}
				return emit(cmd.OutOrStdout(), e.flags.json, "conversations export",
					map[string]string{"id": c.ID, "path": outPath, "format": format}, func(w io.Writer) {
						fmt.Fprintln(w, SuccessStyle.Render("Exported to ")+outPath)
					})
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "md, json or html (default from --out extension, else md)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to a file instead of stdout")
	return cmd
}

func exportConversation(c model.Conversation, p model.Persona, th model.Theme, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "md", "markdown":
		return []byte(storage.ExportMarkdown(c, p)), nil
	case "json":
		return storage.ExportJSON(c)
	case "html":
		return []byte(storage.ExportHTML(c, p, th)), nil
	}
	return nil, usageErrorf("unknown format %q (want md, json or html)", format)
}

// =============================================================================
// LOOKUP
// =============================================================================

// findConversation resolves a 1-based list number or a conversation ID.
func findConversation(a *app.App, ref string) (model.Conversation, error) {
	convs := a.Conversations().List()
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(convs) {
			return model.Conversation{}, &NotFoundError{Kind: "conversation", Ref: ref}
		}
		return convs[n-1], nil
	}
	if c, ok := a.Conversations().Get(ref); ok {
		return c, nil
	}
	return model.Conversation{}, &NotFoundError{Kind: "conversation", Ref: ref}
}

func indexOf(convs []model.Conversation, id string) int {
	for i, c := range convs {
		if c.ID == id {
			return i + 1
		}
	}
	return 0
}

func summarize(convs []model.Conversation, activeID string) []conversationSummary {
	rows := make([]conversationSummary, len(convs))
	for i, c := range convs {
		rows[i] = conversationSummary{
			Index:     i + 1,
			ID:        c.ID,
			Title:     c.Title,
			Messages:  len(c.Messages),
			Active:    c.ID == activeID,
			UpdatedAt: c.UpdatedAt,
			Preview:   storage.Preview(c, 60),
		}
	}
	return rows
}
