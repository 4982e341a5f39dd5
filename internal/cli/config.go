// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/jaml-tui/internal/config"
)

func newConfigCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and change configuration",
		Long: `Show and change configuration. Keys use dot notation, for example
ai.gemini_api_key or limits.daily_messages. API keys are redacted on output.

Environment variables (GEMINI_API_KEY, JAML_PROVIDER, ...) and a .env file in
the working directory override the file but are never written to it.`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return emit(cmd.OutOrStdout(), e.flags.json, "config show", redactedValues(e.cfg), func(w io.Writer) {
					fmt.Fprintln(w, e.cfg.String())
				})
			},
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print one value",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := e.cfg.Get(args[0])
				if err != nil {
					return &UsageError{Msg: err.Error()}
				}
				s := fmt.Sprint(v)
				if config.IsSecretKey(args[0]) {
					s = redact(s)
				}
				return emit(cmd.OutOrStdout(), e.flags.json, "config get", map[string]string{args[0]: s}, func(w io.Writer) {
					fmt.Fprintln(w, s)
				})
			},
		},
		&cobra.Command{
			Use:     "set <key> <value>",
			Short:   "Change one value in the config file",
			Example: "  jaml config set ai.gemini_api_key AIza...\n  jaml config set limits.daily_messages 100",
			Args:    cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := setConfigValue(e.cfgPath, args[0], args[1]); err != nil {
					return err
				}
				shown := args[1]
				if config.IsSecretKey(args[0]) {
					shown = redact(shown)
				}
				return emit(cmd.OutOrStdout(), e.flags.json, "config set", map[string]string{args[0]: shown}, func(w io.Writer) {
					fmt.Fprintf(w, "%s %s = %s\n", SuccessStyle.Render("Set"), args[0], shown)
				})
			},
		},
		&cobra.Command{
			Use:   "keys",
			Short: "List every key",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				keys := config.GetAllKeys()
				return emit(cmd.OutOrStdout(), e.flags.json, "config keys", keys, func(w io.Writer) {
					fmt.Fprintln(w, strings.Join(keys, "\n"))
				})
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return emit(cmd.OutOrStdout(), e.flags.json, "config path", map[string]string{"path": e.cfgPath}, func(w io.Writer) {
					fmt.Fprintln(w, e.cfgPath)
				})
			},
		},
	)
	return cmd
}

// setConfigValue updates key in the file at path. The file is read without
// environment overrides so secrets from the environment stay out of it.
func setConfigValue(path, key, value string) error {
	if path == "" {
		return &ConfigError{Err: errors.New("no config path")}
	}
	cfg := config.Default()
	isJSON := strings.HasSuffix(path, ".json")

	if _, err := os.Stat(path); err == nil {
		load := config.LoadTOML
		if isJSON {
			load = config.LoadJSON
		}
		if err := load(cfg, path); err != nil {
			return &ConfigError{Path: path, Err: err}
		}
	}

	if err := cfg.Set(key, value); err != nil {
		return &UsageError{Msg: err.Error()}
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return &UsageError{Msg: err.Error()}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	save := config.SaveTOML
	if isJSON {
		save = config.SaveJSON
	}
	if err := save(cfg, path); err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	return nil
}

// redactedValues maps every key to its value with secrets masked.
func redactedValues(cfg *config.Config) map[string]string {
	out := make(map[string]string)
	for _, k := range config.GetAllKeys() {
		v, err := cfg.Get(k)
		if err != nil {
			continue
		}
		s := fmt.Sprint(v)
		if config.IsSecretKey(k) {
			s = redact(s)
		}
		out[k] = s
	}
	return out
}

// redact keeps the last four characters of a secret.
func redact(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
