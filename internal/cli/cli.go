// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jeranaias/jaml-tui/internal/config"
	"github.com/jeranaias/jaml-tui/internal/logging"
)

// Build information, set with -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// GLOBAL STATE
// =============================================================================

// globalFlags are the persistent flags every command accepts.
type globalFlags struct {
	configPath string
	logLevel   string
	json       bool
}

// env is what the root command resolves before any subcommand runs.
type env struct {
	flags globalFlags

	cfg     *config.Config
	cfgPath string

	logCloser io.Closer
}

func (e *env) setup(cmd *cobra.Command) error {
	cfg, path, err := loadConfig(e.flags.configPath)
	if cfg == nil {
		return &ConfigError{Path: path, Err: err}
	}
	if err != nil {
		// Defaults are usable; say so once and carry on.
		fmt.Fprintln(cmd.ErrOrStderr(), WarningStyle.Render("warning: "+err.Error()))
	}
	if e.flags.logLevel != "" {
		cfg.Log.Level = e.flags.logLevel
	}
	e.cfg = cfg
	e.cfgPath = path

	logPath, err := cfg.LogPath()
	if err == nil {
		e.logCloser, err = logging.Setup(logPath, cfg.Log.Level)
	}
	if err != nil {
		logging.Discard()
	}
	slog.Debug("cli_start", "command", cmd.CommandPath(), "config", path, "version", Version)
	return nil
}

func (e *env) close() {
	if e.logCloser != nil {
		e.logCloser.Close()
		e.logCloser = nil
	}
}

// loadConfig loads from path when given, else from the config directory.
// It returns the file that was (or would be) read so watchers and writers
// use the same one.
func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.LoadFromPath(path)
		return cfg, path, err
	}
	cfg, err := config.Load()
	return cfg, defaultConfigPath(), err
}

func defaultConfigPath() string {
	tomlPath, err := config.ConfigPathTOML()
	if err != nil {
		return ""
	}
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath
	}
	if jsonPath, err := config.ConfigPathJSON(); err == nil {
		if _, err := os.Stat(jsonPath); err == nil {
			return jsonPath
		}
	}
	return tomlPath
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&env{})
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "jaml",
		Short: "Arabic AI assistant for the terminal",
		Long: `jaml is a terminal chat client for Jaml (جمل) and Naqa (ناقة),
a friendly Arabic-speaking assistant backed by Gemini.

Chat, generate and edit images, review files and summarize conversations.
Conversations are kept on this machine.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if IsTTY() && IsStdoutTTY() {
				return runTUI(cmd, e)
			}
			return runREPL(cmd, e)
		},
	}
	root.SetVersionTemplate(versionString() + "\n")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &UsageError{Msg: err.Error()}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&e.flags.configPath, "config", "", "config file (default $JAML_HOME/config.toml)")
	pf.StringVar(&e.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&e.flags.json, "json", false, "machine-readable JSON output")

	root.AddCommand(
		newChatCmd(e),
		newAskCmd(e),
		newConversationsCmd(e),
		newStatusCmd(e),
		newSetupCmd(e),
		newConfigCmd(e),
		newResetCmd(e),
		newVersionCmd(e),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := &env{}
	defer e.close()

	root := newRootCmd(e)
	if err := root.ExecuteContext(ctx); err != nil {
		reportError(root, err, e.flags.json)
		return GetExitCode(err)
	}
	return ExitSuccess
}

func reportError(root *cobra.Command, err error, jsonMode bool) {
	if errors.Is(err, context.Canceled) {
		return
	}
	if jsonMode {
		_ = NewJSONErrorResponse(root.Name(), err).Write(root.OutOrStdout())
		return
	}
	fmt.Fprintln(root.ErrOrStderr(), ErrorStyle.Render("Error: ")+err.Error())
}

// =============================================================================
// VERSION
// =============================================================================

func versionString() string {
	return fmt.Sprintf("jaml %s (%s, built %s, %s/%s)",
		Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
}

func newVersionCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.flags.json {
				return NewJSONResponse("version", map[string]string{
					"version":    Version,
					"git_commit": GitCommit,
					"build_date": BuildDate,
					"platform":   runtime.GOOS + "/" + runtime.GOARCH,
				}).Write(cmd.OutOrStdout())
			}
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
			return nil
		},
	}
}

// historyPath is where the REPL keeps its line history.
func historyPath() string {
	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "chat_history")
}
