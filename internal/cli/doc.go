// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the jaml command line.
//
// Running jaml with no subcommand opens the full-screen chat when stdin and
// stdout are terminals, and falls back to the line-based REPL otherwise.
//
// Commands:
//
//	jaml                          Full-screen chat
//	jaml chat                     Line-based chat with history
//	jaml ask [flags] <prompt>     Send one prompt and print the reply
//	jaml conversations <sub>      List, show, rename, delete, export, search
//	jaml status                   Daily quota and ban state
//	jaml setup                    Choose the assistant and avatar
//	jaml config <sub>             Show, get, set, path
//	jaml reset                    Delete all local data
//	jaml version                  Print version information
//
// Global flags:
//
//	--config PATH       Read configuration from PATH
//	--log-level LEVEL   Override log.level
//	--json              Machine-readable output where supported
package cli
