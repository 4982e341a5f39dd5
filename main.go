// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Command jaml is a terminal chat client for the Jaml and Naqa assistants.
//
// Release builds stamp version information into the cli package:
//
//	go build -ldflags "-X github.com/jeranaias/jaml-tui/internal/cli.Version=1.0.0"
package main

import (
	"os"

	"github.com/jeranaias/jaml-tui/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
