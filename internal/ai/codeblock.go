// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ai

import (
	"regexp"
	"strings"

	"github.com/jeranaias/jaml-tui/internal/model"
)

// fencedBlock matches the first fence opening with a language tag through
// the last closing fence.
var fencedBlock = regexp.MustCompile("(?s)```(\\w+)\\n(.+)```")

// ParseCodeBlock extracts the language and body of a fenced reply. Replies
// without a tagged fence come back as language "text" with every fence
// marker removed.
func ParseCodeBlock(reply string) model.CodeBlock {
	if m := fencedBlock.FindStringSubmatch(reply); m != nil {
		return model.CodeBlock{Language: m[1], Content: strings.TrimSpace(m[2])}
	}
	return model.CodeBlock{Language: "text", Content: strings.ReplaceAll(reply, "```", "")}
}
