// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ai

import (
	"mime"
	"path/filepath"
	"strings"
)

// ReviewKind selects the review prompt for an uploaded file.
type ReviewKind int

const (
	ReviewText ReviewKind = iota
	ReviewCode
)

// String returns the label shown in the user message for this kind.
func (k ReviewKind) String() string {
	if k == ReviewCode {
		return "codeReviewing"
	}
	return "textReviewing"
}

var codeExtensions = map[string]bool{
	"js": true, "ts": true, "jsx": true, "tsx": true, "py": true,
	"java": true, "c": true, "cpp": true, "cs": true, "go": true,
	"rb": true, "php": true, "html": true, "css": true, "scss": true,
	"json": true, "xml": true, "yaml": true, "md": true, "sh": true,
	"bat": true,
}

// ReviewKindFor picks code review for known source extensions and text
// review for everything else.
func ReviewKindFor(filename string) ReviewKind {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if codeExtensions[ext] {
		return ReviewCode
	}
	return ReviewText
}

// MIMETypeFor guesses a MIME type from a file name.
func MIMETypeFor(filename string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); t != "" {
		return t
	}
	return "text/plain"
}
