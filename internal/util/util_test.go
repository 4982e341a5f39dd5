// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"arabic", "محادثة جديدة طويلة", 6, "محا..."},
		{"tiny limit", "hello", 2, "he"},
		{"zero", "hello", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateRunes(tt.input, tt.max); got != tt.expected {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.expected)
			}
		})
	}
}

func TestTruncateWidth(t *testing.T) {
	if got := TruncateWidth("abcdef", 10); got != "abcdef" {
		t.Errorf("TruncateWidth unchanged = %q", got)
	}
	if got := TruncateWidth("abcdefghij", 6); got != "abc..." {
		t.Errorf("TruncateWidth = %q, want %q", got, "abc...")
	}
	if got := PadWidth("ab", 4); got != "ab  " {
		t.Errorf("PadWidth = %q, want %q", got, "ab  ")
	}
}

func TestSingleLine(t *testing.T) {
	if got := SingleLine("a\r\nb\n\n c"); got != "a b c" {
		t.Errorf("SingleLine = %q", got)
	}
}

func TestAtomicWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	if err := AtomicWriteFile(path, []byte(`{"a":1}`), 0600); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}
	if err := AtomicWriteFile(path, []byte(`{"a":2}`), 0600); err != nil {
		t.Fatalf("AtomicWriteFile overwrite failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != `{"a":2}` {
		t.Errorf("content = %s, want {\"a\":2}", data)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected no leftover temp files, found %d entries", len(entries))
	}
}
