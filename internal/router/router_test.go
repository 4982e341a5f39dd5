// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"regexp"
	"testing"
)

// TestRoute verifies keyword routing and rule precedence.
func TestRoute(t *testing.T) {
	tests := []struct {
		name     string
		prompt   string
		expected Intent
	}{
		// Chat fallback
		{name: "greeting", prompt: "hello there", expected: IntentChat},
		{name: "arabic_greeting", prompt: "مرحبا كيف حالك", expected: IntentChat},
		{name: "empty", prompt: "   ", expected: IntentChat},

		// Logo
		{name: "logo_english", prompt: "make a logo for my bakery", expected: IntentLogo},
		{name: "logo_upper", prompt: "LOGO please", expected: IntentLogo},
		{name: "logo_arabic", prompt: "أريد شعار لمتجري", expected: IntentLogo},

		// Image
		{name: "draw", prompt: "draw a cat on the moon", expected: IntentImage},
		{name: "image_of", prompt: "an Image Of a sunset", expected: IntentImage},
		{name: "design", prompt: "design a poster", expected: IntentImage},
		{name: "arabic_draw", prompt: "ارسم جمل في الصحراء", expected: IntentImage},
		{name: "arabic_picture_for", prompt: "صورة لـ قطة", expected: IntentImage},

		// Code
		{name: "code", prompt: "show me code to sort a list", expected: IntentCode},
		{name: "function", prompt: "a Function that adds numbers", expected: IntentCode},
		{name: "script", prompt: "bash script to backup", expected: IntentCode},
		{name: "arabic_write_code", prompt: "اكتب كود بايثون", expected: IntentCode},
		{name: "arabic_function", prompt: "دالة لجمع رقمين", expected: IntentCode},
		{name: "arabic_program", prompt: "برمج لعبة بسيطة", expected: IntentCode},

		// Precedence
		{name: "logo_beats_image", prompt: "design a logo", expected: IntentLogo},
		{name: "logo_beats_code", prompt: "code a logo in svg", expected: IntentLogo},
		{name: "image_beats_code", prompt: "draw a function graph", expected: IntentImage},
		{name: "arabic_logo_beats_design", prompt: "صمم شعار", expected: IntentLogo},
	}

	r := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Route(tt.prompt)
			if got != tt.expected {
				t.Errorf("Route(%q) = %v, want %v", tt.prompt, got, tt.expected)
			}
		})
	}
}

func TestDecide_ReportsKeyword(t *testing.T) {
	d := Default().Decide("Please DRAW a horse")
	if d.Intent != IntentImage || d.Keyword != "DRAW" {
		t.Errorf("Decide = %+v, want image/DRAW", d)
	}

	d = Default().Decide("just chatting")
	if d.Keyword != "" {
		t.Errorf("chat fallback keyword = %q, want empty", d.Keyword)
	}
}

func TestRouter_ZeroValueAndCustomRules(t *testing.T) {
	var zero Router
	if got := zero.Route("draw a logo"); got != IntentChat {
		t.Errorf("zero Router = %v, want chat", got)
	}

	r := New([]Rule{{Intent: IntentCode, Pattern: regexp.MustCompile(`(?i)logo`)}})
	if got := r.Route("logo"); got != IntentCode {
		t.Errorf("custom rule = %v, want code", got)
	}
}

func TestIntent_String(t *testing.T) {
	for i, want := range map[Intent]string{
		IntentChat: "chat", IntentLogo: "logo", IntentImage: "image", IntentCode: "code", Intent(99): "unknown",
	} {
		if got := i.String(); got != want {
			t.Errorf("Intent(%d).String() = %q, want %q", i, got, want)
		}
	}
}
