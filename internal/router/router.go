// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Rule maps a keyword pattern to an intent.
type Rule struct {
	Intent  Intent
	Pattern *regexp.Regexp
}

// ============================================================================
// DEFAULT RULES
// ============================================================================

var (
	logoPattern  = regexp.MustCompile(`(?i)شعار|logo`)
	imagePattern = regexp.MustCompile(`(?i)صمم|ارسم|صورة لـ|design|image of|draw`)
	codePattern  = regexp.MustCompile(`(?i)اكتب كود|كود بـ|دالة|function|code|script|برمج`)
)

// DefaultRules returns the built-in rules in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{Intent: IntentLogo, Pattern: logoPattern},
		{Intent: IntentImage, Pattern: imagePattern},
		{Intent: IntentCode, Pattern: codePattern},
	}
}

// ============================================================================
// ROUTER
// ============================================================================

// Router evaluates rules in order. The zero value routes everything to chat.
type Router struct {
	rules []Rule
}

// New creates a router over rules, evaluated in the given order.
func New(rules []Rule) *Router {
	return &Router{rules: append([]Rule(nil), rules...)}
}

// Default creates a router with DefaultRules.
func Default() *Router {
	return New(DefaultRules())
}

// Route returns the intent for prompt.
func (r *Router) Route(prompt string) Intent {
	return r.Decide(prompt).Intent
}

// Decide returns the first matching rule's intent and the matched keyword.
// Prompts are NFC-normalised first so composed and decomposed Arabic forms
// match the same keywords.
func (r *Router) Decide(prompt string) Decision {
	text := norm.NFC.String(strings.TrimSpace(prompt))
	if text == "" {
		return Decision{Intent: IntentChat}
	}
	for _, rule := range r.rules {
		if kw := rule.Pattern.FindString(text); kw != "" {
			return Decision{Intent: rule.Intent, Keyword: kw}
		}
	}
	return Decision{Intent: IntentChat}
}
