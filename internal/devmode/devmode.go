// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package devmode implements the hidden four-step unlock sequence that turns
// on developer features (message editing, impersonation, sampling controls).
//
// This is an easter egg, not authentication. The table holds BLAKE2b-256
// digests so the inputs are not readable from the binary, but the sequence
// is short and unsalted. The unlocked flag lives only in memory and is lost
// on exit.
package devmode

import (
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// Step is the position in the unlock sequence.
type Step int

const (
	StepIdle Step = iota
	StepFirst
	StepSecond
	StepThird
)

// String returns a short label for logging.
func (s Step) String() string {
	switch s {
	case StepIdle:
		return "idle"
	case StepFirst:
		return "first"
	case StepSecond:
		return "second"
	case StepThird:
		return "third"
	default:
		return "unknown"
	}
}

// transition is one row of the unlock table: the hex digest of the input
// expected at a step and the reply given when it matches.
type transition struct {
	digest string
	reply  string
}

// sequence is indexed by Step. Matching the last row unlocks.
var sequence = [...]transition{
	StepIdle:   {digest: "3740c9a0f3a3af2a97c6aa3beafe69b61d3bc761fb8f0820f991d1b63e691c50", reply: "..."},
	StepFirst:  {digest: "cfee587920d1baa0ce6b3ddaceae3b11c6a22fc140604448a82083901b19dadf", reply: "..."},
	StepSecond: {digest: "b80e838f3a01c3d44b8d9bfaec6a23be00ceb27d3cec44eafcfef6bb9e27c272", reply: "كلمة سر الإشراف؟"},
	StepThird:  {digest: "ae575d1d101e7bb940b57ff9b899d50d55160bfef66a3e663e8f752b5a5bf2a1", reply: "تم تفعيل وضع المطور."},
}

// Result reports what Feed did with an input.
type Result struct {
	// Consumed is true when the input belonged to the sequence. The caller
	// must not forward a consumed input to the model.
	Consumed bool

	// Reply is the acknowledgement to show as a model message when Consumed.
	Reply string

	// Unlocked is true on the input that completed the sequence.
	Unlocked bool
}

// =============================================================================
// UNLOCKER
// =============================================================================

// Unlocker tracks progress through the sequence. The zero value is ready
// to use.
type Unlocker struct {
	mu       sync.Mutex
	step     Step
	unlocked bool
}

// Feed checks text against the current step. A match advances the step;
// a mismatch after the first step resets to idle and is not consumed, so the
// text goes on to be handled as a normal message. Once unlocked, Feed
// consumes nothing.
func (u *Unlocker) Feed(text string) Result {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.unlocked {
		return Result{}
	}

	want := sequence[u.step]
	if !matches(text, want.digest) {
		if u.step != StepIdle {
			slog.Debug("devmode_sequence_reset", "step", u.step.String())
			u.step = StepIdle
		}
		return Result{}
	}

	if u.step == StepThird {
		u.step = StepIdle
		u.unlocked = true
		slog.Info("devmode_unlocked")
		return Result{Consumed: true, Reply: want.reply, Unlocked: true}
	}

	u.step++
	return Result{Consumed: true, Reply: want.reply}
}

// Unlocked reports whether developer mode is active.
func (u *Unlocker) Unlocked() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.unlocked
}

// Step returns the current sequence position.
func (u *Unlocker) Step() Step {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.step
}

// Lock turns developer mode off and restarts the sequence.
func (u *Unlocker) Lock() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.unlocked = false
	u.step = StepIdle
}

// Digest returns the hex BLAKE2b-256 digest of text as stored in the table.
func Digest(text string) string {
	sum := blake2b.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func matches(text, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(Digest(text)), []byte(digest)) == 1
}
