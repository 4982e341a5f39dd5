// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package quota enforces the daily message allowance.
//
// The allowance is a persisted counter of remaining messages plus the local
// calendar date it was last refilled on. The first check on a new local day
// refills it, whether that check happens at startup or in a session that
// spans midnight.
package quota

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jeranaias/jaml-tui/internal/storage"
)

// DefaultAllowance is the number of messages allowed per local day.
const DefaultAllowance = 50

// dateLayout is the persisted format of LastReset.
const dateLayout = "2006-01-02"

// State is the persisted quota record.
type State struct {
	Remaining int    `json:"count"`
	LastReset string `json:"last_reset"`
}

// =============================================================================
// GATE
// =============================================================================

// Gate tracks and consumes the daily allowance. It is safe for concurrent use.
type Gate struct {
	mu        sync.Mutex
	state     State
	allowance int
	now       func() time.Time
	store     *storage.State
}

// Option configures a Gate.
type Option func(*Gate)

// WithAllowance sets the daily allowance.
func WithAllowance(n int) Option {
	return func(g *Gate) {
		if n > 0 {
			g.allowance = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// New creates a gate persisting through st. Call Load before use.
func New(st *storage.State, opts ...Option) *Gate {
	g := &Gate{
		allowance: DefaultAllowance,
		now:       time.Now,
		store:     st,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.state = State{Remaining: g.allowance, LastReset: g.today()}
	return g
}

// Load reads the persisted record and applies the day-boundary reset.
// A missing or malformed record starts a fresh day.
func (g *Gate) Load() {
	g.mu.Lock()
	defer g.mu.Unlock()

	var st State
	if !g.store.Load(storage.KeyMessageLimit, &st) {
		st = State{Remaining: g.allowance, LastReset: g.today()}
		g.state = st
		g.persistLocked()
		return
	}

	if st.Remaining < 0 {
		st.Remaining = 0
	}
	if st.Remaining > g.allowance {
		st.Remaining = g.allowance
	}
	g.state = st
	g.resetIfNewDayLocked()
}

// CheckAndConsume returns false when the allowance is exhausted. Otherwise
// it decrements the remaining count, persists it and returns true.
func (g *Gate) CheckAndConsume() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.resetIfNewDayLocked()
	if g.state.Remaining <= 0 {
		return false
	}
	g.state.Remaining--
	g.persistLocked()
	return true
}

// Remaining returns the messages left today.
func (g *Gate) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.resetIfNewDayLocked()
	return g.state.Remaining
}

// Exhausted reports whether no messages are left today.
func (g *Gate) Exhausted() bool {
	return g.Remaining() == 0
}

// Allowance returns the configured daily allowance.
func (g *Gate) Allowance() int {
	return g.allowance
}

// Snapshot returns a copy of the current record.
func (g *Gate) Snapshot() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// ResetsAt returns the next local midnight.
func (g *Gate) ResetsAt() time.Time {
	now := g.now()
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}

func (g *Gate) today() string {
	return g.now().Format(dateLayout)
}

func (g *Gate) resetIfNewDayLocked() {
	today := g.today()
	if g.state.LastReset == today {
		return
	}
	slog.Info("quota_reset", "previous", g.state.LastReset, "today", today)
	g.state = State{Remaining: g.allowance, LastReset: today}
	g.persistLocked()
}

func (g *Gate) persistLocked() {
	if err := g.store.Save(storage.KeyMessageLimit, g.state); err != nil {
		slog.Error("quota_persist_failed", "error", err)
	}
}
