// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package abuse tracks abuse markers returned by the model and enforces the
// temporary ban that follows repeated abuse.
//
// # States
//
//	Clear -> Warned(1) -> Warned(2) -> Banned(until) -> Clear
//
// Each marker moves one step right. The marker after the last warning bans
// the user for the ban duration and resets the warning counter. Only the ban
// deadline is persisted; warnings are forgotten on restart.
package abuse

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jeranaias/jaml-tui/internal/storage"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultWarnings is the number of warnings issued before a ban.
	DefaultWarnings = 2

	// DefaultBanDuration is how long a ban lasts.
	DefaultBanDuration = 5 * time.Minute

	// PollInterval is the ban countdown tick.
	PollInterval = time.Second
)

// =============================================================================
// OUTCOME
// =============================================================================

// Outcome describes the transition caused by one abuse marker.
type Outcome struct {
	// Warning is the warning number just issued (1-based). Zero when the
	// marker caused a ban.
	Warning int

	// Banned is true when the marker started (or hit) a ban.
	Banned bool

	// Until is the ban deadline when Banned is true.
	Until time.Time
}

// Status is a snapshot of the monitor.
type Status struct {
	Warnings  int
	Banned    bool
	Until     time.Time
	Remaining time.Duration
}

// =============================================================================
// MONITOR
// =============================================================================

// Monitor is the abuse state machine. It is safe for concurrent use.
type Monitor struct {
	mu          sync.Mutex
	warnings    int
	bannedUntil time.Time

	maxWarnings int
	banDuration time.Duration
	now         func() time.Time
	store       *storage.State
}

// Option is a functional option for configuring Monitor.
type Option func(*Monitor)

// WithWarnings sets how many warnings precede a ban.
func WithWarnings(n int) Option {
	return func(m *Monitor) {
		if n >= 0 {
			m.maxWarnings = n
		}
	}
}

// WithBanDuration sets the ban duration.
func WithBanDuration(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.banDuration = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		if now != nil {
			m.now = now
		}
	}
}

// New creates a monitor persisting the ban deadline through st.
func New(st *storage.State, opts ...Option) *Monitor {
	m := &Monitor{
		maxWarnings: DefaultWarnings,
		banDuration: DefaultBanDuration,
		now:         time.Now,
		store:       st,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load restores a persisted ban. An unexpired deadline resumes the ban; an
// expired or malformed one is removed.
func (m *Monitor) Load() {
	m.mu.Lock()
	defer m.mu.Unlock()

	var millis int64
	if !m.store.Load(storage.KeyBanEndTime, &millis) {
		m.bannedUntil = time.Time{}
		return
	}

	until := time.UnixMilli(millis)
	if until.After(m.now()) {
		m.bannedUntil = until
		slog.Info("ban_resumed", "until", until.Format(time.RFC3339))
		return
	}
	m.clearLocked()
}

// RecordMarker registers one abuse marker and returns the resulting
// transition.
func (m *Monitor) RecordMarker() Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if m.bannedLocked(now) {
		return Outcome{Banned: true, Until: m.bannedUntil}
	}

	m.warnings++
	if m.warnings <= m.maxWarnings {
		slog.Warn("abuse_warning", "warning", m.warnings, "max", m.maxWarnings)
		return Outcome{Warning: m.warnings}
	}

	m.bannedUntil = now.Add(m.banDuration)
	m.warnings = 0
	if err := m.store.Save(storage.KeyBanEndTime, m.bannedUntil.UnixMilli()); err != nil {
		slog.Error("ban_persist_failed", "error", err)
	}
	slog.Warn("abuse_ban", "duration", m.banDuration.String(), "until", m.bannedUntil.Format(time.RFC3339))
	return Outcome{Banned: true, Until: m.bannedUntil}
}

// IsBanned reports whether a ban is active right now.
func (m *Monitor) IsBanned() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bannedLocked(m.now())
}

// Remaining returns the time left on the ban, or zero.
func (m *Monitor) Remaining() time.Duration {
	return m.Status().Remaining
}

// Status returns a snapshot of the monitor.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	st := Status{Warnings: m.warnings}
	if m.bannedLocked(now) {
		st.Banned = true
		st.Until = m.bannedUntil
		st.Remaining = m.bannedUntil.Sub(now)
	}
	return st
}

// Poll ends an expired ban. It returns true when this call lifted the ban.
func (m *Monitor) Poll(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.bannedUntil.IsZero() || now.Before(m.bannedUntil) {
		return false
	}
	m.clearLocked()
	slog.Info("ban_lifted")
	return true
}

// Watch polls every interval until ctx is cancelled, calling onTick with the
// current status after each poll. onTick may be nil.
func (m *Monitor) Watch(ctx context.Context, interval time.Duration, onTick func(Status)) {
	if interval <= 0 {
		interval = PollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Poll(m.now())
			if onTick != nil {
				onTick(m.Status())
			}
		}
	}
}

// Clear lifts any ban and forgets warnings.
func (m *Monitor) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warnings = 0
	m.clearLocked()
}

func (m *Monitor) bannedLocked(now time.Time) bool {
	return !m.bannedUntil.IsZero() && now.Before(m.bannedUntil)
}

func (m *Monitor) clearLocked() {
	m.bannedUntil = time.Time{}
	if err := m.store.KV().Delete(storage.KeyBanEndTime); err != nil {
		slog.Error("ban_clear_failed", "error", err)
	}
}
