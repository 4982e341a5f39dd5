// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package abuse

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/jaml-tui/internal/storage"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newMonitor(st *storage.State, clock *fakeClock) *Monitor {
	m := New(st, WithClock(clock.Now))
	m.Load()
	return m
}

func TestMonitor_WarningsThenBan(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	st := storage.NewState(storage.NewMemoryStore())
	m := newMonitor(st, clock)

	o := m.RecordMarker()
	assert.Equal(t, Outcome{Warning: 1}, o)
	assert.False(t, m.IsBanned())

	o = m.RecordMarker()
	assert.Equal(t, Outcome{Warning: 2}, o)
	assert.False(t, m.IsBanned())

	o = m.RecordMarker()
	require.True(t, o.Banned)
	assert.Equal(t, clock.Now().Add(5*time.Minute), o.Until)
	assert.True(t, m.IsBanned())
	assert.Equal(t, 0, m.Status().Warnings, "warning counter resets on ban")
	assert.Equal(t, 5*time.Minute, m.Remaining())

	var millis int64
	require.True(t, st.Load(storage.KeyBanEndTime, &millis))
	assert.Equal(t, o.Until.UnixMilli(), millis)
}

func TestMonitor_PollLiftsBan(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	st := storage.NewState(storage.NewMemoryStore())
	m := newMonitor(st, clock)
	for i := 0; i < 3; i++ {
		m.RecordMarker()
	}

	clock.Advance(4*time.Minute + 59*time.Second)
	assert.False(t, m.Poll(clock.Now()))
	assert.True(t, m.IsBanned())

	clock.Advance(time.Second)
	assert.True(t, m.Poll(clock.Now()))
	assert.False(t, m.IsBanned())
	assert.False(t, m.Poll(clock.Now()), "second poll is a no-op")

	_, ok, err := st.KV().Get(storage.KeyBanEndTime)
	require.NoError(t, err)
	assert.False(t, ok)

	// After the ban the cycle starts over with a fresh warning.
	assert.Equal(t, Outcome{Warning: 1}, m.RecordMarker())
}

func TestMonitor_LoadResumesUnexpiredBan(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	st := storage.NewState(storage.NewMemoryStore())
	until := clock.Now().Add(2 * time.Minute)
	require.NoError(t, st.Save(storage.KeyBanEndTime, until.UnixMilli()))

	m := newMonitor(st, clock)
	assert.True(t, m.IsBanned())
	assert.Equal(t, 2*time.Minute, m.Remaining())
}

func TestMonitor_LoadClearsExpiredBan(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	st := storage.NewState(storage.NewMemoryStore())
	require.NoError(t, st.Save(storage.KeyBanEndTime, clock.Now().Add(-time.Second).UnixMilli()))

	m := newMonitor(st, clock)
	assert.False(t, m.IsBanned())
	_, ok, _ := st.KV().Get(storage.KeyBanEndTime)
	assert.False(t, ok)
}

func TestMonitor_LoadIgnoresMalformed(t *testing.T) {
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(storage.KeyBanEndTime, []byte(`"soon"`)))
	clock := &fakeClock{t: time.Now()}
	m := newMonitor(storage.NewState(kv), clock)
	assert.False(t, m.IsBanned())
}

func TestMonitor_MarkerWhileBanned(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	m := newMonitor(storage.NewState(storage.NewMemoryStore()), clock)
	for i := 0; i < 3; i++ {
		m.RecordMarker()
	}
	first := m.Status().Until

	clock.Advance(time.Minute)
	o := m.RecordMarker()
	assert.True(t, o.Banned)
	assert.Equal(t, first, o.Until, "ban is not extended")
}

func TestMonitor_CustomThreshold(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	m := New(storage.NewState(storage.NewMemoryStore()),
		WithClock(clock.Now), WithWarnings(0), WithBanDuration(time.Minute))
	o := m.RecordMarker()
	assert.True(t, o.Banned)
	assert.Equal(t, time.Minute, m.Remaining())
}

func TestMonitor_WatchStopsOnCancel(t *testing.T) {
	m := New(storage.NewState(storage.NewMemoryStore()), WithBanDuration(20*time.Millisecond), WithWarnings(0))
	m.RecordMarker()
	require.True(t, m.IsBanned())

	ctx, cancel := context.WithCancel(context.Background())
	lifted := make(chan struct{})
	var once sync.Once
	done := make(chan struct{})
	go func() {
		m.Watch(ctx, 5*time.Millisecond, func(s Status) {
			if !s.Banned {
				once.Do(func() { close(lifted) })
			}
		})
		close(done)
	}()

	select {
	case <-lifted:
	case <-time.After(2 * time.Second):
		t.Fatal("ban was not lifted by Watch")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}
