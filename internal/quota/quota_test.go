// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package quota

import (
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

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func newGate(t *testing.T, st *storage.State, clock *fakeClock, opts ...Option) *Gate {
	t.Helper()
	g := New(st, append([]Option{WithClock(clock.Now)}, opts...)...)
	g.Load()
	return g
}

func TestGate_ConsumesUntilExhausted(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)}
	g := newGate(t, storage.NewState(storage.NewMemoryStore()), clock)

	for i := 0; i < DefaultAllowance; i++ {
		require.True(t, g.CheckAndConsume(), "send %d should pass", i+1)
	}
	assert.Equal(t, 0, g.Remaining())
	assert.False(t, g.CheckAndConsume())
	assert.False(t, g.CheckAndConsume())
	assert.Equal(t, 0, g.Remaining(), "never below zero")
	assert.True(t, g.Exhausted())
}

func TestGate_ResetsOnNewDayAtLoad(t *testing.T) {
	st := storage.NewState(storage.NewMemoryStore())
	require.NoError(t, st.Save(storage.KeyMessageLimit, State{Remaining: 0, LastReset: "2025-03-09"}))

	clock := &fakeClock{t: time.Date(2025, 3, 10, 0, 0, 1, 0, time.Local)}
	g := newGate(t, st, clock)
	assert.Equal(t, DefaultAllowance, g.Remaining())

	var persisted State
	require.True(t, st.Load(storage.KeyMessageLimit, &persisted))
	assert.Equal(t, "2025-03-10", persisted.LastReset)
}

func TestGate_SameDayKeepsCount(t *testing.T) {
	st := storage.NewState(storage.NewMemoryStore())
	clock := &fakeClock{t: time.Date(2025, 3, 10, 8, 0, 0, 0, time.Local)}

	g := newGate(t, st, clock)
	for i := 0; i < 5; i++ {
		g.CheckAndConsume()
	}

	clock.Set(clock.Now().Add(10 * time.Hour))
	g2 := newGate(t, st, clock)
	assert.Equal(t, DefaultAllowance-5, g2.Remaining())
}

func TestGate_LazyResetAcrossMidnight(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 10, 23, 59, 0, 0, time.Local)}
	g := newGate(t, storage.NewState(storage.NewMemoryStore()), clock, WithAllowance(2))

	require.True(t, g.CheckAndConsume())
	require.True(t, g.CheckAndConsume())
	require.False(t, g.CheckAndConsume())

	clock.Set(time.Date(2025, 3, 11, 0, 0, 30, 0, time.Local))
	assert.True(t, g.CheckAndConsume())
	assert.Equal(t, 1, g.Remaining())
}

func TestGate_MalformedRecordStartsFresh(t *testing.T) {
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(storage.KeyMessageLimit, []byte(`{"count":"lots"`)))

	clock := &fakeClock{t: time.Date(2025, 3, 10, 8, 0, 0, 0, time.Local)}
	g := newGate(t, storage.NewState(kv), clock)
	assert.Equal(t, DefaultAllowance, g.Remaining())
}

func TestGate_ClampsOutOfRangeCount(t *testing.T) {
	st := storage.NewState(storage.NewMemoryStore())
	clock := &fakeClock{t: time.Date(2025, 3, 10, 8, 0, 0, 0, time.Local)}
	require.NoError(t, st.Save(storage.KeyMessageLimit, State{Remaining: 500, LastReset: "2025-03-10"}))
	assert.Equal(t, DefaultAllowance, newGate(t, st, clock).Remaining())

	require.NoError(t, st.Save(storage.KeyMessageLimit, State{Remaining: -3, LastReset: "2025-03-10"}))
	assert.Equal(t, 0, newGate(t, st, clock).Remaining())
}

func TestGate_ConcurrentConsume(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 10, 8, 0, 0, 0, time.Local)}
	g := newGate(t, storage.NewState(storage.NewMemoryStore()), clock)

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 80; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.CheckAndConsume() {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, DefaultAllowance, granted)
}

func TestGate_ResetsAt(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 10, 15, 4, 5, 0, time.Local)}
	g := newGate(t, storage.NewState(storage.NewMemoryStore()), clock)
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.Local), g.ResetsAt())
}
