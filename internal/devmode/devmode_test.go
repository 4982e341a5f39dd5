// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devmode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// passphrases returns the plaintext sequence, checked against the table.
func passphrases(t *testing.T) []string {
	t.Helper()
	out := []string{"*+m*+m**", "Saeed2009$", "SMN1234$", "JAML_SUPERVISOR_2030"}
	require.Len(t, out, len(sequence))
	for i, p := range out {
		require.Equal(t, sequence[i].digest, Digest(p), "step %d", i)
	}
	return out
}

func TestUnlocker_FullSequence(t *testing.T) {
	p := passphrases(t)
	var u Unlocker

	wantReplies := []string{"...", "...", "كلمة سر الإشراف؟", "تم تفعيل وضع المطور."}
	for i, in := range p {
		r := u.Feed(in)
		require.True(t, r.Consumed, "step %d", i)
		assert.Equal(t, wantReplies[i], r.Reply)
		assert.Equal(t, i == 3, r.Unlocked)
	}
	assert.True(t, u.Unlocked())
	assert.Equal(t, StepIdle, u.Step())

	// After unlocking nothing is consumed, even the first passphrase.
	assert.Equal(t, Result{}, u.Feed(p[0]))
}

func TestUnlocker_MismatchAtIdleIsNotConsumed(t *testing.T) {
	var u Unlocker
	r := u.Feed("hello")
	assert.False(t, r.Consumed)
	assert.Equal(t, StepIdle, u.Step())
}

func TestUnlocker_MismatchResetsAndFallsThrough(t *testing.T) {
	p := passphrases(t)

	for failAt := 1; failAt < len(p); failAt++ {
		var u Unlocker
		for i := 0; i < failAt; i++ {
			require.True(t, u.Feed(p[i]).Consumed)
		}
		require.Equal(t, Step(failAt), u.Step())

		r := u.Feed("what is the weather")
		assert.False(t, r.Consumed, "mismatch at step %d must fall through", failAt)
		assert.Equal(t, StepIdle, u.Step())
		assert.False(t, u.Unlocked())
	}
}

func TestUnlocker_OutOfOrderDoesNotAdvance(t *testing.T) {
	p := passphrases(t)
	var u Unlocker

	assert.False(t, u.Feed(p[1]).Consumed)
	assert.False(t, u.Feed(p[3]).Consumed)
	assert.Equal(t, StepIdle, u.Step())
}

func TestUnlocker_ArabicInputNeverMatches(t *testing.T) {
	p := passphrases(t)
	var u Unlocker
	require.True(t, u.Feed(p[0]).Consumed)
	assert.False(t, u.Feed("مرحبا").Consumed)
	assert.Equal(t, StepIdle, u.Step())
}

func TestUnlocker_Lock(t *testing.T) {
	p := passphrases(t)
	var u Unlocker
	for _, in := range p {
		u.Feed(in)
	}
	require.True(t, u.Unlocked())
	u.Lock()
	assert.False(t, u.Unlocked())
	assert.True(t, u.Feed(p[0]).Consumed)
}
