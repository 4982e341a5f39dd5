// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ai

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttle spaces out provider calls and optionally bounds their duration.
// A nil *Throttle does nothing.
type Throttle struct {
	limiter *rate.Limiter
	timeout time.Duration
}

// NewThrottle allows perMinute calls per minute (0 = unlimited) with a
// per-call timeout (0 = none).
func NewThrottle(perMinute int, timeout time.Duration) *Throttle {
	t := &Throttle{timeout: timeout}
	if perMinute > 0 {
		t.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	}
	return t
}

// Begin waits for a call slot and returns the context to make the call with.
// The returned cancel func must always be called.
func (t *Throttle) Begin(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if t == nil {
		return ctx, func() {}, nil
	}
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return ctx, func() {}, err
		}
	}
	if t.timeout > 0 {
		c, cancel := context.WithTimeout(ctx, t.timeout)
		return c, cancel, nil
	}
	return ctx, func() {}, nil
}
