// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"fmt"
	"os"
)

// lockFileName sits next to the value files. Keys never start with a dot.
const lockFileName = ".lock"

// fileLock is an advisory lock shared by every process using the same data
// directory, so a running TUI and a one-shot `jaml ask` don't interleave
// writes. A nil *fileLock runs fn without locking.
type fileLock struct {
	f *os.File
}

func openFileLock(path string) (*fileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}
	return &fileLock{f: f}, nil
}

// with runs fn holding the lock, shared for readers and exclusive for
// writers.
func (l *fileLock) with(exclusive bool, fn func() error) error {
	if l == nil {
		return fn()
	}
	if err := lockFile(l.f, exclusive); err != nil {
		return fmt.Errorf("failed to lock storage: %w", err)
	}
	defer unlockFile(l.f)
	return fn()
}

func (l *fileLock) Close() error {
	if l == nil {
		return nil
	}
	return l.f.Close()
}
