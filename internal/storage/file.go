// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/jeranaias/jaml-tui/internal/util"
)

// validKey restricts keys to names that are safe as file names.
var validKey = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// =============================================================================
// FILE STORE
// =============================================================================

// FileStore keeps each key in its own JSON file. Access is serialised
// within the process by mu and across processes by an advisory lock file.
type FileStore struct {
	// BaseDir is the directory holding the value files.
	// Default: ~/.jaml/data/
	BaseDir string

	mu   sync.RWMutex
	lock *fileLock
}

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	lock, err := openFileLock(filepath.Join(dir, lockFileName))
	if err != nil {
		return nil, err
	}
	return &FileStore{BaseDir: dir, lock: lock}, nil
}

// Get reads the value for key.
func (s *FileStore) Get(key string) ([]byte, bool, error) {
	path, err := s.filePath(key)
	if err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var data []byte
	err = s.lock.with(false, func() error {
		data, err = os.ReadFile(path)
		return err
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Set writes the value for key.
func (s *FileStore) Set(key string, value []byte) error {
	path, err := s.filePath(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lock.with(true, func() error {
		return util.AtomicWriteFile(path, value, 0600)
	})
}

// Delete removes the file for key.
func (s *FileStore) Delete(key string) error {
	path, err := s.filePath(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lock.with(true, func() error {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	})
}

// Keys lists the stored keys in sorted order.
func (s *FileStore) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(keys)
	return keys, nil
}

// Close releases the lock file.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lock.Close()
}

// filePath returns the file path for a key.
func (s *FileStore) filePath(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.BaseDir, key+".json"), nil
}
