// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
)

// =============================================================================
// KEYS
// =============================================================================

const (
	KeyConversations = "jaml-conversations"
	KeyActiveID      = "jaml-active-id"
	KeyTheme         = "jaml-theme"
	KeyOnboarding    = "jaml-onboarding-complete"
	KeyModelConfig   = "jaml-model-config"
	KeyPersona       = "jaml-personality"
	KeyMessageLimit  = "jaml-message-limit"
	KeyBanEndTime    = "jaml-ban-end-time"
)

// AllKeys lists every key jaml writes, used by Reset.
var AllKeys = []string{
	KeyConversations,
	KeyActiveID,
	KeyTheme,
	KeyOnboarding,
	KeyModelConfig,
	KeyPersona,
	KeyMessageLimit,
	KeyBanEndTime,
}

// =============================================================================
// KV INTERFACE
// =============================================================================

// KV is a durable string-keyed byte store.
type KV interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(key string) (value []byte, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
	// Keys returns every stored key.
	Keys() ([]string, error)
	Close() error
}

// Backend names a KV implementation.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")

// ErrMalformed wraps decode failures of persisted values.
var ErrMalformed = errors.New("malformed persisted value")

// Open creates the KV for backend rooted at dir.
func Open(backend Backend, dir string) (KV, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(dir)
	case BackendSQLite:
		return NewSQLiteStore(filepath.Join(dir, "jaml.db"))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// =============================================================================
// JSON HELPERS
// =============================================================================

// GetJSON decodes the value under key into v. It returns false with a nil
// error when the key is absent, and an error wrapping ErrMalformed when the
// stored bytes do not decode.
func GetJSON(kv KV, key string, v any) (bool, error) {
	data, ok, err := kv.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrMalformed, key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return kv.Set(key, data)
}

// Reset deletes every key jaml owns.
func Reset(kv KV) error {
	var errs []error
	for _, k := range AllKeys {
		if err := kv.Delete(k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
