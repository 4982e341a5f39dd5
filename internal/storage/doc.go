// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides durable key-value persistence for jaml.
//
// Every piece of client state (conversations, the active conversation,
// theme, persona, sampling parameters, the daily quota and the ban deadline)
// is stored as one JSON value under a fixed key. Values written through a
// KV survive process restarts.
//
// # Key Types
//
//   - KV: the backend interface
//   - FileStore: one JSON file per key under a directory
//   - SQLiteStore: a single kv table in a SQLite database
//   - MemoryStore: in-process backend for tests
//   - State: typed accessors that fall back to defaults on malformed data
//
// # Usage
//
//	kv, err := storage.Open(storage.BackendFile, dataDir)
//	st := storage.NewState(kv)
//	theme := st.Theme()
//
// # Storage Location
//
// By default data lives in ~/.jaml/data/.
package storage
