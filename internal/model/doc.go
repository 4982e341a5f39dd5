// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by every jaml layer:
// conversations, messages and their optional payloads, the persona the
// assistant speaks as, and the sampling parameters sent with each request.
//
// The types are plain values with JSON tags. Persistence lives in the
// storage and conversation packages; nothing here touches the disk.
package model
