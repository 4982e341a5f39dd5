// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation owns the in-memory collection of conversations and
// the active selection.
//
// Every mutation rewrites the whole collection and the active id through a
// Persister before returning, so the persisted copy always mirrors memory.
// Conversations are kept newest-first.
package conversation

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jeranaias/jaml-tui/internal/model"
)

// Persister saves a full snapshot of the collection.
type Persister interface {
	SaveConversations(convs []model.Conversation, activeID string) error
}

// Loader reads a previously saved snapshot.
type Loader interface {
	Conversations() ([]model.Conversation, string)
}

// =============================================================================
// STORE
// =============================================================================

// Store holds the conversations and the active id. It is safe for
// concurrent use; concurrent appends land in completion order.
type Store struct {
	mu       sync.RWMutex
	convs    []model.Conversation
	activeID string
	persist  Persister
}

// NewStore creates an empty store.
func NewStore(p Persister) *Store {
	return &Store{convs: []model.Conversation{}, persist: p}
}

// Load creates a store from a saved snapshot. An active id that names no
// conversation is dropped.
func Load(src Loader, p Persister) *Store {
	convs, active := src.Conversations()
	s := &Store{convs: convs, activeID: active, persist: p}
	if s.convs == nil {
		s.convs = []model.Conversation{}
	}
	if active != "" && s.indexLocked(active) < 0 {
		slog.Warn("conversation_active_missing", "id", active)
		s.activeID = ""
	}
	return s
}

// Create adds an empty conversation at the front and makes it active.
func (s *Store) Create() (model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := model.NewConversation()
	s.convs = append([]model.Conversation{c}, s.convs...)
	s.activeID = c.ID
	return c.Clone(), s.saveLocked()
}

// Select makes id the active conversation.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(id) < 0 {
		return ErrConversationNotFound
	}
	s.activeID = id
	return s.saveLocked()
}

// Delete removes a conversation. Deleting the active one activates the
// first remaining conversation, or none.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return ErrConversationNotFound
	}
	s.convs = append(s.convs[:i], s.convs[i+1:]...)

	if id == s.activeID {
		s.activeID = ""
		if len(s.convs) > 0 {
			s.activeID = s.convs[0].ID
		}
	}
	return s.saveLocked()
}

// Append adds msg to the active conversation. With no active conversation
// the first conversation is activated and used. It returns the id of the
// conversation that received the message.
func (s *Store) Append(msg model.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeID == "" {
		if len(s.convs) == 0 {
			return "", ErrNoConversation
		}
		s.activeID = s.convs[0].ID
	}

	return s.activeID, s.appendLocked(s.activeID, msg)
}

// AppendTo adds msg to the conversation id, whether or not it is active.
// Replies to a request land in the conversation the request came from.
func (s *Store) AppendTo(id string, msg model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(id, msg)
}

func (s *Store) appendLocked(id string, msg model.Message) error {
	i := s.indexLocked(id)
	if i < 0 {
		return ErrConversationNotFound
	}
	if msg.ID == "" {
		msg.ID = model.NewMessageID()
	}
	s.convs[i].AddMessage(msg)
	return s.saveLocked()
}

// EditMessageContent replaces the text of a message in conversation convID.
// Callers gate this on developer mode.
func (s *Store) EditMessageContent(convID, msgID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(convID)
	if i < 0 {
		return ErrConversationNotFound
	}
	j := s.convs[i].FindMessage(msgID)
	if j < 0 {
		return ErrMessageNotFound
	}
	s.convs[i].Messages[j].Content = content
	return s.saveLocked()
}

// DeleteMessages removes every message of conversation convID whose id is
// in ids and returns how many were removed.
func (s *Store) DeleteMessages(convID string, ids map[string]bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(convID)
	if i < 0 {
		return 0, ErrConversationNotFound
	}

	kept := s.convs[i].Messages[:0]
	removed := 0
	for _, m := range s.convs[i].Messages {
		if ids[m.ID] {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	s.convs[i].Messages = kept
	if removed == 0 {
		return 0, nil
	}
	return removed, s.saveLocked()
}

// Rename sets the title of a conversation.
func (s *Store) Rename(id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return ErrConversationNotFound
	}
	s.convs[i].Title = title
	return s.saveLocked()
}

// Replace swaps in a whole collection, used by reset.
func (s *Store) Replace(convs []model.Conversation, activeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convs = append([]model.Conversation{}, convs...)
	s.activeID = activeID
	return s.saveLocked()
}

// =============================================================================
// QUERIES
// =============================================================================

// ActiveID returns the active conversation id, or "".
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Active returns a copy of the active conversation.
func (s *Store) Active() (model.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(s.activeID)
}

// Get returns a copy of the conversation with the given id.
func (s *Store) Get(id string) (model.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(id)
}

// List returns copies of every conversation, newest first.
func (s *Store) List() []model.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Conversation, len(s.convs))
	for i, c := range s.convs {
		out[i] = c.Clone()
	}
	return out
}

// Len returns the number of conversations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.convs)
}

// Search returns conversations whose title or any message text contains
// query, case-insensitively.
func (s *Store) Search(query string) []model.Conversation {
	if query == "" {
		return s.List()
	}
	query = strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []model.Conversation
	for _, c := range s.convs {
		if strings.Contains(strings.ToLower(c.Title), query) {
			results = append(results, c.Clone())
			continue
		}
		for _, m := range c.Messages {
			if strings.Contains(strings.ToLower(m.Content), query) {
				results = append(results, c.Clone())
				break
			}
		}
	}
	return results
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.convs {
		if s.convs[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) getLocked(id string) (model.Conversation, bool) {
	i := s.indexLocked(id)
	if i < 0 {
		return model.Conversation{}, false
	}
	return s.convs[i].Clone(), true
}

func (s *Store) saveLocked() error {
	if s.persist == nil {
		return nil
	}
	if err := s.persist.SaveConversations(s.convs, s.activeID); err != nil {
		slog.Error("conversation_persist_failed", "error", err)
		return fmt.Errorf("failed to persist conversations: %w", err)
	}
	return nil
}
