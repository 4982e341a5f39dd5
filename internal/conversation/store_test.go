// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/jaml-tui/internal/model"
	"github.com/jeranaias/jaml-tui/internal/storage"
)

func newStore(t *testing.T) (*Store, *storage.State) {
	t.Helper()
	st := storage.NewState(storage.NewMemoryStore())
	return NewStore(st), st
}

// requireMirrors asserts the persisted snapshot equals the in-memory one.
func requireMirrors(t *testing.T, s *Store, st *storage.State) {
	t.Helper()
	convs, active := st.Conversations()
	assert.Equal(t, s.ActiveID(), active)
	mem := s.List()
	require.Len(t, convs, len(mem))
	for i := range mem {
		assert.Equal(t, mem[i].ID, convs[i].ID)
		assert.Equal(t, mem[i].Title, convs[i].Title)
		require.Len(t, convs[i].Messages, len(mem[i].Messages))
		for j := range mem[i].Messages {
			assert.Equal(t, mem[i].Messages[j].ID, convs[i].Messages[j].ID)
			assert.Equal(t, mem[i].Messages[j].Content, convs[i].Messages[j].Content)
		}
	}
}

func TestStore_CreateIsActiveAndFirst(t *testing.T) {
	s, st := newStore(t)

	a, err := s.Create()
	require.NoError(t, err)
	b, err := s.Create()
	require.NoError(t, err)

	assert.Equal(t, b.ID, s.ActiveID())
	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)
	assert.Equal(t, model.DefaultTitle, list[0].Title)
	requireMirrors(t, s, st)
}

func TestStore_Select(t *testing.T) {
	s, st := newStore(t)
	a, _ := s.Create()
	s.Create()

	require.NoError(t, s.Select(a.ID))
	assert.Equal(t, a.ID, s.ActiveID())
	assert.True(t, errors.Is(s.Select("nope"), ErrConversationNotFound))
	requireMirrors(t, s, st)
}

func TestStore_DeleteActivatesFirstRemaining(t *testing.T) {
	s, st := newStore(t)
	a, _ := s.Create()
	b, _ := s.Create()
	c, _ := s.Create()

	require.NoError(t, s.Delete(c.ID))
	assert.Equal(t, b.ID, s.ActiveID())

	require.NoError(t, s.Select(a.ID))
	require.NoError(t, s.Delete(b.ID))
	assert.Equal(t, a.ID, s.ActiveID(), "deleting an inactive conversation keeps selection")

	require.NoError(t, s.Delete(a.ID))
	assert.Equal(t, "", s.ActiveID())
	assert.Equal(t, 0, s.Len())
	requireMirrors(t, s, st)

	assert.True(t, errors.Is(s.Delete(a.ID), ErrConversationNotFound))
}

func TestStore_AppendFallsBackToFirst(t *testing.T) {
	st := storage.NewState(storage.NewMemoryStore())
	first := model.NewConversation()
	second := model.NewConversation()
	require.NoError(t, st.SaveConversations([]model.Conversation{first, second}, ""))

	s := Load(st, st)
	assert.Equal(t, "", s.ActiveID())

	id, err := s.Append(model.NewUserMessage("hi"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, id)
	assert.Equal(t, first.ID, s.ActiveID())

	got, _ := s.Get(first.ID)
	require.Len(t, got.Messages, 1)
	requireMirrors(t, s, st)
}

func TestStore_AppendWithNothing(t *testing.T) {
	s, _ := newStore(t)
	_, err := s.Append(model.NewUserMessage("hi"))
	assert.True(t, errors.Is(err, ErrNoConversation))
}

func TestStore_AppendAssignsID(t *testing.T) {
	s, _ := newStore(t)
	s.Create()
	msg := model.NewUserMessage("x")
	msg.ID = ""
	_, err := s.Append(msg)
	require.NoError(t, err)
	c, _ := s.Active()
	assert.NotEmpty(t, c.Messages[0].ID)
}

func TestStore_AppendToInactive(t *testing.T) {
	s, st := newStore(t)
	first, err := s.Create()
	require.NoError(t, err)
	second, err := s.Create()
	require.NoError(t, err)
	require.Equal(t, second.ID, s.ActiveID())

	require.NoError(t, s.AppendTo(first.ID, model.NewModelMessage("late reply")))

	got, ok := s.Get(first.ID)
	require.True(t, ok)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "late reply", got.Messages[0].Content)
	assert.Equal(t, second.ID, s.ActiveID())
	requireMirrors(t, s, st)

	assert.ErrorIs(t, s.AppendTo("missing", model.NewModelMessage("x")), ErrConversationNotFound)
}

func TestStore_EditMessageContent(t *testing.T) {
	s, st := newStore(t)
	first, _ := s.Create()
	m := model.NewModelMessage("before")
	s.Append(m)
	s.Create()

	require.NoError(t, s.EditMessageContent(first.ID, m.ID, "after"))
	c, _ := s.Get(first.ID)
	assert.Equal(t, "after", c.Messages[0].Content)
	assert.NotEqual(t, first.ID, s.ActiveID())

	assert.True(t, errors.Is(s.EditMessageContent(first.ID, "missing", "x"), ErrMessageNotFound))
	assert.True(t, errors.Is(s.EditMessageContent(s.ActiveID(), m.ID, "x"), ErrMessageNotFound))
	assert.ErrorIs(t, s.EditMessageContent("missing", m.ID, "x"), ErrConversationNotFound)
	requireMirrors(t, s, st)
}

func TestStore_DeleteMessages(t *testing.T) {
	s, st := newStore(t)
	s.Create()
	var ids []string
	for i := 0; i < 5; i++ {
		m := model.NewUserMessage(fmt.Sprintf("m%d", i))
		ids = append(ids, m.ID)
		s.Append(m)
	}

	n, err := s.DeleteMessages(s.ActiveID(), map[string]bool{ids[1]: true, ids[3]: true, "unknown": true})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.DeleteMessages("missing", map[string]bool{ids[0]: true})
	assert.ErrorIs(t, err, ErrConversationNotFound)

	c, _ := s.Active()
	var contents []string
	for _, m := range c.Messages {
		contents = append(contents, m.Content)
	}
	assert.Equal(t, []string{"m0", "m2", "m4"}, contents)
	requireMirrors(t, s, st)
}

func TestStore_Rename(t *testing.T) {
	s, st := newStore(t)
	c, _ := s.Create()

	require.NoError(t, s.Rename(c.ID, "  Recipes  "))
	got, _ := s.Get(c.ID)
	assert.Equal(t, "Recipes", got.Title)
	assert.True(t, errors.Is(s.Rename(c.ID, " "), ErrEmptyTitle))
	assert.True(t, errors.Is(s.Rename("x", "y"), ErrConversationNotFound))
	requireMirrors(t, s, st)
}

func TestStore_LoadDropsUnknownActive(t *testing.T) {
	st := storage.NewState(storage.NewMemoryStore())
	c := model.NewConversation()
	require.NoError(t, st.SaveConversations([]model.Conversation{c}, "ghost"))

	s := Load(st, st)
	assert.Equal(t, "", s.ActiveID())
	assert.Equal(t, 1, s.Len())
}

func TestStore_ReturnsCopies(t *testing.T) {
	s, _ := newStore(t)
	s.Create()
	s.Append(model.NewUserMessage("x"))

	c, _ := s.Active()
	c.Messages[0].Content = "mutated"
	c.Title = "mutated"

	again, _ := s.Active()
	assert.Equal(t, "x", again.Messages[0].Content)
	assert.Equal(t, model.DefaultTitle, again.Title)
}

func TestStore_Search(t *testing.T) {
	s, _ := newStore(t)
	a, _ := s.Create()
	s.Append(model.NewUserMessage("How do I bake BREAD?"))
	b, _ := s.Create()
	s.Rename(b.ID, "Bread history")
	s.Create()

	res := s.Search("bread")
	require.Len(t, res, 2)
	assert.Equal(t, b.ID, res[0].ID)
	assert.Equal(t, a.ID, res[1].ID)
	assert.Len(t, s.Search(""), 3)
}

func TestStore_ConcurrentAppends(t *testing.T) {
	s, st := newStore(t)
	s.Create()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Append(model.NewModelMessage(fmt.Sprintf("reply %d", i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	c, _ := s.Active()
	assert.Len(t, c.Messages, 20)
	requireMirrors(t, s, st)
}

type failingPersister struct{}

func (failingPersister) SaveConversations([]model.Conversation, string) error {
	return errors.New("disk full")
}

func TestStore_PersistFailureIsReported(t *testing.T) {
	s := NewStore(failingPersister{})
	_, err := s.Create()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, s.Len(), "memory keeps the change")
}
