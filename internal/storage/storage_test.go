// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/jaml-tui/internal/model"
)

// =============================================================================
// BACKEND CONFORMANCE
// =============================================================================

func backends(t *testing.T) map[string]KV {
	t.Helper()

	fs, err := NewFileStore(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)

	sq, err := NewSQLiteStore(filepath.Join(t.TempDir(), "jaml.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })

	return map[string]KV{
		"file":   fs,
		"sqlite": sq,
		"memory": NewMemoryStore(),
	}
}

func TestKV_RoundTrip(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := kv.Get(KeyTheme)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.Set(KeyTheme, []byte(`"purple"`)))
			require.NoError(t, kv.Set(KeyTheme, []byte(`"earthy"`)))

			v, ok, err := kv.Get(KeyTheme)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, `"earthy"`, string(v))

			require.NoError(t, kv.Set(KeyActiveID, []byte(`"a"`)))
			keys, err := kv.Keys()
			require.NoError(t, err)
			assert.Equal(t, []string{KeyActiveID, KeyTheme}, keys)

			require.NoError(t, kv.Delete(KeyTheme))
			require.NoError(t, kv.Delete(KeyTheme), "deleting twice is fine")
			_, ok, err = kv.Get(KeyTheme)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s1, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, SetJSON(s1, KeyMessageLimit, map[string]any{"count": 3}))

	s2, err := NewFileStore(dir)
	require.NoError(t, err)
	var got map[string]int
	ok, err := GetJSON(s2, KeyMessageLimit, &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, got["count"])

	info, err := os.Stat(filepath.Join(dir, KeyMessageLimit+".json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStore_SharedDirectory(t *testing.T) {
	dir := t.TempDir()
	a, err := NewFileStore(dir)
	require.NoError(t, err)
	defer a.Close()
	b, err := NewFileStore(dir)
	require.NoError(t, err)
	defer b.Close()

	var wg sync.WaitGroup
	for i, s := range []*FileStore{a, b} {
		wg.Add(1)
		go func(i int, s *FileStore) {
			defer wg.Done()
			for n := 0; n < 20; n++ {
				assert.NoError(t, s.Set(KeyActiveID, []byte(fmt.Sprintf("%d-%d", i, n))))
				_, _, err := s.Get(KeyActiveID)
				assert.NoError(t, err)
			}
		}(i, s)
	}
	wg.Wait()

	keys, err := a.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{KeyActiveID}, keys, "lock file is not a key")
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jaml.db")
	s1, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s1.Set(KeyBanEndTime, []byte("1700000000000")))
	require.NoError(t, s1.Close())

	s2, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s2.Close()
	v, ok, err := s2.Get(KeyBanEndTime)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1700000000000", string(v))
}

func TestFileStore_RejectsPathKeys(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, fs.Set("../escape", []byte("x")))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	kv, err := Open(BackendSQLite, dir)
	require.NoError(t, err)
	defer kv.Close()
	_, err = os.Stat(filepath.Join(dir, "jaml.db"))
	assert.NoError(t, err)

	_, err = Open("redis", dir)
	assert.True(t, errors.Is(err, ErrUnknownBackend))
}

// =============================================================================
// JSON / STATE
// =============================================================================

func TestGetJSON_Malformed(t *testing.T) {
	kv := NewMemoryStore()
	require.NoError(t, kv.Set(KeyModelConfig, []byte("{not json")))

	var cfg model.ModelConfig
	ok, err := GetJSON(kv, KeyModelConfig, &cfg)
	assert.False(t, ok)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestState_DefaultsOnMissingOrMalformed(t *testing.T) {
	kv := NewMemoryStore()
	st := NewState(kv)

	assert.Equal(t, model.ThemeEarthy, st.Theme())
	assert.Equal(t, model.DefaultPersona(), st.Persona())
	assert.Equal(t, model.DefaultModelConfig(), st.ModelConfig())
	assert.False(t, st.OnboardingComplete())

	for _, k := range AllKeys {
		require.NoError(t, kv.Set(k, []byte("][")))
	}
	assert.Equal(t, model.ThemeEarthy, st.Theme())
	assert.Equal(t, model.DefaultPersona(), st.Persona())
	assert.Equal(t, model.DefaultModelConfig(), st.ModelConfig())
	assert.False(t, st.OnboardingComplete())
	convs, active := st.Conversations()
	assert.Empty(t, convs)
	assert.Empty(t, active)

	require.NoError(t, kv.Set(KeyTheme, []byte(`"neon"`)))
	assert.Equal(t, model.ThemeEarthy, st.Theme())
}

func TestState_Settings(t *testing.T) {
	st := NewState(NewMemoryStore())

	require.NoError(t, st.SetTheme(model.ThemePurple))
	assert.Equal(t, model.ThemePurple, st.Theme())

	p := model.Persona{Avatar: model.AvatarNebula, Gender: model.GenderFemale}
	require.NoError(t, st.SetPersona(p))
	assert.Equal(t, p, st.Persona())

	require.NoError(t, st.SetModelConfig(model.ModelConfig{Temperature: 3, TopP: 0.5}))
	assert.Equal(t, model.ModelConfig{Temperature: 1, TopP: 0.5}, st.ModelConfig())

	require.NoError(t, st.SetOnboardingComplete(true))
	assert.True(t, st.OnboardingComplete())

	require.NoError(t, st.Reset())
	assert.Equal(t, model.ThemeEarthy, st.Theme())
	assert.False(t, st.OnboardingComplete())
}

func TestState_Conversations(t *testing.T) {
	st := NewState(NewMemoryStore())

	c := model.NewConversation()
	c.AddMessage(model.NewUserMessage("hello"))
	require.NoError(t, st.SaveConversations([]model.Conversation{c}, c.ID))

	convs, active := st.Conversations()
	require.Len(t, convs, 1)
	assert.Equal(t, c.ID, active)
	assert.Equal(t, "hello", convs[0].Messages[0].Content)

	require.NoError(t, st.SaveConversations(nil, ""))
	_, active = st.Conversations()
	assert.Empty(t, active)
}

// =============================================================================
// EXPORT
// =============================================================================

func TestExportMarkdown(t *testing.T) {
	c := model.NewConversation()
	c.Title = "Go help"
	c.AddMessage(model.NewUserMessage("write a loop"))
	c.AddMessage(model.NewCodeMessage("go", "for {}"))
	c.AddMessage(model.NewImageMessage(model.RoleModel, "", "data:image/png;base64,AA=="))

	md := ExportMarkdown(c, model.DefaultPersona())
	assert.True(t, strings.HasPrefix(md, "# Go help"))
	assert.Contains(t, md, "**You**")
	assert.Contains(t, md, "**Jaml**")
	assert.Contains(t, md, "```go\nfor {}\n```")
	assert.Contains(t, md, "[generated image]")
	assert.NotContains(t, md, "base64")

	data, err := ExportJSON(c)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title": "Go help"`)
}

func TestExportHTML(t *testing.T) {
	c := model.NewConversation()
	c.Title = "<script>"
	c.AddMessage(model.NewUserMessage("اشرح `x < y`\n\n```go\nif x < y {}\n```\nتم"))
	c.AddMessage(model.NewImageMessage(model.RoleModel, "", "data:image/png;base64,AA=="))
	c.AddMessage(model.NewImageMessage(model.RoleUser, "عدّل", "/home/me/photo.png"))

	page := ExportHTML(c, model.Persona{Gender: model.GenderFemale, Avatar: model.AvatarOrb}, model.ThemePurple)
	assert.Contains(t, page, `<html lang="ar" dir="rtl">`)
	assert.Contains(t, page, "<title>&lt;script&gt;</title>")
	assert.NotContains(t, page, "<script>")
	assert.Contains(t, page, "<code>x &lt; y</code>")
	assert.Contains(t, page, `<div class="lang">go</div><pre><code>if x &lt; y {}</code></pre>`)
	assert.Contains(t, page, `<img src="data:image/png;base64,AA=="`)
	assert.Contains(t, page, "photo.png")
	assert.NotContains(t, page, "/home/me")
	assert.Contains(t, page, "ناقة")
	assert.Contains(t, page, "#7C3AED")
	assert.NotContains(t, page, "%!")
}

func TestFormatConversationList(t *testing.T) {
	assert.Equal(t, "No conversations found.", FormatConversationList(nil, ""))

	a := model.NewConversation()
	b := model.NewConversation()
	b.Title = "Second"
	out := FormatConversationList([]model.Conversation{a, b}, b.ID)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[3], "* 2"))
	assert.Contains(t, lines[3], "Second")
}

func TestPreview(t *testing.T) {
	c := model.NewConversation()
	assert.Equal(t, "", Preview(c, 10))
	c.AddMessage(model.NewModelMessage("greeting"))
	c.AddMessage(model.NewUserMessage("line one\nline two is long"))
	assert.Equal(t, "line on...", Preview(c, 10))
}
