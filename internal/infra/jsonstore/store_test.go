package jsonstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/git-epic/internal/domain"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	return New(dir), dir
}

func TestStore_LoadMissing(t *testing.T) {
	store, _ := newTestStore(t)

	cache, err := store.Load("octocat", "hello")

	require.NoError(t, err)
	assert.Equal(t, "octocat/hello", cache.Repository)
	assert.NotNil(t, cache.Epics)
	assert.Empty(t, cache.Epics)
	assert.NotNil(t, cache.Issues)
}

func TestStore_SaveAndLoad(t *testing.T) {
	store, _ := newTestStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	cache := domain.NewCache("octocat/hello").AddEpic(domain.Epic{
		Number:    42,
		Title:     "Parser",
		State:     domain.StateOpen,
		Labels:    []string{"epic"},
		Dirty:     true,
		CreatedAt: now,
		UpdatedAt: now,
		Journey: []domain.JourneyEntry{
			{ID: "j1", Event: domain.EventEpicCreated, Message: "created", Timestamp: now},
		},
	})
	cache, err := cache.AddSubIssue(42, domain.SubIssue{Number: 43, Title: "Lexer"})
	require.NoError(t, err)

	require.NoError(t, store.Save("octocat", "hello", cache))

	got, err := store.Load("octocat", "hello")
	require.NoError(t, err)

	epic := got.GetEpic(42)
	require.NotNil(t, epic)
	assert.Equal(t, "Parser", epic.Title)
	assert.True(t, epic.Dirty)
	assert.True(t, epic.CreatedAt.Equal(now))
	require.Len(t, epic.Journey, 1)
	assert.Equal(t, "created", epic.Journey[0].Message)
	require.Len(t, epic.SubIssues, 1)

	ref, ok := got.FindIssue(43)
	require.True(t, ok)
	assert.Equal(t, 42, ref.EpicNumber)
}

func TestStore_SaveFileMode(t *testing.T) {
	store, dir := newTestStore(t)

	require.NoError(t, store.Save("octocat", "hello", domain.NewCache("octocat/hello")))

	info, err := os.Stat(filepath.Join(dir, "cache", "octocat", "hello.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_SaveLeavesNoTempFiles(t *testing.T) {
	store, dir := newTestStore(t)

	require.NoError(t, store.Save("octocat", "hello", domain.NewCache("octocat/hello")))
	require.NoError(t, store.Save("octocat", "hello", domain.NewCache("octocat/hello")))

	entries, err := os.ReadDir(filepath.Join(dir, "cache", "octocat"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "hello.json", entries[0].Name())
}

func TestStore_LoadCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated", `{"repository": "octocat/hello", "epics": [`},
		{"wrong type", `{"epics": {"a": 1}}`},
		{"unknown field", `{"epics": [], "tasks": {}}`},
		{"invalid epic", `{"epics": [{"title": "no identity", "state": "open"}]}`},
		{"future version", `{"version": 99, "epics": []}`},
		{"empty file", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, dir := newTestStore(t)
			path := filepath.Join(dir, "cache", "octocat", "hello.json")
			require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := store.Load("octocat", "hello")

			assert.ErrorIs(t, err, domain.ErrCorruptCache)
			after, readErr := os.ReadFile(path)
			require.NoError(t, readErr)
			assert.Equal(t, tt.content, string(after), "corrupt file must be left untouched")
		})
	}
}

func TestStore_SaveUnwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "state")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o600))
	store := New(blocker)

	err := store.Save("octocat", "hello", domain.NewCache("octocat/hello"))

	assert.ErrorIs(t, err, domain.ErrIO)
}

func TestStore_InvalidRepoRef(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Load("..", "hello")
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = store.Save("octocat", "a/b", domain.NewCache("x"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStore_NamespacedPerRepository(t *testing.T) {
	store, _ := newTestStore(t)

	a := domain.NewCache("octocat/a").AddEpic(domain.Epic{Number: 1, Title: "in a"})
	require.NoError(t, store.Save("octocat", "a", a))

	b, err := store.Load("octocat", "b")
	require.NoError(t, err)
	assert.Empty(t, b.Epics)
}
