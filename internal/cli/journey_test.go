package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/git-epic/internal/domain"
	"github.com/runoshun/git-epic/internal/testutil"
)

func epicCache() *domain.Cache {
	return domain.NewCache("octocat/hello").AddEpic(domain.Epic{
		Number:    42,
		Title:     "Parser",
		SubIssues: []domain.SubIssue{{Number: 43, Title: "Tokenizer"}},
	})
}

func TestJourneyAddCommand(t *testing.T) {
	store := testutil.NewMockCacheStore(epicCache())
	container := newTestContainer(store, nil)

	cmd := newJourneyCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"add", "42", "--event", "task_started", "--message", "Starting", "--agent", "worker-1", "--agent-type", "claude", "--meta", "pr=17"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Recorded task_started on epic #42")

	journey := store.Cache.GetEpic(42).Journey
	require.Len(t, journey, 1)
	assert.Equal(t, "worker-1", journey[0].Agent)
	assert.Equal(t, "17", journey[0].Metadata["pr"])
	assert.Equal(t, "claude", journey[0].Metadata["agentType"])
}

func TestJourneyAddCommand_InvalidEpicNumber(t *testing.T) {
	tests := []string{"0", "-1", "1.5", "abc"}

	for _, arg := range tests {
		t.Run(arg, func(t *testing.T) {
			store := testutil.NewMockCacheStore(epicCache())
			cmd := newJourneyCommand(newTestContainer(store, nil))
			cmd.SetArgs([]string{"add", "--event", "x", "--message", "y", "--", arg})

			assert.ErrorIs(t, cmd.Execute(), domain.ErrValidation)
			assert.Zero(t, store.LoadCount)
		})
	}
}

func TestTaskCompleteCommand(t *testing.T) {
	store := testutil.NewMockCacheStore(epicCache())
	container := newTestContainer(store, nil)

	cmd := newTaskCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"complete", "42", "--task", "3", "--title", "Implement parser", "--agent", "worker-1"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "✅ Task 3 completed: Implement parser")
	assert.Equal(t, domain.EventTaskComplete, store.Cache.GetEpic(42).Journey[0].Event)
}

func TestSkillCommands(t *testing.T) {
	store := testutil.NewMockCacheStore(epicCache())
	container := newTestContainer(store, nil)

	t.Run("detect", func(t *testing.T) {
		cmd := newSkillCommand(container)
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"detect", "Writing", "a", "failing", "test", "first"})

		require.NoError(t, cmd.Execute())
		assert.Equal(t, "test-driven-development\n", buf.String())
	})

	t.Run("detect nothing", func(t *testing.T) {
		cmd := newSkillCommand(container)
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"detect", "lunch"})

		require.NoError(t, cmd.Execute())
		assert.Empty(t, buf.String())
	})

	t.Run("narrate", func(t *testing.T) {
		cmd := newSkillCommand(container)
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"narrate", "42", "Debugging the flaky test", "--agent", "worker-1"})

		require.NoError(t, cmd.Execute())
		assert.Contains(t, buf.String(), "Recorded skill systematic-debugging on epic #42")
		assert.Len(t, store.Cache.GetEpic(42).Journey, 1)
	})

	t.Run("list", func(t *testing.T) {
		cmd := newSkillCommand(container)
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"list"})

		require.NoError(t, cmd.Execute())
		assert.Contains(t, buf.String(), "epic-planning")
		assert.Contains(t, buf.String(), "systematic-debugging")
	})
}

func TestDetectCommand(t *testing.T) {
	container := newTestContainer(testutil.NewMockCacheStore(nil), nil)
	reader := &testutil.MockCommitReader{Commits: []domain.Commit{
		{Hash: "abcdef0123", Message: "fix parser, closes #43", Timestamp: testNow.Add(-time.Hour)},
		{Hash: "bcdef01234", Message: "chore: tidy", Timestamp: testNow.Add(-30 * time.Minute)},
	}}
	container.Commits = reader

	cmd := newDetectCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--since", "2h"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "abcdef0\tcloses\t#43")
	assert.Contains(t, buf.String(), "1 completion(s) in 2 commit(s)")
	assert.Equal(t, testNow.Add(-2*time.Hour), reader.LastSince)
	assert.Equal(t, "/repo", reader.LastPath)
}

func TestReconcileCommand(t *testing.T) {
	store := testutil.NewMockCacheStore(epicCache())
	container := newTestContainer(store, nil)
	container.Commits = &testutil.MockCommitReader{Commits: []domain.Commit{
		{Hash: "abcdef0123", Message: "closes #43", Timestamp: testNow.Add(-time.Hour)},
		{Hash: "bcdef01234", Message: "fixes #99", Timestamp: testNow.Add(-time.Minute)},
	}}

	cmd := newReconcileCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--agent", "reconciler"})

	require.NoError(t, cmd.Execute())
	out := buf.String()
	assert.Contains(t, out, "#43 (epic #42) closes by abcdef0")
	assert.Contains(t, out, "#99")
	assert.Contains(t, out, "Closed 1 issue(s), 0 already closed, 2 commit(s) scanned")
	assert.Equal(t, domain.StateClosed, store.Cache.GetEpic(42).SubIssue(43).State)
}
