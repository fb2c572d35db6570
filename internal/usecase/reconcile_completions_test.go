package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/git-epic/internal/domain"
	"github.com/runoshun/git-epic/internal/testutil"
	"github.com/runoshun/git-epic/internal/usecase"
)

func reconcileCache() *domain.Cache {
	return domain.NewCache(testRepo.String()).
		AddEpic(domain.Epic{
			Number: 100,
			Title:  "Parser",
			SubIssues: []domain.SubIssue{
				{Number: 200, Title: "Tokenizer"},
				{Number: 201, Title: "Grammar"},
				{Number: 202, Title: "Done before", State: domain.StateClosed},
			},
		}).
		AddEpic(domain.Epic{Number: 300, Title: "Docs"})
}

func newReconcile(store domain.CacheStore, reader domain.CommitReader) *usecase.ReconcileCompletions {
	return usecase.NewReconcileCompletions(store, usecase.NewFindCompleted(reader), testRepo, testClock(), domain.NopLogger{})
}

func TestReconcileCompletions_Execute(t *testing.T) {
	store := testutil.NewMockCacheStore(reconcileCache())
	reader := &testutil.MockCommitReader{Commits: commitsAt(testNow.Add(-time.Hour),
		"feat: a closes #200",
		"fix: again fixes #200",
		"chore: b resolves #202",
		"docs: completes #300",
		"misc closes #999",
		"plain commit",
	)}

	out, err := newReconcile(store, reader).Execute(context.Background(), usecase.ReconcileCompletionsInput{
		RepoPath: "/repo",
		Agent:    domain.AgentInfo{Name: "reconciler"},
	})
	require.NoError(t, err)

	require.Len(t, out.Closed, 2)
	assert.Equal(t, 200, out.Closed[0].IssueNumber)
	assert.Equal(t, domain.IssueKindSub, out.Closed[0].Kind)
	assert.Equal(t, 300, out.Closed[1].IssueNumber)
	assert.Equal(t, domain.IssueKindEpic, out.Closed[1].Kind)
	assert.Equal(t, 2, out.AlreadyClosed, "duplicate #200 and pre-closed #202")
	assert.Equal(t, []int{999}, out.Unmatched)
	assert.Equal(t, 6, out.CommitsScanned)

	parser := store.Cache.GetEpic(100)
	assert.Equal(t, domain.StateClosed, parser.SubIssue(200).State)
	assert.Equal(t, domain.StateOpen, parser.SubIssue(201).State)
	assert.True(t, parser.Dirty)
	require.Len(t, parser.Journey, 1)
	assert.Equal(t, "✅ Task 200 completed: Tokenizer", parser.Journey[0].Message)
	assert.Equal(t, "reconciler", parser.Journey[0].Agent)
	assert.Equal(t, "closes", parser.Journey[0].Metadata["keyword"])

	docs := store.Cache.GetEpic(300)
	assert.Equal(t, domain.StateClosed, docs.State)
	require.Len(t, docs.Journey, 1)
	assert.Equal(t, domain.EventEpicClosed, docs.Journey[0].Event)

	assert.Equal(t, testNow.Add(-time.Hour).Add(6*time.Minute), store.Cache.LastReconcile)
	assert.Equal(t, 1, store.SaveCount)
}

func TestReconcileCompletions_UsesWatermark(t *testing.T) {
	cache := reconcileCache()
	cache.LastReconcile = testNow
	store := testutil.NewMockCacheStore(cache)
	reader := &testutil.MockCommitReader{Commits: []domain.Commit{
		{Hash: "old", Message: "closes #200", Timestamp: testNow.Add(-time.Minute)},
		{Hash: "at", Message: "closes #202", Timestamp: testNow},
	}}

	out, err := newReconcile(store, reader).Execute(context.Background(), usecase.ReconcileCompletionsInput{})

	require.NoError(t, err)
	assert.Equal(t, testNow.Add(-time.Second), reader.LastSince)
	assert.Empty(t, out.Closed)
	assert.Equal(t, 1, out.CommitsScanned)
	assert.Equal(t, 1, out.AlreadyClosed)
	assert.Equal(t, domain.StateOpen, store.Cache.GetEpic(100).SubIssue(200).State)
	assert.Zero(t, store.SaveCount, "nothing changed")
}

func TestReconcileCompletions_SameSecondCommitsAcrossRuns(t *testing.T) {
	store := testutil.NewMockCacheStore(reconcileCache())
	at := testNow.Add(-time.Hour).Truncate(time.Second)
	reader := &testutil.MockCommitReader{Commits: []domain.Commit{
		{Hash: "a000000000", Message: "closes #200", Timestamp: at},
	}}
	uc := newReconcile(store, reader)

	first, err := uc.Execute(context.Background(), usecase.ReconcileCompletionsInput{})
	require.NoError(t, err)
	require.Len(t, first.Closed, 1)
	assert.Equal(t, at, store.Cache.LastReconcile)

	// Committed after the first run, within the same second
	reader.Commits = append(reader.Commits, domain.Commit{Hash: "b000000000", Message: "closes #201", Timestamp: at})

	second, err := uc.Execute(context.Background(), usecase.ReconcileCompletionsInput{})
	require.NoError(t, err)
	require.Len(t, second.Closed, 1)
	assert.Equal(t, 201, second.Closed[0].IssueNumber)
	assert.Equal(t, 1, second.AlreadyClosed)

	parser := store.Cache.GetEpic(100)
	assert.Equal(t, domain.StateClosed, parser.SubIssue(200).State)
	assert.Equal(t, domain.StateClosed, parser.SubIssue(201).State)
	assert.Len(t, parser.Journey, 2)
	assert.Equal(t, at, store.Cache.LastReconcile)
}

func TestReconcileCompletions_Idempotent(t *testing.T) {
	store := testutil.NewMockCacheStore(reconcileCache())
	reader := &testutil.MockCommitReader{Commits: commitsAt(testNow.Add(-time.Hour), "closes #201")}
	uc := newReconcile(store, reader)

	first, err := uc.Execute(context.Background(), usecase.ReconcileCompletionsInput{})
	require.NoError(t, err)
	require.Len(t, first.Closed, 1)

	second, err := uc.Execute(context.Background(), usecase.ReconcileCompletionsInput{})
	require.NoError(t, err)
	assert.Empty(t, second.Closed)
	assert.Len(t, store.Cache.GetEpic(100).Journey, 1)
}

func TestReconcileCompletions_LoadError(t *testing.T) {
	store := testutil.NewMockCacheStore(nil)
	store.LoadErr = domain.ErrCorruptCache

	_, err := newReconcile(store, &testutil.MockCommitReader{}).Execute(context.Background(), usecase.ReconcileCompletionsInput{})

	assert.ErrorIs(t, err, domain.ErrCorruptCache)
}
