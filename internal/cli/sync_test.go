package cli

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/git-epic/internal/app"
	"github.com/runoshun/git-epic/internal/domain"
	"github.com/runoshun/git-epic/internal/testutil"
)

var testNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

// newTestContainer creates an app.Container with mock dependencies.
func newTestContainer(store *testutil.MockCacheStore, remote *testutil.MockRemoteTracker) *app.Container {
	return app.NewWithDeps(
		app.Config{
			RepoRoot: "/repo",
			Repo:     domain.RepoRef{Owner: "octocat", Repo: "hello"},
		},
		store,
		remote,
		&testutil.MockClock{NowTime: testNow},
		domain.NopLogger{},
	)
}

func dirtyEpics(titles ...string) *domain.Cache {
	cache := domain.NewCache("octocat/hello")
	for i, title := range titles {
		cache = cache.AddEpic(domain.Epic{Number: i + 1, Title: title, Dirty: true})
	}
	return cache
}

func TestSyncCommand_AllSynced(t *testing.T) {
	store := testutil.NewMockCacheStore(dirtyEpics("one", "two"))
	remote := testutil.NewMockRemoteTracker()
	container := newTestContainer(store, remote)

	cmd := newSyncCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Sync octocat/hello")
	assert.Contains(t, buf.String(), "synced:  2")
	assert.Len(t, remote.Calls, 2)
	assert.Empty(t, store.Cache.DirtyEpics())
}

func TestSyncCommand_PartialFailureExitsNonZero(t *testing.T) {
	store := testutil.NewMockCacheStore(dirtyEpics("one", "two", "three"))
	remote := testutil.NewMockRemoteTracker()
	remote.ErrByTitle["two"] = []error{domain.NewRemoteError(domain.RemotePermanent, "update", errors.New("validation failed"))}
	container := newTestContainer(store, remote)

	cmd := newSyncCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()

	assert.ErrorIs(t, err, domain.ErrSyncIncomplete)
	out := buf.String()
	assert.Contains(t, out, "synced:  2")
	assert.Contains(t, out, "failed:  1")
	assert.Contains(t, out, "validation failed")
	assert.Contains(t, out, "Still dirty: #2")
}

func TestSyncCommand_SaveFailureWarns(t *testing.T) {
	store := testutil.NewMockCacheStore(dirtyEpics("one"))
	store.SaveErr = domain.ErrIO
	container := newTestContainer(store, testutil.NewMockRemoteTracker())

	cmd := newSyncCommand(container)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{})

	err := cmd.Execute()

	assert.ErrorIs(t, err, domain.ErrIO)
	assert.Contains(t, stdout.String(), "synced:  1")
	assert.Contains(t, stderr.String(), "pushed again on the next sync")
}

func TestSyncCommand_NothingToSync(t *testing.T) {
	store := testutil.NewMockCacheStore(nil)
	remote := testutil.NewMockRemoteTracker()
	container := newTestContainer(store, remote)

	cmd := newSyncCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Nothing to sync")
	assert.Empty(t, remote.Calls)
}

func TestSyncCommand_DryRun(t *testing.T) {
	store := testutil.NewMockCacheStore(dirtyEpics("one", "two"))
	remote := testutil.NewMockRemoteTracker()
	container := newTestContainer(store, remote)

	cmd := newSyncCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--dry-run"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Would sync 2 epic(s) to octocat/hello")
	assert.Contains(t, buf.String(), "#2")
	assert.Empty(t, remote.Calls)
	assert.Zero(t, store.SaveCount)
}

func TestSyncCommand_NoRepository(t *testing.T) {
	container := newTestContainer(testutil.NewMockCacheStore(nil), testutil.NewMockRemoteTracker())
	container.Config.Repo = domain.RepoRef{}

	cmd := newSyncCommand(container)
	cmd.SetArgs([]string{})

	assert.ErrorIs(t, cmd.Execute(), domain.ErrNoRepository)
}
