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

func newJourney(store domain.CacheStore) *usecase.AddJourneyEntry {
	return usecase.NewAddJourneyEntry(store, testRepo, &testutil.MockClock{NowTime: testNow}, domain.NopLogger{})
}

func cacheWithEpic(number int) *domain.Cache {
	return domain.NewCache(testRepo.String()).AddEpic(domain.Epic{Number: number, Title: "Parser"})
}

func TestAddJourneyEntry_Execute(t *testing.T) {
	store := testutil.NewMockCacheStore(cacheWithEpic(42))

	out, err := newJourney(store).Execute(context.Background(), usecase.AddJourneyEntryInput{
		EpicNumber: 42,
		Entry: &domain.JourneyEntry{
			Event:   domain.EventTaskStarted,
			Message: "Starting\ttask\n1",
			Agent:   "agent-1",
		},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, out.Entry.ID)
	assert.Equal(t, testNow, out.Entry.Timestamp)
	assert.Equal(t, "Startingtask1", out.Entry.Message)

	epic := store.Cache.GetEpic(42)
	require.Len(t, epic.Journey, 1)
	assert.Equal(t, out.Entry.ID, epic.Journey[0].ID)
	assert.True(t, epic.Dirty)
	assert.Equal(t, testNow, epic.UpdatedAt)
	assert.Equal(t, 1, store.SaveCount)
}

func TestAddJourneyEntry_KeepsTimestamp(t *testing.T) {
	store := testutil.NewMockCacheStore(cacheWithEpic(42))
	at := testNow.Add(-time.Hour)

	out, err := newJourney(store).Execute(context.Background(), usecase.AddJourneyEntryInput{
		EpicNumber: 42,
		Entry:      &domain.JourneyEntry{Event: "note", Message: "m", Timestamp: at},
	})

	require.NoError(t, err)
	assert.Equal(t, at, out.Entry.Timestamp)
}

func TestAddJourneyEntry_AppendOrder(t *testing.T) {
	store := testutil.NewMockCacheStore(cacheWithEpic(42))
	uc := newJourney(store)

	for _, msg := range []string{"one", "two", "three"} {
		_, err := uc.Execute(context.Background(), usecase.AddJourneyEntryInput{
			EpicNumber: 42,
			Entry:      &domain.JourneyEntry{Event: "note", Message: msg},
		})
		require.NoError(t, err)
	}

	journey := store.Cache.GetEpic(42).Journey
	require.Len(t, journey, 3)
	assert.Equal(t, "one", journey[0].Message)
	assert.Equal(t, "two", journey[1].Message)
	assert.Equal(t, "three", journey[2].Message)
}

func TestAddJourneyEntry_Validation(t *testing.T) {
	tests := []struct {
		entry *domain.JourneyEntry
		name  string
		epic  int
	}{
		{name: "zero epic", epic: 0, entry: &domain.JourneyEntry{Event: "e", Message: "m"}},
		{name: "negative epic", epic: -1, entry: &domain.JourneyEntry{Event: "e", Message: "m"}},
		{name: "nil entry", epic: 42, entry: nil},
		{name: "empty event", epic: 42, entry: &domain.JourneyEntry{Message: "m"}},
		{name: "empty message", epic: 42, entry: &domain.JourneyEntry{Event: "e"}},
		{name: "control characters only", epic: 42, entry: &domain.JourneyEntry{Event: "e", Message: "\n\t\x01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewMockCacheStore(cacheWithEpic(42))

			_, err := newJourney(store).Execute(context.Background(), usecase.AddJourneyEntryInput{
				EpicNumber: tt.epic,
				Entry:      tt.entry,
			})

			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Zero(t, store.LoadCount, "validation happens before any I/O")
			assert.Zero(t, store.SaveCount)
		})
	}
}

func TestAddJourneyEntry_EpicNotFound(t *testing.T) {
	store := testutil.NewMockCacheStore(cacheWithEpic(42))

	_, err := newJourney(store).Execute(context.Background(), usecase.AddJourneyEntryInput{
		EpicNumber: 7,
		Entry:      &domain.JourneyEntry{Event: "e", Message: "m"},
	})

	assert.ErrorIs(t, err, domain.ErrEpicNotFound)
	assert.Zero(t, store.SaveCount)
}

func TestAddJourneyEntry_SaveError(t *testing.T) {
	store := testutil.NewMockCacheStore(cacheWithEpic(42))
	store.SaveErr = domain.ErrIO

	_, err := newJourney(store).Execute(context.Background(), usecase.AddJourneyEntryInput{
		EpicNumber: 42,
		Entry:      &domain.JourneyEntry{Event: "e", Message: "m"},
	})

	assert.ErrorIs(t, err, domain.ErrIO)
}

func TestRecordTaskCompletion_Execute(t *testing.T) {
	// Epic #42 without sub-issues; the completion lands in the journey.
	store := testutil.NewMockCacheStore(cacheWithEpic(42))
	uc := usecase.NewRecordTaskCompletion(newJourney(store))

	_, err := uc.Execute(context.Background(), usecase.RecordTaskCompletionInput{
		EpicNumber: 42,
		TaskNumber: 1,
		TaskTitle:  "Build parser",
		Agent:      domain.AgentInfo{Name: "agent-1"},
	})
	require.NoError(t, err)

	epic := store.Cache.GetEpic(42)
	require.Len(t, epic.Journey, 1)
	entry := epic.Journey[0]
	assert.Equal(t, domain.EventTaskComplete, entry.Event)
	assert.Equal(t, "✅ Task 1 completed: Build parser", entry.Message)
	assert.Equal(t, "agent-1", entry.Agent)
	assert.EqualValues(t, 1, entry.Metadata["taskNumber"])
	assert.True(t, epic.Dirty)
}

func TestRecordTaskCompletion_UnknownEpic(t *testing.T) {
	store := testutil.NewMockCacheStore(cacheWithEpic(42))
	uc := usecase.NewRecordTaskCompletion(newJourney(store))

	_, err := uc.Execute(context.Background(), usecase.RecordTaskCompletionInput{
		EpicNumber: 43,
		TaskNumber: 1,
		TaskTitle:  "Build parser",
	})

	assert.ErrorIs(t, err, domain.ErrEpicNotFound)
	assert.Zero(t, store.SaveCount)
}
