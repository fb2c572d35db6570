// Package usecase contains the application use cases.
package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/runoshun/git-epic/internal/domain"
)

// AddJourneyEntryInput contains the parameters for appending a journey entry.
type AddJourneyEntryInput struct {
	Entry      *domain.JourneyEntry // Event and Message are required
	EpicNumber int                  // Remote number of the epic (required)
}

// AddJourneyEntryOutput contains the result of appending a journey entry.
type AddJourneyEntryOutput struct {
	Entry domain.JourneyEntry // The stored entry (sanitized, with ID and timestamp)
}

// AddJourneyEntry is the use case for appending an event to an epic's journey.
type AddJourneyEntry struct {
	cache  domain.CacheStore
	clock  domain.Clock
	logger domain.Logger
	repo   domain.RepoRef
}

// NewAddJourneyEntry creates a new AddJourneyEntry use case.
func NewAddJourneyEntry(cache domain.CacheStore, repo domain.RepoRef, clock domain.Clock, logger domain.Logger) *AddJourneyEntry {
	return &AddJourneyEntry{
		cache:  cache,
		clock:  clock,
		logger: logger,
		repo:   repo,
	}
}

// Execute validates the entry, appends it to the epic and marks the epic dirty.
// Nothing is read or written when validation fails, and the cache is not
// saved when the epic does not exist.
func (uc *AddJourneyEntry) Execute(_ context.Context, in AddJourneyEntryInput) (*AddJourneyEntryOutput, error) {
	if err := domain.ValidateEpicNumber(in.EpicNumber); err != nil {
		return nil, err
	}
	if in.Entry == nil {
		return nil, fmt.Errorf("%w: journey entry is required", domain.ErrValidation)
	}

	entry := *in.Entry
	entry.Event = strings.TrimSpace(domain.SanitizeText(entry.Event))
	entry.Message = strings.TrimSpace(domain.SanitizeText(entry.Message))
	entry.Agent = strings.TrimSpace(domain.SanitizeText(entry.Agent))
	if entry.Event == "" {
		return nil, fmt.Errorf("%w: journey entry needs an event", domain.ErrValidation)
	}
	if entry.Message == "" {
		return nil, fmt.Errorf("%w: journey entry needs a message", domain.ErrValidation)
	}

	now := uc.clock.Now()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = now
	}
	entry.ID = uuid.NewString()

	cache, err := uc.cache.Load(uc.repo.Owner, uc.repo.Repo)
	if err != nil {
		return nil, fmt.Errorf("load cache: %w", err)
	}
	epic := cache.GetEpic(in.EpicNumber)
	if epic == nil {
		return nil, fmt.Errorf("epic #%d: %w", in.EpicNumber, domain.ErrEpicNotFound)
	}

	epic.RecordJourney(entry, now)

	if err := uc.cache.Save(uc.repo.Owner, uc.repo.Repo, cache); err != nil {
		return nil, fmt.Errorf("save cache: %w", err)
	}

	uc.logger.Info(in.EpicNumber, "journey", fmt.Sprintf("%s: %s", entry.Event, entry.Message))
	return &AddJourneyEntryOutput{Entry: entry}, nil
}
