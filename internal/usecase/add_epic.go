package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/runoshun/git-epic/internal/domain"
)

// AddEpicInput contains the parameters for creating an epic.
// Fields are ordered to minimize memory padding.
type AddEpicInput struct {
	Title       string   // Epic title (required)
	Description string   // Free text for the issue body
	Agent       string   // Recorded on the epic_created entry
	Labels      []string // Labels for the remote issue
	Number      int      // Existing remote issue to track (0 = create on next sync)
}

// AddEpicOutput contains the result of creating an epic.
type AddEpicOutput struct {
	Epic domain.Epic
}

// AddEpic is the use case for tracking a new epic.
type AddEpic struct {
	cache  domain.CacheStore
	clock  domain.Clock
	logger domain.Logger
	repo   domain.RepoRef
}

// NewAddEpic creates a new AddEpic use case.
func NewAddEpic(cache domain.CacheStore, repo domain.RepoRef, clock domain.Clock, logger domain.Logger) *AddEpic {
	return &AddEpic{
		cache:  cache,
		clock:  clock,
		logger: logger,
		repo:   repo,
	}
}

// Execute adds a dirty epic with an epic_created journey entry.
func (uc *AddEpic) Execute(_ context.Context, in AddEpicInput) (*AddEpicOutput, error) {
	title := strings.TrimSpace(domain.SanitizeText(in.Title))
	if title == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrEmptyTitle)
	}
	if in.Number < 0 {
		return nil, domain.ValidateEpicNumber(in.Number)
	}

	cache, err := uc.cache.Load(uc.repo.Owner, uc.repo.Repo)
	if err != nil {
		return nil, fmt.Errorf("load cache: %w", err)
	}
	if in.Number > 0 {
		if _, ok := cache.FindIssue(in.Number); ok {
			return nil, fmt.Errorf("%w: issue #%d is already tracked", domain.ErrValidation, in.Number)
		}
	}

	now := uc.clock.Now()
	epic := newEpic(title, in.Description, in.Labels, now)
	epic.Number = in.Number
	epic.RecordJourney(domain.JourneyEntry{
		ID:        uuid.NewString(),
		Event:     domain.EventEpicCreated,
		Message:   "Epic created: " + title,
		Agent:     strings.TrimSpace(domain.SanitizeText(in.Agent)),
		Timestamp: now,
	}, now)

	cache = cache.AddEpic(epic)
	if err := uc.cache.Save(uc.repo.Owner, uc.repo.Repo, cache); err != nil {
		return nil, fmt.Errorf("save cache: %w", err)
	}

	uc.logger.Info(epic.Number, "epic", fmt.Sprintf("added epic %s: %s", epic.Ref(), title))
	return &AddEpicOutput{Epic: epic}, nil
}

// newEpic returns an open epic with a fresh local ID.
func newEpic(title, description string, labels []string, now time.Time) domain.Epic {
	e := domain.Epic{
		LocalID:     uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(description),
		State:       domain.StateOpen,
		SubIssues:   []domain.SubIssue{},
		Journey:     []domain.JourneyEntry{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	e.AddLabels(labels...)
	return e
}
