package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/runoshun/git-epic/internal/domain"
)

// CloseEpicInput contains the parameters for closing an epic.
type CloseEpicInput struct {
	Ref    string // "#N", "N" or a local ID prefix
	Agent  string
	Reason string // Appended to the journey message
}

// CloseEpicOutput contains the result of closing an epic.
type CloseEpicOutput struct {
	Epic          domain.Epic
	AlreadyClosed bool
}

// CloseEpic is the use case for closing an epic.
type CloseEpic struct {
	cache  domain.CacheStore
	clock  domain.Clock
	logger domain.Logger
	repo   domain.RepoRef
}

// NewCloseEpic creates a new CloseEpic use case.
func NewCloseEpic(cache domain.CacheStore, repo domain.RepoRef, clock domain.Clock, logger domain.Logger) *CloseEpic {
	return &CloseEpic{
		cache:  cache,
		clock:  clock,
		logger: logger,
		repo:   repo,
	}
}

// Execute marks the epic closed and records an epic_closed entry.
// Closing a closed epic changes nothing.
func (uc *CloseEpic) Execute(_ context.Context, in CloseEpicInput) (*CloseEpicOutput, error) {
	cache, err := uc.cache.Load(uc.repo.Owner, uc.repo.Repo)
	if err != nil {
		return nil, fmt.Errorf("load cache: %w", err)
	}
	epic, err := cache.ResolveEpic(in.Ref)
	if err != nil {
		return nil, err
	}
	if epic.State == domain.StateClosed {
		return &CloseEpicOutput{Epic: epic.Clone(), AlreadyClosed: true}, nil
	}

	now := uc.clock.Now()
	closeEpic(epic, closeMessage(in.Reason), strings.TrimSpace(domain.SanitizeText(in.Agent)), nil, now)
	cache.ReindexIssues()

	if err := uc.cache.Save(uc.repo.Owner, uc.repo.Repo, cache); err != nil {
		return nil, fmt.Errorf("save cache: %w", err)
	}

	uc.logger.Info(epic.Number, "epic", "closed "+epic.Ref())
	return &CloseEpicOutput{Epic: epic.Clone()}, nil
}

func closeMessage(reason string) string {
	reason = strings.TrimSpace(domain.SanitizeText(reason))
	if reason == "" {
		return "Epic closed"
	}
	return "Epic closed: " + reason
}

// closeEpic sets the epic closed and appends an epic_closed entry.
func closeEpic(epic *domain.Epic, message, agent string, metadata map[string]any, now time.Time) {
	epic.State = domain.StateClosed
	epic.RecordJourney(domain.JourneyEntry{
		ID:        uuid.NewString(),
		Event:     domain.EventEpicClosed,
		Message:   message,
		Agent:     agent,
		Metadata:  metadata,
		Timestamp: now,
	}, now)
}
