package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/git-epic/internal/domain"
)

// AddSubIssueInput contains the parameters for attaching a sub-issue.
type AddSubIssueInput struct {
	EpicRef string // "#N", "N" or a local ID prefix
	Title   string // Sub-issue title (required)
	Number  int    // Remote issue number of the sub-issue (0 = checklist item only)
}

// AddSubIssueOutput contains the result of attaching a sub-issue.
type AddSubIssueOutput struct {
	Epic     domain.Epic
	SubIssue domain.SubIssue
}

// AddSubIssue is the use case for attaching a sub-issue to an epic.
type AddSubIssue struct {
	cache  domain.CacheStore
	clock  domain.Clock
	logger domain.Logger
	repo   domain.RepoRef
}

// NewAddSubIssue creates a new AddSubIssue use case.
func NewAddSubIssue(cache domain.CacheStore, repo domain.RepoRef, clock domain.Clock, logger domain.Logger) *AddSubIssue {
	return &AddSubIssue{
		cache:  cache,
		clock:  clock,
		logger: logger,
		repo:   repo,
	}
}

// Execute attaches the sub-issue and marks the epic dirty so its checklist
// is pushed on the next sync. An issue number belongs to at most one epic.
func (uc *AddSubIssue) Execute(_ context.Context, in AddSubIssueInput) (*AddSubIssueOutput, error) {
	title := strings.TrimSpace(domain.SanitizeText(in.Title))
	if title == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrEmptyTitle)
	}
	if in.Number < 0 {
		return nil, fmt.Errorf("%w: sub-issue number must not be negative", domain.ErrValidation)
	}

	cache, err := uc.cache.Load(uc.repo.Owner, uc.repo.Repo)
	if err != nil {
		return nil, fmt.Errorf("load cache: %w", err)
	}
	epic, err := cache.ResolveEpic(in.EpicRef)
	if err != nil {
		return nil, err
	}
	if in.Number > 0 {
		if ref, ok := cache.FindIssue(in.Number); ok && (ref.Kind == domain.IssueKindEpic || ref.EpicNumber != epic.Number) {
			return nil, fmt.Errorf("%w: issue #%d is already tracked by epic #%d", domain.ErrValidation, in.Number, ref.EpicNumber)
		}
	}

	sub := domain.SubIssue{Number: in.Number, Title: title, State: domain.StateOpen}
	// Re-adding a tracked number renames it; state and labels are kept
	if existing := epic.SubIssue(in.Number); in.Number > 0 && existing != nil {
		sub.State = existing.State
		sub.Labels = append([]string(nil), existing.Labels...)
	}
	now := uc.clock.Now()

	if epic.HasRemote() {
		cache, err = cache.AddSubIssue(epic.Number, sub)
		if err != nil {
			return nil, err
		}
		epic = cache.GetEpic(epic.Number)
	} else {
		updated := epic.Clone()
		if existing := updated.SubIssue(sub.Number); sub.Number > 0 && existing != nil {
			*existing = sub
		} else {
			updated.SubIssues = append(updated.SubIssues, sub)
		}
		cache = cache.AddEpic(updated)
		epic = cache.GetEpicByLocalID(updated.LocalID)
	}
	epic.Touch(now)

	if err := uc.cache.Save(uc.repo.Owner, uc.repo.Repo, cache); err != nil {
		return nil, fmt.Errorf("save cache: %w", err)
	}

	uc.logger.Info(epic.Number, "epic", fmt.Sprintf("added sub-issue %q to %s", title, epic.Ref()))
	return &AddSubIssueOutput{Epic: epic.Clone(), SubIssue: sub}, nil
}
