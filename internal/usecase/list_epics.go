package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/runoshun/git-epic/internal/domain"
)

// ListEpicsInput contains the filters for listing epics.
type ListEpicsInput struct {
	State     domain.IssueState // Only epics in this state (empty = all)
	DirtyOnly bool              // Only epics that owe a sync
}

// ListEpicsOutput contains the listed epics in cache order.
type ListEpicsOutput struct {
	LastSync   time.Time
	Repository string
	Epics      []domain.Epic
}

// ListEpics is the use case for listing tracked epics.
type ListEpics struct {
	cache domain.CacheStore
	repo  domain.RepoRef
}

// NewListEpics creates a new ListEpics use case.
func NewListEpics(cache domain.CacheStore, repo domain.RepoRef) *ListEpics {
	return &ListEpics{cache: cache, repo: repo}
}

// Execute returns the epics matching the filters.
func (uc *ListEpics) Execute(_ context.Context, in ListEpicsInput) (*ListEpicsOutput, error) {
	if in.State != "" && !in.State.IsValid() {
		return nil, fmt.Errorf("%w: unknown state %q", domain.ErrValidation, in.State)
	}

	cache, err := uc.cache.Load(uc.repo.Owner, uc.repo.Repo)
	if err != nil {
		return nil, fmt.Errorf("load cache: %w", err)
	}

	out := &ListEpicsOutput{
		LastSync:   cache.LastSync,
		Repository: cache.Repository,
		Epics:      []domain.Epic{},
	}
	for i := range cache.Epics {
		e := &cache.Epics[i]
		if in.State != "" && e.State != in.State {
			continue
		}
		if in.DirtyOnly && !e.Dirty {
			continue
		}
		out.Epics = append(out.Epics, e.Clone())
	}
	return out, nil
}
