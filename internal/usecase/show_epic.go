package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/git-epic/internal/domain"
)

// ShowEpicInput contains the parameters for showing an epic.
type ShowEpicInput struct {
	Ref string // "#N", "N" or a local ID prefix
}

// ShowEpicOutput contains the epic and the issue body sync would push.
type ShowEpicOutput struct {
	Body string
	Epic domain.Epic
}

// ShowEpic is the use case for displaying one epic.
type ShowEpic struct {
	cache domain.CacheStore
	repo  domain.RepoRef
}

// NewShowEpic creates a new ShowEpic use case.
func NewShowEpic(cache domain.CacheStore, repo domain.RepoRef) *ShowEpic {
	return &ShowEpic{cache: cache, repo: repo}
}

// Execute looks up the epic.
func (uc *ShowEpic) Execute(_ context.Context, in ShowEpicInput) (*ShowEpicOutput, error) {
	cache, err := uc.cache.Load(uc.repo.Owner, uc.repo.Repo)
	if err != nil {
		return nil, fmt.Errorf("load cache: %w", err)
	}
	epic, err := cache.ResolveEpic(in.Ref)
	if err != nil {
		return nil, err
	}
	return &ShowEpicOutput{
		Epic: epic.Clone(),
		Body: domain.RenderIssueBody(epic),
	}, nil
}
