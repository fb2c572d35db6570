package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/runoshun/git-epic/internal/domain"
)

// reconcileOverlap is how far before the watermark each run rescans.
// Commit times have one-second resolution, so a commit made in the same
// second as the last scanned one is only seen through this overlap.
const reconcileOverlap = time.Second

// ReconcileCompletionsInput contains the parameters for reconciling commits.
type ReconcileCompletionsInput struct {
	Agent    domain.AgentInfo // Recorded on the generated journey entries
	RepoPath string
}

// ReconciledIssue describes one issue closed by a commit.
type ReconciledIssue struct {
	Kind        domain.IssueKind
	CommitHash  string
	Keyword     string
	IssueNumber int
	EpicNumber  int
}

// ReconcileCompletionsOutput summarizes a reconcile run.
type ReconcileCompletionsOutput struct {
	Closed         []ReconciledIssue // Issues closed in this run, in commit order
	Unmatched      []int             // Referenced numbers not tracked by any epic
	AlreadyClosed  int               // Events for issues that were already closed
	CommitsScanned int
}

// ReconcileCompletions applies completion keywords found in commits made
// since the last reconcile to the cached epics and sub-issues.
type ReconcileCompletions struct {
	cache  domain.CacheStore
	finder *FindCompleted
	clock  domain.Clock
	logger domain.Logger
	repo   domain.RepoRef
}

// NewReconcileCompletions creates a new ReconcileCompletions use case.
func NewReconcileCompletions(
	cache domain.CacheStore,
	finder *FindCompleted,
	repo domain.RepoRef,
	clock domain.Clock,
	logger domain.Logger,
) *ReconcileCompletions {
	return &ReconcileCompletions{
		cache:  cache,
		finder: finder,
		clock:  clock,
		logger: logger,
		repo:   repo,
	}
}

// Execute closes every open sub-issue (or epic) referenced by a completion
// keyword and records the matching journey entry. Issues that are already
// closed are skipped, so repeated events for one issue apply once and the
// rescanned overlap before the watermark is harmless.
// The reconcile watermark only moves forward.
func (uc *ReconcileCompletions) Execute(ctx context.Context, in ReconcileCompletionsInput) (*ReconcileCompletionsOutput, error) {
	cache, err := uc.cache.Load(uc.repo.Owner, uc.repo.Repo)
	if err != nil {
		return nil, fmt.Errorf("load cache: %w", err)
	}

	since := cache.LastReconcile
	if !since.IsZero() {
		since = since.Add(-reconcileOverlap)
	}
	found, err := uc.finder.Execute(ctx, FindCompletedInput{RepoPath: in.RepoPath, Since: since})
	if err != nil {
		return nil, err
	}

	out := &ReconcileCompletionsOutput{CommitsScanned: found.Scanned}
	now := uc.clock.Now()

	for _, ev := range found.Events {
		ref, ok := cache.FindIssue(ev.IssueNumber)
		if !ok {
			out.Unmatched = append(out.Unmatched, ev.IssueNumber)
			continue
		}
		epic := cache.GetEpic(ref.EpicNumber)
		if epic == nil {
			out.Unmatched = append(out.Unmatched, ev.IssueNumber)
			continue
		}
		metadata := map[string]any{
			"commit":  ev.CommitHash,
			"keyword": ev.Keyword,
		}

		switch ref.Kind {
		case domain.IssueKindEpic:
			if epic.State == domain.StateClosed {
				out.AlreadyClosed++
				continue
			}
			closeEpic(epic, fmt.Sprintf("Epic closed by commit %s", domain.ShortHash(ev.CommitHash)), in.Agent.Name, metadata, now)
		case domain.IssueKindSub:
			sub := epic.SubIssue(ev.IssueNumber)
			if sub == nil {
				out.Unmatched = append(out.Unmatched, ev.IssueNumber)
				continue
			}
			if sub.State == domain.StateClosed {
				out.AlreadyClosed++
				continue
			}
			sub.State = domain.StateClosed
			entry := taskCompletionEntry(sub.Number, sub.Title, in.Agent)
			entry.ID = uuid.NewString()
			entry.Timestamp = now
			for k, v := range metadata {
				entry.Metadata[k] = v
			}
			epic.RecordJourney(entry, now)
		}

		// Keep the index in step so later events see the new state
		cache.ReindexIssues()
		out.Closed = append(out.Closed, ReconciledIssue{
			Kind:        ref.Kind,
			CommitHash:  ev.CommitHash,
			Keyword:     ev.Keyword,
			IssueNumber: ev.IssueNumber,
			EpicNumber:  ref.EpicNumber,
		})
		uc.logger.Info(ref.EpicNumber, "reconcile", fmt.Sprintf("#%d %s by %s", ev.IssueNumber, ev.Keyword, domain.ShortHash(ev.CommitHash)))
	}

	advanced := found.Latest.After(cache.LastReconcile)
	if advanced {
		cache.LastReconcile = found.Latest
	}
	if len(out.Closed) == 0 && !advanced {
		return out, nil
	}

	if err := uc.cache.Save(uc.repo.Owner, uc.repo.Repo, cache); err != nil {
		return nil, fmt.Errorf("save cache: %w", err)
	}
	return out, nil
}
