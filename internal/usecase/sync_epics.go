package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"golang.org/x/time/rate"

	"github.com/runoshun/git-epic/internal/domain"
)

// SyncEpicsInput contains the parameters for a sync run.
type SyncEpicsInput struct {
	DryRun bool // List the epics that would be pushed without calling the remote
}

// SyncFailure records why one epic was not synced.
type SyncFailure struct {
	Err  error
	Epic string // Epic reference (#N or local:<id>)
}

// SyncEpicsOutput summarizes a sync run.
// Fields are ordered to minimize memory padding.
type SyncEpicsOutput struct {
	SaveErr       error         // Set when the final save failed
	Failures      []SyncFailure // Failed and rate-limited epics, in processing order
	StillDirty    []string      // Epics left dirty after the run
	Planned       []string      // Epics that would be pushed (dry run only)
	Created       []int         // Issue numbers created in this run
	Synced        int
	Failed        int
	Skipped       int // Epics not attempted because the remote rate limit was hit
	NothingToSync bool
}

// Complete reports whether every dirty epic was pushed and the result saved.
func (o *SyncEpicsOutput) Complete() bool {
	return o.Failed == 0 && o.Skipped == 0 && o.SaveErr == nil
}

// SyncEpicsOptions tunes a SyncEpics use case.
type SyncEpicsOptions struct {
	Limiter    *rate.Limiter // Paces remote calls (nil = unlimited)
	Labels     []string      // Added to every created issue
	RetryDelay time.Duration // Delay before the single retry of a transient failure
}

// SyncEpics pushes dirty epics to the remote tracker.
// Fields are ordered to minimize memory padding.
type SyncEpics struct {
	cache   domain.CacheStore
	remote  domain.RemoteTracker
	clock   domain.Clock
	logger  domain.Logger
	limiter *rate.Limiter
	repo    domain.RepoRef
	labels  []string
	delay   time.Duration
}

// NewSyncEpics creates a new SyncEpics use case.
func NewSyncEpics(
	cache domain.CacheStore,
	remote domain.RemoteTracker,
	repo domain.RepoRef,
	clock domain.Clock,
	logger domain.Logger,
	opts SyncEpicsOptions,
) *SyncEpics {
	return &SyncEpics{
		cache:   cache,
		remote:  remote,
		clock:   clock,
		logger:  logger,
		limiter: opts.Limiter,
		repo:    repo,
		labels:  opts.Labels,
		delay:   opts.RetryDelay,
	}
}

// Execute pushes every dirty epic once, in cache order, and saves the cache
// once at the end. A failing epic stays dirty and does not stop the run; a
// rate-limit response stops it and leaves the remaining epics dirty.
//
// When the context is cancelled the run is abandoned and nothing is saved.
// When the final save fails the output is returned along with the error.
func (uc *SyncEpics) Execute(ctx context.Context, in SyncEpicsInput) (*SyncEpicsOutput, error) {
	cache, err := uc.cache.Load(uc.repo.Owner, uc.repo.Repo)
	if err != nil {
		return nil, fmt.Errorf("load cache: %w", err)
	}

	out := &SyncEpicsOutput{}
	dirty := cache.DirtyEpics()
	if len(dirty) == 0 {
		out.NothingToSync = true
		return out, nil
	}

	if in.DryRun {
		for _, e := range dirty {
			out.Planned = append(out.Planned, e.Ref())
		}
		return out, nil
	}

	for i, epic := range dirty {
		hadRemote := epic.HasRemote()
		err := uc.push(ctx, epic)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !hadRemote && epic.HasRemote() {
			out.Created = append(out.Created, epic.Number)
		}
		if err == nil {
			epic.Dirty = false
			out.Synced++
			uc.logger.Info(epic.Number, "sync", "synced "+epic.Ref())
			continue
		}

		out.Failures = append(out.Failures, SyncFailure{Epic: epic.Ref(), Err: err})
		if domain.RemoteKindOf(err) == domain.RemoteRateLimited {
			out.Skipped = len(dirty) - i
			uc.logger.Warn(epic.Number, "sync", fmt.Sprintf("rate limited, skipping %d epic(s): %v", out.Skipped, err))
			break
		}
		out.Failed++
		uc.logger.Error(epic.Number, "sync", fmt.Sprintf("sync %s failed: %v", epic.Ref(), err))
	}

	for _, e := range cache.DirtyEpics() {
		out.StillDirty = append(out.StillDirty, e.Ref())
	}
	cache.ReindexIssues()
	cache.LastSync = uc.clock.Now()
	if err := uc.cache.Save(uc.repo.Owner, uc.repo.Repo, cache); err != nil {
		out.SaveErr = err
		uc.logger.Error(0, "sync", fmt.Sprintf("save cache: %v", err))
		return out, fmt.Errorf("save cache: %w", err)
	}
	return out, nil
}

// push sends one epic, retrying a transient failure once.
func (uc *SyncEpics) push(ctx context.Context, epic *domain.Epic) error {
	err := uc.attempt(ctx, epic)
	if err == nil || domain.RemoteKindOf(err) != domain.RemoteTransient || ctx.Err() != nil {
		return err
	}

	uc.logger.Warn(epic.Number, "sync", fmt.Sprintf("retrying %s after transient error: %v", epic.Ref(), err))
	if err := sleepContext(ctx, uc.delay); err != nil {
		return err
	}
	return uc.attempt(ctx, epic)
}

// attempt performs a single create or update call.
// A successful create stores the returned number on the epic.
func (uc *SyncEpics) attempt(ctx context.Context, epic *domain.Epic) error {
	if uc.limiter != nil {
		if err := uc.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	body := domain.RenderIssueBody(epic)
	if epic.HasRemote() {
		return uc.remote.UpdateIssue(ctx, epic.Number, domain.IssueUpdate{
			Title: epic.Title,
			Body:  body,
			State: epic.State,
		})
	}

	labels := append([]string(nil), epic.Labels...)
	for _, l := range uc.labels {
		if !slices.Contains(labels, l) {
			labels = append(labels, l)
		}
	}
	number, err := uc.remote.CreateIssue(ctx, domain.IssueDraft{
		Title:  epic.Title,
		Body:   body,
		Labels: labels,
	})
	if err != nil {
		return err
	}
	if number <= 0 {
		return domain.NewRemoteError(domain.RemotePermanent, "create", errors.New("remote returned no issue number"))
	}
	epic.Number = number
	uc.logger.Info(number, "sync", "created issue for "+epic.Title)

	// Issues are created open
	if epic.State == domain.StateClosed {
		return uc.attempt(ctx, epic)
	}
	return nil
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
