package usecase

import (
	"context"
	"time"

	"github.com/runoshun/git-epic/internal/domain"
)

// FindCompletedInput contains the parameters for scanning commit history.
type FindCompletedInput struct {
	Since    time.Time // Only commits strictly after Since are scanned (zero = all)
	RepoPath string
}

// FindCompletedOutput contains the completion events found.
type FindCompletedOutput struct {
	Latest  time.Time                // Timestamp of the newest scanned commit (zero when none)
	Events  []domain.CompletionEvent // In commit order, not deduplicated
	Scanned int                      // Number of commits scanned
}

// FindCompleted detects completion keywords in recent commit messages.
type FindCompleted struct {
	commits domain.CommitReader
}

// NewFindCompleted creates a new FindCompleted use case.
func NewFindCompleted(commits domain.CommitReader) *FindCompleted {
	return &FindCompleted{commits: commits}
}

// Execute scans commits oldest first and keeps one event per matching commit.
// An issue referenced by several commits yields several events.
func (uc *FindCompleted) Execute(ctx context.Context, in FindCompletedInput) (*FindCompletedOutput, error) {
	out := &FindCompletedOutput{Events: []domain.CompletionEvent{}}
	for c := range uc.commits.RecentCommits(ctx, in.RepoPath, in.Since) {
		out.Scanned++
		if c.Timestamp.After(out.Latest) {
			out.Latest = c.Timestamp
		}
		ev := domain.DetectFromMessage(c.Message)
		if ev == nil {
			continue
		}
		ev.CommitHash = c.Hash
		out.Events = append(out.Events, *ev)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
