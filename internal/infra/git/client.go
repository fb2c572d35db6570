// Package git provides read-only git operations backed by go-git.
package git

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"slices"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/runoshun/git-epic/internal/domain"
)

// Client provides repository information for the working directory.
type Client struct {
	repo     *git.Repository
	repoRoot string // Worktree root (parent of .git)
}

// NewClient opens the repository containing dir.
// Returns domain.ErrNotGitRepository when dir is not inside a repository.
func NewClient(dir string) (*Client, error) {
	repo, err := openRepo(dir)
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	return &Client{
		repo:     repo,
		repoRoot: filepath.Clean(wt.Filesystem.Root()),
	}, nil
}

// RepoRoot returns the repository root directory.
func (c *Client) RepoRoot() string {
	return c.repoRoot
}

// GitDir returns the .git directory path.
func (c *Client) GitDir() string {
	return filepath.Join(c.repoRoot, ".git")
}

// OriginRepository returns owner and repository parsed from the origin remote.
func (c *Client) OriginRepository() (owner, repo string, err error) {
	remote, err := c.repo.Remote("origin")
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return "", "", domain.ErrNoRepository
		}
		return "", "", fmt.Errorf("read origin remote: %w", err)
	}
	for _, url := range remote.Config().URLs {
		if o, r, ok := domain.ParseRemoteURL(url); ok {
			return o, r, nil
		}
	}
	return "", "", domain.ErrNoRepository
}

func openRepo(dir string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, domain.ErrNotGitRepository
		}
		return nil, fmt.Errorf("open git repository: %w", err)
	}
	return repo, nil
}

// CommitLog implements domain.CommitReader by walking history from HEAD.
type CommitLog struct {
	logger domain.Logger
}

// NewCommitLog creates a CommitLog. A nil logger disables logging.
func NewCommitLog(logger domain.Logger) *CommitLog {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &CommitLog{logger: logger}
}

// RecentCommits yields commits reachable from HEAD whose committer time is
// strictly after since, oldest first. Paths that are not repositories, empty
// repositories and read errors produce an empty sequence.
//
// The repository is read each time the sequence is ranged over.
func (l *CommitLog) RecentCommits(ctx context.Context, repoPath string, since time.Time) iter.Seq[domain.Commit] {
	return func(yield func(domain.Commit) bool) {
		commits, err := l.collect(ctx, repoPath, since)
		if err != nil {
			l.logger.Debug(0, "git", fmt.Sprintf("no commits from %s: %v", repoPath, err))
			return
		}
		for _, c := range commits {
			if !yield(c) {
				return
			}
		}
	}
}

func (l *CommitLog) collect(ctx context.Context, repoPath string, since time.Time) ([]domain.Commit, error) {
	repo, err := openRepo(repoPath)
	if err != nil {
		return nil, err
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil // Empty repository
		}
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	opts := &git.LogOptions{
		From:  head.Hash(),
		Order: git.LogOrderCommitterTime,
	}
	if !since.IsZero() {
		opts.Since = &since
	}
	it, err := repo.Log(opts)
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer it.Close()

	var commits []domain.Commit
	err = it.ForEach(func(c *object.Commit) error {
		if ctx.Err() != nil {
			return storer.ErrStop
		}
		if !c.Committer.When.After(since) {
			return nil
		}
		commits = append(commits, domain.Commit{
			Hash:      c.Hash.String(),
			Message:   c.Message,
			Timestamp: c.Committer.When,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk log: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Log order is newest first
	slices.Reverse(commits)
	slices.SortStableFunc(commits, func(a, b domain.Commit) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return commits, nil
}

// Ensure CommitLog implements domain.CommitReader.
var _ domain.CommitReader = (*CommitLog)(nil)
