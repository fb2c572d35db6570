package domain

import (
	"context"
	"iter"
	"time"
)

// CacheStore persists the epic cache of one owner/repo pair.
//
// Implementations assume a single writer: two processes doing
// load-modify-save on the same cache concurrently lose one of the updates.
type CacheStore interface {
	// Load returns the cache, or an empty cache when none was saved yet.
	// A malformed document yields ErrCorruptCache and is left untouched.
	Load(owner, repo string) (*Cache, error)

	// Save replaces the whole document atomically. Failures wrap ErrIO.
	Save(owner, repo string, cache *Cache) error
}

// RepoRef identifies the cache and remote repository an operation works on.
type RepoRef struct {
	Owner string
	Repo  string
}

// String returns "owner/repo".
func (r RepoRef) String() string {
	return r.Owner + "/" + r.Repo
}

// RemoteTracker creates and updates issues on the remote tracker.
// Errors are *RemoteError values.
type RemoteTracker interface {
	// CreateIssue creates an issue and returns its number.
	CreateIssue(ctx context.Context, draft IssueDraft) (int, error)

	// UpdateIssue overwrites title, body and state of an existing issue.
	UpdateIssue(ctx context.Context, number int, update IssueUpdate) error
}

// IssueDraft is the payload of a create request.
type IssueDraft struct {
	Title  string
	Body   string
	Labels []string
}

// IssueUpdate is the payload of an update request.
type IssueUpdate struct {
	Title string
	Body  string
	State IssueState
}

// CommitReader reads commit history.
type CommitReader interface {
	// RecentCommits yields commits made strictly after since, oldest first.
	// A path that is not a repository yields nothing.
	RecentCommits(ctx context.Context, repoPath string, since time.Time) iter.Seq[Commit]
}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged configuration (defaults <- global <- repo).
	Load() (*Config, error)

	// LoadGlobal returns only the global configuration merged onto defaults.
	LoadGlobal() (*Config, error)
}

// ConfigInfo describes a config file on disk.
type ConfigInfo struct {
	Path    string
	Content string
	Exists  bool
}

// ConfigManager manages configuration files.
type ConfigManager interface {
	// GetRepoConfigInfo returns information about the repository config file.
	GetRepoConfigInfo() ConfigInfo

	// GetGlobalConfigInfo returns information about the global config file.
	GetGlobalConfigInfo() ConfigInfo

	// InitRepoConfig writes a repository config file from cfg.
	InitRepoConfig(cfg *Config) error

	// InitGlobalConfig writes a global config file from cfg.
	InitGlobalConfig(cfg *Config) error
}

// Logger writes operational logs. epicNumber 0 means the global log only.
type Logger interface {
	Info(epicNumber int, category, msg string)
	Debug(epicNumber int, category, msg string)
	Warn(epicNumber int, category, msg string)
	Error(epicNumber int, category, msg string)
}

// NopLogger discards all log entries.
type NopLogger struct{}

// Info discards the entry.
func (NopLogger) Info(int, string, string) {}

// Debug discards the entry.
func (NopLogger) Debug(int, string, string) {}

// Warn discards the entry.
func (NopLogger) Warn(int, string, string) {}

// Error discards the entry.
func (NopLogger) Error(int, string, string) {}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}
