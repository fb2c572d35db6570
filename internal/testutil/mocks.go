// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"iter"
	"time"

	"github.com/runoshun/git-epic/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// MockCacheStore is an in-memory domain.CacheStore.
// Fields are ordered to minimize memory padding.
type MockCacheStore struct {
	Cache     *domain.Cache // Last saved cache (nil = nothing saved)
	LoadErr   error
	SaveErr   error
	LoadCount int
	SaveCount int
}

// NewMockCacheStore creates a store holding cache.
func NewMockCacheStore(cache *domain.Cache) *MockCacheStore {
	return &MockCacheStore{Cache: cache}
}

// Load returns a copy of the stored cache, or an empty one.
func (m *MockCacheStore) Load(owner, repo string) (*domain.Cache, error) {
	m.LoadCount++
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Cache == nil {
		return domain.NewCache(owner + "/" + repo), nil
	}
	return m.Cache.Clone(), nil
}

// Save stores a copy of cache.
func (m *MockCacheStore) Save(_, _ string, cache *domain.Cache) error {
	m.SaveCount++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Cache = cache.Clone()
	return nil
}

// RemoteCall records one call to MockRemoteTracker.
type RemoteCall struct {
	Op     string // "create" or "update"
	Title  string
	Body   string
	State  domain.IssueState
	Labels []string
	Number int // Issue number (update) or assigned number (create)
}

// MockRemoteTracker is a scripted domain.RemoteTracker.
//
// Errors are taken from ErrByTitle[title] first, then from Errors, one per
// call; a nil entry (or an exhausted queue) means success.
type MockRemoteTracker struct {
	ErrByTitle map[string][]error
	Errors     []error
	Calls      []RemoteCall
	NextNumber int // Number returned by the next successful create (default 100)
}

// NewMockRemoteTracker creates a tracker that assigns numbers from 100.
func NewMockRemoteTracker() *MockRemoteTracker {
	return &MockRemoteTracker{
		ErrByTitle: make(map[string][]error),
		NextNumber: 100,
	}
}

func (m *MockRemoteTracker) nextErr(title string) error {
	if q := m.ErrByTitle[title]; len(q) > 0 {
		m.ErrByTitle[title] = q[1:]
		return q[0]
	}
	if len(m.Errors) > 0 {
		err := m.Errors[0]
		m.Errors = m.Errors[1:]
		return err
	}
	return nil
}

// CreateIssue records the call and returns the next number.
func (m *MockRemoteTracker) CreateIssue(_ context.Context, draft domain.IssueDraft) (int, error) {
	call := RemoteCall{Op: "create", Title: draft.Title, Body: draft.Body, Labels: draft.Labels}
	if err := m.nextErr(draft.Title); err != nil {
		m.Calls = append(m.Calls, call)
		return 0, err
	}
	if m.NextNumber == 0 {
		m.NextNumber = 100
	}
	call.Number = m.NextNumber
	m.NextNumber++
	m.Calls = append(m.Calls, call)
	return call.Number, nil
}

// UpdateIssue records the call.
func (m *MockRemoteTracker) UpdateIssue(_ context.Context, number int, update domain.IssueUpdate) error {
	m.Calls = append(m.Calls, RemoteCall{
		Op:     "update",
		Number: number,
		Title:  update.Title,
		Body:   update.Body,
		State:  update.State,
	})
	return m.nextErr(update.Title)
}

// CallsFor returns the recorded calls for title.
func (m *MockRemoteTracker) CallsFor(title string) []RemoteCall {
	var out []RemoteCall
	for _, c := range m.Calls {
		if c.Title == title {
			out = append(out, c)
		}
	}
	return out
}

// MockCommitReader is a test double for domain.CommitReader.
// Commits must be given oldest first.
type MockCommitReader struct {
	LastSince time.Time
	LastPath  string
	Commits   []domain.Commit
	Calls     int
}

// RecentCommits yields the commits made strictly after since.
func (m *MockCommitReader) RecentCommits(_ context.Context, repoPath string, since time.Time) iter.Seq[domain.Commit] {
	m.Calls++
	m.LastPath = repoPath
	m.LastSince = since
	return func(yield func(domain.Commit) bool) {
		for _, c := range m.Commits {
			if !c.Timestamp.After(since) {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// LogEntry is a recorded MockLogger call.
type LogEntry struct {
	Level      string
	Category   string
	Msg        string
	EpicNumber int
}

// MockLogger records log entries.
type MockLogger struct {
	Entries []LogEntry
}

func (m *MockLogger) add(level string, epicNumber int, category, msg string) {
	m.Entries = append(m.Entries, LogEntry{Level: level, EpicNumber: epicNumber, Category: category, Msg: msg})
}

// Info records an info entry.
func (m *MockLogger) Info(epicNumber int, category, msg string) { m.add("INFO", epicNumber, category, msg) }

// Debug records a debug entry.
func (m *MockLogger) Debug(epicNumber int, category, msg string) {
	m.add("DEBUG", epicNumber, category, msg)
}

// Warn records a warning entry.
func (m *MockLogger) Warn(epicNumber int, category, msg string) { m.add("WARN", epicNumber, category, msg) }

// Error records an error entry.
func (m *MockLogger) Error(epicNumber int, category, msg string) {
	m.add("ERROR", epicNumber, category, msg)
}

// MockConfigLoader is a test double for domain.ConfigLoader.
type MockConfigLoader struct {
	Config       *domain.Config
	GlobalConfig *domain.Config
	LoadErr      error
}

// Load returns Config or a default config.
func (m *MockConfigLoader) Load() (*domain.Config, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Config == nil {
		return domain.NewDefaultConfig(), nil
	}
	return m.Config, nil
}

// LoadGlobal returns GlobalConfig or a default config.
func (m *MockConfigLoader) LoadGlobal() (*domain.Config, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.GlobalConfig == nil {
		return domain.NewDefaultConfig(), nil
	}
	return m.GlobalConfig, nil
}

// MockConfigManager is a test double for domain.ConfigManager.
type MockConfigManager struct {
	InitRepoErr   error
	InitGlobalErr error
	RepoConfig    *domain.Config // Config passed to InitRepoConfig
	GlobalConfig  *domain.Config // Config passed to InitGlobalConfig
	RepoInfo      domain.ConfigInfo
	GlobalInfo    domain.ConfigInfo
}

// GetRepoConfigInfo returns RepoInfo.
func (m *MockConfigManager) GetRepoConfigInfo() domain.ConfigInfo {
	return m.RepoInfo
}

// GetGlobalConfigInfo returns GlobalInfo.
func (m *MockConfigManager) GetGlobalConfigInfo() domain.ConfigInfo {
	return m.GlobalInfo
}

// InitRepoConfig records cfg.
func (m *MockConfigManager) InitRepoConfig(cfg *domain.Config) error {
	if m.InitRepoErr != nil {
		return m.InitRepoErr
	}
	m.RepoConfig = cfg
	m.RepoInfo = domain.ConfigInfo{Path: m.RepoInfo.Path, Exists: true, Content: domain.RenderConfigTemplate(cfg)}
	return nil
}

// InitGlobalConfig records cfg.
func (m *MockConfigManager) InitGlobalConfig(cfg *domain.Config) error {
	if m.InitGlobalErr != nil {
		return m.InitGlobalErr
	}
	m.GlobalConfig = cfg
	m.GlobalInfo = domain.ConfigInfo{Path: m.GlobalInfo.Path, Exists: true, Content: domain.RenderConfigTemplate(cfg)}
	return nil
}

// Ensure mocks implement their interfaces.
var (
	_ domain.Clock         = (*MockClock)(nil)
	_ domain.CacheStore    = (*MockCacheStore)(nil)
	_ domain.RemoteTracker = (*MockRemoteTracker)(nil)
	_ domain.CommitReader  = (*MockCommitReader)(nil)
	_ domain.Logger        = (*MockLogger)(nil)
	_ domain.ConfigLoader  = (*MockConfigLoader)(nil)
	_ domain.ConfigManager = (*MockConfigManager)(nil)
)
