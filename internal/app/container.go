// Package app provides the dependency injection container for the application.
package app

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/time/rate"

	"github.com/runoshun/git-epic/internal/domain"
	"github.com/runoshun/git-epic/internal/infra/config"
	"github.com/runoshun/git-epic/internal/infra/git"
	"github.com/runoshun/git-epic/internal/infra/github"
	"github.com/runoshun/git-epic/internal/infra/jsonstore"
	"github.com/runoshun/git-epic/internal/infra/logging"
	"github.com/runoshun/git-epic/internal/infra/skills"
	"github.com/runoshun/git-epic/internal/usecase"
)

// Config holds the application paths and the resolved repository.
type Config struct {
	RepoRoot string         // Root directory of the git repository
	GitDir   string         // Path to .git directory
	EpicDir  string         // Path to .git/epic directory
	StateDir string         // Directory holding caches and logs
	Repo     domain.RepoRef // Repository the cache and remote calls refer to
}

// newConfig creates a new Config from the git client and the loaded settings.
func newConfig(gitClient *git.Client, appConfig *domain.Config) Config {
	repoRoot := gitClient.RepoRoot()
	cfg := Config{
		RepoRoot: repoRoot,
		GitDir:   gitClient.GitDir(),
		EpicDir:  domain.RepoEpicDir(repoRoot),
		StateDir: resolveStateDir(appConfig.State.Dir),
	}
	if owner, repo, ok := appConfig.Repository(); ok {
		cfg.Repo = domain.RepoRef{Owner: owner, Repo: repo}
	} else if owner, repo, err := gitClient.OriginRepository(); err == nil {
		cfg.Repo = domain.RepoRef{Owner: owner, Repo: repo}
	}
	return cfg
}

// resolveStateDir returns dir, or the XDG state directory when dir is empty.
func resolveStateDir(dir string) string {
	if dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return domain.StateDir(xdg)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return domain.StateDir(filepath.Join(home, ".local", "state"))
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Cache         domain.CacheStore
	Remote        domain.RemoteTracker
	Commits       domain.CommitReader
	Clock         domain.Clock
	Logger        domain.Logger
	ConfigLoader  domain.ConfigLoader
	ConfigManager domain.ConfigManager

	// Pointer fields
	AppConfig *domain.Config
	Skills    *domain.SkillRegistry
	Limiter   *rate.Limiter

	// Configuration
	Config Config
}

// New creates a new Container by detecting the git repository from the given directory.
func New(dir string) (*Container, error) {
	gitClient, err := git.NewClient(dir)
	if err != nil {
		return nil, err
	}

	epicDir := domain.RepoEpicDir(gitClient.RepoRoot())
	configLoader := config.NewLoader(epicDir)
	appConfig, err := configLoader.Load()
	if err != nil {
		return nil, err
	}
	cfg := newConfig(gitClient, appConfig)

	registry, err := skills.Load(cfg.EpicDir, appConfig.Skills.Registry)
	if err != nil {
		return nil, fmt.Errorf("load skills: %w", err)
	}

	logger := logging.New(cfg.StateDir, logging.ParseLevel(appConfig.Log.Level))

	remote := github.NewClient(github.Options{
		Logger:  logger,
		BaseURL: appConfig.GitHub.APIURL,
		Owner:   cfg.Repo.Owner,
		Repo:    cfg.Repo.Repo,
		Token:   os.Getenv(appConfig.GitHub.TokenEnv),
		Timeout: appConfig.GitHub.Timeout.Std(),
	})

	return &Container{
		Cache:         jsonstore.New(cfg.StateDir),
		Remote:        remote,
		Commits:       git.NewCommitLog(logger),
		Clock:         domain.RealClock{},
		Logger:        logger,
		ConfigLoader:  configLoader,
		ConfigManager: config.NewManager(epicDir),
		AppConfig:     appConfig,
		Skills:        registry,
		Limiter:       newLimiter(appConfig.Sync.RequestsPerSecond),
		Config:        cfg,
	}, nil
}

// newLimiter paces remote calls; zero means unlimited.
func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg Config, cache domain.CacheStore, remote domain.RemoteTracker, clock domain.Clock, logger domain.Logger) *Container {
	return &Container{
		Cache:     cache,
		Remote:    remote,
		Clock:     clock,
		Logger:    logger,
		AppConfig: domain.NewDefaultConfig(),
		Skills:    domain.DefaultSkillRegistry(),
		Config:    cfg,
	}
}

// Repository returns the repository the cache belongs to.
// Returns domain.ErrNoRepository when neither config nor origin names one.
func (c *Container) Repository() (domain.RepoRef, error) {
	if err := domain.ValidateRepoRef(c.Config.Repo.Owner, c.Config.Repo.Repo); err != nil {
		if c.Config.Repo.Owner == "" && c.Config.Repo.Repo == "" {
			return domain.RepoRef{}, domain.ErrNoRepository
		}
		return domain.RepoRef{}, err
	}
	return c.Config.Repo, nil
}

// Close releases open log files.
func (c *Container) Close() error {
	if l, ok := c.Logger.(*logging.Logger); ok {
		return l.Close()
	}
	return nil
}

// UseCase factory methods

// SyncEpicsUseCase returns a new SyncEpics use case.
func (c *Container) SyncEpicsUseCase(repo domain.RepoRef) *usecase.SyncEpics {
	return usecase.NewSyncEpics(c.Cache, c.Remote, repo, c.Clock, c.Logger, usecase.SyncEpicsOptions{
		Limiter:    c.Limiter,
		Labels:     c.AppConfig.Sync.Labels,
		RetryDelay: c.AppConfig.Sync.RetryDelay.Std(),
	})
}

// AddEpicUseCase returns a new AddEpic use case.
func (c *Container) AddEpicUseCase(repo domain.RepoRef) *usecase.AddEpic {
	return usecase.NewAddEpic(c.Cache, repo, c.Clock, c.Logger)
}

// AddSubIssueUseCase returns a new AddSubIssue use case.
func (c *Container) AddSubIssueUseCase(repo domain.RepoRef) *usecase.AddSubIssue {
	return usecase.NewAddSubIssue(c.Cache, repo, c.Clock, c.Logger)
}

// ListEpicsUseCase returns a new ListEpics use case.
func (c *Container) ListEpicsUseCase(repo domain.RepoRef) *usecase.ListEpics {
	return usecase.NewListEpics(c.Cache, repo)
}

// ShowEpicUseCase returns a new ShowEpic use case.
func (c *Container) ShowEpicUseCase(repo domain.RepoRef) *usecase.ShowEpic {
	return usecase.NewShowEpic(c.Cache, repo)
}

// CloseEpicUseCase returns a new CloseEpic use case.
func (c *Container) CloseEpicUseCase(repo domain.RepoRef) *usecase.CloseEpic {
	return usecase.NewCloseEpic(c.Cache, repo, c.Clock, c.Logger)
}

// AddJourneyEntryUseCase returns a new AddJourneyEntry use case.
func (c *Container) AddJourneyEntryUseCase(repo domain.RepoRef) *usecase.AddJourneyEntry {
	return usecase.NewAddJourneyEntry(c.Cache, repo, c.Clock, c.Logger)
}

// RecordTaskCompletionUseCase returns a new RecordTaskCompletion use case.
func (c *Container) RecordTaskCompletionUseCase(repo domain.RepoRef) *usecase.RecordTaskCompletion {
	return usecase.NewRecordTaskCompletion(c.AddJourneyEntryUseCase(repo))
}

// RecordNarrationUseCase returns a new RecordNarration use case.
func (c *Container) RecordNarrationUseCase(repo domain.RepoRef) *usecase.RecordNarration {
	return usecase.NewRecordNarration(c.Skills, c.AddJourneyEntryUseCase(repo))
}

// FindCompletedUseCase returns a new FindCompleted use case.
func (c *Container) FindCompletedUseCase() *usecase.FindCompleted {
	return usecase.NewFindCompleted(c.Commits)
}

// ReconcileCompletionsUseCase returns a new ReconcileCompletions use case.
func (c *Container) ReconcileCompletionsUseCase(repo domain.RepoRef) *usecase.ReconcileCompletions {
	return usecase.NewReconcileCompletions(c.Cache, c.FindCompletedUseCase(), repo, c.Clock, c.Logger)
}

// ImportPlanUseCase returns a new ImportPlan use case.
func (c *Container) ImportPlanUseCase(repo domain.RepoRef) *usecase.ImportPlan {
	return usecase.NewImportPlan(c.Cache, repo, c.Clock, c.Logger)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigManager, c.ConfigLoader)
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}
