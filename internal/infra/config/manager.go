package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/runoshun/git-epic/internal/domain"
)

// Ensure Manager implements domain.ConfigManager.
var _ domain.ConfigManager = (*Manager)(nil)

// Manager manages configuration files.
type Manager struct {
	epicDir       string // Path to .git/epic directory
	globalConfDir string // Path to global config directory (e.g., ~/.config/git-epic)
}

// NewManager creates a new Manager.
func NewManager(epicDir string) *Manager {
	return &Manager{
		epicDir:       epicDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewManagerWithGlobalDir creates a new Manager with a custom global config directory.
// This is useful for testing.
func NewManagerWithGlobalDir(epicDir, globalConfDir string) *Manager {
	return &Manager{
		epicDir:       epicDir,
		globalConfDir: globalConfDir,
	}
}

// GetRepoConfigInfo returns information about the repository config file.
func (m *Manager) GetRepoConfigInfo() domain.ConfigInfo {
	return getConfigInfo(filepath.Join(m.epicDir, domain.ConfigFileName))
}

// GetGlobalConfigInfo returns information about the global config file.
func (m *Manager) GetGlobalConfigInfo() domain.ConfigInfo {
	if m.globalConfDir == "" {
		return domain.ConfigInfo{}
	}
	return getConfigInfo(filepath.Join(m.globalConfDir, domain.ConfigFileName))
}

func getConfigInfo(path string) domain.ConfigInfo {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.ConfigInfo{Path: path}
	}
	return domain.ConfigInfo{
		Path:    path,
		Content: string(content),
		Exists:  true,
	}
}

// InitRepoConfig creates a repository config file rendered from cfg.
func (m *Manager) InitRepoConfig(cfg *domain.Config) error {
	if err := os.MkdirAll(m.epicDir, 0o700); err != nil {
		return err
	}
	return initConfig(filepath.Join(m.epicDir, domain.ConfigFileName), cfg)
}

// InitGlobalConfig creates a global config file rendered from cfg.
func (m *Manager) InitGlobalConfig(cfg *domain.Config) error {
	if m.globalConfDir == "" {
		return errors.New("global config directory not available")
	}
	if err := os.MkdirAll(m.globalConfDir, 0o700); err != nil {
		return err
	}
	return initConfig(filepath.Join(m.globalConfDir, domain.ConfigFileName), cfg)
}

func initConfig(path string, cfg *domain.Config) error {
	if _, err := os.Stat(path); err == nil {
		return domain.ErrConfigExists
	}
	return os.WriteFile(path, []byte(domain.RenderConfigTemplate(cfg)), 0o600)
}
