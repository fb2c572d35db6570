package usecase

import (
	"context"

	"github.com/runoshun/git-epic/internal/domain"
)

// InitConfigInput contains the input for the InitConfig use case.
type InitConfigInput struct {
	Owner  string // Pre-filled [github] owner (optional)
	Repo   string // Pre-filled [github] repo (optional)
	Global bool   // If true, initialize global config; otherwise repository config
}

// InitConfigOutput contains the output of the InitConfig use case.
type InitConfigOutput struct {
	Path string // Path to the created config file
}

// InitConfig writes a commented configuration file.
type InitConfig struct {
	configManager domain.ConfigManager
}

// NewInitConfig creates a new InitConfig use case.
func NewInitConfig(configManager domain.ConfigManager) *InitConfig {
	return &InitConfig{configManager: configManager}
}

// Execute creates the config file. An existing file yields domain.ErrConfigExists.
func (uc *InitConfig) Execute(_ context.Context, in InitConfigInput) (*InitConfigOutput, error) {
	cfg := domain.NewDefaultConfig()

	if in.Global {
		path := uc.configManager.GetGlobalConfigInfo().Path
		if err := uc.configManager.InitGlobalConfig(cfg); err != nil {
			return nil, err
		}
		return &InitConfigOutput{Path: path}, nil
	}

	if in.Owner != "" && in.Repo != "" {
		if err := domain.ValidateRepoRef(in.Owner, in.Repo); err != nil {
			return nil, err
		}
		cfg.GitHub.Owner = in.Owner
		cfg.GitHub.Repo = in.Repo
	}
	path := uc.configManager.GetRepoConfigInfo().Path
	if err := uc.configManager.InitRepoConfig(cfg); err != nil {
		return nil, err
	}
	return &InitConfigOutput{Path: path}, nil
}
