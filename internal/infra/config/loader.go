// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/runoshun/git-epic/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files.
type Loader struct {
	epicDir       string // Path to .git/epic directory
	globalConfDir string // Path to global config directory (e.g., ~/.config/git-epic)
}

// NewLoader creates a new Loader.
func NewLoader(epicDir string) *Loader {
	return &Loader{
		epicDir:       epicDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(epicDir, globalConfDir string) *Loader {
	return &Loader{
		epicDir:       epicDir,
		globalConfDir: globalConfDir,
	}
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalConfigDir(configHome)
}

// Load returns the merged configuration (defaults <- global <- repo).
// Missing files are skipped.
func (l *Loader) Load() (*domain.Config, error) {
	cfg := domain.NewDefaultConfig()
	if err := l.applyFile(cfg, l.globalPath()); err != nil {
		return nil, err
	}
	if l.epicDir != "" {
		if err := l.applyFile(cfg, filepath.Join(l.epicDir, domain.ConfigFileName)); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadGlobal returns the global configuration merged onto defaults.
func (l *Loader) LoadGlobal() (*domain.Config, error) {
	cfg := domain.NewDefaultConfig()
	if err := l.applyFile(cfg, l.globalPath()); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) globalPath() string {
	if l.globalConfDir == "" {
		return ""
	}
	return filepath.Join(l.globalConfDir, domain.ConfigFileName)
}

// applyFile decodes path and applies its keys onto cfg.
func (l *Loader) applyFile(cfg *domain.Config, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	warnings := applyRaw(cfg, raw)
	for _, w := range warnings {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("%s: %s", path, w))
	}
	return nil
}

// applyRaw copies known keys from raw onto cfg and returns warnings for
// unknown sections, unknown keys and values of the wrong type.
// Keys present in raw override cfg even when their value is zero.
func applyRaw(cfg *domain.Config, raw map[string]any) []string {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	for section, value := range raw {
		m, ok := value.(map[string]any)
		if !ok {
			warn("unknown key: %s", section)
			continue
		}
		switch section {
		case "github":
			for k, v := range m {
				var ok bool
				switch k {
				case "owner":
					ok = setString(&cfg.GitHub.Owner, v)
				case "repo":
					ok = setString(&cfg.GitHub.Repo, v)
				case "api_url":
					ok = setString(&cfg.GitHub.APIURL, v)
				case "token_env":
					ok = setString(&cfg.GitHub.TokenEnv, v)
				case "timeout":
					ok = setDuration(&cfg.GitHub.Timeout, v)
				default:
					warn("unknown key in [github]: %s", k)
					continue
				}
				if !ok {
					warn("invalid value for [github] %s: %v", k, v)
				}
			}
		case "sync":
			for k, v := range m {
				var ok bool
				switch k {
				case "labels":
					ok = setStrings(&cfg.Sync.Labels, v)
				case "retry_delay":
					ok = setDuration(&cfg.Sync.RetryDelay, v)
				case "requests_per_second":
					ok = setFloat(&cfg.Sync.RequestsPerSecond, v)
				default:
					warn("unknown key in [sync]: %s", k)
					continue
				}
				if !ok {
					warn("invalid value for [sync] %s: %v", k, v)
				}
			}
		case "skills":
			for k, v := range m {
				switch k {
				case "registry":
					if !setString(&cfg.Skills.Registry, v) {
						warn("invalid value for [skills] %s: %v", k, v)
					}
				default:
					warn("unknown key in [skills]: %s", k)
				}
			}
		case "state":
			for k, v := range m {
				switch k {
				case "dir":
					if !setString(&cfg.State.Dir, v) {
						warn("invalid value for [state] %s: %v", k, v)
					}
				default:
					warn("unknown key in [state]: %s", k)
				}
			}
		case "log":
			for k, v := range m {
				switch k {
				case "level":
					if !setString(&cfg.Log.Level, v) {
						warn("invalid value for [log] %s: %v", k, v)
					}
				default:
					warn("unknown key in [log]: %s", k)
				}
			}
		default:
			warn("unknown section: %s", section)
		}
	}

	sort.Strings(warnings)
	return warnings
}

func setString(dst *string, v any) bool {
	s, ok := v.(string)
	if ok {
		*dst = s
	}
	return ok
}

func setStrings(dst *[]string, v any) bool {
	items, ok := v.([]any)
	if !ok {
		return false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return false
		}
		out = append(out, s)
	}
	*dst = out
	return true
}

func setDuration(dst *domain.Duration, v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return false
	}
	*dst = domain.Duration(d)
	return true
}

func setFloat(dst *float64, v any) bool {
	var f float64
	switch n := v.(type) {
	case int64:
		f = float64(n)
	case float64:
		f = n
	default:
		return false
	}
	if f < 0 {
		return false
	}
	*dst = f
	return true
}
