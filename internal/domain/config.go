package domain

import (
	"bytes"
	_ "embed"
	"fmt"
	"path/filepath"
	"strconv"
	"text/template"
	"time"
)

//go:embed config_template.toml
var configTemplateContent string

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Warnings []string     `toml:"-"`
	GitHub   GitHubConfig `toml:"github"`
	Sync     SyncConfig   `toml:"sync"`
	Skills   SkillsConfig `toml:"skills"`
	State    StateConfig  `toml:"state"`
	Log      LogConfig    `toml:"log"`
}

// GitHubConfig holds remote tracker settings from [github] section.
type GitHubConfig struct {
	Owner    string   `toml:"owner,omitempty"`    // Repository owner (default: detected from origin)
	Repo     string   `toml:"repo,omitempty"`     // Repository name (default: detected from origin)
	APIURL   string   `toml:"api_url,omitempty"`  // REST API base URL
	TokenEnv string   `toml:"token_env,omitempty"` // Environment variable holding the API token
	Timeout  Duration `toml:"timeout,omitempty"`  // Per-request timeout
}

// SyncConfig holds sync engine settings from [sync] section.
type SyncConfig struct {
	Labels            []string `toml:"labels,omitempty"`              // Labels added to every created epic issue
	RetryDelay        Duration `toml:"retry_delay,omitempty"`         // Delay before the single retry of a transient failure
	RequestsPerSecond float64  `toml:"requests_per_second,omitempty"` // Pacing of remote calls (0 = unlimited)
}

// SkillsConfig holds skill detection settings from [skills] section.
type SkillsConfig struct {
	Registry string `toml:"registry,omitempty"` // Optional YAML registry replacing the built-in skills
}

// StateConfig holds local state settings from [state] section.
type StateConfig struct {
	Dir string `toml:"dir,omitempty"` // State directory for caches and logs
}

// LogConfig holds logging settings from [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // Log level: debug, info, warn, error
}

// Duration is a time.Duration that reads and writes TOML strings like "2s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default configuration values.
const (
	DefaultLogLevel          = "info"
	DefaultAPIURL            = "https://api.github.com"
	DefaultTokenEnv          = "GITHUB_TOKEN"
	DefaultTimeout           = Duration(15 * time.Second)
	DefaultRetryDelay        = Duration(2 * time.Second)
	DefaultRequestsPerSecond = 1.0
)

// Directory and file names for git-epic.
const (
	AppDirName     = "git-epic"    // Directory name for global config and state
	RepoDirName    = "epic"        // Directory name under .git
	ConfigFileName = "config.toml" // Config file name
)

// NewDefaultConfig returns a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			APIURL:   DefaultAPIURL,
			TokenEnv: DefaultTokenEnv,
			Timeout:  DefaultTimeout,
		},
		Sync: SyncConfig{
			RetryDelay:        DefaultRetryDelay,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Repository returns "owner/repo" when both are configured.
func (c *Config) Repository() (owner, repo string, ok bool) {
	if c.GitHub.Owner == "" || c.GitHub.Repo == "" {
		return "", "", false
	}
	return c.GitHub.Owner, c.GitHub.Repo, true
}

// RepoEpicDir returns the per-repository directory under .git.
func RepoEpicDir(repoRoot string) string {
	return filepath.Join(repoRoot, ".git", RepoDirName)
}

// RepoConfigPath returns the repo config path.
func RepoConfigPath(repoRoot string) string {
	return filepath.Join(RepoEpicDir(repoRoot), ConfigFileName)
}

// GlobalConfigDir returns the global config directory.
// configHome is typically XDG_CONFIG_HOME or ~/.config (resolved by caller).
func GlobalConfigDir(configHome string) string {
	return filepath.Join(configHome, AppDirName)
}

// GlobalConfigPath returns the global config path.
func GlobalConfigPath(configHome string) string {
	return filepath.Join(GlobalConfigDir(configHome), ConfigFileName)
}

// templateData holds all data for rendering the config template.
type templateData struct {
	Owner             string
	Repo              string
	APIURL            string
	TokenEnv          string
	Timeout           string
	RetryDelay        string
	LogLevel          string
	RequestsPerSecond string
}

// RenderConfigTemplate renders a commented config file from cfg.
func RenderConfigTemplate(cfg *Config) string {
	data := templateData{
		Owner:             cfg.GitHub.Owner,
		Repo:              cfg.GitHub.Repo,
		APIURL:            cfg.GitHub.APIURL,
		TokenEnv:          cfg.GitHub.TokenEnv,
		Timeout:           cfg.GitHub.Timeout.Std().String(),
		RetryDelay:        cfg.Sync.RetryDelay.Std().String(),
		RequestsPerSecond: strconv.FormatFloat(cfg.Sync.RequestsPerSecond, 'f', -1, 64),
		LogLevel:          cfg.Log.Level,
	}

	tmpl, err := template.New("config").Delims("<<", ">>").Parse(configTemplateContent)
	if err != nil {
		// Should never happen with embedded template
		panic(fmt.Sprintf("failed to parse config template: %v", err))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		panic(fmt.Sprintf("failed to execute config template: %v", err))
	}
	return buf.String()
}
