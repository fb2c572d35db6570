package domain

import (
	"strings"
	"testing"
	"time"
)

func TestRepoConfigPath(t *testing.T) {
	got := RepoConfigPath("/home/user/project")
	want := "/home/user/project/.git/epic/config.toml"
	if got != want {
		t.Errorf("RepoConfigPath() = %q, want %q", got, want)
	}
}

func TestGlobalConfigPath(t *testing.T) {
	got := GlobalConfigPath("/home/user/.config")
	want := "/home/user/.config/git-epic/config.toml"
	if got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.GitHub.APIURL != DefaultAPIURL {
		t.Errorf("APIURL = %q, want %q", cfg.GitHub.APIURL, DefaultAPIURL)
	}
	if cfg.GitHub.TokenEnv != "GITHUB_TOKEN" {
		t.Errorf("TokenEnv = %q, want GITHUB_TOKEN", cfg.GitHub.TokenEnv)
	}
	if cfg.Sync.RetryDelay.Std() != 2*time.Second {
		t.Errorf("RetryDelay = %v, want 2s", cfg.Sync.RetryDelay.Std())
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if _, _, ok := cfg.Repository(); ok {
		t.Error("Repository() should not be set by default")
	}
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1m30s")); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if d.Std() != 90*time.Second {
		t.Errorf("Std() = %v, want 1m30s", d.Std())
	}

	b, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() error = %v", err)
	}
	if string(b) != "1m30s" {
		t.Errorf("MarshalText() = %q, want 1m30s", b)
	}

	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Error("UnmarshalText(soon) should fail")
	}
}

func TestRenderConfigTemplate(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.GitHub.Owner = "octocat"

	out := RenderConfigTemplate(cfg)

	for _, want := range []string{
		`owner = "octocat"`,
		`# repo = "hello-world"`,
		`api_url = "https://api.github.com"`,
		`retry_delay = "2s"`,
		`requests_per_second = 1`,
		`level = "info"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("template missing %q\n%s", want, out)
		}
	}
}
