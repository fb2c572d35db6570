package domain

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// StateDir returns the default state directory.
// stateHome is typically XDG_STATE_HOME or ~/.local/state (resolved by caller).
func StateDir(stateHome string) string {
	return filepath.Join(stateHome, AppDirName)
}

// CachePath returns the path of the epic cache for owner/repo.
// Callers must validate owner and repo with ValidateRepoRef first.
func CachePath(stateDir, owner, repo string) string {
	return filepath.Join(stateDir, "cache", owner, repo+".json")
}

// EpicLogPath returns the path to the per-epic log file.
func EpicLogPath(stateDir string, epicNumber int) string {
	return filepath.Join(stateDir, "logs", fmt.Sprintf("epic-%d.log", epicNumber))
}

// GlobalLogPath returns the path to the global log file.
func GlobalLogPath(stateDir string) string {
	return filepath.Join(stateDir, "logs", "git-epic.log")
}

// repoSegmentPattern matches GitHub owner and repository names.
var repoSegmentPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateRepoRef checks that owner and repo are safe to use as path segments.
func ValidateRepoRef(owner, repo string) error {
	for _, seg := range []string{owner, repo} {
		if seg == "" || seg == "." || seg == ".." || !repoSegmentPattern.MatchString(seg) {
			return fmt.Errorf("%w: invalid repository %q", ErrValidation, owner+"/"+repo)
		}
	}
	return nil
}

// remotePatterns match https, ssh and scp-like remote URLs.
var remotePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?:https?|ssh|git)://(?:[^@/]+@)?[^/]+/([^/]+)/([^/]+?)(?:\.git)?/?$`),
	regexp.MustCompile(`^[^@/]+@[^:]+:([^/]+)/([^/]+?)(?:\.git)?/?$`),
}

// ParseRemoteURL extracts owner and repository from a git remote URL.
// Returns false for URLs that do not follow the host/owner/repo layout.
func ParseRemoteURL(url string) (owner, repo string, ok bool) {
	url = strings.TrimSpace(url)
	for _, re := range remotePatterns {
		if m := re.FindStringSubmatch(url); m != nil {
			if ValidateRepoRef(m[1], m[2]) != nil {
				return "", "", false
			}
			return m[1], m[2], true
		}
	}
	return "", "", false
}
