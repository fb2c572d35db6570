package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/git-epic/internal/domain"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func newFixedLogger(t *testing.T, level slog.Level) (*Logger, string) {
	t.Helper()
	stateDir := t.TempDir()
	logger := New(stateDir, level)
	logger.now = func() time.Time { return time.Date(2026, 10, 19, 9, 32, 51, 0, time.UTC) }
	t.Cleanup(func() { _ = logger.Close() })
	return logger, stateDir
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestLogger_EpicEntry(t *testing.T) {
	logger, stateDir := newFixedLogger(t, slog.LevelInfo)

	logger.Info(42, "sync", "updated issue")

	want := "[2026-10-19 09:32:51] [INFO] [epic-42] [sync] updated issue\n"
	assert.Equal(t, want, readLog(t, domain.GlobalLogPath(stateDir)))
	assert.Equal(t, want, readLog(t, domain.EpicLogPath(stateDir, 42)))
}

func TestLogger_GlobalOnly(t *testing.T) {
	logger, stateDir := newFixedLogger(t, slog.LevelInfo)

	logger.Warn(0, "config", "unknown key")

	assert.Contains(t, readLog(t, domain.GlobalLogPath(stateDir)), "[WARN] [global] [config] unknown key")
	_, err := os.Stat(domain.EpicLogPath(stateDir, 0))
	assert.True(t, os.IsNotExist(err))
}

func TestLogger_LevelFiltering(t *testing.T) {
	logger, stateDir := newFixedLogger(t, slog.LevelWarn)

	logger.Debug(0, "x", "debug")
	logger.Info(0, "x", "info")
	logger.Warn(0, "x", "warn")
	logger.Error(0, "x", "error")

	lines := strings.Split(strings.TrimSpace(readLog(t, domain.GlobalLogPath(stateDir))), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[WARN]")
	assert.Contains(t, lines[1], "[ERROR]")
}

func TestLogger_Appends(t *testing.T) {
	logger, stateDir := newFixedLogger(t, slog.LevelDebug)

	logger.Info(7, "journey", "first")
	require.NoError(t, logger.Close())
	logger.Debug(7, "journey", "second")

	content := readLog(t, domain.EpicLogPath(stateDir, 7))
	assert.Equal(t, 2, strings.Count(content, "\n"))
	assert.Contains(t, content, "[DEBUG] [epic-7] [journey] second")
}

func TestLogger_Disabled(t *testing.T) {
	logger := New("", slog.LevelDebug)

	logger.Error(1, "x", "dropped")

	assert.NoError(t, logger.Close())
}

func TestLogger_FileMode(t *testing.T) {
	logger, stateDir := newFixedLogger(t, slog.LevelInfo)

	logger.Info(0, "x", "y")

	info, err := os.Stat(filepath.Join(stateDir, "logs", "git-epic.log"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
