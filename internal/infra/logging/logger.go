// Package logging provides file-based logging for git-epic.
// Entries go to a global log (<state>/logs/git-epic.log) and, when they
// concern an epic, to that epic's log (<state>/logs/epic-N.log).
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/runoshun/git-epic/internal/domain"
)

// Ensure Logger implements domain.Logger interface.
var _ domain.Logger = (*Logger)(nil)

// Logger appends formatted entries to log files under the state directory.
// Fields are ordered to minimize memory padding.
type Logger struct {
	now        func() time.Time
	globalFile *os.File
	epicFiles  map[int]*os.File
	stateDir   string
	mu         sync.Mutex
	level      slog.Level
}

// New creates a Logger writing below stateDir.
// An empty stateDir disables logging.
func New(stateDir string, level slog.Level) *Logger {
	return &Logger{
		now:       time.Now,
		stateDir:  stateDir,
		level:     level,
		epicFiles: make(map[int]*os.File),
	}
}

// ParseLevel parses "debug", "info", "warn" or "error" (any case).
// Unknown values fall back to info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (l *Logger) openLocked(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// write appends entry to the global log and, for epicNumber > 0, the epic log.
func (l *Logger) write(epicNumber int, entry string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.globalFile == nil {
		f, err := l.openLocked(domain.GlobalLogPath(l.stateDir))
		if err != nil {
			return
		}
		l.globalFile = f
	}
	_, _ = io.WriteString(l.globalFile, entry)

	if epicNumber <= 0 {
		return
	}
	f, ok := l.epicFiles[epicNumber]
	if !ok {
		var err error
		f, err = l.openLocked(domain.EpicLogPath(l.stateDir, epicNumber))
		if err != nil {
			return
		}
		l.epicFiles[epicNumber] = f
	}
	_, _ = io.WriteString(f, entry)
}

// Close closes all open log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lastErr error
	if l.globalFile != nil {
		if err := l.globalFile.Close(); err != nil {
			lastErr = err
		}
		l.globalFile = nil
	}
	for n, f := range l.epicFiles {
		if err := f.Close(); err != nil {
			lastErr = err
		}
		delete(l.epicFiles, n)
	}
	return lastErr
}

// formatLog renders one line:
// [2026-10-19 09:32:51] [INFO] [epic-42] [sync] message
func formatLog(t time.Time, level slog.Level, epicNumber int, category, msg string) string {
	scope := "global"
	if epicNumber > 0 {
		scope = fmt.Sprintf("epic-%d", epicNumber)
	}
	return fmt.Sprintf("[%s] [%s] [%s] [%s] %s\n",
		t.Format("2006-01-02 15:04:05"),
		level.String(),
		scope,
		category,
		msg,
	)
}

func (l *Logger) log(level slog.Level, epicNumber int, category, msg string) {
	if l.stateDir == "" || level < l.level {
		return
	}
	l.write(epicNumber, formatLog(l.now(), level, epicNumber, category, msg))
}

// Info logs an info message.
func (l *Logger) Info(epicNumber int, category, msg string) {
	l.log(slog.LevelInfo, epicNumber, category, msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(epicNumber int, category, msg string) {
	l.log(slog.LevelDebug, epicNumber, category, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(epicNumber int, category, msg string) {
	l.log(slog.LevelWarn, epicNumber, category, msg)
}

// Error logs an error message.
func (l *Logger) Error(epicNumber int, category, msg string) {
	l.log(slog.LevelError, epicNumber, category, msg)
}
