package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/git-epic/internal/testutil"
)

func TestNewRootCommand_ShowsGroups(t *testing.T) {
	root := NewRootCommand(nil, "test-version")
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"--help"})

	require.NoError(t, root.Execute())
	out := buf.String()
	assert.Contains(t, out, "Setup Commands:")
	assert.Contains(t, out, "Epic Management:")
	assert.Contains(t, out, "Journey & Completion:")
	assert.Contains(t, out, "Synchronization:")
}

func TestNewRootCommand_PrintsConfigWarnings(t *testing.T) {
	container := newTestContainer(testutil.NewMockCacheStore(nil), nil)
	container.AppConfig.Warnings = []string{"config.toml: unknown key in [github]: colour"}

	root := NewRootCommand(container, "test-version")
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"epic", "list"})

	require.NoError(t, root.Execute())
	assert.Contains(t, stderr.String(), "Warning: config.toml: unknown key in [github]: colour")
	assert.Contains(t, stdout.String(), "No epics found")
}

func TestNewRootCommand_NilContainer(t *testing.T) {
	root := NewRootCommand(nil, "test-version")
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"sync"})

	assert.Error(t, root.Execute())
}
