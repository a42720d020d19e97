package forge

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 10, cfg.MaxConcurrentAgents)
	assert.Equal(t, 30, cfg.MemoryRetentionDays)
	assert.Equal(t, 10000, cfg.MaxMemoryEntries)
	assert.True(t, cfg.EnableCollaboration)
	assert.Equal(t, 5*time.Minute, cfg.WorkflowTimeout)
	assert.False(t, cfg.DebugMode)
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "forge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
maxConcurrentAgents: 4
memoryRetentionDays: 7
maxMemoryEntries: 500
enableCollaboration: false
workflowTimeout: 120000
debugMode: true
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.MaxConcurrentAgents)
	assert.Equal(t, 7, cfg.MemoryRetentionDays)
	assert.Equal(t, 500, cfg.MaxMemoryEntries)
	assert.False(t, cfg.EnableCollaboration)
	assert.Equal(t, 2*time.Minute, cfg.WorkflowTimeout)
	assert.True(t, cfg.DebugMode)
}

func TestLoadConfig_AbsentKeysKeepDefaults(t *testing.T) {
	path := writeConfigFile(t, "maxConcurrentAgents: 3\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.MaxConcurrentAgents)
	assert.Equal(t, 30, cfg.MemoryRetentionDays)
	assert.Equal(t, 10000, cfg.MaxMemoryEntries)
	assert.True(t, cfg.EnableCollaboration)
	assert.Equal(t, 5*time.Minute, cfg.WorkflowTimeout)
}

func TestLoadConfig_InvalidValuesNormalized(t *testing.T) {
	path := writeConfigFile(t, `
maxConcurrentAgents: -1
workflowTimeout: 0
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.MaxConcurrentAgents)
	assert.Equal(t, 5*time.Minute, cfg.WorkflowTimeout)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "maxConcurrentAgents: [not a number\n")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}
