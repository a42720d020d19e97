package forge

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries the recognized forge options.
type Config struct {
	// MaxConcurrentAgents caps the agent registry capacity.
	MaxConcurrentAgents int

	// MemoryRetentionDays is the age threshold for memory eviction.
	MemoryRetentionDays int

	// MaxMemoryEntries is the memory eviction trigger threshold.
	MaxMemoryEntries int

	// EnableCollaboration gates the synergy coordinator.
	EnableCollaboration bool

	// WorkflowTimeout is the deadline enforced per workflow execution.
	WorkflowTimeout time.Duration

	// DebugMode enables verbose diagnostic output. It has no behavioral
	// effect beyond logging.
	DebugMode bool
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentAgents: 10,
		MemoryRetentionDays: 30,
		MaxMemoryEntries:    10000,
		EnableCollaboration: true,
		WorkflowTimeout:     5 * time.Minute,
		DebugMode:           false,
	}
}

// normalize replaces non-positive numeric options with their defaults.
func (c *Config) normalize() {
	defaults := DefaultConfig()
	if c.MaxConcurrentAgents <= 0 {
		c.MaxConcurrentAgents = defaults.MaxConcurrentAgents
	}
	if c.MemoryRetentionDays <= 0 {
		c.MemoryRetentionDays = defaults.MemoryRetentionDays
	}
	if c.MaxMemoryEntries <= 0 {
		c.MaxMemoryEntries = defaults.MaxMemoryEntries
	}
	if c.WorkflowTimeout <= 0 {
		c.WorkflowTimeout = defaults.WorkflowTimeout
	}
}

// configFile is the YAML document shape. The workflow timeout is expressed in
// milliseconds on disk, matching the wire convention of the original system.
type configFile struct {
	MaxConcurrentAgents *int   `yaml:"maxConcurrentAgents"`
	MemoryRetentionDays *int   `yaml:"memoryRetentionDays"`
	MaxMemoryEntries    *int   `yaml:"maxMemoryEntries"`
	EnableCollaboration *bool  `yaml:"enableCollaboration"`
	WorkflowTimeoutMs   *int64 `yaml:"workflowTimeout"`
	DebugMode           *bool  `yaml:"debugMode"`
}

// LoadConfig reads a YAML configuration file, applying defaults for absent
// keys.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	var file configFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if file.MaxConcurrentAgents != nil {
		cfg.MaxConcurrentAgents = *file.MaxConcurrentAgents
	}
	if file.MemoryRetentionDays != nil {
		cfg.MemoryRetentionDays = *file.MemoryRetentionDays
	}
	if file.MaxMemoryEntries != nil {
		cfg.MaxMemoryEntries = *file.MaxMemoryEntries
	}
	if file.EnableCollaboration != nil {
		cfg.EnableCollaboration = *file.EnableCollaboration
	}
	if file.WorkflowTimeoutMs != nil {
		cfg.WorkflowTimeout = time.Duration(*file.WorkflowTimeoutMs) * time.Millisecond
	}
	if file.DebugMode != nil {
		cfg.DebugMode = *file.DebugMode
	}
	cfg.normalize()
	return cfg, nil
}
