// Package config handles loading triage.toml configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/mselway/triage/task"
)

// Config represents the triage.toml configuration file.
type Config struct {
	Storage Storage `toml:"storage"`
	Scoring Scoring `toml:"scoring"`
	Tags    []Tag   `toml:"tags"`
}

// Storage contains storage-related configuration.
type Storage struct {
	// DataDir holds the task database and local session files.
	// Defaults to ~/.local/share/triage.
	DataDir string `toml:"data-dir"`
}

// Scoring contains scoring-endpoint configuration.
type Scoring struct {
	// Endpoint is the base URL of the scoring HTTP endpoint. Empty
	// disables remote scoring; local calibrations are used instead.
	Endpoint string `toml:"endpoint"`

	// Listen is the address `triage serve-scores` binds to.
	Listen string `toml:"listen"`
}

// Tag describes a tag seeded into new sessions.
type Tag struct {
	Name  string `toml:"name"`
	Color string `toml:"color"`
}

const defaultListen = "localhost:8135"

// Load loads configuration from dir and the global config file.
// Returns a config with defaults applied if no config files exist.
func Load(dir string) (*Config, error) {
	globalPath, err := globalConfigPath()
	if err != nil {
		return nil, err
	}

	globalCfg, globalMeta, err := loadConfigFile(globalPath)
	if err != nil {
		return nil, err
	}

	projectCfg, projectMeta, err := loadConfigFile(filepath.Join(dir, "triage.toml"))
	if err != nil {
		return nil, err
	}

	merged := mergeConfigs(globalCfg, projectCfg, globalMeta, projectMeta)
	if err := applyDefaults(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

func globalConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "triage", "config.toml"), nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return &cfg, meta, nil
}

func mergeConfigs(globalCfg, projectCfg *Config, globalMeta, projectMeta toml.MetaData) *Config {
	if globalCfg == nil {
		globalCfg = &Config{}
	}
	if projectCfg == nil {
		projectCfg = &Config{}
	}

	merged := Config{}
	merged.Storage.DataDir = mergeString(projectMeta.IsDefined("storage", "data-dir"), projectCfg.Storage.DataDir, globalCfg.Storage.DataDir)
	merged.Scoring.Endpoint = mergeString(projectMeta.IsDefined("scoring", "endpoint"), projectCfg.Scoring.Endpoint, globalCfg.Scoring.Endpoint)
	merged.Scoring.Listen = mergeString(projectMeta.IsDefined("scoring", "listen"), projectCfg.Scoring.Listen, globalCfg.Scoring.Listen)
	if projectMeta.IsDefined("tags") {
		merged.Tags = append([]Tag(nil), projectCfg.Tags...)
	} else if globalMeta.IsDefined("tags") {
		merged.Tags = append([]Tag(nil), globalCfg.Tags...)
	}

	return &merged
}

func mergeString(projectDefined bool, projectValue, globalValue string) string {
	value := globalValue
	if projectDefined {
		value = projectValue
	}
	return strings.TrimSpace(value)
}

func applyDefaults(cfg *Config) error {
	if cfg.Storage.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("get home directory: %w", err)
		}
		cfg.Storage.DataDir = filepath.Join(homeDir, ".local", "share", "triage")
	}
	if cfg.Scoring.Listen == "" {
		cfg.Scoring.Listen = defaultListen
	}
	return nil
}

// DefaultTags returns the seed tag set: the configured tags when any
// are defined, the built-in set otherwise.
func (c *Config) DefaultTags() []task.Tag {
	if len(c.Tags) == 0 {
		tags := make([]task.Tag, 0, len(task.DefaultTags()))
		for _, def := range task.DefaultTags() {
			tags = append(tags, task.Tag{Name: def.Name, Color: def.Color})
		}
		return tags
	}
	tags := make([]task.Tag, 0, len(c.Tags))
	for _, t := range c.Tags {
		tags = append(tags, task.Tag{Name: t.Name, Color: t.Color})
	}
	return tags
}
