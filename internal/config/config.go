// Package config loads tool configuration from a YAML or JSON file.
// Format is detected by extension or content, so both .crosshatch.yaml
// and .crosshatch.json work.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultCaseDBPath is the default relative path for the case SQLite DB.
const DefaultCaseDBPath = ".crosshatch/case.db"

// Config is the tool configuration shared by CLI commands and the server.
type Config struct {
	// CaseDB is the path to the per-case SQLite database.
	CaseDB string `yaml:"case_db" json:"case_db"`
	// RepoDB is the path to the central repository SQLite database.
	RepoDB string `yaml:"repo_db" json:"repo_db"`
	// Parallel bounds ingest worker concurrency. 1 = serial.
	Parallel int `yaml:"parallel" json:"parallel"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format" json:"log_format"`
}

// Default returns a Config with all defaults applied.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.CaseDB == "" {
		c.CaseDB = DefaultCaseDBPath
	}
	if c.RepoDB == "" {
		c.RepoDB = ".crosshatch/centralrepo.db"
	}
	if c.Parallel <= 0 {
		c.Parallel = 1
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
}

// LoadFromPath reads a config file (YAML or JSON) and returns the parsed
// Config with defaults applied.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Load(data, filepath.Ext(path))
}

// Load parses config from bytes. ext is the file extension (e.g. ".json",
// ".yaml") for format hint; empty = detect from content.
func Load(data []byte, ext string) (*Config, error) {
	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}

	var c Config
	switch ext {
	case ".yaml":
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse config json: %w", err)
		}
	default:
		// Detect: JSON starts with "{", anything else is YAML.
		trimmed := strings.TrimSpace(string(data))
		if strings.HasPrefix(trimmed, "{") {
			if err := json.Unmarshal(data, &c); err != nil {
				return nil, fmt.Errorf("parse config json: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(data, &c); err != nil {
				return nil, fmt.Errorf("parse config yaml: %w", err)
			}
		}
	}
	c.applyDefaults()
	return &c, nil
}
