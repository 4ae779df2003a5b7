// Copyright (c) 2025 The ldapskit Authors. All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileEnvVar names the environment variable pointing at an optional
// configuration file. Supported extensions: .json, .yaml, .yml.
const ConfigFileEnvVar = "LDAPS_RETRIEVER_CONFIG_FILE"

// configFormat represents supported configuration file formats.
type configFormat int

const (
	// configFormatJSON represents JSON configuration format (.json)
	configFormatJSON configFormat = iota
	// configFormatYAML represents YAML configuration format (.yaml, .yml)
	configFormatYAML
)

// Config holds retriever defaults that would otherwise be repeated on every
// invocation, plus the known-good endpoint list used by the --test harness.
type Config struct {
	// Defaults: settings applied when the corresponding flag is not given.
	Defaults struct {
		// TimeoutSeconds bounds connect and handshake per attempt.
		TimeoutSeconds int `json:"timeoutSeconds" yaml:"timeoutSeconds"`
		// Format is the default bundle format: "pem" or "der".
		Format string `json:"format" yaml:"format"`
	} `json:"defaults" yaml:"defaults"`

	// TestServers lists host:port endpoints for the diagnostic harness.
	// Evaluated sequentially; the first success provides the bundle.
	TestServers []string `json:"testServers" yaml:"testServers"`
}

// Default returns the built-in configuration: a 10 second timeout, PEM
// output, and the public reference LDAPS endpoints.
func Default() *Config {
	cfg := &Config{
		TestServers: []string{
			"ldap.google.com:636",
			"ldap.forumsys.com:636",
		},
	}
	cfg.Defaults.TimeoutSeconds = 10
	cfg.Defaults.Format = "pem"
	return cfg
}

// Load reads the configuration file named by LDAPS_RETRIEVER_CONFIG_FILE,
// falling back to Default when the variable is unset. Missing values are
// filled from the defaults.
func Load() (*Config, error) {
	path := os.Getenv(ConfigFileEnvVar)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads and parses a JSON or YAML configuration file, detected by
// extension, applying defaults for any missing values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	cfg := &Config{}
	if err := unmarshalConfig(data, cfg, detectConfigFormat(path)); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	return cfg, nil
}

// Timeout returns the configured per-attempt timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Defaults.TimeoutSeconds) * time.Second
}

// detectConfigFormat determines the configuration file format based on
// file extension, case-insensitively.
func detectConfigFormat(configPath string) configFormat {
	ext := strings.ToLower(filepath.Ext(configPath))
	switch ext {
	case ".yaml", ".yml":
		return configFormatYAML
	default:
		return configFormatJSON
	}
}

// unmarshalConfig unmarshals configuration data based on the specified format.
func unmarshalConfig(data []byte, cfg *Config, format configFormat) error {
	switch format {
	case configFormatYAML:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("config: failed to parse YAML config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("config: failed to parse JSON config file: %w", err)
		}
	}
	return nil
}

// applyDefaults fills unset fields from the built-in configuration.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Defaults.TimeoutSeconds <= 0 {
		cfg.Defaults.TimeoutSeconds = def.Defaults.TimeoutSeconds
	}
	if cfg.Defaults.Format == "" {
		cfg.Defaults.Format = def.Defaults.Format
	}
	if len(cfg.TestServers) == 0 {
		cfg.TestServers = def.TestServers
	}
}
