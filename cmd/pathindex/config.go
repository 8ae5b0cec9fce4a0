// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is looked up in the index root. The file is optional;
// defaults apply when it is absent.
const ConfigFileName = ".pathindex.yaml"

// Config is the tool configuration, loaded from ConfigFileName.
type Config struct {
	// Store selects and locates the persistence backend.
	Store StoreConfig `yaml:"store"`

	// DefaultCategory is used by register commands when --category is
	// not given.
	DefaultCategory string `yaml:"default_category" validate:"omitempty,min=1"`

	// Ignore lists protected paths that delete and unregister
	// operations skip.
	Ignore []string `yaml:"ignore"`

	// Log configures diagnostics output.
	Log LogConfig `yaml:"log"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	// Backend is "file" (single JSON file) or "badger" (embedded
	// database with snapshot history).
	Backend string `yaml:"backend" validate:"omitempty,oneof=file badger"`

	// Path overrides the backend's default location, relative to the
	// index root unless absolute.
	Path string `yaml:"path"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Dir   string `yaml:"dir"`
	JSON  bool   `yaml:"json"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Store:           StoreConfig{Backend: "file"},
		DefaultCategory: "default",
		Log:             LogConfig{Level: "info"},
	}
}

// LoadConfig reads and validates the config file in root. A missing
// file yields the defaults; a malformed or invalid file is an error.
func LoadConfig(root string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filepath.Join(root, ConfigFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read %s: %w", ConfigFileName, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", ConfigFileName, err)
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "file"
	}
	if cfg.DefaultCategory == "" {
		cfg.DefaultCategory = "default"
	}

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid %s: %w", ConfigFileName, err)
	}
	return cfg, nil
}
