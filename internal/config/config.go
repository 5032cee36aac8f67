// Package config provides hierarchical configuration for the gitstage CLI
// using koanf. Values are loaded with priority: environment variables >
// project config (.gitstage/config.yml) > user config
// (~/.config/gitstage/config.yml) > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/gitstage/gitstage/internal/stageflow"
)

// envPrefix is stripped from environment overrides, so GITSTAGE_REMOTE
// sets the "remote" key.
const envPrefix = "GITSTAGE_"

// Configuration holds the tool-level settings. Per-repository stage order
// lives in .gitstage/stageflow.json, not here; DefaultStages only seeds
// newly initialized repositories.
type Configuration struct {
	// DBPath locates the change ledger database. Empty means the default
	// under the user's home directory.
	DBPath string `koanf:"db_path"`

	// DefaultStages seeds the stage list written by `gitstage init` when
	// no --stages flag is given.
	DefaultStages []string `koanf:"default_stages"`

	// Remote names the remote that stage branches track.
	Remote string `koanf:"remote"`

	// SkipConfirmations suppresses interactive prompts, answering every
	// confirmation with its default. Can also be set via GITSTAGE_YES.
	SkipConfirmations bool `koanf:"skip_confirmations"`
}

// LoadOptions configures how configuration is loaded.
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path
	// (default: .gitstage/config.yml).
	ProjectConfigPath string
	// UserConfigPath overrides the user config path, for tests.
	UserConfigPath string
}

// Load loads configuration from user, project, and environment sources.
func Load() (*Configuration, error) {
	return LoadWithOptions(LoadOptions{})
}

// LoadWithOptions loads configuration with custom paths.
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")

	for key, value := range Defaults() {
		k.Set(key, value)
	}

	userPath := opts.UserConfigPath
	if userPath == "" {
		userPath, _ = UserConfigPath()
	}
	if err := loadFileConfig(k, userPath, "user"); err != nil {
		return nil, err
	}

	projectPath := opts.ProjectConfigPath
	if projectPath == "" {
		projectPath = ProjectConfigPath()
	}
	if err := loadFileConfig(k, projectPath, "project"); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment config: %w", err)
	}

	return finalize(k)
}

// loadFileConfig merges one YAML config file if it exists.
func loadFileConfig(k *koanf.Koanf, path, configType string) error {
	if !fileExists(path) {
		return nil
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("loading %s config %s: %w", configType, path, err)
	}
	return nil
}

// finalize unmarshals and validates the merged configuration.
func finalize(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.DBPath = expandHomePath(cfg.DBPath)

	if os.Getenv("GITSTAGE_YES") != "" {
		cfg.SkipConfirmations = true
	}

	return &cfg, nil
}

// Validate checks the merged values before any command runs with them.
func (c *Configuration) Validate() error {
	if c.Remote == "" {
		return fmt.Errorf("config validation failed: remote must not be empty")
	}
	if _, err := stageflow.New(c.DefaultStages); err != nil {
		return fmt.Errorf("config validation failed: default_stages: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys.
// Example: GITSTAGE_DB_PATH -> db_path
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, envPrefix))
}

// expandHomePath expands a leading ~ to the user's home directory.
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
