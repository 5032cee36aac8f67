package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns the path to the user-level config file,
// following the XDG Base Directory Specification:
// - Linux: ~/.config/gitstage/config.yml
// - macOS: ~/Library/Application Support/gitstage/config.yml
// - Windows: %APPDATA%\gitstage\config.yml
func UserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "gitstage", "config.yml"), nil
}

// ProjectConfigPath returns the path to the project-level config file,
// always .gitstage/config.yml relative to the current directory.
func ProjectConfigPath() string {
	return filepath.Join(".gitstage", "config.yml")
}

// ProjectConfigDir returns the path to the project-level config directory.
func ProjectConfigDir() string {
	return ".gitstage"
}
