package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileName is the config file name inside ConfigDir.
const DefaultFileName = "config.yaml"

// ConfigDir returns the path to the Fayol config directory (~/.fayol).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".fayol"), nil
}

// EnsureConfigDir creates the config directory if it does not exist.
func EnsureConfigDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}
	return dir, nil
}

// DefaultPath returns the path of name inside the config directory. An
// absolute name is returned as-is; an empty name means DefaultFileName.
func DefaultPath(name string) (string, error) {
	if name == "" {
		name = DefaultFileName
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
