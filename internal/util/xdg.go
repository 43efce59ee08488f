package util

import (
	"fmt"
	"os"
	"path/filepath"
)

const appDirName = "ocgbuilder"

// GetXDGDataDir returns the XDG data directory for ocgbuilder.
// It respects XDG_DATA_HOME if set, otherwise falls back to ~/.local/share/ocgbuilder
func GetXDGDataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appDirName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".local", "share", appDirName), nil
}

// EnsureXDGDataDir creates the data directory if needed and returns it.
func EnsureXDGDataDir() (string, error) {
	dir, err := GetXDGDataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}
