package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultLogDir returns where logs go when the config does not say:
// ~/.local/share/goesfetch/log.
func DefaultLogDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "goesfetch", "log"), nil
}

// DefaultDataDir returns where the inventory database goes when the config
// does not say: ~/.local/share/goesfetch.
func DefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "goesfetch"), nil
}
