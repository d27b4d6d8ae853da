// Package paths provides a single source of truth for qwery file paths.
// All path helpers honor environment variable overrides for isolated testing.
//
// Path resolution precedence:
//  1. QWERY_DIR sets the base directory (derives config, log and history paths)
//  2. Default behavior (~/.qwery, ~/.config/qwery) when it is not set
package paths

import (
	"os"
	"path/filepath"
)

// EnvQweryDir is the base directory override (e.g., /tmp/qwery-e2e).
// When set, the config, log and history paths derive from this directory.
const EnvQweryDir = "QWERY_DIR"

// BaseDir returns the qwery base directory (~/.qwery by default).
// Honors QWERY_DIR environment variable.
func BaseDir() (string, error) {
	if dir := os.Getenv(EnvQweryDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".qwery"), nil
}

// ConfigDir returns the qwery config directory (~/.config/qwery by default).
// When QWERY_DIR is set, returns QWERY_DIR/config instead.
func ConfigDir() (string, error) {
	if dir := os.Getenv(EnvQweryDir); dir != "" {
		return filepath.Join(dir, "config"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "qwery"), nil
}

// ConfigPath returns the path to the qwery config file.
// (~/.config/qwery/config.toml by default, or QWERY_DIR/config/config.toml).
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LogPath returns the log file path (~/.qwery/qwery.log by default).
func LogPath() string {
	base, err := BaseDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "qwery.log")
	}
	return filepath.Join(base, "qwery.log")
}

// HistoryPath returns the prompt history and stash file
// (~/.qwery/history.yaml by default).
func HistoryPath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "history.yaml"), nil
}
