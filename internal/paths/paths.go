// Package paths resolves where canvas keeps its config file and database.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DataDirName is the database directory created next to the working
// directory when nothing else names one.
const DataDirName = ".canvas-db"

// appDirName is the directory created under the user config root.
const appDirName = "canvas"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "CANVAS_CONFIG_DIR"
	EnvDataDir   = "CANVAS_DATA_DIR"
)

// userConfigDir is replaced in tests.
var userConfigDir = os.UserConfigDir

// ResolveConfigDir returns the configuration directory:
// flag > CANVAS_CONFIG_DIR > <user config dir>/canvas ($XDG_CONFIG_HOME or
// ~/.config on Linux, ~/Library/Application Support on macOS, %AppData% on
// Windows).
func ResolveConfigDir(flag string) (string, error) {
	if dir, ok := firstSet(flag, os.Getenv(EnvConfigDir)); ok {
		return filepath.Abs(dir)
	}
	base, err := userConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config dir: %w", err)
	}
	return filepath.Join(base, appDirName), nil
}

// ResolveDataDir returns the data directory:
// flag > data_dir from config.yaml > CANVAS_DATA_DIR > $(CWD)/.canvas-db.
// A board lives with the project it describes, so there is no per-user
// default.
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if dir, ok := firstSet(flag, configYAMLValue, os.Getenv(EnvDataDir)); ok {
		return filepath.Abs(dir)
	}
	return filepath.Abs(DataDirName)
}

// firstSet returns the first candidate that is not blank.
func firstSet(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if strings.TrimSpace(c) != "" {
			return c, true
		}
	}
	return "", false
}
