// Package paths resolves configuration, data, source, and cache directory
// locations for the grimoire CLI.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// CWD-relative directory names.
const (
	DefaultDataDirName   = ".grimoire-db"
	DefaultSourceDirName = "data/classes"
	DefaultCacheDirName  = "cache"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "GRIMOIRE_CONFIG_DIR"
	EnvDataDir   = "GRIMOIRE_DATA_DIR"
	EnvSourceDir = "GRIMOIRE_SOURCE_DIR"
	EnvCacheDir  = "GRIMOIRE_CACHE_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/grimoire (fallback ~/.config/grimoire)
// macOS:   ~/Library/Application Support/grimoire
// Windows: %APPDATA%/grimoire
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "grimoire"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "grimoire"), nil
	default:
		// macOS and Windows use os.UserConfigDir which returns
		// ~/Library/Application Support on macOS and %APPDATA% on Windows.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "grimoire"), nil
	}
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > GRIMOIRE_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > config.yaml value > GRIMOIRE_DATA_DIR env > $(CWD)/.grimoire-db.
func ResolveDataDir(flag, configValue string) (string, error) {
	return resolveDir(flag, configValue, EnvDataDir, DefaultDataDirName)
}

// ResolveSourceDir returns the class source directory following the
// precedence chain: flag > config.yaml value > GRIMOIRE_SOURCE_DIR env >
// $(CWD)/data/classes.
func ResolveSourceDir(flag, configValue string) (string, error) {
	return resolveDir(flag, configValue, EnvSourceDir, DefaultSourceDirName)
}

// ResolveCacheDir returns the cache artifact directory following the
// precedence chain: flag > config.yaml value > GRIMOIRE_CACHE_DIR env >
// $(CWD)/cache.
func ResolveCacheDir(flag, configValue string) (string, error) {
	return resolveDir(flag, configValue, EnvCacheDir, DefaultCacheDirName)
}

// resolveDir applies the shared precedence chain with a CWD-relative default.
func resolveDir(flag, configValue, envName, defaultName string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(envName); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, filepath.FromSlash(defaultName)), nil
}
