package config

import (
	"os"
	"path/filepath"
)

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// DefaultConfigPath returns the per-user TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), AppName, "config.toml")
}

// SearchPaths lists the config file locations tried when none is given,
// in order. The first existing file wins.
func SearchPaths() []string {
	return []string{
		"yamazumi.yaml",
		"yamazumi.toml",
		filepath.Join("configs", "yamazumi.yaml"),
		DefaultConfigPath(),
	}
}

// findConfigFile returns the first existing entry of SearchPaths, or "".
func findConfigFile() string {
	for _, location := range SearchPaths() {
		if info, err := os.Stat(location); err == nil && info.Mode().IsRegular() {
			return location
		}
	}
	return ""
}
