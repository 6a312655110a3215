// Package config loads the front desk configuration through viper.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// AppName names the configuration directory and environment prefix.
const AppName = "frontdesk"

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// DefaultDir returns ~/.config/frontdesk.
func DefaultDir() string {
	return ExpandPath(filepath.Join("~", ".config", AppName))
}
