// Package config loads the pipeline settings from viper and expands
// filesystem paths used for the database and model artifacts.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves a ~ prefix to the user's home directory and
// substitutes $VAR style environment variables. The path is returned
// unchanged when the home directory cannot be determined.
func ExpandPath(path string) string {
	switch {
	case path == "":
		return ""
	case path == "~":
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	case strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~/"))
		}
	}

	return os.ExpandEnv(path)
}
