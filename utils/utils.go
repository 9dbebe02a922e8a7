// Package utils provides small helpers shared by the CLI and the UI.
package utils

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// ExpandPath expands tilde and all environment variables from the given path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}
	s, err := homedir.Expand(path)
	if err == nil {
		return os.ExpandEnv(s)
	}
	return os.ExpandEnv(path)
}

// HasExt reports whether path has a file extension.
func HasExt(path string) bool {
	return filepath.Ext(path) != ""
}
