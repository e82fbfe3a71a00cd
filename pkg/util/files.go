package util

import (
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// TempFile creates a temporary file with a specific extension
func TempFile(dir, pattern, ext string) (*os.File, error) {
	return os.CreateTemp(dir, pattern+"*"+ext)
}

// TempDir creates a temporary directory under dir
func TempDir(dir, pattern string) (string, error) {
	if dir != "" {
		if err := EnsureDir(dir); err != nil {
			return "", err
		}
	}
	return os.MkdirTemp(dir, pattern)
}

// CleanupFiles removes multiple files, ignoring errors
func CleanupFiles(paths ...string) {
	for _, path := range paths {
		_ = os.Remove(path)
	}
}

// CleanupDir removes a directory tree, ignoring errors
func CleanupDir(path string) {
	if path != "" {
		_ = os.RemoveAll(path)
	}
}

// GetExtension returns the lower-cased file extension including the dot
func GetExtension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
