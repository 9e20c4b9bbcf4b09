package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// WithTempDir creates a temporary directory, passes it to fn, and removes it
// and everything inside it once fn returns, whether or not fn failed.
// An empty parent uses os.TempDir.
func WithTempDir(parent, pattern string, fn func(dir string) error) (err error) {
	dir, err := os.MkdirTemp(parent, pattern)
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		if removeErr := os.RemoveAll(dir); removeErr != nil && err == nil {
			err = fmt.Errorf("remove temp dir: %w", removeErr)
		}
	}()
	return fn(dir)
}

// Canonical returns the absolute, symlink-resolved form of path. The path
// must exist.
func Canonical(path string) (string, error) {
	if path == "" {
		return "", errors.New("canonical: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("canonical %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("canonical %s: %w", path, err)
	}
	return resolved, nil
}
