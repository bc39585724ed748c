package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideDirectory is returned for paths that escape the configured directory
var ErrOutsideDirectory = errors.New("path is outside configured directory")

// PathValidator confines tool paths to the configured PDF directory
type PathValidator struct {
	configuredDirectory string
	realDirectory       string
}

// NewPathValidator creates a new path validator for the given directory
func NewPathValidator(configuredDirectory string) (*PathValidator, error) {
	if configuredDirectory == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}

	absDir, err := filepath.Abs(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configured directory: %w", err)
	}

	return &PathValidator{
		configuredDirectory: absDir,
		realDirectory:       realPath(absDir),
	}, nil
}

// GetConfiguredDirectory returns the absolute configured directory
func (v *PathValidator) GetConfiguredDirectory() string {
	return v.configuredDirectory
}

// NormalizePath returns the absolute form of path, resolving relative paths
// against the configured directory. The result must lie inside it.
func (v *PathValidator) NormalizePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("path contains a NUL byte")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.configuredDirectory, path)
	}
	path = filepath.Clean(path)

	if !v.IsPathWithinDirectory(path) {
		return "", fmt.Errorf("%w: %s", ErrOutsideDirectory, path)
	}

	return path, nil
}

// IsPathWithinDirectory reports whether an absolute path, and the file it
// points at after symlink resolution, both lie inside the configured directory.
// Paths that do not exist yet are judged by their nearest existing parent.
func (v *PathValidator) IsPathWithinDirectory(path string) bool {
	clean := filepath.Clean(path)
	if !within(v.configuredDirectory, clean) && !within(v.realDirectory, clean) {
		return false
	}

	return within(v.realDirectory, realPath(clean))
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// realPath resolves symlinks in the longest existing prefix of path
func realPath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}

	parent := filepath.Dir(path)
	if parent == path {
		return path
	}
	if _, err := os.Lstat(path); err == nil {
		// dangling symlink, never within any directory
		return ""
	}

	return filepath.Join(realPath(parent), filepath.Base(path))
}
