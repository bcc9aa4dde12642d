package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveExistingPath returns the absolute form of path together with its
// stat info. Symlinks are followed.
func ResolveExistingPath(path string) (string, os.FileInfo, error) {
	if strings.TrimSpace(path) == "" {
		return "", nil, fmt.Errorf("%w: empty path", ErrInvalidArgument)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", nil, fmt.Errorf("%w: cannot resolve absolute path for '%s': %v", ErrInvalidArgument, path, err)
	}
	absPath = filepath.Clean(absPath)

	info, err := os.Stat(absPath)
	if err != nil {
		return "", nil, classifyStatError(path, err)
	}

	return absPath, info, nil
}

// ResolveDirectory is ResolveExistingPath restricted to directories.
func ResolveDirectory(path string) (string, error) {
	absPath, info, err := ResolveExistingPath(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: '%s' is not a directory", ErrInvalidArgument, path)
	}
	return absPath, nil
}

func classifyStatError(path string, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: path '%s' does not exist", ErrNotFound, path)
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w: cannot access '%s'", ErrPermissionDenied, path)
	default:
		return fmt.Errorf("%w: cannot stat '%s': %v", ErrExecutionFailure, path, err)
	}
}

// ClassifyIOError maps an error from opening or reading path onto the
// error taxonomy.
func ClassifyIOError(path string, err error) error {
	if errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%w: cannot read '%s'", ErrPermissionDenied, path)
	}
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: path '%s' does not exist", ErrNotFound, path)
	}
	return fmt.Errorf("%w: reading '%s': %v", ErrExecutionFailure, path, err)
}

// CheckFileSize refuses files larger than limit bytes.
func CheckFileSize(path string, size, limit int64) error {
	if size > limit {
		return fmt.Errorf("%w: file '%s' is %d bytes, above the %d byte limit",
			ErrLimitExceeded, path, size, limit)
	}
	return nil
}

func ValidatePositive(name string, n int) error {
	if n < 1 {
		return fmt.Errorf("%w: %s must be at least 1, got %d", ErrInvalidArgument, name, n)
	}
	return nil
}

// ClampToCeiling bounds a caller-supplied count by a server-side ceiling.
func ClampToCeiling(n, ceiling int) int {
	if n > ceiling {
		return ceiling
	}
	return n
}

func ValidateCommand(command string) error {
	if strings.TrimSpace(command) == "" {
		return fmt.Errorf("%w: empty command", ErrInvalidArgument)
	}
	return nil
}
