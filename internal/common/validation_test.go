package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveExistingPath(t *testing.T) {
	tempDir := t.TempDir()
	file := filepath.Join(tempDir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	t.Run("existing file", func(t *testing.T) {
		abs, info, err := ResolveExistingPath(file)
		require.NoError(t, err)
		assert.Equal(t, file, abs)
		assert.False(t, info.IsDir())
	})

	t.Run("missing path names the path", func(t *testing.T) {
		missing := filepath.Join(tempDir, "nope")
		_, _, err := ResolveExistingPath(missing)
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
		assert.Contains(t, err.Error(), missing)
	})

	t.Run("empty path", func(t *testing.T) {
		_, _, err := ResolveExistingPath("  ")
		assert.True(t, IsInvalidArgument(err))
	})

	t.Run("relative path becomes absolute", func(t *testing.T) {
		abs, _, err := ResolveExistingPath(".")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(abs))
	})
}

func TestResolveDirectory(t *testing.T) {
	tempDir := t.TempDir()
	file := filepath.Join(tempDir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	t.Run("directory", func(t *testing.T) {
		abs, err := ResolveDirectory(tempDir)
		require.NoError(t, err)
		assert.Equal(t, tempDir, abs)
	})

	t.Run("file is rejected", func(t *testing.T) {
		_, err := ResolveDirectory(file)
		assert.True(t, IsInvalidArgument(err))
	})
}

func TestCheckFileSize(t *testing.T) {
	t.Run("at the limit", func(t *testing.T) {
		assert.NoError(t, CheckFileSize("f", 1048576, 1048576))
	})

	t.Run("above the limit", func(t *testing.T) {
		err := CheckFileSize("f", 1048577, 1048576)
		require.Error(t, err)
		assert.True(t, IsLimitExceeded(err))
		assert.Contains(t, err.Error(), "1048577")
		assert.Contains(t, err.Error(), "1048576 byte limit")
	})
}

func TestValidatePositive(t *testing.T) {
	assert.NoError(t, ValidatePositive("max_lines", 1))
	assert.True(t, IsInvalidArgument(ValidatePositive("max_lines", 0)))
	assert.True(t, IsInvalidArgument(ValidatePositive("max_lines", -5)))
}

func TestClampToCeiling(t *testing.T) {
	assert.Equal(t, 5, ClampToCeiling(5, 10))
	assert.Equal(t, 10, ClampToCeiling(50, 10))
}

func TestValidateCommand(t *testing.T) {
	assert.NoError(t, ValidateCommand("ls -la"))
	assert.True(t, IsInvalidArgument(ValidateCommand("")))
	assert.True(t, IsInvalidArgument(ValidateCommand("   ")))
}

func TestCodeOf(t *testing.T) {
	t.Run("wrapped sentinels", func(t *testing.T) {
		assert.Equal(t, CodeNotFound, CodeOf(fmt.Errorf("%w: x", ErrNotFound)))
		assert.Equal(t, CodeLimitExceeded, CodeOf(fmt.Errorf("%w: x", ErrLimitExceeded)))
		assert.Equal(t, CodeExecutionFailure, CodeOf(WrapError(ErrExecutionFailure, "outer")))
	})

	t.Run("os errors", func(t *testing.T) {
		_, err := os.Open(filepath.Join(t.TempDir(), "missing"))
		assert.Equal(t, CodeNotFound, CodeOf(err))
		assert.Equal(t, CodePermissionDenied, CodeOf(fmt.Errorf("x: %w", os.ErrPermission)))
	})

	t.Run("MCPError keeps its code", func(t *testing.T) {
		err := NewMCPError(CodeInvalidArgument, "bad", nil)
		assert.Equal(t, CodeInvalidArgument, CodeOf(fmt.Errorf("wrapped: %w", err)))
		assert.Equal(t, "invalid_argument: bad", err.Error())
	})

	t.Run("unknown errors are internal", func(t *testing.T) {
		assert.Equal(t, CodeInternalFault, CodeOf(assert.AnError))
		assert.Equal(t, ErrorCode(""), CodeOf(nil))
	})
}

func TestClassifyIOError(t *testing.T) {
	assert.True(t, IsPermissionDenied(ClassifyIOError("p", os.ErrPermission)))
	assert.True(t, IsNotFound(ClassifyIOError("p", os.ErrNotExist)))
	err := ClassifyIOError("p", assert.AnError)
	assert.Equal(t, CodeExecutionFailure, CodeOf(err))
	assert.True(t, strings.Contains(err.Error(), "'p'"))
}
