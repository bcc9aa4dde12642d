package system

import (
	"context"
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local-mcps/devtools-mcp/internal/common"
	"github.com/local-mcps/devtools-mcp/pkg/mcp"
)

func newTestServer() *Server {
	logger, _ := common.NewTestLogger()
	return NewServer(logger)
}

func TestCurrentDirectory(t *testing.T) {
	result, err := newTestServer().handleCurrentDirectory(context.Background())
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"path": wd}, result)
}

func TestSystemInfo(t *testing.T) {
	result, err := newTestServer().handleSystemInfo(context.Background())
	require.NoError(t, err)

	info := result.(SystemInfo)
	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, runtime.GOARCH, info.Arch)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.NumCPU(), info.NumCPU)
	assert.NotEmpty(t, info.Executable)
	assert.NotEmpty(t, info.DefaultShell)
}

func TestDefaultShell(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix shell lookup")
	}

	t.Run("from SHELL", func(t *testing.T) {
		t.Setenv("SHELL", "/usr/bin/zsh")
		assert.Equal(t, "/usr/bin/zsh", DefaultShell())
	})

	t.Run("fallback", func(t *testing.T) {
		t.Setenv("SHELL", "")
		assert.Equal(t, "/bin/sh", DefaultShell())
	})
}

func TestRegisterResources(t *testing.T) {
	logger, _ := common.NewTestLogger()
	builder := mcp.NewBuilder()
	newTestServer().RegisterResources(builder)
	reg, err := builder.Build(logger, false)
	require.NoError(t, err)

	resources := reg.Resources()
	require.Len(t, resources, 2)
	assert.Equal(t, CurrentDirectoryURI, resources[0].URI)
	assert.Equal(t, SystemInfoURI, resources[1].URI)

	result := reg.ReadResource(context.Background(), CurrentDirectoryURI)
	require.False(t, result.IsError())
	assert.Contains(t, result.Text(), `"path"`)
}
