package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local-mcps/devtools-mcp/config"
	"github.com/local-mcps/devtools-mcp/internal/common"
	"github.com/local-mcps/devtools-mcp/internal/filesystem"
	"github.com/local-mcps/devtools-mcp/internal/math"
	"github.com/local-mcps/devtools-mcp/internal/prompts"
	"github.com/local-mcps/devtools-mcp/internal/system"
	"github.com/local-mcps/devtools-mcp/pkg/mcp"
)

type rpcResponse struct {
	ID     int             `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type toolCallResult struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	IsError bool `json:"isError"`
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger, _ := common.NewTestLogger()
	cfg := config.DefaultConfig()

	builder := mcp.NewBuilder()
	math.NewServer(logger).RegisterTools(builder)
	filesystem.NewServer(cfg.Limits, logger).RegisterTools(builder)
	system.NewServer(logger).RegisterResources(builder)
	registry, err := builder.Build(logger, cfg.Metrics.Enabled)
	require.NoError(t, err)

	catalog, err := prompts.Load()
	require.NoError(t, err)

	return NewServer(cfg.Server, registry, catalog, logger)
}

func call(t *testing.T, s *Server, id int, method string, params interface{}) rpcResponse {
	t.Helper()
	req, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	msg := s.MCPServer().HandleMessage(context.Background(), req)
	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	var resp rpcResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	return resp
}

func initialize(t *testing.T, s *Server) {
	t.Helper()
	resp := call(t, s, 1, "initialize", map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"capabilities":    map[string]interface{}{},
		"clientInfo":      map[string]interface{}{"name": "test", "version": "1.0.0"},
	})
	require.Nil(t, resp.Error)
}

func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) toolCallResult {
	t.Helper()
	resp := call(t, s, 2, "tools/call", map[string]interface{}{"name": name, "arguments": args})
	require.Nil(t, resp.Error)

	var result toolCallResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Len(t, result.Content, 1)
	return result
}

func TestInitialize(t *testing.T) {
	s := newTestServer(t)
	resp := call(t, s, 1, "initialize", map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"capabilities":    map[string]interface{}{},
		"clientInfo":      map[string]interface{}{"name": "test", "version": "1.0.0"},
	})
	require.Nil(t, resp.Error)
	assert.Contains(t, string(resp.Result), `"Dev Tools MCP Server"`)
	assert.Contains(t, string(resp.Result), `"tools"`)
	assert.Contains(t, string(resp.Result), `"prompts"`)
}

func TestToolsList(t *testing.T) {
	s := newTestServer(t)
	initialize(t, s)

	resp := call(t, s, 2, "tools/list", map[string]interface{}{})
	require.Nil(t, resp.Error)

	var result struct {
		Tools []struct {
			Name        string                 `json:"name"`
			InputSchema map[string]interface{} `json:"inputSchema"`
			Annotations struct {
				ReadOnlyHint *bool `json:"readOnlyHint"`
			} `json:"annotations"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &result))

	byName := map[string]int{}
	for i, tool := range result.Tools {
		byName[tool.Name] = i
	}
	for _, name := range []string{"add", "multiply", "list_directory", "read_file", "search_files", "get_file_info"} {
		assert.Contains(t, byName, name)
	}

	readFile := result.Tools[byName["read_file"]]
	props := readFile.InputSchema["properties"].(map[string]interface{})
	assert.Equal(t, "integer", props["max_lines"].(map[string]interface{})["type"])
	assert.Equal(t, []interface{}{"path"}, readFile.InputSchema["required"])
	require.NotNil(t, readFile.Annotations.ReadOnlyHint)
	assert.True(t, *readFile.Annotations.ReadOnlyHint)
}

func TestToolsCall(t *testing.T) {
	s := newTestServer(t)
	initialize(t, s)

	t.Run("success payload is JSON text", func(t *testing.T) {
		result := callTool(t, s, "add", map[string]interface{}{"a": 2, "b": 3})
		assert.False(t, result.IsError)

		var payload map[string]float64
		require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &payload))
		assert.Equal(t, 5.0, payload["sum"])
	})

	t.Run("classified error sets isError", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "missing")
		result := callTool(t, s, "list_directory", map[string]interface{}{"path": missing})
		assert.True(t, result.IsError)

		var envelope struct {
			Error struct {
				Kind    string `json:"kind"`
				Message string `json:"message"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &envelope))
		assert.Equal(t, "not_found", envelope.Error.Kind)
		assert.Contains(t, envelope.Error.Message, missing)
	})

	t.Run("schema violation", func(t *testing.T) {
		result := callTool(t, s, "multiply", map[string]interface{}{"a": "two", "b": 3})
		assert.True(t, result.IsError)
		assert.Contains(t, result.Content[0].Text, "invalid_argument")
	})
}

func TestResourcesAndPrompts(t *testing.T) {
	s := newTestServer(t)
	initialize(t, s)

	t.Run("read current directory", func(t *testing.T) {
		resp := call(t, s, 3, "resources/read", map[string]interface{}{"uri": system.CurrentDirectoryURI})
		require.Nil(t, resp.Error)
		assert.Contains(t, string(resp.Result), `\"path\"`)
	})

	t.Run("list prompts", func(t *testing.T) {
		resp := call(t, s, 4, "prompts/list", map[string]interface{}{})
		require.Nil(t, resp.Error)
		assert.Contains(t, string(resp.Result), "code_review")
		assert.Contains(t, string(resp.Result), "ddd_architect")
	})

	t.Run("get prompt", func(t *testing.T) {
		resp := call(t, s, 5, "prompts/get", map[string]interface{}{"name": "git_workflow"})
		require.Nil(t, resp.Error)
		assert.Contains(t, string(resp.Result), "Git Workflow")
	})
}

func TestServeStdio(t *testing.T) {
	s := newTestServer(t)

	inR, inW := io.Pipe()
	var out safeBuffer
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ServeStdio(ctx, inR, &out) }()

	_, err := inW.Write([]byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), `"id":1`)
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	inW.Close()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("stdio transport did not stop")
	}
}

func TestServeHTTP(t *testing.T) {
	s := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ServeHTTP(ctx, ln) }()

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0.0"}}}`
	req, err := http.NewRequest(http.MethodPost, "http://"+ln.Addr().String()+HTTPEndpoint, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "serverInfo")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("http transport did not stop")
	}
}

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
