package integration_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/ganot/hrv-ingest/internal/testserver"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// serverBinary locates the built server or skips the test.
func serverBinary(t *testing.T) string {
	t.Helper()
	for _, path := range []string{"./bin/hrv-server", "../../bin/hrv-server"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	t.Skip("Server binary not found. Run 'make build' first.")
	return ""
}

func stdioEnv(root string) []string {
	return append(os.Environ(),
		"HRV_TRANSPORT=stdio",
		"HRV_DB_PATH=:memory:",
		"HRV_METRICS_ENABLED=false",
		"HRV_INGEST_ROOT="+root,
	)
}

// TestStdioProtocolCompliance verifies the server works correctly over stdio transport
// using the official MCP SDK client.
func TestStdioProtocolCompliance(t *testing.T) {
	binaryPath := serverBinary(t)
	root := t.TempDir()
	testserver.WriteSessionTree(t, root)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, binaryPath)
	cmd.Env = stdioEnv(root)

	// Spawn server as subprocess using SDK's CommandTransport
	transport := &sdkmcp.CommandTransport{
		Command: cmd,
	}

	client := sdkmcp.NewClient(&sdkmcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	require.NoError(t, err, "Failed to connect to server")
	defer session.Close()

	t.Run("ServerInfo", func(t *testing.T) {
		initResult := session.InitializeResult()
		require.NotNil(t, initResult)
		require.NotNil(t, initResult.ServerInfo)
		require.Equal(t, "hrv-ingest", initResult.ServerInfo.Name)
		require.Equal(t, "0.1.0", initResult.ServerInfo.Version)
	})

	t.Run("ListTools", func(t *testing.T) {
		tools, err := session.ListTools(ctx, nil)
		require.NoError(t, err, "tools/list failed")

		toolNames := make(map[string]bool)
		for _, tool := range tools.Tools {
			toolNames[tool.Name] = true
		}
		for _, name := range []string{
			"list_users",
			"get_user",
			"list_measurements",
			"get_raw_samples",
			"get_processed_metrics",
			"get_ingest_log",
			"ingest_path",
		} {
			require.True(t, toolNames[name], "Missing expected tool: %s", name)
		}
	})

	t.Run("IngestThenListUsers", func(t *testing.T) {
		result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "ingest_path", Arguments: map[string]any{}})
		require.NoError(t, err, "tools/call ingest_path failed")
		require.False(t, result.IsError, "ingest_path returned error: %v", result)

		result, err = session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "list_users", Arguments: map[string]any{}})
		require.NoError(t, err, "tools/call list_users failed")
		require.False(t, result.IsError, "list_users returned error: %v", result)
		require.NotEmpty(t, result.Content)

		text, ok := result.Content[0].(*sdkmcp.TextContent)
		require.True(t, ok)
		var out struct {
			Users []struct {
				ID int64 `json:"id"`
			} `json:"users"`
		}
		require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
		require.Len(t, out.Users, 1)
		require.Equal(t, int64(testserver.UserID), out.Users[0].ID)
	})
}

// TestStdioProtocol_StdoutHygiene checks that stdout carries only JSON-RPC
// messages while logs go to stderr.
func TestStdioProtocol_StdoutHygiene(t *testing.T) {
	binaryPath := serverBinary(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, binaryPath)
	cmd.Env = append(stdioEnv(t.TempDir()), "HRV_LOG_LEVEL=debug")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	require.NoError(t, err)
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())
	t.Cleanup(func() {
		_ = stdin.Close()
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	})

	initReq := `{"jsonrpc":"2.0","method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}},"id":1}`
	_, err = stdin.Write([]byte(initReq + "\n"))
	require.NoError(t, err)

	lines := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(stdout).ReadString('\n')
		lines <- line
	}()

	select {
	case line := <-lines:
		var msg struct {
			JSONRPC string          `json:"jsonrpc"`
			ID      int             `json:"id"`
			Result  json.RawMessage `json:"result"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &msg), "stdout line is not JSON: %q", line)
		require.Equal(t, "2.0", msg.JSONRPC)
		require.Equal(t, 1, msg.ID)
		require.NotEmpty(t, msg.Result)
	case <-ctx.Done():
		t.Fatal("Timeout waiting for server response")
	}
}
