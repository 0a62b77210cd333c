package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-library/internal/adapters/driving/mcp"
)

// stubServe replaces the MCP runner for the duration of a test.
func stubServe(t *testing.T, run func(ctx context.Context, server *mcp.Server, addr string) error) {
	t.Helper()
	prev := serveMCP
	serveMCP = run
	t.Cleanup(func() { serveMCP = prev })
}

func TestMCPCmd_HelpOutput(t *testing.T) {
	out, err := runCLI(t, "mcp", "serve", "--help")

	require.NoError(t, err)
	assert.Contains(t, out, "Model Context Protocol")
	assert.Contains(t, out, "--port")
}

func TestMCPServe_Stdio(t *testing.T) {
	setupTestServices(t)
	var gotAddr = "unset"
	var server *mcp.Server
	stubServe(t, func(_ context.Context, s *mcp.Server, addr string) error {
		server, gotAddr = s, addr
		return nil
	})

	out, err := runCLI(t, "mcp", "serve")

	require.NoError(t, err)
	assert.NotNil(t, server)
	assert.Empty(t, gotAddr)
	assert.Empty(t, out)
}

func TestMCPServe_HTTP(t *testing.T) {
	setupTestServices(t)
	var gotAddr string
	stubServe(t, func(_ context.Context, _ *mcp.Server, addr string) error {
		gotAddr = addr
		return nil
	})

	out, err := runCLI(t, "mcp", "serve", "-p", "8123")

	require.NoError(t, err)
	assert.Equal(t, ":8123", gotAddr)
	assert.Contains(t, out, "http://localhost:8123")
}

func TestMCPServe_RequiresLibrary(t *testing.T) {
	setupTestServices(t)
	libraryService = nil
	stubServe(t, func(context.Context, *mcp.Server, string) error {
		t.Fatal("server must not start")
		return nil
	})

	_, err := runCLI(t, "mcp", "serve")

	assert.Error(t, err)
}
