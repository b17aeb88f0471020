// Package mcp exposes the link graph of a vault as Model Context Protocol
// tools. Graph tools share one workspace per server.
package mcp

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"vaultgraph/internal/application/workspace"
	"vaultgraph/internal/session"
)

// Tools holds the session the tools read from and the lazily opened shared
// workspace that expand, collapse and graph act on.
type Tools struct {
	sess *session.Session

	mu sync.Mutex
	ws *workspace.Workspace
}

// NewTools creates the tool set over an open session
func NewTools(sess *session.Session) *Tools {
	return &Tools{sess: sess}
}

// NewServer builds an MCP server with every read and write tool registered
func NewServer(name, version string, t *Tools) *server.MCPServer {
	s := server.NewMCPServer(name, version, server.WithToolCapabilities(true))
	s.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)
	RegisterReadTools(s, t)
	RegisterWriteTools(s, t)
	return s
}

// workspace returns the shared workspace, opening an empty one on first use
func (t *Tools) workspace(ctx context.Context) (*workspace.Workspace, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ws != nil {
		return t.ws, nil
	}
	ws, _, err := t.sess.NewWorkspace()
	if err != nil {
		return nil, err
	}
	if err := ws.Open(ctx, nil); err != nil {
		ws.Close()
		return nil, err
	}
	t.ws = ws
	return ws, nil
}

// reset closes the shared workspace; the next graph tool opens a fresh one
func (t *Tools) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ws != nil {
		t.ws.Close()
		t.ws = nil
	}
}

// Close releases the shared workspace
func (t *Tools) Close() {
	t.reset()
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}
