package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"vaultgraph/internal/application"
	"vaultgraph/internal/application/commands"
	"vaultgraph/internal/domain"
)

// RegisterWriteTools adds the tools that change the shared graph or the vault.
func RegisterWriteTools(s *server.MCPServer, t *Tools) {
	s.AddTool(expandTool(), t.expandHandler)
	s.AddTool(collapseTool(), t.collapseHandler)
	s.AddTool(annotateTool(), t.annotateHandler)
	s.AddTool(resetTool(), t.resetHandler)
	s.AddTool(markUpToDateTool(), t.markUpToDateHandler)
}

// --- expand ---

func expandTool() mcp.Tool {
	return mcp.NewTool("expand",
		mcp.WithDescription("Add the one-hop neighbourhood of one or more nodes to the shared graph."),
		mcp.WithString("ids",
			mcp.Description("Comma-separated node IDs or document names"),
			mcp.Required(),
		),
	)
}

func (t *Tools) expandHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ws, err := t.workspace(ctx)
	if err != nil {
		return toolError(err)
	}
	result, err := commands.NewExpandCommand(ws, splitIDs(req.GetString("ids", ""))...).Execute(ctx)
	if err != nil {
		return toolError(err)
	}

	var sb strings.Builder
	sb.WriteString(result.Message + "\n")
	for _, n := range result.Added.Nodes {
		sb.WriteString("  " + formatNode(n) + "\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// --- collapse ---

func collapseTool() mcp.Tool {
	return mcp.NewTool("collapse",
		mcp.WithDescription("Remove the neighbours of a node that are not expanded, pinned or otherwise connected."),
		mcp.WithString("id",
			mcp.Description("Node ID to collapse"),
			mcp.Required(),
		),
	)
}

func (t *Tools) collapseHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := application.ValidateNodeID("id", req.GetString("id", ""))
	if err != nil {
		return toolError(err)
	}
	ws, err := t.workspace(ctx)
	if err != nil {
		return toolError(err)
	}
	removed := ws.Collapse(id.String())
	return mcp.NewToolResultText(fmt.Sprintf("Collapsed %s: %d element(s) removed", id, len(removed))), nil
}

// --- annotate ---

func annotateTool() mcp.Tool {
	return mcp.NewTool("annotate",
		mcp.WithDescription("Attach a free-text annotation node to a node of the shared graph."),
		mcp.WithString("id",
			mcp.Description("Node ID to attach the annotation to"),
			mcp.Required(),
		),
		mcp.WithString("label",
			mcp.Description("Annotation text"),
			mcp.Required(),
		),
	)
}

func (t *Tools) annotateHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := application.ValidateNodeID("id", req.GetString("id", ""))
	if err != nil {
		return toolError(err)
	}
	ws, err := t.workspace(ctx)
	if err != nil {
		return toolError(err)
	}
	nodeID, err := ws.AddTerminalNode(ctx, req.GetString("label", ""), id.String())
	if err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Added %s", nodeID)), nil
}

// --- reset_graph ---

func resetTool() mcp.Tool {
	return mcp.NewTool("reset_graph",
		mcp.WithDescription("Discard the shared graph and start from an empty one."),
	)
}

func (t *Tools) resetHandler(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.reset()
	return mcp.NewToolResultText("Graph cleared."), nil
}

// --- mark_up_to_date ---

func markUpToDateTool() mcp.Tool {
	return mcp.NewTool("mark_up_to_date",
		mcp.WithDescription(fmt.Sprintf("Append the %q marker to a document. Documents already marked are left unchanged.", domain.UpToDateMarker)),
		mcp.WithString("id",
			mcp.Description("Node ID (e.g. core:Project) or bare document name"),
			mcp.Required(),
		),
	)
}

func (t *Tools) markUpToDateHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vault := t.sess.Vault()
	result, err := commands.NewMarkUpToDateCommand(vault, vault, req.GetString("id", "")).Execute(ctx)
	if err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText(result.Message), nil
}

// splitIDs splits a comma-separated id list, dropping blanks
func splitIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}
