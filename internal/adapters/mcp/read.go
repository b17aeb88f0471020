package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"vaultgraph/internal/application"
	"vaultgraph/internal/application/commands"
	"vaultgraph/internal/application/linkgraph"
	"vaultgraph/internal/domain"
)

// RegisterReadTools adds all read-only graph tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, t *Tools) {
	s.AddTool(searchTool(), t.searchHandler)
	s.AddTool(neighboursTool(), t.neighboursHandler)
	s.AddTool(backlinksTool(), t.backlinksHandler)
	s.AddTool(readDocumentTool(), t.readDocumentHandler)
	s.AddTool(graphTool(), t.graphHandler)
}

// --- search ---

func searchTool() mcp.Tool {
	return mcp.NewTool("search",
		mcp.WithDescription("Search documents by name, path or alias. Returns node IDs usable by the other tools."),
		mcp.WithString("query",
			mcp.Description("Search query, at least two characters"),
			mcp.Required(),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default 20)"),
		),
	)
}

func (t *Tools) searchHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return toolError(fmt.Errorf("query is required"))
	}

	cmd := commands.NewSearchCommand(t.sess.Vault(), query)
	cmd.Limit = req.GetInt("limit", 20)
	results, err := cmd.Execute(ctx)
	if err != nil {
		return toolError(err)
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No results found."), nil
	}

	var sb strings.Builder
	for _, r := range results {
		fmt.Fprintf(&sb, "%s  %s", r.ID, r.Path)
		if r.MatchedText != "" {
			fmt.Fprintf(&sb, "  (alias: %s)", r.MatchedText)
		}
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// --- neighbours ---

func neighboursTool() mcp.Tool {
	return mcp.NewTool("neighbours",
		mcp.WithDescription("List the forward-link targets and back-links of a document, with the edges between them."),
		mcp.WithString("id",
			mcp.Description("Node ID (e.g. core:Project) or bare document name"),
			mcp.Required(),
		),
	)
}

func (t *Tools) neighboursHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := commands.NewNeighboursCommand(t.sess.Core(), req.GetString("id", "")).Execute(ctx)
	if err != nil {
		return toolError(err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", formatNode(result.Node))
	for _, n := range result.Neighbours {
		fmt.Fprintf(&sb, "  %s\n", formatNode(n))
	}
	if len(result.Edges) > 0 {
		sb.WriteString("edges:\n")
		for _, e := range result.Edges {
			sb.WriteString("  " + formatEdge(e) + "\n")
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// --- backlinks ---

func backlinksTool() mcp.Tool {
	return mcp.NewTool("backlinks",
		mcp.WithDescription("List the documents that link to a document."),
		mcp.WithString("id",
			mcp.Description("Node ID (e.g. core:Project) or bare document name"),
			mcp.Required(),
		),
	)
}

func (t *Tools) backlinksHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cmd := commands.NewBacklinksCommand(t.sess.Vault(), t.sess.Backlinks(), req.GetString("id", ""))
	backlinks, err := cmd.Execute(ctx)
	if err != nil {
		return toolError(err)
	}
	if len(backlinks) == 0 {
		return mcp.NewToolResultText("No backlinks."), nil
	}

	var sb strings.Builder
	for _, b := range backlinks {
		fmt.Fprintf(&sb, "%s  %s\n", b.ID, b.Path)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// --- read_document ---

func readDocumentTool() mcp.Tool {
	return mcp.NewTool("read_document",
		mcp.WithDescription("Read the full markdown content of a document."),
		mcp.WithString("id",
			mcp.Description("Node ID (e.g. core:Project) or bare document name"),
			mcp.Required(),
		),
	)
}

func (t *Tools) readDocumentHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := application.ValidateNodeID("id", req.GetString("id", ""))
	if err != nil {
		return toolError(err)
	}
	path, ok := linkgraph.NewResolver(t.sess.Vault()).PathForID(id)
	if !ok {
		return toolError(fmt.Errorf("%s: %w", id, application.ErrNotFound))
	}

	content, err := t.sess.Vault().ReadContent(ctx, path)
	if err != nil {
		return toolError(fmt.Errorf("reading %s: %w", path, err))
	}
	return mcp.NewToolResultText(content), nil
}

// --- graph ---

func graphTool() mcp.Tool {
	return mcp.NewTool("graph",
		mcp.WithDescription("Export the shared graph built by expand, as JSON elements or Graphviz DOT."),
		mcp.WithString("format",
			mcp.Description("Output format: json or dot (default json)"),
			mcp.Enum(commands.FormatJSON, commands.FormatDOT),
		),
	)
}

func (t *Tools) graphHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ws, err := t.workspace(ctx)
	if err != nil {
		return toolError(err)
	}
	out, err := commands.NewExportCommand(ws, req.GetString("format", commands.FormatJSON)).Execute(ctx)
	if err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

// --- helpers ---

func formatNode(n domain.NodeDefinition) string {
	switch {
	case n.Dangling:
		return n.ID + "  (missing)"
	case n.Path != "":
		return n.ID + "  " + n.Path
	default:
		return n.ID
	}
}

func formatEdge(e domain.EdgeDefinition) string {
	s := fmt.Sprintf("%s -> %s", e.Source, e.Target)
	if e.DisplayType != "" {
		s += " [" + e.DisplayType + "]"
	}
	if e.Count > 1 {
		s += fmt.Sprintf(" x%d", e.Count)
	}
	return s
}
