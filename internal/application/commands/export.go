package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"vaultgraph/internal/application"
	"vaultgraph/internal/domain"
)

// Export formats
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// Snapshotter is the workspace capability ExportCommand reads from
type Snapshotter interface {
	Snapshot() domain.Elements
}

// ExportCommand renders the live graph of a workspace
type ExportCommand struct {
	ws     Snapshotter
	Format string
}

// NewExportCommand creates a new ExportCommand
func NewExportCommand(ws Snapshotter, format string) *ExportCommand {
	return &ExportCommand{
		ws:     ws,
		Format: format,
	}
}

// Validate checks the export format
func (c *ExportCommand) Validate() error {
	if err := application.ValidateRequired("format", c.Format); err != nil {
		return err
	}
	return application.ValidateOneOf("format", strings.ToLower(c.Format), FormatJSON, FormatDOT)
}

// Execute runs the export command
func (c *ExportCommand) Execute(_ context.Context) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	els := c.ws.Snapshot()
	sortElements(&els)

	switch strings.ToLower(c.Format) {
	case FormatDOT:
		return []byte(ExportDOT(els)), nil
	default:
		data, err := json.MarshalIndent(els, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode graph: %w", err)
		}
		return append(data, '\n'), nil
	}
}

// ExportDOT returns elements in Graphviz DOT format
func ExportDOT(els domain.Elements) string {
	var b strings.Builder
	b.WriteString("digraph vaultgraph {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=rounded];\n\n")

	for _, n := range els.Nodes {
		attrs := []string{fmt.Sprintf("label=%q", n.Name)}
		switch {
		case n.Dangling:
			attrs = append(attrs, `style="rounded,dashed"`)
		case n.Store == domain.StoreTerminal:
			attrs = append(attrs, "shape=note")
		}
		fmt.Fprintf(&b, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	b.WriteString("\n")
	for _, e := range els.Edges {
		var attrs []string
		if e.DisplayType != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", e.DisplayType))
		}
		if slices.Contains(e.Classes, domain.ClassFrontmatter) {
			attrs = append(attrs, "style=dotted")
		}
		if e.Count > 1 {
			attrs = append(attrs, fmt.Sprintf("penwidth=%d", min(e.Count, 5)))
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&b, "  %q -> %q;\n", e.Source, e.Target)
			continue
		}
		fmt.Fprintf(&b, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	b.WriteString("}\n")
	return b.String()
}

// sortElements orders nodes and edges by id for deterministic output
func sortElements(els *domain.Elements) {
	slices.SortFunc(els.Nodes, func(a, b domain.NodeDefinition) int {
		return strings.Compare(a.ID, b.ID)
	})
	slices.SortFunc(els.Edges, func(a, b domain.EdgeDefinition) int {
		return strings.Compare(a.ID, b.ID)
	})
}
