package commands

import (
	"context"
	"fmt"

	"vaultgraph/internal/application"
	"vaultgraph/internal/domain"
)

// Expander is the workspace capability ExpandCommand drives
type Expander interface {
	Expand(ctx context.Context, ids []domain.VizID) (domain.Elements, error)
}

// ExpandResult contains the result of an expand operation
type ExpandResult struct {
	Added   domain.Elements
	Message string
}

// ExpandCommand materialises the neighbourhoods of nodes in a workspace
type ExpandCommand struct {
	ws  Expander
	IDs []string
}

// NewExpandCommand creates a new ExpandCommand
func NewExpandCommand(ws Expander, ids ...string) *ExpandCommand {
	return &ExpandCommand{
		ws:  ws,
		IDs: ids,
	}
}

// Validate checks that at least one well-formed node id was given
func (c *ExpandCommand) Validate() ([]domain.VizID, error) {
	if len(c.IDs) == 0 {
		return nil, &application.ValidationError{
			Field:   "nodeID",
			Message: "at least one node is required",
		}
	}
	ids := make([]domain.VizID, 0, len(c.IDs))
	for _, raw := range c.IDs {
		id, err := application.ValidateNodeID("nodeID", raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Execute runs the expand command
func (c *ExpandCommand) Execute(ctx context.Context) (*ExpandResult, error) {
	ids, err := c.Validate()
	if err != nil {
		return nil, err
	}

	added, err := c.ws.Expand(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to expand: %w", err)
	}

	return &ExpandResult{
		Added:   added,
		Message: fmt.Sprintf("Expanded %d node(s): %d nodes and %d edges added", len(ids), len(added.Nodes), len(added.Edges)),
	}, nil
}
