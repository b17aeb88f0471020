package commands

import (
	"context"
	"fmt"

	"vaultgraph/internal/application"
	"vaultgraph/internal/domain"
	"vaultgraph/internal/ports"
)

// NeighboursResult is one node with its one-hop neighbourhood
type NeighboursResult struct {
	Node       domain.NodeDefinition
	Neighbours []domain.NodeDefinition
	Edges      []domain.EdgeDefinition
}

// NeighboursCommand looks up a node's neighbourhood without touching any
// workspace
type NeighboursCommand struct {
	store ports.DataStore
	ID    string
}

// NewNeighboursCommand creates a new NeighboursCommand
func NewNeighboursCommand(store ports.DataStore, id string) *NeighboursCommand {
	return &NeighboursCommand{
		store: store,
		ID:    id,
	}
}

// Execute runs the neighbours command. Edges connect every pair of nodes in
// the neighbourhood.
func (c *NeighboursCommand) Execute(ctx context.Context) (*NeighboursResult, error) {
	id, err := application.ValidateNodeID("nodeID", c.ID)
	if err != nil {
		return nil, err
	}
	if id.Store != c.store.StoreID() {
		return nil, &application.StoreError{ID: id.String(), Store: string(id.Store)}
	}

	nodes, err := c.store.GetNeighbourhood(ctx, []domain.VizID{id})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve neighbourhood: %w", err)
	}

	result := &NeighboursResult{}
	found := false
	for _, n := range nodes {
		if n.ID == id.String() {
			result.Node = n
			found = true
			continue
		}
		result.Neighbours = append(result.Neighbours, n)
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", id, application.ErrNotFound)
	}

	edges, err := c.store.ConnectNodes(ctx, nil, nodes)
	if err != nil {
		return nil, fmt.Errorf("failed to connect neighbourhood: %w", err)
	}
	result.Edges = edges
	return result, nil
}
