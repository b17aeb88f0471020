package commands

import (
	"context"
	"fmt"

	"vaultgraph/internal/application"
	"vaultgraph/internal/application/linkgraph"
	"vaultgraph/internal/domain"
	"vaultgraph/internal/ports"
)

// Backlink is one document linking to the queried node
type Backlink struct {
	ID   string
	Path string
}

// BacklinksCommand lists the documents that link to a node
type BacklinksCommand struct {
	docs      ports.DocumentStore
	backlinks ports.BacklinkIndex
	ID        string
}

// NewBacklinksCommand creates a new BacklinksCommand
func NewBacklinksCommand(docs ports.DocumentStore, backlinks ports.BacklinkIndex, id string) *BacklinksCommand {
	return &BacklinksCommand{
		docs:      docs,
		backlinks: backlinks,
		ID:        id,
	}
}

// Execute runs the backlinks command
func (c *BacklinksCommand) Execute(ctx context.Context) ([]Backlink, error) {
	id, err := application.ValidateNodeID("nodeID", c.ID)
	if err != nil {
		return nil, err
	}
	if id.Store != domain.StoreCore {
		return nil, &application.StoreError{ID: id.String(), Store: string(id.Store)}
	}

	resolver := linkgraph.NewResolver(c.docs)
	path, ok := resolver.PathForID(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, application.ErrNotFound)
	}

	sources, err := c.backlinks.Backlinks(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to find backlinks: %w", err)
	}

	result := make([]Backlink, 0, len(sources))
	for _, src := range sources {
		result = append(result, Backlink{
			ID:   resolver.IDForPath(src).String(),
			Path: src,
		})
	}
	return result, nil
}
