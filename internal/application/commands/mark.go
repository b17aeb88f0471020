package commands

import (
	"context"
	"fmt"
	"strings"

	"vaultgraph/internal/application"
	"vaultgraph/internal/application/linkgraph"
	"vaultgraph/internal/domain"
	"vaultgraph/internal/ports"
)

// MarkResult contains the result of marking a document up to date
type MarkResult struct {
	ID      string
	Path    string
	Changed bool
	Message string
}

// MarkUpToDateCommand appends the up-to-date marker to a document
type MarkUpToDateCommand struct {
	docs   ports.DocumentStore
	writer ports.DocumentWriter
	ID     string
}

// NewMarkUpToDateCommand creates a new MarkUpToDateCommand
func NewMarkUpToDateCommand(docs ports.DocumentStore, writer ports.DocumentWriter, id string) *MarkUpToDateCommand {
	return &MarkUpToDateCommand{
		docs:   docs,
		writer: writer,
		ID:     id,
	}
}

// Execute runs the mark command. A document already carrying the marker is
// left untouched.
func (c *MarkUpToDateCommand) Execute(ctx context.Context) (*MarkResult, error) {
	id, err := application.ValidateNodeID("nodeID", c.ID)
	if err != nil {
		return nil, err
	}
	if id.Store != domain.StoreCore {
		return nil, &application.StoreError{ID: id.String(), Store: string(id.Store)}
	}

	path, ok := linkgraph.NewResolver(c.docs).PathForID(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, application.ErrNotFound)
	}

	content, err := c.docs.ReadContent(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if strings.Contains(content, domain.UpToDateMarker) {
		return &MarkResult{ID: id.String(), Path: path, Message: fmt.Sprintf("%s is already up to date", path)}, nil
	}

	text := domain.UpToDateMarker + "\n"
	if content != "" && !strings.HasSuffix(content, "\n") {
		text = "\n" + text
	}
	if err := c.writer.AppendContent(ctx, path, text); err != nil {
		return nil, fmt.Errorf("failed to mark %s: %w", path, err)
	}

	return &MarkResult{
		ID:      id.String(),
		Path:    path,
		Changed: true,
		Message: fmt.Sprintf("Marked %s as up to date", path),
	}, nil
}
