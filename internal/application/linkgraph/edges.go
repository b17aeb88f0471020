package linkgraph

import (
	"context"
	"fmt"
	"log/slog"

	"vaultgraph/internal/domain"
	"vaultgraph/internal/ports"
)

// MergedContextSeparator joins the contexts of merged inline edges
const MergedContextSeparator = "\n\n---\n\n"

// EdgeBuilder turns a document's references into edge definitions
type EdgeBuilder struct {
	docs       ports.DocumentStore
	resolver   *Resolver
	mergeEdges bool
	logger     *slog.Logger
}

// NewEdgeBuilder creates an edge builder. With mergeEdges set, all untyped
// inline edges between the same pair collapse into one.
func NewEdgeBuilder(docs ports.DocumentStore, resolver *Resolver, mergeEdges bool, logger *slog.Logger) *EdgeBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &EdgeBuilder{docs: docs, resolver: resolver, mergeEdges: mergeEdges, logger: logger}
}

// BuildEdges returns the edges from the document at sourcePath to every
// member of targets (serialized node ids). Documents that are not markdown or
// not indexed yield no edges.
func (b *EdgeBuilder) BuildEdges(ctx context.Context, sourcePath, sourceID string, targets map[string]bool) ([]domain.EdgeDefinition, error) {
	if !domain.IsMarkdown(sourcePath) || len(targets) == 0 {
		return nil, nil
	}
	meta, err := b.docs.Metadata(ctx, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("metadata for %s: %w", sourcePath, err)
	}
	if meta == nil {
		return nil, nil
	}

	content, err := b.docs.ReadContent(ctx, sourcePath)
	if err != nil {
		// context falls back to the reference text
		b.logger.Debug("reading content for edge context", "path", sourcePath, "error", err)
		content = ""
	}

	var order []string
	groups := make(map[string][]ParsedReference)
	for _, ref := range ParseReferences(meta, content) {
		id, _, _ := b.resolver.Resolve(ref.Link, sourcePath)
		if id.IsZero() {
			continue
		}
		target := id.String()
		if !targets[target] {
			continue
		}
		if _, ok := groups[target]; !ok {
			order = append(order, target)
		}
		groups[target] = append(groups[target], ref)
	}

	var edges []domain.EdgeDefinition
	for _, target := range order {
		edges = append(edges, b.groupEdges(sourceID, target, groups[target])...)
	}
	return edges, nil
}

// groupEdges builds the edges of one (source, target) pair. The occurrence
// counter only depends on reference order within the pair.
func (b *EdgeBuilder) groupEdges(source, target string, refs []ParsedReference) []domain.EdgeDefinition {
	var (
		edges  []domain.EdgeDefinition
		merged = -1 // index of the merged inline edge in edges
	)
	for _, ref := range refs {
		untypedInline := !ref.Frontmatter && ref.Type == ""
		if b.mergeEdges && untypedInline && merged >= 0 {
			e := &edges[merged]
			e.Context = e.Context + MergedContextSeparator + ref.Context
			e.Count++
			continue
		}

		edge := domain.EdgeDefinition{
			ID:          EdgeID(source, target, len(edges)),
			Source:      source,
			Target:      target,
			Type:        ref.Type,
			DisplayType: domain.DisplayType(ref.Type),
			Context:     ref.Context,
			Count:       1,
			Classes:     edgeClasses(ref),
		}
		edges = append(edges, edge)
		if b.mergeEdges && untypedInline {
			merged = len(edges) - 1
		}
	}
	return edges
}

// EdgeID is the deterministic id of the n-th edge between a pair
func EdgeID(source, target string, n int) string {
	return fmt.Sprintf("%s->%s#%d", source, target, n)
}

func edgeClasses(ref ParsedReference) []string {
	var classes []string
	if ref.Frontmatter {
		classes = append(classes, domain.ClassFrontmatter)
	} else {
		classes = append(classes, domain.ClassInline)
	}
	if ref.Type != "" {
		classes = append(classes, domain.TypeClass(ref.Type))
	}
	return classes
}
