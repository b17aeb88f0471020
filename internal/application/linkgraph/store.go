package linkgraph

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"vaultgraph/internal/domain"
	"vaultgraph/internal/ports"
)

var tracer = otel.Tracer("vaultgraph/linkgraph")

// DefaultConcurrency bounds concurrent target resolution per neighbourhood
const DefaultConcurrency = 8

// Options configures a Store
type Options struct {
	MergeEdges  bool
	Concurrency int
	Backlinks   ports.BacklinkIndex // defaults to a scan of the forward-link index
	Logger      *slog.Logger
}

// Store is the document-corpus data store: it materialises notes, their
// one-hop neighbourhoods and the edges between them.
type Store struct {
	docs        ports.DocumentStore
	resolver    *Resolver
	edges       *EdgeBuilder
	backlinks   ports.BacklinkIndex
	concurrency int
	logger      *slog.Logger
}

var _ ports.EdgeSource = (*Store)(nil)

// NewStore creates a core store over a document store
func NewStore(docs ports.DocumentStore, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	backlinks := opts.Backlinks
	if backlinks == nil {
		backlinks = NewScanBacklinks(docs)
	}
	resolver := NewResolver(docs)
	return &Store{
		docs:        docs,
		resolver:    resolver,
		edges:       NewEdgeBuilder(docs, resolver, opts.MergeEdges, logger),
		backlinks:   backlinks,
		concurrency: concurrency,
		logger:      logger.With("store", string(domain.StoreCore)),
	}
}

// StoreID returns the core store tag
func (s *Store) StoreID() domain.StoreID {
	return domain.StoreCore
}

// Resolver exposes the identity resolver used by the store
func (s *Store) Resolver() *Resolver {
	return s.resolver
}

// Get returns the definition of one node: the document when it exists, a
// dangling placeholder otherwise.
func (s *Store) Get(ctx context.Context, id domain.VizID) (*domain.NodeDefinition, error) {
	if id.Store != domain.StoreCore {
		return nil, nil
	}
	path, ok := s.resolver.PathForID(id)
	if !ok {
		def := danglingNode(id)
		return &def, nil
	}
	meta, err := s.docs.Metadata(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("metadata for %s: %w", path, err)
	}
	if meta == nil {
		return nil, nil
	}
	def := noteNode(s.resolver.IDForPath(path), meta)
	return &def, nil
}

// GetNeighbourhood returns each requested node followed by its forward-link
// targets and back-links. Ids without metadata contribute nothing; every
// destination appears once.
func (s *Store) GetNeighbourhood(ctx context.Context, ids []domain.VizID) ([]domain.NodeDefinition, error) {
	ctx, span := tracer.Start(ctx, "linkgraph.GetNeighbourhood",
		trace.WithAttributes(attribute.Int("ids", len(ids))))
	defer span.End()

	seen := make(map[string]bool)
	var nodes []domain.NodeDefinition
	add := func(def domain.NodeDefinition) {
		if seen[def.ID] {
			return
		}
		seen[def.ID] = true
		nodes = append(nodes, def)
	}

	for _, id := range ids {
		if id.Store != domain.StoreCore {
			continue
		}
		path, ok := s.resolver.PathForID(id)
		if !ok {
			continue
		}
		meta, err := s.docs.Metadata(ctx, path)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "metadata")
			return nil, fmt.Errorf("metadata for %s: %w", path, err)
		}
		if meta == nil {
			s.logger.Debug("skipping unindexed document", "path", path)
			continue
		}
		add(noteNode(s.resolver.IDForPath(path), meta))

		targets, err := s.resolveTargets(ctx, meta)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "resolve targets")
			return nil, err
		}
		for _, def := range targets {
			add(def)
		}

		sources, err := s.backlinks.Backlinks(ctx, path)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "backlinks")
			return nil, fmt.Errorf("backlinks for %s: %w", path, err)
		}
		for _, src := range sources {
			if seen[s.resolver.IDForPath(src).String()] {
				continue
			}
			srcMeta, err := s.docs.Metadata(ctx, src)
			if err != nil {
				return nil, fmt.Errorf("metadata for %s: %w", src, err)
			}
			if srcMeta == nil {
				continue
			}
			add(noteNode(s.resolver.IDForPath(src), srcMeta))
		}
	}

	span.SetAttributes(attribute.Int("nodes", len(nodes)))
	return nodes, nil
}

// resolveTargets materialises every reference target of a document. Targets
// are resolved concurrently; results keep reference order.
func (s *Store) resolveTargets(ctx context.Context, meta *domain.DocumentMeta) ([]domain.NodeDefinition, error) {
	links := make([]string, 0, len(meta.Links)+len(meta.FrontmatterLinks))
	for _, l := range meta.Links {
		links = append(links, l.Link)
	}
	for _, l := range meta.FrontmatterLinks {
		links = append(links, l.Link)
	}

	results := make([]*domain.NodeDefinition, len(links))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, link := range links {
		g.Go(func() error {
			id, path, found := s.resolver.Resolve(link, meta.Path)
			if id.IsZero() {
				return nil
			}
			if !found {
				def := danglingNode(id)
				results[i] = &def
				return nil
			}
			target, err := s.docs.Metadata(gctx, path)
			if err != nil {
				return fmt.Errorf("metadata for %s: %w", path, err)
			}
			if target == nil {
				// linked but not indexed yet: still show it as a note
				target = &domain.DocumentMeta{Path: path, Name: domain.DocumentName(path)}
			}
			def := noteNode(id, target)
			results[i] = &def
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	defs := make([]domain.NodeDefinition, 0, len(results))
	for _, r := range results {
		if r != nil {
			defs = append(defs, *r)
		}
	}
	return defs, nil
}

// BuildEdges rebuilds the outgoing edges of one node to the given targets
func (s *Store) BuildEdges(ctx context.Context, id domain.VizID, targets []string) ([]domain.EdgeDefinition, error) {
	path, ok := s.resolver.PathForID(id)
	if !ok {
		return nil, nil
	}
	set := make(map[string]bool, len(targets))
	for _, t := range targets {
		set[t] = true
	}
	return s.edges.BuildEdges(ctx, path, id.String(), set)
}

// ConnectNodes returns edges from every new node to all nodes, then edges
// from every existing node into the new ones. Pairs of new nodes are only
// visited from their source.
func (s *Store) ConnectNodes(ctx context.Context, all, newNodes []domain.NodeDefinition) ([]domain.EdgeDefinition, error) {
	ctx, span := tracer.Start(ctx, "linkgraph.ConnectNodes",
		trace.WithAttributes(attribute.Int("all", len(all)), attribute.Int("new", len(newNodes))))
	defer span.End()

	allSet := make(map[string]bool, len(all)+len(newNodes))
	newSet := make(map[string]bool, len(newNodes))
	for _, n := range all {
		allSet[n.ID] = true
	}
	for _, n := range newNodes {
		allSet[n.ID] = true
		newSet[n.ID] = true
	}

	type job struct {
		node    domain.NodeDefinition
		targets map[string]bool
	}
	var jobs []job
	for _, n := range newNodes {
		jobs = append(jobs, job{node: n, targets: allSet})
	}
	for _, n := range all {
		if newSet[n.ID] {
			continue
		}
		jobs = append(jobs, job{node: n, targets: newSet})
	}

	results := make([][]domain.EdgeDefinition, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, j := range jobs {
		if j.node.Store != domain.StoreCore || j.node.Path == "" {
			continue
		}
		g.Go(func() error {
			edges, err := s.edges.BuildEdges(gctx, j.node.Path, j.node.ID, j.targets)
			if err != nil {
				return err
			}
			results[i] = edges
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build edges")
		return nil, err
	}

	var edges []domain.EdgeDefinition
	for _, r := range results {
		edges = append(edges, r...)
	}
	span.SetAttributes(attribute.Int("edges", len(edges)))
	return edges, nil
}

func noteNode(id domain.VizID, meta *domain.DocumentMeta) domain.NodeDefinition {
	classes := []string{domain.ClassNote}
	for _, tag := range meta.Tags {
		classes = append(classes, domain.TagClass(tag))
	}
	return domain.NodeDefinition{
		ID:      id.String(),
		Name:    id.ID,
		Path:    meta.Path,
		Store:   domain.StoreCore,
		Tags:    meta.Tags,
		Aliases: meta.Aliases,
		Classes: classes,
	}
}

func danglingNode(id domain.VizID) domain.NodeDefinition {
	return domain.NodeDefinition{
		ID:       id.String(),
		Name:     id.ID,
		Store:    id.Store,
		Dangling: true,
		Classes:  []string{domain.ClassDangling},
	}
}
