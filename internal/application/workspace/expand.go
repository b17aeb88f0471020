package workspace

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"vaultgraph/internal/domain"
)

// Expand materialises the one-hop neighbourhood of ids, connects the new
// nodes to the graph and marks ids expanded. Returns what was added.
func (w *Workspace) Expand(ctx context.Context, ids []domain.VizID) (domain.Elements, error) {
	ctx, span := tracer.Start(ctx, "workspace.Expand",
		trace.WithAttributes(attribute.Int("ids", len(ids))))
	defer span.End()

	res, events, err := w.expand(ctx, ids, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "expand")
		return domain.Elements{}, err
	}
	w.emit(events...)
	span.SetAttributes(attribute.Int("added", res.Added.Len()))
	return res.Added, nil
}

func (w *Workspace) expand(ctx context.Context, ids []domain.VizID, notify bool) (MergeResult, []Event, error) {
	nodes, err := w.neighbourhood(ctx, ids)
	if err != nil {
		return MergeResult{}, nil, err
	}

	var fresh []domain.NodeDefinition
	for _, n := range nodes {
		if !w.view.Has(n.ID) {
			fresh = append(fresh, n)
		}
	}
	all := append(w.nodeDefinitions(), fresh...)
	edges, err := w.core.ConnectNodes(ctx, all, fresh)
	if err != nil {
		return MergeResult{}, nil, fmt.Errorf("connect nodes: %w", err)
	}

	parents := make([]string, 0, len(ids))
	for _, id := range ids {
		parents = append(parents, id.String())
	}

	w.mu.Lock()
	res, events := w.mergeLocked(ctx, domain.Elements{Nodes: nodes, Edges: edges}, MergeOptions{
		Batch:   true,
		Notify:  notify,
		Parents: parents,
	})
	var expanded []string
	for _, id := range parents {
		if w.view.Has(id) {
			w.view.AddClass(id, domain.ClassExpanded)
			expanded = append(expanded, id)
		}
	}
	w.mu.Unlock()

	for _, id := range expanded {
		events = append(events, NodeExpanded{ID: id, Added: res.Added})
	}
	w.logger.Debug("expanded", "ids", parents, "added", res.Added.Len())
	return res, events, nil
}

// neighbourhood asks each origin store for the neighbourhood of its ids
func (w *Workspace) neighbourhood(ctx context.Context, ids []domain.VizID) ([]domain.NodeDefinition, error) {
	byStore := make(map[domain.StoreID][]domain.VizID)
	var order []domain.StoreID
	for _, id := range ids {
		if _, err := w.storeFor(id); err != nil {
			return nil, err
		}
		if _, ok := byStore[id.Store]; !ok {
			order = append(order, id.Store)
		}
		byStore[id.Store] = append(byStore[id.Store], id)
	}

	seen := make(map[string]bool)
	var nodes []domain.NodeDefinition
	for _, storeID := range order {
		defs, err := w.stores[storeID].GetNeighbourhood(ctx, byStore[storeID])
		if err != nil {
			return nil, fmt.Errorf("neighbourhood in %s: %w", storeID, err)
		}
		for _, d := range defs {
			if !seen[d.ID] {
				seen[d.ID] = true
				nodes = append(nodes, d)
			}
		}
	}
	return nodes, nil
}

// Collapse removes the neighbours of id that are not expanded, protected or
// pinned and have no other visible connection, then clears its expanded
// class. Returns the removed ids.
func (w *Workspace) Collapse(id string) []string {
	w.mu.Lock()
	if !w.view.Has(id) {
		w.mu.Unlock()
		return nil
	}

	var prune []string
	seen := map[string]bool{id: true}
	for _, e := range w.view.ConnectedEdges(id) {
		other := e.Target
		if other == id {
			other = e.Source
		}
		if seen[other] {
			continue
		}
		seen[other] = true
		n, ok := w.view.Node(other)
		if !ok || n.HasClass(domain.ClassExpanded) || n.HasClass(domain.ClassProtected) || n.HasClass(domain.ClassPinned) {
			continue
		}
		if w.connectedElsewhere(other, id) {
			continue
		}
		prune = append(prune, other)
	}

	var removed []string
	w.view.Batch(func() {
		removed = w.view.Remove(prune...)
		w.view.RemoveClass(id, domain.ClassExpanded)
	})
	events := w.notifyLocked(nil, removed)
	w.mu.Unlock()

	w.emit(events...)
	return removed
}

func (w *Workspace) connectedElsewhere(node, except string) bool {
	for _, e := range w.view.ConnectedEdges(node) {
		if e.Source != except && e.Target != except && e.Source != e.Target {
			return true
		}
	}
	return false
}
