package workspace

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"vaultgraph/internal/application"
	"vaultgraph/internal/domain"
)

// HandleChange applies one document change to the graph. Failures are
// logged and reported as RefreshSkipped; the graph is never left
// partially merged.
func (w *Workspace) HandleChange(ctx context.Context, change domain.Change) {
	ctx, span := tracer.Start(ctx, "workspace.HandleChange", trace.WithAttributes(
		attribute.String("change.kind", change.Kind.String()),
		attribute.String("change.path", change.Path),
	))
	defer span.End()

	id := idForPath(change.Path).String()
	if !w.Ready() {
		w.logger.Warn("graph not ready, skipping refresh", "path", change.Path, "change", change.Kind)
		w.emit(RefreshSkipped{ID: id, Reason: application.ErrNotReady.Error()})
		return
	}

	var err error
	switch change.Kind {
	case domain.ChangeDeleted:
		w.Delete(change.Path)
	case domain.ChangeRenamed:
		err = w.Rename(ctx, change.OldPath, change.Path)
	default:
		err = w.Refresh(ctx, change.Path)
	}
	w.metrics.recordRefresh(ctx, change.Kind.String(), err == nil)
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, "refresh")
	var rerr *application.RefreshError
	if errors.As(err, &rerr) {
		id = rerr.ID
	}
	w.logger.Error("refresh failed", "id", id, "error", err)
	w.emit(RefreshSkipped{ID: id, Reason: err.Error()})
}

// Refresh recomputes the node of a modified document. Documents that are
// not displayed are ignored.
func (w *Workspace) Refresh(ctx context.Context, path string) error {
	vid := idForPath(path)
	id := vid.String()
	node, ok := w.view.Node(id)
	if !ok {
		w.logger.Debug("ignoring change to undisplayed document", "path", path)
		return nil
	}

	if !w.docs.Exists(path) {
		w.Remove(id)
		return nil
	}

	var (
		added  []string
		events []Event
	)
	if node.HasClass(domain.ClassExpanded) {
		res, expandEvents, err := w.expand(ctx, []domain.VizID{vid}, false)
		if err != nil {
			return &application.RefreshError{ID: id, Op: "expand", Err: err}
		}
		added = elementIDs(res.Added)
		events = expandEvents
	}

	def, err := w.core.Get(ctx, vid)
	if err != nil {
		return &application.RefreshError{ID: id, Op: "get", Err: err}
	}
	if def == nil {
		return &application.RefreshError{ID: id, Op: "get", Err: application.ErrNotReady}
	}
	edges, err := w.core.BuildEdges(ctx, vid, w.nodeIDs())
	if err != nil {
		return &application.RefreshError{ID: id, Op: "build edges", Err: err}
	}

	w.mu.Lock()
	w.view.UpdateNode(*def)
	res, _ := w.mergeLocked(ctx, domain.Elements{Edges: edges}, MergeOptions{Batch: true})
	added = append(added, elementIDs(res.Added)...)

	keep := make(map[string]bool, len(edges))
	for _, e := range edges {
		keep[e.ID] = true
	}
	var stale []string
	for _, e := range w.view.ConnectedEdges(id) {
		if e.Source != id || keep[e.ID] {
			continue
		}
		if e.HasClass(domain.ClassProtected) || e.HasClass(domain.ClassTerminal) {
			continue
		}
		stale = append(stale, e.ID)
	}
	removed := w.view.Remove(stale...)
	if len(added) > 0 || len(removed) > 0 {
		events = append(w.notifyLocked(added, removed), events...)
	} else {
		w.restyleLocked()
	}
	w.mu.Unlock()

	if content, err := w.docs.ReadContent(ctx, path); err == nil && strings.Contains(content, domain.UpToDateMarker) {
		events = append(events, UpToDate{ID: id, Path: path})
	}
	w.emit(events...)
	w.logger.Debug("refreshed", "id", id, "added", len(added), "removed", len(removed))
	return nil
}

// Delete drops the node of a deleted document with its incident edges
func (w *Workspace) Delete(path string) {
	id := idForPath(path).String()
	if !w.view.Has(id) {
		return
	}
	w.Remove(id)
}

// Rename moves a displayed node to its new identity. The old node stays in
// a pending-rename state until the document store has indexed the new
// path; the new node then takes over the old node's position and state.
func (w *Workspace) Rename(ctx context.Context, oldPath, newPath string) error {
	oldID := idForPath(oldPath).String()
	newVID := idForPath(newPath)
	old, ok := w.view.Node(oldID)
	if !ok {
		w.logger.Debug("ignoring rename of undisplayed document", "from", oldPath, "to", newPath)
		return nil
	}

	w.mu.Lock()
	w.pending[oldID] = newVID.String()
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		delete(w.pending, oldID)
		w.mu.Unlock()
	}()

	if err := w.opts.Rename.AwaitIndexed(ctx, newPath); err != nil {
		if ctx.Err() != nil {
			return &application.RefreshError{ID: oldID, Op: "rename", Err: ctx.Err()}
		}
		w.logger.Warn("index did not catch up with rename, using current metadata", "from", oldPath, "to", newPath, "error", err)
	}

	def, err := w.core.Get(ctx, newVID)
	if err != nil {
		return &application.RefreshError{ID: newVID.String(), Op: "rename", Err: err}
	}

	w.mu.Lock()
	removed := w.view.Remove(oldID)
	w.mu.Unlock()

	if def == nil {
		w.mu.Lock()
		events := w.notifyLocked(nil, removed)
		w.mu.Unlock()
		w.emit(events...)
		return &application.RefreshError{ID: newVID.String(), Op: "rename", Err: application.ErrNotReady}
	}

	at := old.At
	def.Position = &at
	all := append(w.nodeDefinitions(), *def)
	edges, err := w.core.ConnectNodes(ctx, all, []domain.NodeDefinition{*def})
	if err != nil {
		w.mu.Lock()
		events := w.notifyLocked(nil, removed)
		w.mu.Unlock()
		w.emit(events...)
		return &application.RefreshError{ID: newVID.String(), Op: "connect", Err: err}
	}

	w.mu.Lock()
	res, _ := w.mergeLocked(ctx, domain.Elements{Nodes: []domain.NodeDefinition{*def}, Edges: edges}, MergeOptions{Batch: true})
	for _, class := range []string{domain.ClassPinned, domain.ClassProtected, domain.ClassActive} {
		if old.HasClass(class) {
			w.view.AddClass(def.ID, class)
		}
	}
	events := w.notifyLocked(elementIDs(res.Added), removed)
	w.mu.Unlock()
	w.emit(events...)

	if old.HasClass(domain.ClassExpanded) {
		if _, err := w.Expand(ctx, []domain.VizID{newVID}); err != nil {
			return &application.RefreshError{ID: newVID.String(), Op: "expand", Err: err}
		}
	}
	w.logger.Info("renamed", "from", oldID, "to", def.ID)
	return nil
}

// PendingRename reports the target of an unresolved rename of oldID
func (w *Workspace) PendingRename(oldID string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	newID, ok := w.pending[oldID]
	return newID, ok
}
