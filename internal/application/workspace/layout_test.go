package workspace

import (
	"context"
	"sync"
	"testing"
	"time"

	"vaultgraph/internal/domain"
)

type fakeLayout struct {
	mu    sync.Mutex
	runs  int
	block bool
}

func (l *fakeLayout) Name() string { return "fake" }

func (l *fakeLayout) Run(ctx context.Context, nodes []domain.NodeState, _ []domain.EdgeState) (map[string]domain.Position, error) {
	l.mu.Lock()
	l.runs++
	block := l.block
	l.mu.Unlock()
	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	out := make(map[string]domain.Position, len(nodes))
	for _, n := range nodes {
		out[n.ID] = domain.Position{X: 1, Y: 1}
	}
	return out, nil
}

func (l *fakeLayout) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.runs
}

func addNode(t *testing.T, w *Workspace, id string) {
	t.Helper()
	w.Merge(t.Context(), domain.Elements{
		Nodes: []domain.NodeDefinition{{ID: id, Name: id}},
	}, MergeOptions{Notify: true})
}

func TestLayoutDebounce(t *testing.T) {
	layout := &fakeLayout{}
	w, _, rec := newTestWorkspace(t, newFakeDocs(), Options{Layout: layout, LayoutDebounce: 20 * time.Millisecond})

	for _, id := range []string{"core:A", "core:B", "core:C", "core:D"} {
		addNode(t, w, id)
	}
	waitFor(t, "layout run", func() bool { return layout.count() == 1 })
	time.Sleep(60 * time.Millisecond)
	if got := layout.count(); got != 1 {
		t.Errorf("burst produced %d layouts, want 1", got)
	}

	var requested int
	for _, e := range rec.all() {
		if _, ok := e.(LayoutRequested); ok {
			requested++
		}
	}
	if requested != 1 {
		t.Errorf("LayoutRequested raised %d times", requested)
	}
}

func TestRunLayoutKeepsPinned(t *testing.T) {
	layout := &fakeLayout{}
	w, view, _ := newTestWorkspace(t, newFakeDocs(), Options{Layout: layout, LayoutDebounce: time.Hour})
	at := domain.Position{X: 50, Y: 50}
	w.Merge(t.Context(), domain.Elements{Nodes: []domain.NodeDefinition{
		{ID: "core:A", Position: &at},
		{ID: "core:B", Position: &at},
	}}, MergeOptions{})
	w.Pin("core:A")

	if err := w.RunLayout(t.Context()); err != nil {
		t.Fatalf("RunLayout() error = %v", err)
	}
	if a, _ := view.Node("core:A"); a.At != at {
		t.Errorf("pinned node moved to %v", a.At)
	}
	if b, _ := view.Node("core:B"); b.At != (domain.Position{X: 1, Y: 1}) {
		t.Errorf("free node at %v", b.At)
	}
}

func TestRunLayoutCancelledAppliesNothing(t *testing.T) {
	layout := &fakeLayout{block: true}
	w, view, _ := newTestWorkspace(t, newFakeDocs(), Options{Layout: layout, LayoutDebounce: time.Hour})
	addNode(t, w, "core:A")
	before := view.Positions()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if err := w.RunLayout(ctx); err == nil {
		t.Fatal("expected cancellation error")
	}
	if after := view.Positions(); after["core:A"] != before["core:A"] {
		t.Error("cancelled layout changed positions")
	}
}

func TestStartDragCancelsLayout(t *testing.T) {
	layout := &fakeLayout{block: true}
	w, view, _ := newTestWorkspace(t, newFakeDocs(), Options{Layout: layout, LayoutDebounce: 5 * time.Millisecond})
	addNode(t, w, "core:A")
	waitFor(t, "running layout", func() bool { return layout.count() == 1 })
	before := view.Positions()

	w.StartDrag()
	w.MoveNode("core:A", domain.Position{X: 300, Y: 300})
	w.RequestLayout()
	time.Sleep(30 * time.Millisecond)
	if got := layout.count(); got != 1 {
		t.Errorf("layout started during drag: %d runs", got)
	}
	if a, _ := view.Node("core:A"); a.At != (domain.Position{X: 300, Y: 300}) || a.At == before["core:A"] {
		t.Errorf("dragged node at %v", a.At)
	}

	w.EndDrag()
	w.RequestLayout()
	waitFor(t, "layout after drag", func() bool { return layout.count() == 2 })
}
