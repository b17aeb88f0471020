package workspace

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"vaultgraph/internal/domain"
)

// layoutScheduler debounces layout requests. A new request or a drag cancels
// the pending and the running layout.
type layoutScheduler struct {
	base     context.Context
	debounce time.Duration
	run      func(ctx context.Context) error

	mu       sync.Mutex
	timer    *time.Timer
	cancel   context.CancelFunc
	dragging bool
	stopped  bool
}

func newLayoutScheduler(base context.Context, debounce time.Duration, run func(ctx context.Context) error) *layoutScheduler {
	return &layoutScheduler{base: base, debounce: debounce, run: run}
}

func (s *layoutScheduler) schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.dragging {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.fire)
}

func (s *layoutScheduler) fire() {
	s.mu.Lock()
	if s.stopped || s.dragging {
		s.mu.Unlock()
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(s.base)
	s.cancel = cancel
	s.mu.Unlock()

	defer cancel()
	_ = s.run(ctx)
}

// interrupt stops the pending timer and cancels a running layout
func (s *layoutScheduler) interrupt() {
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *layoutScheduler) startDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dragging = true
	s.interrupt()
}

func (s *layoutScheduler) endDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dragging = false
}

func (s *layoutScheduler) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.interrupt()
}

// StartDrag cancels any pending or running layout; no layout starts until
// EndDrag
func (w *Workspace) StartDrag() {
	w.layout.startDrag()
}

// MoveNode sets a node's position as the user drags it
func (w *Workspace) MoveNode(id string, at domain.Position) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.view.SetPosition(id, at)
}

// EndDrag allows layouts again
func (w *Workspace) EndDrag() {
	w.layout.endDrag()
}

// RequestLayout schedules a debounced layout
func (w *Workspace) RequestLayout() {
	w.layout.schedule()
}

// RunLayout runs the configured layout synchronously on a snapshot of the
// graph. Positions are applied only when the run completes; pinned nodes
// keep theirs.
func (w *Workspace) RunLayout(ctx context.Context) error {
	if w.opts.Layout == nil {
		return nil
	}
	ctx, span := tracer.Start(ctx, "workspace.Layout",
		trace.WithAttributes(attribute.String("layout", w.opts.Layout.Name())))
	defer span.End()

	nodes := w.view.Nodes(domain.SelectNodes())
	edges := w.view.Edges(domain.SelectEdges())
	w.emit(LayoutRequested{Layout: w.opts.Layout.Name()})

	start := time.Now()
	positions, err := w.opts.Layout.Run(ctx, nodes, edges)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	w.view.Batch(func() {
		for id, at := range positions {
			n, ok := w.view.Node(id)
			if !ok || n.HasClass(domain.ClassPinned) {
				continue
			}
			w.view.SetPosition(id, at)
		}
	})
	if w.opts.AutoZoom {
		w.view.Fit(nil, w.opts.FitPadding)
	}
	w.metrics.recordLayout(ctx, w.opts.Layout.Name(), time.Since(start))
	return nil
}

func (w *Workspace) runScheduledLayout(ctx context.Context) error {
	err := w.RunLayout(ctx)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		w.logger.Debug("layout cancelled")
	default:
		w.logger.Warn("layout failed", "error", err)
	}
	return err
}
