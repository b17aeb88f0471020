package workspace

import (
	"slices"
	"sync"

	"vaultgraph/internal/domain"
)

// Event is one of the workspace notifications below. The set is closed.
type Event interface {
	event()
}

// ElementsChanged is the single structural-change notification of a merge,
// refresh or removal
type ElementsChanged struct {
	Added   []string
	Removed []string
}

// LayoutRequested fires when a debounced layout starts running
type LayoutRequested struct {
	Layout string
}

// NodeExpanded fires once per node whose neighbourhood was materialised
type NodeExpanded struct {
	ID    string
	Added domain.Elements
}

// UpToDate fires when a refreshed document carries the up-to-date marker
type UpToDate struct {
	ID   string
	Path string
}

// PreviewReady carries hover preview content once the delay elapsed
type PreviewReady struct {
	ID      string
	Path    string
	Content string
}

// RefreshSkipped reports a change that could not be applied
type RefreshSkipped struct {
	ID     string
	Reason string
}

func (ElementsChanged) event() {}
func (LayoutRequested) event() {}
func (NodeExpanded) event()    {}
func (UpToDate) event()        {}
func (PreviewReady) event()    {}
func (RefreshSkipped) event()  {}

// observers is an ordered listener list. Listeners run synchronously on the
// goroutine that raised the event and must not block.
type observers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(Event)
}

func (o *observers) subscribe(fn func(Event)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fns == nil {
		o.fns = make(map[int]func(Event))
	}
	id := o.next
	o.next++
	o.fns[id] = fn
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.fns, id)
	}
}

func (o *observers) emit(events ...Event) {
	if len(events) == 0 {
		return
	}
	o.mu.Lock()
	ids := make([]int, 0, len(o.fns))
	for id := range o.fns {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, o.fns[id])
	}
	o.mu.Unlock()

	for _, e := range events {
		for _, fn := range fns {
			fn(e)
		}
	}
}
