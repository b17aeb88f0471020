package workspace

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"vaultgraph/internal/domain"
	"vaultgraph/internal/ports"
)

// DefaultIndexWait bounds how long a change waits for the document store to
// re-index when no timeout is configured
const DefaultIndexWait = 2 * time.Second

// Registry tracks the open workspaces of a session and fans document
// changes out to each of them
type Registry struct {
	mu         sync.RWMutex
	workspaces map[string]*Workspace
	order      []string
	logger     *slog.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{workspaces: make(map[string]*Workspace), logger: logger}
}

func (r *Registry) register(w *Workspace) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.NewString()
	r.workspaces[id] = w
	r.order = append(r.order, id)
	r.logger.Debug("workspace registered", "workspace", id)
	return id
}

// Unregister drops a workspace; it no longer receives changes
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workspaces[id]; !ok {
		return
	}
	delete(r.workspaces, id)
	for i, wid := range r.order {
		if wid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.logger.Debug("workspace unregistered", "workspace", id)
}

// Get returns a registered workspace by id
func (r *Registry) Get(id string) (*Workspace, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workspaces[id]
	return w, ok
}

// List returns registered workspaces in registration order
func (r *Registry) List() []*Workspace {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Workspace, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.workspaces[id])
	}
	return out
}

// Dispatch hands a document change to every registered workspace. Each
// workspace processes it to completion before the next one sees it.
func (r *Registry) Dispatch(ctx context.Context, change domain.Change) {
	for _, w := range r.List() {
		w.HandleChange(ctx, change)
	}
}

// Watch subscribes to a document store and dispatches its changes until the
// returned cancel func is called or ctx is done. When the store can signal
// indexing, a modification is held back for up to wait until the store's
// metadata for it is current.
func (r *Registry) Watch(ctx context.Context, docs ports.DocumentStore, wait time.Duration) (cancel func()) {
	signal, _ := docs.(ports.IndexSignal)
	return docs.Subscribe(func(change domain.Change) {
		if ctx.Err() != nil {
			return
		}
		if signal != nil && change.Kind == domain.ChangeModified {
			r.awaitIndexed(ctx, signal, change.Path, wait)
		}
		r.Dispatch(ctx, change)
	})
}

func (r *Registry) awaitIndexed(ctx context.Context, signal ports.IndexSignal, path string, wait time.Duration) {
	if wait <= 0 {
		wait = DefaultIndexWait
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-signal.Indexed(path):
	case <-timer.C:
		r.logger.Warn("dispatching change before metadata caught up", "path", path)
	case <-ctx.Done():
	}
}
