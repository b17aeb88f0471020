// Package workspace keeps a live graph view in sync with the document
// corpus: merging extraction results, placing new nodes, refreshing on
// document changes and scheduling layouts.
package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"vaultgraph/internal/application"
	"vaultgraph/internal/domain"
	"vaultgraph/internal/ports"
)

var tracer = otel.Tracer("vaultgraph/workspace")

// Defaults for the timing options
const (
	DefaultLayoutDebounce = 150 * time.Millisecond
	DefaultHoverDelay     = 400 * time.Millisecond
	DefaultFitPadding     = 40
)

// Options are the user-facing graph settings of one workspace
type Options struct {
	ExpandInitial  bool
	AutoZoom       bool
	MetaKeyHover   bool
	Filter         string
	StyleGroups    []domain.StyleGroup
	Layout         ports.Layout // nil disables automatic layout
	LayoutDebounce time.Duration
	HoverDelay     time.Duration
	FitPadding     float64
	Placer         PlacerOptions
	Rename         RenameResolver // nil resolves renames immediately
	Logger         *slog.Logger
}

// Deps are the collaborators a workspace is built from
type Deps struct {
	Docs  ports.DocumentStore
	Core  ports.EdgeSource
	View  ports.GraphView
	Extra []ports.DataStore // additional origin stores besides core and terminal
}

// Workspace is one live graph. Mutations of the view that depend on its
// current content happen under mu; events are raised after mu is released.
type Workspace struct {
	id       string
	registry *Registry

	docs     ports.DocumentStore
	core     ports.EdgeSource
	terminal *TerminalStore
	stores   map[domain.StoreID]ports.DataStore
	view     ports.GraphView

	opts    Options
	placer  *Placer
	logger  *slog.Logger
	metrics *metrics

	mu           sync.Mutex
	ready        bool
	filter       domain.Query
	styleGroups  []domain.CompiledStyleGroup
	styleClasses map[string]bool
	pending      map[string]string // pending renames: old id -> new id

	observers observers
	layout    *layoutScheduler
	hover     hoverState

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a workspace and registers it with the registry
func New(reg *Registry, deps Deps, opts Options) *Workspace {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.LayoutDebounce <= 0 {
		opts.LayoutDebounce = DefaultLayoutDebounce
	}
	if opts.HoverDelay <= 0 {
		opts.HoverDelay = DefaultHoverDelay
	}
	if opts.FitPadding <= 0 {
		opts.FitPadding = DefaultFitPadding
	}
	if opts.Rename == nil {
		opts.Rename = immediateResolver{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Workspace{
		registry:     reg,
		docs:         deps.Docs,
		core:         deps.Core,
		terminal:     NewTerminalStore(),
		view:         deps.View,
		opts:         opts,
		placer:       NewPlacer(opts.Placer),
		metrics:      newMetrics(),
		filter:       domain.ParseQuery(opts.Filter),
		styleGroups:  domain.CompileStyleGroups(opts.StyleGroups),
		styleClasses: make(map[string]bool),
		pending:      make(map[string]string),
		ctx:          ctx,
		cancel:       cancel,
	}
	w.stores = map[domain.StoreID]ports.DataStore{
		deps.Core.StoreID():  deps.Core,
		w.terminal.StoreID(): w.terminal,
	}
	for _, s := range deps.Extra {
		w.stores[s.StoreID()] = s
	}
	w.layout = newLayoutScheduler(ctx, opts.LayoutDebounce, w.runScheduledLayout)

	if reg != nil {
		w.id = reg.register(w)
	} else {
		w.id = uuid.NewString()
	}
	w.logger = opts.Logger.With("workspace", w.id)
	return w
}

// ID returns the registry id of the workspace
func (w *Workspace) ID() string {
	return w.id
}

// View returns the graph view the workspace maintains
func (w *Workspace) View() ports.GraphView {
	return w.view
}

// Terminal returns the workspace's terminal store
func (w *Workspace) Terminal() *TerminalStore {
	return w.terminal
}

// Subscribe registers an event listener and returns its cancel func
func (w *Workspace) Subscribe(fn func(Event)) (cancel func()) {
	return w.observers.subscribe(fn)
}

func (w *Workspace) emit(events ...Event) {
	w.observers.emit(events...)
}

// Ready reports whether the workspace has been opened
func (w *Workspace) Ready() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ready
}

// Open populates the graph from seed nodes and marks the workspace ready.
// With ExpandInitial set, seeds are expanded; otherwise only the seeds and
// the edges between them are shown.
func (w *Workspace) Open(ctx context.Context, seeds []domain.VizID) error {
	w.mu.Lock()
	w.ready = true
	w.mu.Unlock()

	if w.opts.ExpandInitial {
		if _, err := w.Expand(ctx, seeds); err != nil {
			return err
		}
	} else {
		var nodes []domain.NodeDefinition
		for _, id := range seeds {
			store, err := w.storeFor(id)
			if err != nil {
				return err
			}
			def, err := store.Get(ctx, id)
			if err != nil {
				return fmt.Errorf("get %s: %w", id, err)
			}
			if def != nil {
				nodes = append(nodes, *def)
			}
		}
		edges, err := w.core.ConnectNodes(ctx, nil, nodes)
		if err != nil {
			return fmt.Errorf("connect seeds: %w", err)
		}
		w.Merge(ctx, domain.Elements{Nodes: nodes, Edges: edges}, MergeOptions{Batch: true, Notify: true})
	}

	if w.opts.AutoZoom {
		w.Fit()
	}
	w.logger.Info("workspace opened", "seeds", len(seeds), "nodes", len(w.view.Nodes(domain.SelectNodes())))
	return nil
}

// Close stops pending layouts and previews and leaves the registry
func (w *Workspace) Close() {
	w.Unhover()
	w.layout.stop()
	w.cancel()
	if w.registry != nil {
		w.registry.Unregister(w.id)
	}
}

func (w *Workspace) storeFor(id domain.VizID) (ports.DataStore, error) {
	store, ok := w.stores[id.Store]
	if !ok {
		return nil, &application.StoreError{ID: id.String(), Store: string(id.Store)}
	}
	return store, nil
}

// Remove deletes nodes or edges by id with their incident edges
func (w *Workspace) Remove(ids ...string) []string {
	w.mu.Lock()
	removed := w.view.Remove(ids...)
	var events []Event
	if len(removed) > 0 {
		events = w.notifyLocked(nil, removed)
	}
	w.mu.Unlock()
	w.emit(events...)
	return removed
}

// Pin locks a node's position; layouts never move pinned nodes
func (w *Workspace) Pin(id string) {
	w.setClass(id, domain.ClassPinned, true)
}

// Unpin releases a pinned node
func (w *Workspace) Unpin(id string) {
	w.setClass(id, domain.ClassPinned, false)
}

// Protect exempts a node or edge from automatic pruning
func (w *Workspace) Protect(id string) {
	w.setClass(id, domain.ClassProtected, true)
}

// Unprotect makes a node or edge prunable again
func (w *Workspace) Unprotect(id string) {
	w.setClass(id, domain.ClassProtected, false)
}

func (w *Workspace) setClass(id, class string, on bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.view.Has(id) {
		w.logger.Debug("ignoring class change on missing element", "id", id, "class", class)
		return
	}
	if on {
		w.view.AddClass(id, class)
	} else {
		w.view.RemoveClass(id, class)
	}
}

// SetActive moves the active class to id. An empty or unknown id clears it.
func (w *Workspace) SetActive(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.view.Batch(func() {
		for _, n := range w.view.Nodes(domain.SelectNodes(domain.ClassActive)) {
			if n.ID != id {
				w.view.RemoveClass(n.ID, domain.ClassActive)
			}
		}
		if id != "" && w.view.Has(id) {
			w.view.AddClass(id, domain.ClassActive)
		}
	})
}

// SetFilter replaces the filter query and reclassifies every node
func (w *Workspace) SetFilter(raw string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.filter = domain.ParseQuery(raw)
	w.restyleLocked()
}

// Filter returns the current filter query text
func (w *Workspace) Filter() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.filter.Raw
}

// SetStyleGroups replaces the style groups and reclassifies every node
func (w *Workspace) SetStyleGroups(groups []domain.StyleGroup) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.styleGroups = domain.CompileStyleGroups(groups)
	w.restyleLocked()
}

// Fit zooms the viewport onto ids, or onto the whole graph
func (w *Workspace) Fit(ids ...string) {
	w.view.Fit(ids, w.opts.FitPadding)
}

// Snapshot returns every live element with its current position and classes
func (w *Workspace) Snapshot() domain.Elements {
	var els domain.Elements
	for _, n := range w.view.Nodes(domain.SelectNodes()) {
		def := n.NodeDefinition
		at := n.At
		def.Position = &at
		els.Nodes = append(els.Nodes, def)
	}
	for _, e := range w.view.Edges(domain.SelectEdges()) {
		els.Edges = append(els.Edges, e.EdgeDefinition)
	}
	return els
}

// AddTerminalNode creates an annotation node attached to an existing node by
// a protected edge. Returns the new node id.
func (w *Workspace) AddTerminalNode(ctx context.Context, label, attachTo string) (string, error) {
	if err := application.ValidateRequired("label", label); err != nil {
		return "", err
	}
	if !w.view.Has(attachTo) {
		return "", fmt.Errorf("%w: %s", application.ErrInvalidTarget, attachTo)
	}

	def := w.terminal.Add(label)
	edge := domain.EdgeDefinition{
		ID:      attachTo + "->" + def.ID + "#0",
		Source:  attachTo,
		Target:  def.ID,
		Count:   1,
		Classes: []string{domain.ClassTerminal, domain.ClassProtected},
	}
	w.Merge(ctx, domain.Elements{
		Nodes: []domain.NodeDefinition{def},
		Edges: []domain.EdgeDefinition{edge},
	}, MergeOptions{Batch: true, Notify: true, Parents: []string{attachTo}})
	return def.ID, nil
}

// nodeDefinitions snapshots the definitions of every live node
func (w *Workspace) nodeDefinitions() []domain.NodeDefinition {
	nodes := w.view.Nodes(domain.SelectNodes())
	defs := make([]domain.NodeDefinition, 0, len(nodes))
	for _, n := range nodes {
		defs = append(defs, n.NodeDefinition)
	}
	return defs
}

func (w *Workspace) nodeIDs() []string {
	nodes := w.view.Nodes(domain.SelectNodes())
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

func idForPath(path string) domain.VizID {
	return domain.NewVizID(domain.DocumentName(path))
}

func elementIDs(els domain.Elements) []string {
	return slices.Concat(els.NodeIDs(), els.EdgeIDs())
}
