// Package memgraph is an in-memory graph container implementing
// ports.GraphView for the CLI, MCP server and TUI.
package memgraph

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"sync"

	"vaultgraph/internal/domain"
	"vaultgraph/internal/ports"
)

// ErrMissingEndpoint is returned when an edge references an absent node
var ErrMissingEndpoint = errors.New("edge endpoint not in graph")

// Default canvas size used by Fit
const (
	DefaultWidth  = 1200
	DefaultHeight = 800
)

// Update is one coalesced view update
type Update struct {
	Added   []string
	Removed []string
	Changed []string // class, degree or position changes
}

// IsEmpty reports whether the update carries no change
func (u Update) IsEmpty() bool {
	return len(u.Added) == 0 && len(u.Removed) == 0 && len(u.Changed) == 0
}

type node struct {
	def     domain.NodeDefinition
	defined []string // classes that came with the definition
	classes []string
	at      domain.Position
	degree  int
}

type edge struct {
	def     domain.EdgeDefinition
	classes []string
}

// Graph is a thread-safe in-memory GraphView. Element order is insertion
// order, so snapshots are deterministic.
type Graph struct {
	mu        sync.RWMutex
	nodes     map[string]*node
	edges     map[string]*edge
	nodeOrder []string
	edgeOrder []string
	viewport  ports.Viewport
	width     float64
	height    float64

	batchDepth int
	pending    Update
	nextSub    int
	subs       map[int]func(Update)
}

var _ ports.GraphView = (*Graph)(nil)

// New creates an empty graph with the default canvas size
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*node),
		edges:    make(map[string]*edge),
		viewport: ports.Viewport{Zoom: 1},
		width:    DefaultWidth,
		height:   DefaultHeight,
		subs:     make(map[int]func(Update)),
	}
}

// SetCanvas sets the canvas size used to fit the viewport
func (g *Graph) SetCanvas(width, height float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if width > 0 && height > 0 {
		g.width, g.height = width, height
	}
}

// OnUpdate registers a listener for coalesced updates
func (g *Graph) OnUpdate(fn func(Update)) (cancel func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.nextSub
	g.nextSub++
	g.subs[id] = fn
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.subs, id)
	}
}

func (g *Graph) Has(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, n := g.nodes[id]
	_, e := g.edges[id]
	return n || e
}

func (g *Graph) Node(id string) (domain.NodeState, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	if !ok {
		return domain.NodeState{}, false
	}
	return n.state(), true
}

func (g *Graph) Edge(id string) (domain.EdgeState, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.edges[id]
	if !ok {
		return domain.EdgeState{}, false
	}
	return e.state(), true
}

func (g *Graph) Nodes(sel domain.Selector) []domain.NodeState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if sel.Group == domain.GroupEdges {
		return nil
	}
	var out []domain.NodeState
	for _, id := range g.nodeOrder {
		n := g.nodes[id]
		if sel.ID != "" && sel.ID != id {
			continue
		}
		if !sel.MatchClasses(n.classes) {
			continue
		}
		out = append(out, n.state())
	}
	return out
}

func (g *Graph) Edges(sel domain.Selector) []domain.EdgeState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if sel.Group == domain.GroupNodes {
		return nil
	}
	var out []domain.EdgeState
	for _, id := range g.edgeOrder {
		e := g.edges[id]
		switch {
		case sel.ID != "" && sel.ID != id:
			continue
		case sel.Source != "" && sel.Source != e.def.Source:
			continue
		case sel.Target != "" && sel.Target != e.def.Target:
			continue
		case !sel.MatchClasses(e.classes):
			continue
		}
		out = append(out, e.state())
	}
	return out
}

func (g *Graph) ConnectedEdges(nodeID string) []domain.EdgeState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []domain.EdgeState
	for _, id := range g.edgeOrder {
		e := g.edges[id]
		if e.def.Source == nodeID || e.def.Target == nodeID {
			out = append(out, e.state())
		}
	}
	return out
}

// AddNode inserts a node. Adding an id that already exists is a no-op.
func (g *Graph) AddNode(def domain.NodeDefinition, at domain.Position) {
	g.mu.Lock()
	if _, ok := g.nodes[def.ID]; ok {
		g.mu.Unlock()
		return
	}
	if def.Position != nil {
		at = *def.Position
	}
	g.nodes[def.ID] = &node{
		def:     def,
		defined: slices.Clone(def.Classes),
		classes: slices.Clone(def.Classes),
		at:      at,
	}
	g.nodeOrder = append(g.nodeOrder, def.ID)
	g.pending.Added = append(g.pending.Added, def.ID)
	g.flushLocked()
}

// UpdateNode replaces a node's data and definition classes, keeping its
// position and state classes
func (g *Graph) UpdateNode(def domain.NodeDefinition) {
	g.mu.Lock()
	n, ok := g.nodes[def.ID]
	if !ok {
		g.mu.Unlock()
		return
	}
	n.classes = slices.DeleteFunc(n.classes, func(c string) bool {
		return slices.Contains(n.defined, c)
	})
	for _, c := range def.Classes {
		if !slices.Contains(n.classes, c) {
			n.classes = append(n.classes, c)
		}
	}
	n.defined = slices.Clone(def.Classes)
	def.Position = nil
	n.def = def
	g.pending.Changed = append(g.pending.Changed, def.ID)
	g.flushLocked()
}

// AddEdge inserts an edge between two existing nodes. Adding an id that
// already exists is a no-op.
func (g *Graph) AddEdge(def domain.EdgeDefinition) error {
	g.mu.Lock()
	if _, ok := g.edges[def.ID]; ok {
		g.mu.Unlock()
		return nil
	}
	_, src := g.nodes[def.Source]
	_, dst := g.nodes[def.Target]
	if !src || !dst {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrMissingEndpoint, def.ID)
	}
	g.edges[def.ID] = &edge{def: def, classes: slices.Clone(def.Classes)}
	g.edgeOrder = append(g.edgeOrder, def.ID)
	g.pending.Added = append(g.pending.Added, def.ID)
	g.flushLocked()
	return nil
}

// Remove deletes elements by id. Removing a node removes its incident edges.
// Returns every id actually removed.
func (g *Graph) Remove(ids ...string) []string {
	g.mu.Lock()
	var removed []string
	for _, id := range ids {
		if _, ok := g.edges[id]; ok {
			g.removeEdgeLocked(id)
			removed = append(removed, id)
			continue
		}
		if _, ok := g.nodes[id]; !ok {
			continue
		}
		for _, eid := range slices.Clone(g.edgeOrder) {
			e := g.edges[eid]
			if e.def.Source == id || e.def.Target == id {
				g.removeEdgeLocked(eid)
				removed = append(removed, eid)
			}
		}
		delete(g.nodes, id)
		g.nodeOrder = slices.DeleteFunc(g.nodeOrder, func(s string) bool { return s == id })
		removed = append(removed, id)
	}
	g.pending.Removed = append(g.pending.Removed, removed...)
	g.flushLocked()
	return removed
}

func (g *Graph) removeEdgeLocked(id string) {
	delete(g.edges, id)
	g.edgeOrder = slices.DeleteFunc(g.edgeOrder, func(s string) bool { return s == id })
}

// Batch runs fn and delivers every mutation it makes as one update
func (g *Graph) Batch(fn func()) {
	g.mu.Lock()
	g.batchDepth++
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.batchDepth--
		g.flushLocked()
	}()
	fn()
}

// flushLocked delivers the pending update outside a batch and unlocks g.mu
func (g *Graph) flushLocked() {
	if g.batchDepth > 0 || g.pending.IsEmpty() {
		g.mu.Unlock()
		return
	}
	u := g.pending
	g.pending = Update{}
	subs := make([]func(Update), 0, len(g.subs))
	for _, id := range slices.Sorted(maps.Keys(g.subs)) {
		subs = append(subs, g.subs[id])
	}
	g.mu.Unlock()
	for _, fn := range subs {
		fn(u)
	}
}

func (g *Graph) AddClass(id string, classes ...string) {
	g.mu.Lock()
	if list := g.classesLocked(id); list != nil {
		changed := false
		for _, c := range classes {
			if !slices.Contains(*list, c) {
				*list = append(*list, c)
				changed = true
			}
		}
		if changed {
			g.pending.Changed = append(g.pending.Changed, id)
		}
	}
	g.flushLocked()
}

func (g *Graph) RemoveClass(id string, classes ...string) {
	g.mu.Lock()
	if list := g.classesLocked(id); list != nil {
		before := len(*list)
		*list = slices.DeleteFunc(*list, func(c string) bool { return slices.Contains(classes, c) })
		if len(*list) != before {
			g.pending.Changed = append(g.pending.Changed, id)
		}
	}
	g.flushLocked()
}

func (g *Graph) classesLocked(id string) *[]string {
	if n, ok := g.nodes[id]; ok {
		return &n.classes
	}
	if e, ok := g.edges[id]; ok {
		return &e.classes
	}
	return nil
}

func (g *Graph) SetDegree(id string, degree int) {
	g.mu.Lock()
	if n, ok := g.nodes[id]; ok && n.degree != degree {
		n.degree = degree
		g.pending.Changed = append(g.pending.Changed, id)
	}
	g.flushLocked()
}

func (g *Graph) SetPosition(id string, at domain.Position) {
	g.mu.Lock()
	if n, ok := g.nodes[id]; ok && n.at != at {
		n.at = at
		g.pending.Changed = append(g.pending.Changed, id)
	}
	g.flushLocked()
}

func (g *Graph) Positions() map[string]domain.Position {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string]domain.Position, len(g.nodes))
	for id, n := range g.nodes {
		out[id] = n.at
	}
	return out
}

func (g *Graph) Viewport() ports.Viewport {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.viewport
}

// Fit zooms and pans so the given nodes (all nodes when ids is empty) fill
// the canvas with padding on every side
func (g *Graph) Fit(ids []string, padding float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(ids) == 0 {
		ids = g.nodeOrder
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	found := false
	for _, id := range ids {
		n, ok := g.nodes[id]
		if !ok {
			continue
		}
		found = true
		minX, maxX = math.Min(minX, n.at.X), math.Max(maxX, n.at.X)
		minY, maxY = math.Min(minY, n.at.Y), math.Max(maxY, n.at.Y)
	}
	if !found {
		return
	}

	w := maxX - minX + 2*padding
	h := maxY - minY + 2*padding
	zoom := 1.0
	if w > 0 && h > 0 {
		zoom = math.Min(g.width/w, g.height/h)
	}
	center := domain.Position{X: (minX + maxX) / 2, Y: (minY + maxY) / 2}
	g.viewport = ports.Viewport{
		Zoom: zoom,
		Pan: domain.Position{
			X: g.width/2 - center.X*zoom,
			Y: g.height/2 - center.Y*zoom,
		},
	}
}

// Animate moves the viewport. The in-memory view has no frames to render,
// so the target is applied at once.
func (g *Graph) Animate(to ports.Viewport) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if to.Zoom <= 0 {
		to.Zoom = g.viewport.Zoom
	}
	g.viewport = to
}

func (n *node) state() domain.NodeState {
	def := n.def
	def.Classes = slices.Clone(n.classes)
	def.Position = nil
	return domain.NodeState{NodeDefinition: def, At: n.at, Degree: n.degree}
}

func (e *edge) state() domain.EdgeState {
	def := e.def
	def.Classes = slices.Clone(e.classes)
	return domain.EdgeState{EdgeDefinition: def}
}
