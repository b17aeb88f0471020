package workspace

import (
	"context"
	"maps"
	"math"
	"slices"

	"vaultgraph/internal/domain"
)

// MergeOptions controls how a batch enters the live graph
type MergeOptions struct {
	// Batch coalesces the view mutations into one update
	Batch bool
	// Notify raises exactly one ElementsChanged after the merge and
	// recomputes derived classes
	Notify bool
	// Parents are node ids new nodes are placed around
	Parents []string
}

// MergeResult separates the elements now present for a batch from the ones
// the merge created
type MergeResult struct {
	Merged domain.Elements
	Added  domain.Elements
}

// Merge inserts every element whose id is not live yet. Live elements are
// left untouched: no data overwrite, no position reset.
func (w *Workspace) Merge(ctx context.Context, els domain.Elements, opts MergeOptions) MergeResult {
	w.mu.Lock()
	res, events := w.mergeLocked(ctx, els, opts)
	w.mu.Unlock()
	w.emit(events...)
	return res
}

// mergeLocked is the check-and-insert step; callers hold w.mu
func (w *Workspace) mergeLocked(ctx context.Context, els domain.Elements, opts MergeOptions) (MergeResult, []Event) {
	var res MergeResult
	apply := func() {
		plan := w.newPlacement(opts.Parents, els.Edges)
		for _, def := range els.Nodes {
			if w.view.Has(def.ID) {
				res.Merged.Nodes = append(res.Merged.Nodes, def)
				continue
			}
			w.view.AddNode(def, plan.place(def))
			res.Merged.Nodes = append(res.Merged.Nodes, def)
			res.Added.Nodes = append(res.Added.Nodes, def)
		}
		for _, def := range els.Edges {
			if w.view.Has(def.ID) {
				res.Merged.Edges = append(res.Merged.Edges, def)
				continue
			}
			if err := w.view.AddEdge(def); err != nil {
				w.logger.Warn("skipping edge", "edge", def.ID, "error", err)
				continue
			}
			res.Merged.Edges = append(res.Merged.Edges, def)
			res.Added.Edges = append(res.Added.Edges, def)
		}
	}
	if opts.Batch {
		w.view.Batch(apply)
	} else {
		apply()
	}
	w.metrics.recordMerge(ctx, res.Merged.Len(), res.Added.Len())

	if !opts.Notify {
		return res, nil
	}
	return res, w.notifyLocked(elementIDs(res.Added), nil)
}

// notifyLocked recomputes derived classes, schedules a layout when the
// structure changed and returns the single structural-change event
func (w *Workspace) notifyLocked(added, removed []string) []Event {
	w.restyleLocked()
	if len(added) > 0 || len(removed) > 0 {
		w.layout.schedule()
	}
	return []Event{ElementsChanged{Added: added, Removed: removed}}
}

// restyleLocked recomputes degree, has-incoming/has-outgoing classes, the
// filtered class and style group classes of every node
func (w *Workspace) restyleLocked() {
	nodes := w.view.Nodes(domain.SelectNodes())
	edges := w.view.Edges(domain.SelectEdges())

	derived := make(map[string]map[string]bool, len(nodes))
	degree := make(map[string]int, len(nodes))
	for _, e := range edges {
		token := domain.EdgeToken(e.EdgeDefinition)
		addDerived(derived, e.Source, domain.OutgoingClass(token))
		addDerived(derived, e.Target, domain.IncomingClass(token))
		degree[e.Source]++
		degree[e.Target]++
	}

	for _, g := range w.styleGroups {
		w.styleClasses[g.Class] = true
	}

	w.view.Batch(func() {
		for _, n := range nodes {
			want := derived[n.ID]
			var drop, add []string
			for _, c := range n.Classes {
				if domain.IsDerivedClass(c) && !want[c] {
					drop = append(drop, c)
				}
			}
			for c := range want {
				if !n.HasClass(c) {
					add = append(add, c)
				}
			}

			if !w.filter.IsEmpty() && !w.filter.Match(n) {
				add = append(add, domain.ClassFiltered)
			} else if n.HasClass(domain.ClassFiltered) {
				drop = append(drop, domain.ClassFiltered)
			}

			for class := range w.styleClasses {
				if w.styleMatch(class, n) {
					if !n.HasClass(class) {
						add = append(add, class)
					}
				} else if n.HasClass(class) {
					drop = append(drop, class)
				}
			}

			if len(drop) > 0 {
				w.view.RemoveClass(n.ID, drop...)
			}
			if len(add) > 0 {
				w.view.AddClass(n.ID, add...)
			}
			w.view.SetDegree(n.ID, degree[n.ID])
		}
	})
}

func (w *Workspace) styleMatch(class string, n domain.NodeState) bool {
	for _, g := range w.styleGroups {
		if g.Class == class && g.Query.Match(n) {
			return true
		}
	}
	return false
}

func addDerived(m map[string]map[string]bool, id, class string) {
	if m[id] == nil {
		m[id] = make(map[string]bool)
	}
	m[id][class] = true
}

// placement positions the new nodes of one merge. Nodes are placed one
// after another so later nodes avoid earlier ones and their edges.
type placement struct {
	w         *Workspace
	parents   []string
	edges     []domain.EdgeDefinition
	positions map[string]domain.Position
	segments  [][2]string
}

func (w *Workspace) newPlacement(parents []string, edges []domain.EdgeDefinition) *placement {
	p := &placement{
		w:         w,
		parents:   parents,
		edges:     edges,
		positions: w.view.Positions(),
	}
	for _, e := range w.view.Edges(domain.SelectEdges()) {
		p.segments = append(p.segments, [2]string{e.Source, e.Target})
	}
	return p
}

func (p *placement) place(def domain.NodeDefinition) domain.Position {
	if def.Position != nil {
		p.positions[def.ID] = *def.Position
		return *def.Position
	}

	parentID := p.parentFor(def.ID)
	var anchor domain.Position
	if parentID != "" {
		anchor = p.positions[parentID]
	} else {
		anchor = p.centroid()
	}

	reach := p.w.placer.opts.Radius * float64(p.w.placer.opts.Rings+1)
	local := map[string]bool{}
	for id, at := range p.positions {
		if math.Hypot(at.X-anchor.X, at.Y-anchor.Y) <= reach {
			local[id] = true
		}
	}
	for _, s := range p.segments {
		if s[0] == parentID {
			local[s[1]] = true
		}
		if s[1] == parentID {
			local[s[0]] = true
		}
	}

	var occupied []domain.Position
	for id := range local {
		occupied = append(occupied, p.positions[id])
	}
	var segments []Segment
	for _, s := range p.segments {
		if s[0] == parentID || s[1] == parentID {
			continue
		}
		if !local[s[0]] && !local[s[1]] {
			continue
		}
		a, okA := p.positions[s[0]]
		b, okB := p.positions[s[1]]
		if okA && okB {
			segments = append(segments, Segment{a, b})
		}
	}

	at := p.w.placer.Place(anchor, occupied, segments)
	p.positions[def.ID] = at
	if parentID != "" {
		p.segments = append(p.segments, [2]string{parentID, def.ID})
	}
	return at
}

// parentFor picks the first parent connected to id by an edge of the batch,
// else the first parent that has a position
func (p *placement) parentFor(id string) string {
	for _, parent := range p.parents {
		if _, ok := p.positions[parent]; !ok {
			continue
		}
		for _, e := range p.edges {
			if (e.Source == parent && e.Target == id) || (e.Target == parent && e.Source == id) {
				return parent
			}
		}
	}
	for _, parent := range p.parents {
		if _, ok := p.positions[parent]; ok && parent != id {
			return parent
		}
	}
	return ""
}

func (p *placement) centroid() domain.Position {
	if len(p.positions) == 0 {
		return domain.Position{}
	}
	var c domain.Position
	for _, id := range slices.Sorted(maps.Keys(p.positions)) {
		c.X += p.positions[id].X
		c.Y += p.positions[id].Y
	}
	n := float64(len(p.positions))
	return domain.Position{X: c.X / n, Y: c.Y / n}
}
