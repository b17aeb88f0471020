package memgraph

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"

	"vaultgraph/internal/domain"
	"vaultgraph/internal/ports"
)

// Layout names accepted by LayoutByName
const (
	LayoutForce  = "force"
	LayoutCircle = "circle"
	LayoutGrid   = "grid"
)

// LayoutNames lists the registered layouts in display order
func LayoutNames() []string {
	return []string{LayoutForce, LayoutCircle, LayoutGrid}
}

// LayoutByName returns a layout by its configured name
func LayoutByName(name string) (ports.Layout, error) {
	switch name {
	case "", LayoutForce:
		return Force{Iterations: 150, Distance: 120}, nil
	case LayoutCircle:
		return Circle{Radius: 300}, nil
	case LayoutGrid:
		return Grid{Spacing: 160}, nil
	default:
		return nil, fmt.Errorf("unknown layout %q (expected one of %v)", name, LayoutNames())
	}
}

// Grid places nodes row by row in id order
type Grid struct {
	Spacing float64
}

func (Grid) Name() string { return LayoutGrid }

func (l Grid) Run(ctx context.Context, nodes []domain.NodeState, _ []domain.EdgeState) (map[string]domain.Position, error) {
	free := movable(nodes)
	cols := int(math.Ceil(math.Sqrt(float64(len(free)))))
	out := make(map[string]domain.Position, len(free))
	for i, id := range free {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[id] = domain.Position{
			X: float64(i%cols) * l.Spacing,
			Y: float64(i/cols) * l.Spacing,
		}
	}
	return out, nil
}

// Circle places nodes evenly on a circle in id order
type Circle struct {
	Radius float64
}

func (Circle) Name() string { return LayoutCircle }

func (l Circle) Run(ctx context.Context, nodes []domain.NodeState, _ []domain.EdgeState) (map[string]domain.Position, error) {
	free := movable(nodes)
	out := make(map[string]domain.Position, len(free))
	for i, id := range free {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		angle := 2 * math.Pi * float64(i) / float64(len(free))
		out[id] = domain.Position{X: l.Radius * math.Cos(angle), Y: l.Radius * math.Sin(angle)}
	}
	return out, nil
}

// Force is a deterministic spring embedder seeded from current positions.
// Pinned nodes exert force but never move.
type Force struct {
	Iterations int
	Distance   float64
}

func (Force) Name() string { return LayoutForce }

func (l Force) Run(ctx context.Context, nodes []domain.NodeState, edges []domain.EdgeState) (map[string]domain.Position, error) {
	if len(nodes) == 0 {
		return map[string]domain.Position{}, nil
	}
	pos := make(map[string]domain.Position, len(nodes))
	pinned := make(map[string]bool)
	ids := make([]string, 0, len(nodes))
	for i, n := range nodes {
		at := n.At
		// separate coincident seeds deterministically
		at.X += float64(i) * 1e-3
		pos[n.ID] = at
		pinned[n.ID] = n.HasClass(domain.ClassPinned)
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)

	k := l.Distance
	temp := k
	for iter := 0; iter < l.Iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		disp := make(map[string]domain.Position, len(ids))
		for i, a := range ids {
			for _, b := range ids[i+1:] {
				dx, dy := pos[a].X-pos[b].X, pos[a].Y-pos[b].Y
				d := math.Max(math.Hypot(dx, dy), 0.01)
				f := k * k / d
				disp[a] = domain.Position{X: disp[a].X + dx/d*f, Y: disp[a].Y + dy/d*f}
				disp[b] = domain.Position{X: disp[b].X - dx/d*f, Y: disp[b].Y - dy/d*f}
			}
		}
		for _, e := range edges {
			s, okS := pos[e.Source]
			t, okT := pos[e.Target]
			if !okS || !okT || e.Source == e.Target {
				continue
			}
			dx, dy := s.X-t.X, s.Y-t.Y
			d := math.Max(math.Hypot(dx, dy), 0.01)
			f := d * d / k
			disp[e.Source] = domain.Position{X: disp[e.Source].X - dx/d*f, Y: disp[e.Source].Y - dy/d*f}
			disp[e.Target] = domain.Position{X: disp[e.Target].X + dx/d*f, Y: disp[e.Target].Y + dy/d*f}
		}
		for _, id := range ids {
			if pinned[id] {
				continue
			}
			d := disp[id]
			length := math.Hypot(d.X, d.Y)
			if length == 0 {
				continue
			}
			step := math.Min(length, temp)
			pos[id] = domain.Position{X: pos[id].X + d.X/length*step, Y: pos[id].Y + d.Y/length*step}
		}
		temp *= 0.95
	}

	out := make(map[string]domain.Position, len(ids))
	for _, id := range ids {
		if !pinned[id] {
			out[id] = pos[id]
		}
	}
	return out, nil
}

func movable(nodes []domain.NodeState) []string {
	var ids []string
	for _, n := range nodes {
		if !n.HasClass(domain.ClassPinned) {
			ids = append(ids, n.ID)
		}
	}
	slices.Sort(ids)
	return ids
}
