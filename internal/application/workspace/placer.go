package workspace

import (
	"math"

	"vaultgraph/internal/domain"
)

// PlacerOptions tunes the candidate ring around a parent node
type PlacerOptions struct {
	Radius        float64 // distance of the first ring
	Rings         int
	Angles        int     // candidates per ring
	MinSeparation float64 // closest a candidate may be to an existing node
}

// DefaultPlacerOptions returns 12 angles on 3 rings of 120 units
func DefaultPlacerOptions() PlacerOptions {
	return PlacerOptions{Radius: 120, Rings: 3, Angles: 12, MinSeparation: 40}
}

// Segment is a straight edge between two positions
type Segment struct {
	A, B domain.Position
}

// Placer picks initial positions for new nodes next to a parent
type Placer struct {
	opts PlacerOptions
}

// NewPlacer creates a placer; zero options fall back to the defaults
func NewPlacer(opts PlacerOptions) *Placer {
	def := DefaultPlacerOptions()
	if opts.Radius <= 0 {
		opts.Radius = def.Radius
	}
	if opts.Rings <= 0 {
		opts.Rings = def.Rings
	}
	if opts.Angles <= 0 {
		opts.Angles = def.Angles
	}
	if opts.MinSeparation <= 0 {
		opts.MinSeparation = def.MinSeparation
	}
	return &Placer{opts: opts}
}

// Place returns the first candidate around parent, ring by ring and angle by
// angle, that keeps MinSeparation from every node in occupied and whose edge
// to parent properly crosses none of segments. When every candidate
// conflicts it falls back to (+Radius, +Radius) from the parent.
func (p *Placer) Place(parent domain.Position, occupied []domain.Position, segments []Segment) domain.Position {
	for ring := 1; ring <= p.opts.Rings; ring++ {
		r := p.opts.Radius * float64(ring)
		for k := 0; k < p.opts.Angles; k++ {
			angle := 2 * math.Pi * float64(k) / float64(p.opts.Angles)
			c := domain.Position{
				X: parent.X + r*math.Cos(angle),
				Y: parent.Y + r*math.Sin(angle),
			}
			if p.crowded(c, occupied) || crosses(Segment{parent, c}, segments) {
				continue
			}
			return c
		}
	}
	return domain.Position{X: parent.X + p.opts.Radius, Y: parent.Y + p.opts.Radius}
}

func (p *Placer) crowded(c domain.Position, occupied []domain.Position) bool {
	for _, o := range occupied {
		if math.Hypot(c.X-o.X, c.Y-o.Y) < p.opts.MinSeparation {
			return true
		}
	}
	return false
}

func crosses(s Segment, segments []Segment) bool {
	for _, o := range segments {
		if Intersects(s, o) {
			return true
		}
	}
	return false
}

// Intersects reports whether two segments properly cross. Touching at an
// endpoint or overlapping collinearly does not count.
func Intersects(s, t Segment) bool {
	d1 := orient(t.A, t.B, s.A)
	d2 := orient(t.A, t.B, s.B)
	d3 := orient(s.A, s.B, t.A)
	d4 := orient(s.A, s.B, t.B)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func orient(a, b, c domain.Position) float64 {
	v := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	if math.Abs(v) < 1e-9 {
		return 0
	}
	return v
}
