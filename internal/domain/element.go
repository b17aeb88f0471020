package domain

import "slices"

// Group distinguishes nodes from edges in the live graph
type Group int

const (
	GroupAny Group = iota
	GroupNodes
	GroupEdges
)

// Position is a point in graph (model) coordinates
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeDefinition describes a node to be merged into the live graph
type NodeDefinition struct {
	ID       string    `json:"id"` // serialized VizID
	Name     string    `json:"name"`
	Path     string    `json:"path,omitempty"` // vault-relative, empty for dangling/terminal nodes
	Store    StoreID   `json:"store"`
	Dangling bool      `json:"dangling,omitempty"`
	Tags     []string  `json:"tags,omitempty"`
	Aliases  []string  `json:"aliases,omitempty"`
	Classes  []string  `json:"classes,omitempty"`
	Position *Position `json:"position,omitempty"`
}

// EdgeDefinition describes an edge between two serialized node ids.
// ID is deterministic within one extraction: "<source>-><target>#<n>".
type EdgeDefinition struct {
	ID          string   `json:"id"`
	Source      string   `json:"source"`
	Target      string   `json:"target"`
	Type        string   `json:"type,omitempty"`         // raw token, used for classes
	DisplayType string   `json:"display_type,omitempty"` // underscores rendered as spaces
	Context     string   `json:"context,omitempty"`
	Count       int      `json:"count"`
	Classes     []string `json:"classes,omitempty"`
}

// Elements is a batch of node and edge definitions
type Elements struct {
	Nodes []NodeDefinition `json:"nodes"`
	Edges []EdgeDefinition `json:"edges"`
}

// Len returns the total number of elements in the batch
func (e Elements) Len() int {
	return len(e.Nodes) + len(e.Edges)
}

// IsEmpty reports whether the batch has no elements
func (e Elements) IsEmpty() bool {
	return e.Len() == 0
}

// NodeIDs returns the ids of all node definitions in order
func (e Elements) NodeIDs() []string {
	ids := make([]string, 0, len(e.Nodes))
	for _, n := range e.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

// EdgeIDs returns the ids of all edge definitions in order
func (e Elements) EdgeIDs() []string {
	ids := make([]string, 0, len(e.Edges))
	for _, ed := range e.Edges {
		ids = append(ids, ed.ID)
	}
	return ids
}

// Append adds the elements of other to e
func (e *Elements) Append(other Elements) {
	e.Nodes = append(e.Nodes, other.Nodes...)
	e.Edges = append(e.Edges, other.Edges...)
}

// NodeState is a snapshot of a live node. The embedded Classes hold the
// node's current classes, not the ones it was defined with.
type NodeState struct {
	NodeDefinition
	At     Position
	Degree int
}

// HasClass reports whether the node carries a class
func (n NodeState) HasClass(class string) bool {
	return slices.Contains(n.Classes, class)
}

// EdgeState is a snapshot of a live edge with its current classes
type EdgeState struct {
	EdgeDefinition
}

// HasClass reports whether the edge carries a class
func (e EdgeState) HasClass(class string) bool {
	return slices.Contains(e.Classes, class)
}

// Selector queries the live graph. Zero fields match everything;
// Classes must all be present.
type Selector struct {
	Group   Group
	ID      string
	Classes []string
	Source  string // edges only
	Target  string // edges only
}

// SelectNodes matches all nodes, optionally restricted to classes
func SelectNodes(classes ...string) Selector {
	return Selector{Group: GroupNodes, Classes: classes}
}

// SelectEdges matches all edges, optionally restricted to classes
func SelectEdges(classes ...string) Selector {
	return Selector{Group: GroupEdges, Classes: classes}
}

// SelectID matches the single element with the given id
func SelectID(id string) Selector {
	return Selector{ID: id}
}

// MatchClasses reports whether all selector classes are in have
func (s Selector) MatchClasses(have []string) bool {
	for _, c := range s.Classes {
		if !slices.Contains(have, c) {
			return false
		}
	}
	return true
}
