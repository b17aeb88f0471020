package ports

import (
	"context"

	"vaultgraph/internal/domain"
)

// DataStore contributes nodes and edges from one origin store to a workspace
type DataStore interface {
	StoreID() domain.StoreID

	// Get returns the node definition for one id, or nil when the store has
	// nothing to show for it
	Get(ctx context.Context, id domain.VizID) (*domain.NodeDefinition, error)

	// GetNeighbourhood returns the given nodes and every node one hop away
	GetNeighbourhood(ctx context.Context, ids []domain.VizID) ([]domain.NodeDefinition, error)

	// ConnectNodes returns the edges between newNodes and all nodes, in both
	// directions, without counting a pair of new nodes twice
	ConnectNodes(ctx context.Context, all, newNodes []domain.NodeDefinition) ([]domain.EdgeDefinition, error)
}

// EdgeSource is a DataStore that can rebuild the outgoing edges of a single node
type EdgeSource interface {
	DataStore
	BuildEdges(ctx context.Context, id domain.VizID, targets []string) ([]domain.EdgeDefinition, error)
}

// GraphView is the opaque rendered graph container
type GraphView interface {
	Has(id string) bool
	Node(id string) (domain.NodeState, bool)
	Edge(id string) (domain.EdgeState, bool)
	Nodes(sel domain.Selector) []domain.NodeState
	Edges(sel domain.Selector) []domain.EdgeState
	ConnectedEdges(nodeID string) []domain.EdgeState

	AddNode(def domain.NodeDefinition, at domain.Position)
	// UpdateNode replaces a node's data and definition classes in place,
	// keeping its position and state classes
	UpdateNode(def domain.NodeDefinition)
	AddEdge(def domain.EdgeDefinition) error
	Remove(ids ...string) []string

	// Batch coalesces every mutation made inside fn into one view update
	Batch(fn func())

	AddClass(id string, classes ...string)
	RemoveClass(id string, classes ...string)
	SetDegree(id string, degree int)

	SetPosition(id string, at domain.Position)
	Positions() map[string]domain.Position

	Viewport() Viewport
	Fit(ids []string, padding float64)
	Animate(to Viewport)
}

// Viewport is the visible window onto the graph
type Viewport struct {
	Zoom float64
	Pan  domain.Position
}

// Layout computes positions for a snapshot of the graph. Implementations
// must return ctx.Err() promptly once ctx is cancelled and must not mutate
// the view themselves.
type Layout interface {
	Name() string
	Run(ctx context.Context, nodes []domain.NodeState, edges []domain.EdgeState) (map[string]domain.Position, error)
}
