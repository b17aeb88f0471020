package application

import "vaultgraph/internal/domain"

// Re-export domain types for use by adapters
type (
	VizID          = domain.VizID
	NodeDefinition = domain.NodeDefinition
	EdgeDefinition = domain.EdgeDefinition
	Elements       = domain.Elements
	NodeState      = domain.NodeState
	EdgeState      = domain.EdgeState
)

// ParseVizID parses a serialized "<store>:<id>" node id
func ParseVizID(s string) (VizID, error) {
	return domain.ParseVizID(s)
}
