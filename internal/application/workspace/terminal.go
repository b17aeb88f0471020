package workspace

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"vaultgraph/internal/domain"
	"vaultgraph/internal/ports"
)

// TerminalStore holds user-created annotation nodes that no document backs.
// Its nodes have no neighbourhood of their own and connect only through the
// protected edges they are created with.
type TerminalStore struct {
	mu    sync.RWMutex
	nodes map[string]domain.NodeDefinition
}

var _ ports.DataStore = (*TerminalStore)(nil)

// NewTerminalStore creates an empty terminal store
func NewTerminalStore() *TerminalStore {
	return &TerminalStore{nodes: make(map[string]domain.NodeDefinition)}
}

func (s *TerminalStore) StoreID() domain.StoreID {
	return domain.StoreTerminal
}

// Add creates a terminal node with a fresh id
func (s *TerminalStore) Add(label string) domain.NodeDefinition {
	id := domain.VizID{ID: uuid.NewString(), Store: domain.StoreTerminal}
	def := domain.NodeDefinition{
		ID:      id.String(),
		Name:    label,
		Store:   domain.StoreTerminal,
		Classes: []string{domain.ClassTerminal},
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[def.ID] = def
	return def
}

func (s *TerminalStore) Get(_ context.Context, id domain.VizID) (*domain.NodeDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.nodes[id.String()]
	if !ok {
		return nil, nil
	}
	return &def, nil
}

func (s *TerminalStore) GetNeighbourhood(_ context.Context, ids []domain.VizID) ([]domain.NodeDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var defs []domain.NodeDefinition
	for _, id := range ids {
		if def, ok := s.nodes[id.String()]; ok {
			defs = append(defs, def)
		}
	}
	return defs, nil
}

func (s *TerminalStore) ConnectNodes(context.Context, []domain.NodeDefinition, []domain.NodeDefinition) ([]domain.EdgeDefinition, error) {
	return nil, nil
}
