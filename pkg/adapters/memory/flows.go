package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/logicflow/pkg/domain"
)

// FlowStore implements ports.FlowStore in memory.
// Safe for concurrent use.
type FlowStore struct {
	data map[string]*domain.Flow
	mu   sync.RWMutex
}

// NewFlowStore creates a new in-memory flow store, optionally seeded.
func NewFlowStore(seed ...*domain.Flow) *FlowStore {
	s := &FlowStore{data: make(map[string]*domain.Flow)}
	for _, f := range seed {
		s.data[f.ID] = f.Clone()
	}
	return s
}

// Save stores a copy of the flow.
func (s *FlowStore) Save(ctx context.Context, flow *domain.Flow) error {
	copied := flow.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[flow.ID] = copied
	return nil
}

// Get returns a copy of the flow.
func (s *FlowStore) Get(ctx context.Context, id string) (*domain.Flow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	flow, ok := s.data[id]
	if !ok {
		return nil, domain.ErrFlowNotFound
	}
	return flow.Clone(), nil
}

// Delete removes the flow.
func (s *FlowStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns flow summaries, most recently updated first.
func (s *FlowStore) List(ctx context.Context) ([]domain.FlowSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.FlowSummary, 0, len(s.data))
	for _, f := range s.data {
		out = append(out, f.Summary())
	}
	SortSummaries(out)
	return out, nil
}

// SortSummaries orders summaries by UpdatedAt descending, then by ID.
func SortSummaries(list []domain.FlowSummary) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].UpdatedAt.Equal(list[j].UpdatedAt) {
			return list[i].UpdatedAt.After(list[j].UpdatedAt)
		}
		return list[i].ID < list[j].ID
	})
}
