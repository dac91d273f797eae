package file

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/aretw0/logicflow/pkg/adapters/memory"
	"github.com/aretw0/logicflow/pkg/domain"
)

// FlowStore implements ports.FlowStore with one JSON file per flow.
type FlowStore struct {
	dir dir
}

// NewFlowStore creates a FlowStore rooted at basePath.
// If basePath is empty, it defaults to ".logicflow/flows".
func NewFlowStore(basePath string) *FlowStore {
	if basePath == "" {
		basePath = filepath.Join(".logicflow", "flows")
	}
	return &FlowStore{dir: dir{path: basePath}}
}

// Save writes the flow atomically.
func (s *FlowStore) Save(ctx context.Context, flow *domain.Flow) error {
	return s.dir.write(flow.ID, flow)
}

// Get reads a flow.
func (s *FlowStore) Get(ctx context.Context, id string) (*domain.Flow, error) {
	var flow domain.Flow
	if err := s.dir.read(id, &flow); err != nil {
		if errors.Is(err, errNotExist) {
			return nil, domain.ErrFlowNotFound
		}
		return nil, err
	}
	return &flow, nil
}

// Delete removes the flow file.
func (s *FlowStore) Delete(ctx context.Context, id string) error {
	return s.dir.remove(id)
}

// List reads every flow file and returns summaries, most recently updated first.
func (s *FlowStore) List(ctx context.Context) ([]domain.FlowSummary, error) {
	ids, err := s.dir.ids()
	if err != nil {
		return nil, err
	}

	out := make([]domain.FlowSummary, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		flow, err := s.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to read flow %s: %w", id, err)
		}
		out = append(out, flow.Summary())
	}
	memory.SortSummaries(out)
	return out, nil
}
