package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/logicflow/pkg/adapters/memory"
	"github.com/aretw0/logicflow/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// FlowStore implements ports.FlowStore using Redis.
// Flows are stored as JSON strings and indexed in a sorted set scored by
// their update time in milliseconds.
type FlowStore struct {
	client *backend.Client
	prefix string
}

// NewFlowStore creates a FlowStore sharing client. An empty prefix means DefaultPrefix.
func NewFlowStore(client *backend.Client, prefix string) *FlowStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &FlowStore{client: client, prefix: prefix}
}

func (s *FlowStore) key(id string) string {
	return s.prefix + "flow:" + id
}

// indexKey lives outside the "flow:" namespace so no id can collide with it.
func (s *FlowStore) indexKey() string {
	return s.prefix + "flows"
}

// Save writes the flow and its index entry in one pipeline.
func (s *FlowStore) Save(ctx context.Context, flow *domain.Flow) error {
	data, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("failed to marshal flow: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(flow.ID), data, 0)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  float64(flow.UpdatedAt.UnixMilli()),
		Member: flow.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save flow to redis: %w", err)
	}
	return nil
}

// Get reads one flow.
func (s *FlowStore) Get(ctx context.Context, id string) (*domain.Flow, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrFlowNotFound
		}
		return nil, fmt.Errorf("failed to get flow from redis: %w", err)
	}
	return decodeFlow(val)
}

// Delete removes the flow and its index entry.
func (s *FlowStore) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns summaries, most recently updated first. Index entries whose
// value has disappeared are dropped from the index.
func (s *FlowStore) List(ctx context.Context) ([]domain.FlowSummary, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list flows: %w", err)
	}
	if len(ids) == 0 {
		return []domain.FlowSummary{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read flows: %w", err)
	}

	out := make([]domain.FlowSummary, 0, len(ids))
	var stale []any
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		flow, err := decodeFlow([]byte(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, flow.Summary())
	}
	if len(stale) > 0 {
		if err := s.client.ZRem(ctx, s.indexKey(), stale...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune flow index: %w", err)
		}
	}

	memory.SortSummaries(out)
	return out, nil
}

func decodeFlow(data []byte) (*domain.Flow, error) {
	var flow domain.Flow
	if err := json.Unmarshal(data, &flow); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flow: %w", err)
	}
	return &flow, nil
}
