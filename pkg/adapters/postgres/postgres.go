// Package postgres stores saved flows in PostgreSQL via pgx.
// The graph and its editor layout are kept as JSONB columns.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aretw0/logicflow/pkg/domain"
)

// FlowStore implements ports.FlowStore using PostgreSQL.
type FlowStore struct {
	db *pgxpool.Pool
}

// New creates a FlowStore backed by the given pgx connection pool.
func New(db *pgxpool.Pool) *FlowStore {
	return &FlowStore{db: db}
}

// Connect opens a pool for dsn and makes sure the schema exists.
func Connect(ctx context.Context, dsn string) (*FlowStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	s := New(pool)
	if err := s.CreateSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: schema: %w", err)
	}
	return s, nil
}

// Close releases the pool.
func (s *FlowStore) Close() {
	s.db.Close()
}

// Save inserts or replaces the flow.
func (s *FlowStore) Save(ctx context.Context, flow *domain.Flow) error {
	layout := flow.Layout
	if layout == nil {
		layout = domain.Layout{}
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO logicflow_flows (id, title, description, graph, layout, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			graph = EXCLUDED.graph,
			layout = EXCLUDED.layout,
			updated_at = EXCLUDED.updated_at`,
		flow.ID, flow.Title, flow.Description, flow.Graph, layout, flow.CreatedAt, flow.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: save flow %s: %w", flow.ID, err)
	}
	return nil
}

// Get loads one flow.
func (s *FlowStore) Get(ctx context.Context, id string) (*domain.Flow, error) {
	var f domain.Flow
	err := s.db.QueryRow(ctx, `
		SELECT id, title, description, graph, layout, created_at, updated_at
		FROM logicflow_flows WHERE id = $1`, id,
	).Scan(&f.ID, &f.Title, &f.Description, &f.Graph, &f.Layout, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFlowNotFound
		}
		return nil, fmt.Errorf("postgres: get flow %s: %w", id, err)
	}
	f.CreatedAt = f.CreatedAt.UTC()
	f.UpdatedAt = f.UpdatedAt.UTC()
	return &f, nil
}

// Delete removes the flow. Deleting a missing flow is not an error.
func (s *FlowStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM logicflow_flows WHERE id = $1`, id); err != nil {
		return fmt.Errorf("postgres: delete flow %s: %w", id, err)
	}
	return nil
}

// List returns summaries, most recently updated first.
func (s *FlowStore) List(ctx context.Context) ([]domain.FlowSummary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, title, description, updated_at
		FROM logicflow_flows ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list flows: %w", err)
	}
	defer rows.Close()

	out := []domain.FlowSummary{}
	for rows.Next() {
		var sum domain.FlowSummary
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.Description, &sum.UpdatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan flow: %w", err)
		}
		sum.UpdatedAt = sum.UpdatedAt.UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}
