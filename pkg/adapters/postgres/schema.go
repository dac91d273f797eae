package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS logicflow_flows (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    graph       JSONB NOT NULL DEFAULT '{}',
    layout      JSONB NOT NULL DEFAULT '{}',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_logicflow_flows_updated ON logicflow_flows(updated_at DESC);
`

// CreateSchema creates the logicflow_flows table if it doesn't exist.
func (s *FlowStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the logicflow_flows table.
func (s *FlowStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS logicflow_flows;`)
	return err
}
