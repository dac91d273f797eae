package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/logicflow/pkg/adapters/postgres"
	"github.com/aretw0/logicflow/pkg/ports"
)

var _ ports.FlowStore = (*postgres.FlowStore)(nil)

// Set LOGICFLOW_TEST_POSTGRES_DSN to a disposable database to run these.
func TestFlowStore_Contract(t *testing.T) {
	dsn := os.Getenv("LOGICFLOW_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("LOGICFLOW_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	store, err := postgres.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.DropSchema(context.Background())
		store.Close()
	})

	ports.RunFlowStoreContract(t, store)
}
