package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/logicflow/pkg/domain"
	"github.com/aretw0/logicflow/pkg/dsl"
)

// RunConversationStoreContract runs a suite of tests to verify that a
// ConversationStore implementation adheres to the defined interface contract.
func RunConversationStoreContract(t *testing.T, store ConversationStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		conv := domain.NewConversation(sessionID)
		conv.FlowText = "INPUT: A\nOUTPUT: B"
		conv.Turns = append(conv.Turns,
			domain.Turn{Role: domain.RoleUser, Content: "add a check"},
			domain.Turn{Role: domain.RoleAssistant, Content: "ok", FlowText: conv.FlowText},
		)

		err := store.Save(ctx, sessionID, conv)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, conv.ID, loaded.ID)
		assert.Equal(t, conv.FlowText, loaded.FlowText)
		assert.Equal(t, conv.Turns, loaded.Turns)
		assert.WithinDuration(t, conv.UpdatedAt, loaded.UpdatedAt, time.Second)
	})

	t.Run("Load Returns A Copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Turns[0].Content = "mutated"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "add a check", again.Turns[0].Content)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewConversation(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("Ids That Look Like Store Internals", func(t *testing.T) {
		ids := []string{"index", "flows", "sessions"}
		for _, id := range ids {
			require.NoError(t, store.Save(ctx, id, domain.NewConversation(id)), "save %s", id)
		}
		defer func() {
			for _, id := range ids {
				_ = store.Delete(ctx, id)
			}
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		for _, id := range ids {
			assert.Contains(t, sessions, id)
			conv, err := store.Load(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, id, conv.ID)
		}
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewConversation(id1))
		_ = store.Save(ctx, id2, domain.NewConversation(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// ContractFlow returns a small saved flow used by RunFlowStoreContract.
func ContractFlow(id string) *domain.Flow {
	now := time.Now().UTC().Truncate(time.Millisecond)

	b := dsl.New().Title("Checkout")
	b.Input("Cart").Describe("Products and quantities").Go("In stock?")
	b.Decision("In stock?").Yes("Order placed").No("Sold out")
	b.Output("Order placed")
	b.Output("Sold out")
	g, err := b.Build()
	if err != nil {
		panic(err)
	}

	return &domain.Flow{
		ID:          id,
		Title:       "Checkout",
		Description: "Stock check before payment",
		Graph:       *g,
		Layout:      domain.DefaultLayout(g),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// RunFlowStoreContract runs a suite of tests to verify that a FlowStore
// implementation adheres to the defined interface contract.
func RunFlowStoreContract(t *testing.T, store FlowStore) {
	ctx := context.Background()
	flowID := "contract-test-flow-" + time.Now().Format("20060102150405")

	t.Run("Save and Get", func(t *testing.T) {
		flow := ContractFlow(flowID)
		require.NoError(t, store.Save(ctx, flow))

		got, err := store.Get(ctx, flowID)
		require.NoError(t, err)
		assert.Equal(t, flow.Title, got.Title)
		assert.Equal(t, flow.Description, got.Description)
		assert.Equal(t, flow.Graph, got.Graph)
		assert.Equal(t, flow.Layout, got.Layout)
		assert.WithinDuration(t, flow.UpdatedAt, got.UpdatedAt, time.Second)
	})

	t.Run("Save Replaces", func(t *testing.T) {
		flow := ContractFlow(flowID)
		flow.Title = "Checkout v2"
		flow.Graph.Nodes = flow.Graph.Nodes[:1]
		flow.Graph.Edges = []domain.Edge{}
		require.NoError(t, store.Save(ctx, flow))

		got, err := store.Get(ctx, flowID)
		require.NoError(t, err)
		assert.Equal(t, "Checkout v2", got.Title)
		assert.Len(t, got.Graph.Nodes, 1)
	})

	t.Run("Get Returns A Copy", func(t *testing.T) {
		got, err := store.Get(ctx, flowID)
		require.NoError(t, err)
		got.Graph.Nodes[0].Title = "mutated"

		again, err := store.Get(ctx, flowID)
		require.NoError(t, err)
		assert.Equal(t, "Cart", again.Graph.Nodes[0].Title)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "non-existent-"+flowID)
		assert.ErrorIs(t, err, domain.ErrFlowNotFound)
	})

	t.Run("List", func(t *testing.T) {
		older := ContractFlow(flowID + "-older")
		older.UpdatedAt = older.UpdatedAt.Add(-time.Hour)
		newer := ContractFlow(flowID + "-newer")
		newer.UpdatedAt = newer.UpdatedAt.Add(time.Hour)
		require.NoError(t, store.Save(ctx, older))
		require.NoError(t, store.Save(ctx, newer))
		defer func() {
			_ = store.Delete(ctx, older.ID)
			_ = store.Delete(ctx, newer.ID)
		}()

		list, err := store.List(ctx)
		require.NoError(t, err)

		pos := map[string]int{}
		for i, s := range list {
			pos[s.ID] = i
		}
		require.Contains(t, pos, older.ID)
		require.Contains(t, pos, newer.ID)
		require.Contains(t, pos, flowID)
		assert.Less(t, pos[newer.ID], pos[flowID])
		assert.Less(t, pos[flowID], pos[older.ID])
	})

	t.Run("Ids That Look Like Store Internals", func(t *testing.T) {
		ids := []string{"index", "flows", "sessions"}
		for _, id := range ids {
			require.NoError(t, store.Save(ctx, ContractFlow(id)), "save %s", id)
		}
		defer func() {
			for _, id := range ids {
				_ = store.Delete(ctx, id)
			}
		}()

		list, err := store.List(ctx)
		require.NoError(t, err)
		listed := map[string]bool{}
		for _, s := range list {
			listed[s.ID] = true
		}
		for _, id := range ids {
			assert.True(t, listed[id], "%s should be listed", id)
			got, err := store.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, id, got.ID)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, flowID))

		_, err := store.Get(ctx, flowID)
		assert.ErrorIs(t, err, domain.ErrFlowNotFound)

		assert.NoError(t, store.Delete(ctx, flowID), "deleting twice is not an error")
	})
}
