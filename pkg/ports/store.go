package ports

import (
	"context"

	"github.com/aretw0/logicflow/pkg/domain"
)

// FlowStore persists saved flows (graph plus editor layout).
type FlowStore interface {
	// Save creates or replaces the flow with flow.ID.
	Save(ctx context.Context, flow *domain.Flow) error

	// Get retrieves a flow by ID.
	// Returns domain.ErrFlowNotFound if the flow does not exist.
	Get(ctx context.Context, id string) (*domain.Flow, error)

	// Delete removes a flow. Deleting a missing flow is not an error.
	Delete(ctx context.Context, id string) error

	// List returns summaries of all flows, most recently updated first.
	List(ctx context.Context) ([]domain.FlowSummary, error)
}

// ConversationStore persists refinement chat sessions.
// This allows a chat to continue across restarts and replicas.
type ConversationStore interface {
	// Save persists the conversation for a given session ID.
	Save(ctx context.Context, sessionID string, conv *domain.Conversation) error

	// Load retrieves the conversation for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Conversation, error)

	// Delete removes the conversation for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
