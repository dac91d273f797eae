package ports

import (
	"context"

	"github.com/aretw0/logicflow/pkg/domain"
)

// CompletionRequest is one chat call to the assistant.
// Zero sampling values leave the choice to the adapter.
type CompletionRequest struct {
	Messages    []domain.Message
	Temperature float64
	TopP        float64
}

// Assistant is the external language model used by the refinement loop.
// Implementations return *domain.AssistantError on failure so callers can
// tell an unreachable service from a malformed answer.
type Assistant interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
