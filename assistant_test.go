package logicflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/logicflow/pkg/domain"
	"github.com/aretw0/logicflow/pkg/ports"
)

// scriptedAssistant answers with the queued replies in order and records requests.
type scriptedAssistant struct {
	mu       sync.Mutex
	replies  []string
	errs     []error
	requests []ports.CompletionRequest
}

func (a *scriptedAssistant) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = append(a.requests, req)
	i := len(a.requests) - 1
	if i < len(a.errs) && a.errs[i] != nil {
		return "", a.errs[i]
	}
	if i < len(a.replies) {
		return a.replies[i], nil
	}
	return "", errors.New("no scripted reply")
}

func TestUnwrapFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Plain", "  INPUT: A\nOUTPUT: B \n", "INPUT: A\nOUTPUT: B"},
		{"Fenced", "Here you go:\n```\nINPUT: A\nOUTPUT: B\n```\nDone.", "INPUT: A\nOUTPUT: B"},
		{"Info String", "```text\nINPUT: A\n```", "INPUT: A"},
		{"First Block Wins", "```\nINPUT: A\n```\n```\nINPUT: B\n```", "INPUT: A"},
		{"Empty Fence", "```\n\n```", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, unwrapFence(tt.in))
		})
	}
}

func TestRefine(t *testing.T) {
	a := &scriptedAssistant{replies: []string{"```\nINPUT: Cart\nDECISION: In stock?\n  YES -> Paid\n  NO -> Sold out\nOUTPUT: Paid\nOUTPUT: Sold out\n```"}}
	c := New(WithAssistant(a))
	history := []domain.Message{{Role: domain.RoleUser, Content: "earlier"}}

	r, err := c.Refine(context.Background(), "input:  Cart\noutput: Paid", "handle missing stock", history)
	require.NoError(t, err)

	require.Len(t, a.requests, 1)
	req := a.requests[0]
	assert.Equal(t, refineTemperature, req.Temperature)
	assert.Equal(t, topP, req.TopP)
	require.Len(t, req.Messages, 3)
	assert.Equal(t, domain.RoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "INPUT: Cart\nOUTPUT: Paid", "the flow is sent normalized")
	assert.Equal(t, history[0], req.Messages[1])
	assert.Equal(t, domain.Message{Role: domain.RoleUser, Content: "handle missing stock"}, req.Messages[2])

	assert.Len(t, r.Graph.Nodes, 4)
	assert.True(t, r.Report.Valid)
	assert.Empty(t, r.Diagnostics)
	require.NotNil(t, r.Diff)
	assert.Equal(t, []string{"In stock?", "Sold out"}, r.Diff.Added)
	assert.Empty(t, r.Diff.Removed)
}

func TestRefine_DefaultInstruction(t *testing.T) {
	a := &scriptedAssistant{replies: []string{"INPUT: A\nOUTPUT: B"}}
	r, err := New(WithAssistant(a)).Refine(context.Background(), "INPUT: A\nOUTPUT: B", "  ", nil)
	require.NoError(t, err)
	assert.Nil(t, r.Diff, "unchanged flows have no diff")
	assert.NotEmpty(t, a.requests[0].Messages[1].Content)
}

func TestRefine_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("No Assistant", func(t *testing.T) {
		_, err := New().Refine(ctx, "INPUT: A", "x", nil)
		assert.ErrorIs(t, err, domain.ErrNoAssistant)
	})

	t.Run("Unreachable", func(t *testing.T) {
		a := &scriptedAssistant{errs: []error{&domain.AssistantError{Kind: domain.AssistantUnreachable, Err: errors.New("dial tcp")}}}
		_, err := New(WithAssistant(a)).Refine(ctx, "INPUT: A", "x", nil)
		assert.ErrorIs(t, err, domain.ErrAssistantUnreachable)
		assert.NotErrorIs(t, err, domain.ErrAssistantMalformed)
	})

	t.Run("Empty Answer Is Malformed", func(t *testing.T) {
		a := &scriptedAssistant{replies: []string{"```\n```"}}
		_, err := New(WithAssistant(a)).Refine(ctx, "INPUT: A", "x", nil)
		assert.ErrorIs(t, err, domain.ErrAssistantMalformed)
	})

	t.Run("Hook Sees Failure", func(t *testing.T) {
		var got *domain.AssistantEvent
		a := &scriptedAssistant{errs: []error{errors.New("boom")}}
		c := New(WithAssistant(a), WithHooks(domain.LifecycleHooks{
			OnAssistantCall: func(_ context.Context, e *domain.AssistantEvent) { got = e },
		}))
		_, err := c.Refine(ctx, "INPUT: A", "x", nil)
		require.Error(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "refine", got.Operation)
		assert.Error(t, got.Err)
	})
}

func TestGenerateFlow(t *testing.T) {
	a := &scriptedAssistant{replies: []string{"INPUT: Upload\nDECISION: Too big?\n  YES -> Rejected\n  NO -> Stored\nOUTPUT: Rejected\nOUTPUT: Stored"}}
	c := New(WithAssistant(a))

	r, err := c.GenerateFlow(context.Background(), "file upload with a size limit", nil)
	require.NoError(t, err)

	req := a.requests[0]
	assert.Equal(t, generateTemperature, req.Temperature)
	require.Len(t, req.Messages, 2)
	assert.Contains(t, req.Messages[0].Content, "create a new flow")
	assert.Equal(t, "file upload with a size limit", req.Messages[1].Content)

	assert.Equal(t, []string{"Upload", "Too big?", "Rejected", "Stored"}, r.Diff.Added)
	assert.True(t, r.Report.Valid)

	_, err = c.GenerateFlow(context.Background(), " ", nil)
	assert.Error(t, err)
}

func TestChat(t *testing.T) {
	a := &scriptedAssistant{replies: []string{
		"INPUT: Order\nOUTPUT: Shipped",
		"```\nINPUT: Order\nDECISION: Paid?\n  YES -> Shipped\n  NO -> Cancelled\nOUTPUT: Shipped\nOUTPUT: Cancelled\n```",
	}}
	c := New(WithAssistant(a))
	ctx := context.Background()

	first, err := c.Chat(ctx, "s1", "shipping flow")
	require.NoError(t, err)
	assert.Equal(t, "s1", first.SessionID)
	assert.Equal(t, []string{"Order", "Shipped"}, first.Diff.Added)

	second, err := c.Chat(ctx, "s1", "only ship paid orders")
	require.NoError(t, err)
	assert.Equal(t, []string{"Paid?", "Cancelled"}, second.Diff.Added)

	req := a.requests[1]
	assert.Contains(t, req.Messages[0].Content, "Current flow:\n```\nINPUT: Order\nOUTPUT: Shipped\n```")
	require.Len(t, req.Messages, 4)
	assert.Equal(t, "shipping flow", req.Messages[1].Content)
	assert.Equal(t, domain.RoleAssistant, req.Messages[2].Role)
	assert.Equal(t, "only ship paid orders", req.Messages[3].Content)

	conv, err := c.Sessions().Load(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, conv.Turns, 4)
	assert.Equal(t, second.Text, conv.FlowText)
}

func TestChat_FailedTurnIsNotStored(t *testing.T) {
	a := &scriptedAssistant{
		replies: []string{"INPUT: A\nOUTPUT: B"},
		errs:    []error{nil, &domain.AssistantError{Kind: domain.AssistantStatus, StatusCode: 500, Err: errors.New("overloaded")}},
	}
	c := New(WithAssistant(a))
	ctx := context.Background()

	_, err := c.Chat(ctx, "s", "first")
	require.NoError(t, err)
	_, err = c.Chat(ctx, "s", "second")
	require.ErrorIs(t, err, domain.ErrAssistantUnreachable)

	conv, err := c.Sessions().Load(ctx, "s")
	require.NoError(t, err)
	assert.Len(t, conv.Turns, 2)
	assert.Equal(t, "INPUT: A\nOUTPUT: B", conv.FlowText)
}

func TestChat_RequiresInput(t *testing.T) {
	c := New(WithAssistant(&scriptedAssistant{}))
	_, err := c.Chat(context.Background(), "", "x")
	assert.Error(t, err)
	_, err = c.Chat(context.Background(), "s", "")
	assert.Error(t, err)
}
