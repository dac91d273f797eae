package logicflow

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/aretw0/logicflow/pkg/domain"
	"github.com/aretw0/logicflow/pkg/ports"
)

var fencePattern = regexp.MustCompile("(?s)```[^\\n`]*\\n(.*?)\\n?```")

// unwrapFence returns the body of the first fenced block in s, or s trimmed
// when there is none.
func unwrapFence(s string) string {
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}

// Refine sends the flow in text to the assistant with an instruction and
// re-parses the answer into a brand-new graph. An empty instruction asks for
// a general review.
func (c *Compiler) Refine(ctx context.Context, text, instruction string, history []domain.Message) (*domain.Refinement, error) {
	old, _ := c.Parse(ctx, text)
	if strings.TrimSpace(instruction) == "" {
		instruction = "Review the flow and return the improved version."
	}

	msgs := make([]domain.Message, 0, len(history)+2)
	msgs = append(msgs, domain.Message{Role: domain.RoleSystem, Content: refineInstruction(c.Serialize(old))})
	msgs = append(msgs, history...)
	msgs = append(msgs, domain.Message{Role: domain.RoleUser, Content: instruction})

	return c.ask(ctx, "refine", old, ports.CompletionRequest{
		Messages:    msgs,
		Temperature: refineTemperature,
		TopP:        topP,
	})
}

// GenerateFlow asks the assistant for a new flow from a natural language description.
func (c *Compiler) GenerateFlow(ctx context.Context, description string, history []domain.Message) (*domain.Refinement, error) {
	if strings.TrimSpace(description) == "" {
		return nil, errors.New("description cannot be empty")
	}

	msgs := make([]domain.Message, 0, len(history)+2)
	msgs = append(msgs, domain.Message{Role: domain.RoleSystem, Content: generateInstruction("")})
	msgs = append(msgs, history...)
	msgs = append(msgs, domain.Message{Role: domain.RoleUser, Content: description})

	return c.ask(ctx, "generate", nil, ports.CompletionRequest{
		Messages:    msgs,
		Temperature: generateTemperature,
		TopP:        topP,
	})
}

// Chat runs one turn of a stored conversation. The first turn generates a
// flow; later turns edit the latest one. A failed turn leaves the
// conversation untouched.
func (c *Compiler) Chat(ctx context.Context, sessionID, message string) (*domain.Refinement, error) {
	if sessionID == "" {
		return nil, errors.New("session id cannot be empty")
	}
	if strings.TrimSpace(message) == "" {
		return nil, errors.New("message cannot be empty")
	}

	var result *domain.Refinement
	_, err := c.sessions.Update(ctx, sessionID, func(ctx context.Context, conv *domain.Conversation) error {
		var old *domain.Graph
		if conv.FlowText != "" {
			old, _ = c.Parse(ctx, conv.FlowText)
		}

		msgs := make([]domain.Message, 0, len(conv.Turns)+2)
		msgs = append(msgs, domain.Message{Role: domain.RoleSystem, Content: generateInstruction(conv.FlowText)})
		msgs = append(msgs, conv.History()...)
		msgs = append(msgs, domain.Message{Role: domain.RoleUser, Content: message})

		r, err := c.ask(ctx, "chat", old, ports.CompletionRequest{
			Messages:    msgs,
			Temperature: generateTemperature,
			TopP:        topP,
		})
		if err != nil {
			return err
		}

		conv.Turns = append(conv.Turns,
			domain.Turn{Role: domain.RoleUser, Content: message},
			domain.Turn{Role: domain.RoleAssistant, Content: r.Text, FlowText: r.Text},
		)
		conv.FlowText = r.Text
		r.SessionID = sessionID
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ask performs one assistant round trip and turns the answer into a Refinement.
// The returned graph always comes from the answer, never from old.
func (c *Compiler) ask(ctx context.Context, op string, old *domain.Graph, req ports.CompletionRequest) (*domain.Refinement, error) {
	if c.assistant == nil {
		return nil, domain.ErrNoAssistant
	}

	start := time.Now()
	raw, err := c.assistant.Complete(ctx, req)
	text := ""
	if err == nil {
		text = unwrapFence(raw)
		if text == "" {
			err = &domain.AssistantError{Kind: domain.AssistantMalformed, Err: errors.New("empty answer")}
		}
	}
	elapsed := time.Since(start)

	if c.hooks.OnAssistantCall != nil {
		c.hooks.OnAssistantCall(ctx, &domain.AssistantEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventAssistantCall},
			Operation: op,
			Duration:  elapsed,
			Err:       err,
		})
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "assistant call failed", "operation", op, "duration", elapsed, "err", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.logger.InfoContext(ctx, "assistant call", "operation", op, "duration", elapsed, "bytes", len(raw))

	g, diags := c.Parse(ctx, text)
	return &domain.Refinement{
		Text:        text,
		Graph:       g,
		Diagnostics: diags,
		Report:      c.Validate(ctx, g),
		Diff:        domain.Diff(old, g),
	}, nil
}
