package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventParsed        EventType = "parsed"
	EventValidated     EventType = "validated"
	EventGenerated     EventType = "generated"
	EventAssistantCall EventType = "assistant_call"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// ParseEvent is emitted after text has been parsed.
type ParseEvent struct {
	EventBase
	Nodes       int          `json:"nodes"`
	Edges       int          `json:"edges"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// ValidateEvent is emitted after a validation run.
type ValidateEvent struct {
	EventBase
	Report Report `json:"report"`
}

// GenerateEvent is emitted after a prompt or diagram has been rendered.
type GenerateEvent struct {
	EventBase
	Format string `json:"format"` // "prompt" or "mermaid"
	Bytes  int    `json:"bytes"`
}

// AssistantEvent is emitted after each call to the external assistant.
type AssistantEvent struct {
	EventBase
	Operation string        `json:"operation"` // "refine" or "generate"
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
}

// LifecycleHooks defines callbacks for compiler observability.
type LifecycleHooks struct {
	OnParsed        func(context.Context, *ParseEvent)
	OnValidated     func(context.Context, *ValidateEvent)
	OnGenerated     func(context.Context, *GenerateEvent)
	OnAssistantCall func(context.Context, *AssistantEvent)
}
