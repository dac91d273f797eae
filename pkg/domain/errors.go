package domain

import (
	"errors"
	"fmt"
)

// ErrFlowNotFound is returned when a saved flow cannot be found in the store.
var ErrFlowNotFound = errors.New("flow not found")

// ErrSessionNotFound is returned when a refinement session cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrReadOnly is returned by stores that only support reads (e.g. a flow library).
var ErrReadOnly = errors.New("store is read-only")

// ErrInvalidGraph is returned when a graph with validation errors is used where a valid one is required.
var ErrInvalidGraph = errors.New("graph has validation errors")

// ErrNoAssistant is returned when a refinement is requested without an assistant configured.
var ErrNoAssistant = errors.New("no assistant configured")

var (
	// ErrAssistantUnreachable means the assistant service could not be reached or refused the request.
	ErrAssistantUnreachable = errors.New("assistant unreachable")
	// ErrAssistantMalformed means the assistant answered with a payload that could not be used.
	ErrAssistantMalformed = errors.New("assistant response malformed")
)

// AssistantErrorKind distinguishes failure modes of the external assistant call.
type AssistantErrorKind string

const (
	AssistantUnreachable AssistantErrorKind = "unreachable"
	AssistantStatus      AssistantErrorKind = "status"
	AssistantMalformed   AssistantErrorKind = "malformed"
)

// AssistantError wraps a failure of the external assistant call.
// Unreachable and status failures match ErrAssistantUnreachable, malformed
// payloads match ErrAssistantMalformed.
type AssistantError struct {
	Kind       AssistantErrorKind
	StatusCode int
	Err        error
}

func (e *AssistantError) Error() string {
	switch e.Kind {
	case AssistantStatus:
		return fmt.Sprintf("assistant returned status %d: %v", e.StatusCode, e.Err)
	case AssistantMalformed:
		return fmt.Sprintf("%s: %v", ErrAssistantMalformed, e.Err)
	default:
		return fmt.Sprintf("%s: %v", ErrAssistantUnreachable, e.Err)
	}
}

func (e *AssistantError) Unwrap() []error {
	sentinel := ErrAssistantUnreachable
	if e.Kind == AssistantMalformed {
		sentinel = ErrAssistantMalformed
	}
	if e.Err == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Err}
}

// InvalidGraphError carries the report that blocked an operation.
type InvalidGraphError struct {
	Report Report
}

func (e *InvalidGraphError) Error() string {
	errs := e.Report.Errors()
	if len(errs) == 1 {
		return fmt.Sprintf("%s: %s", ErrInvalidGraph, errs[0].Message)
	}
	return fmt.Sprintf("%s: %d errors", ErrInvalidGraph, len(errs))
}

func (e *InvalidGraphError) Unwrap() error { return ErrInvalidGraph }
