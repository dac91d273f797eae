package ports

import (
	"context"

	"github.com/aretw0/logicflow/pkg/domain"
)

// Compiler is the driving port used by transport adapters (HTTP, MCP).
// Parse, Validate and the renderers are pure; the assistant-backed methods
// block on the external service and honour ctx.
type Compiler interface {
	// Parse converts notation into a graph. It never fails; findings are diagnostics.
	Parse(ctx context.Context, text string) (*domain.Graph, []domain.Diagnostic)

	// Serialize renders a graph back into notation.
	Serialize(g *domain.Graph) string

	// Validate runs the structural battery.
	Validate(ctx context.Context, g *domain.Graph) domain.Report

	// Analyze adds reachability, cycle and complexity findings.
	Analyze(ctx context.Context, g *domain.Graph) domain.Analysis

	// Generate renders the assistant prompt. It returns *domain.InvalidGraphError
	// when the graph has validation errors and opts.Force is unset.
	Generate(ctx context.Context, g *domain.Graph, opts domain.PromptOptions) (string, error)

	// Diagram renders a Mermaid flowchart, highlighting issues when asked.
	Diagram(ctx context.Context, g *domain.Graph, highlight bool) string

	// Refine asks the assistant to improve the flow given by text.
	Refine(ctx context.Context, text, instruction string, history []domain.Message) (*domain.Refinement, error)

	// GenerateFlow asks the assistant for a new flow from a description.
	GenerateFlow(ctx context.Context, description string, history []domain.Message) (*domain.Refinement, error)

	// Chat runs one turn of a stored refinement session.
	Chat(ctx context.Context, sessionID, message string) (*domain.Refinement, error)
}
