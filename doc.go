/*
Package logicflow compiles a small line notation for program logic into a
typed flow graph, checks it, and renders it as an assistant prompt or a
Mermaid diagram.

It is built as a Hexagonal Architecture: the parser, validator and renderers
are pure functions over pkg/domain values, while the refinement loop talks to
an external language model through the ports.Assistant interface and keeps
conversations in a ports.ConversationStore.

# Notation

	INPUT: Credentials | Email and password
	PROCESS: Find user
	DECISION: User exists?
	  YES -> Welcome
	  NO -> Unknown user
	OUTPUT: Welcome
	OUTPUT: Unknown user

Each node line starts with a kind keyword, a title, and an optional
description after "|". A decision is followed by its YES/NO branches naming
target titles exactly. Non-decision nodes link to the next declaration unless
that declaration is an Output.

# Usage

	c := logicflow.New()
	g, diags := c.Parse(ctx, text)
	report := c.Validate(ctx, g)
	prompt, err := c.Generate(ctx, g, domain.PromptOptions{Target: domain.TargetTests})

Refinement requires an assistant:

	c := logicflow.New(logicflow.WithAssistant(ollama.New("http://localhost:11434")))
	r, err := c.Refine(ctx, text, "add a retry for the payment call", nil)

Parse never fails: lines it cannot read and branches that name unknown titles
become diagnostics. Generate refuses a graph with validation errors unless
PromptOptions.Force is set; warnings never block.
*/
package logicflow
