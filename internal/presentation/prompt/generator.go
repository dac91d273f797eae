// Package prompt renders a logic graph as instructions for a code-generation assistant.
package prompt

import (
	"fmt"
	"strings"

	"github.com/aretw0/logicflow/internal/presentation/graph"
	"github.com/aretw0/logicflow/pkg/domain"
)

// Generate renders g as a markdown prompt. Nodes are numbered in
// graph.Order, so the happy path of every decision reads first.
// The output is deterministic and does not require g to be valid.
func Generate(g *domain.Graph, opts domain.PromptOptions) string {
	opts = opts.WithDefaults()
	nodes := graph.OrderedNodes(g)
	titles := g.Titles()

	var lines []string
	add := func(l ...string) { lines = append(lines, l...) }

	add("You are a senior software engineer.",
		"Generate clean, maintainable code based strictly on the following logic.")
	if goal, ok := goals[opts.Target]; ok {
		add(goal)
	}
	if s, ok := strictness[opts.Strictness]; ok {
		add(s)
	}

	if g.Title != "" || g.Description != "" {
		add("", "## Logic Overview")
		if g.Title != "" {
			add("Title: " + g.Title)
		}
		if g.Description != "" {
			add("Description: " + g.Description)
		}
	}

	add("", "## Logic Flow")
	for i, n := range nodes {
		add(fmt.Sprintf("%d. **%s:** %s", i+1, n.Kind.Label(), n.Title))
		if n.HasDistinctDescription() {
			add("   " + n.Description)
		}
		if n.Kind == domain.KindDecision && n.Condition != "" && n.Condition != n.Title {
			add("   Condition: " + n.Condition)
		}
	}

	var branches []string
	for _, n := range nodes {
		for _, e := range g.Outgoing(n.ID) {
			if e.Branch == domain.BranchNone {
				continue
			}
			to, ok := titles[e.To]
			if !ok {
				to = e.To
			}
			branches = append(branches, fmt.Sprintf("- **%s:** \"%s\" → \"%s\"", e.Branch.Keyword(), n.Title, to))
		}
	}
	if len(branches) > 0 {
		add("", "## Decisions")
		add(branches...)
	}

	add("", "## Output Requirements")
	for _, r := range requirements[opts.Detail] {
		add("- " + r)
	}

	add("", "## Target-Specific Instructions")
	add(presets[opts.Target]...)

	if opts.Diagram {
		add("", "## Diagram", "```mermaid")
		add(strings.TrimRight(graph.GenerateMermaid(g, nil), "\n"))
		add("```")
	}

	add("", "## Constraints")
	for _, c := range constraints {
		add("- " + c)
	}

	return strings.Join(lines, "\n") + "\n"
}
