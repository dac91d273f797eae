package compiler

import (
	"strings"

	"github.com/aretw0/logicflow/pkg/domain"
)

// Serialize renders a graph back into the line notation, in node declaration
// order. Anchors are skipped. For any graph the parser produced,
// Parse(Serialize(g)) has the same domain.Signature as g.
func Serialize(g *domain.Graph) string {
	nodes := make(map[string]domain.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes[n.ID] = n
	}

	var b strings.Builder
	for _, n := range g.Nodes {
		if n.Kind.IsAnchor() {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(n.Kind.Keyword())
		b.WriteString(": ")
		b.WriteString(n.Title)
		if n.HasDistinctDescription() {
			b.WriteString(" | ")
			b.WriteString(n.Description)
		}

		if n.Kind != domain.KindDecision {
			continue
		}
		for _, branch := range []domain.Branch{domain.BranchYes, domain.BranchNo} {
			e, ok := g.BranchEdge(n.ID, branch)
			if !ok {
				continue
			}
			target, ok := nodes[e.To]
			if !ok || target.Kind.IsAnchor() {
				continue
			}
			b.WriteString("\n  ")
			b.WriteString(branch.Keyword())
			b.WriteString(" -> ")
			b.WriteString(target.Title)
		}
	}
	return b.String()
}
