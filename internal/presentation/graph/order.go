package graph

import "github.com/aretw0/logicflow/pkg/domain"

// Order linearizes g for rendering. It walks depth-first from the entry
// node; a Decision descends its YES targets before its NO targets, any
// other node follows its edges in declaration order. Nodes the walk never
// reaches are appended in declaration order, so every node appears exactly
// once. Start/End anchors are traversed but never returned.
//
// A node is emitted the first time it is reached, which also cuts cycles.
func Order(g *domain.Graph) []string {
	nodes := make(map[string]domain.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes[n.ID] = n
	}

	visited := make(map[string]bool, len(g.Nodes))
	order := make([]string, 0, len(g.Nodes))
	emit := func(id string) {
		visited[id] = true
		if !nodes[id].Kind.IsAnchor() {
			order = append(order, id)
		}
	}

	if entry, ok := g.EntryNode(); ok {
		stack := []string{entry.ID}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[id] {
				continue
			}
			emit(id)

			children := successors(g, nodes[id])
			for i := len(children) - 1; i >= 0; i-- {
				if _, ok := nodes[children[i]]; ok && !visited[children[i]] {
					stack = append(stack, children[i])
				}
			}
		}
	}

	for _, n := range g.Nodes {
		if !visited[n.ID] {
			emit(n.ID)
		}
	}
	return order
}

// successors returns the targets of n in visiting order.
func successors(g *domain.Graph, n domain.Node) []string {
	out := g.Outgoing(n.ID)
	targets := make([]string, 0, len(out))
	if n.Kind != domain.KindDecision {
		for _, e := range out {
			targets = append(targets, e.To)
		}
		return targets
	}
	for _, b := range []domain.Branch{domain.BranchYes, domain.BranchNo, domain.BranchNone} {
		for _, e := range out {
			if e.Branch == b {
				targets = append(targets, e.To)
			}
		}
	}
	return targets
}

// OrderedNodes resolves Order(g) to nodes.
func OrderedNodes(g *domain.Graph) []domain.Node {
	ids := Order(g)
	out := make([]domain.Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := g.Node(id); ok {
			out = append(out, n)
		}
	}
	return out
}
