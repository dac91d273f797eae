package validator

import (
	"fmt"
	"math"

	"github.com/aretw0/logicflow/pkg/domain"
)

// Validate runs the structural battery over g. Every check runs every time.
// The graph is never modified.
func Validate(g *domain.Graph) domain.Report {
	var issues []domain.Issue
	issues = append(issues, checkTerminal(g)...)
	issues = append(issues, checkDecisions(g)...)
	issues = append(issues, checkIsolated(g)...)
	issues = append(issues, checkDeadEnds(g)...)
	issues = append(issues, checkEntry(g)...)
	return domain.NewReport(issues)
}

func checkTerminal(g *domain.Graph) []domain.Issue {
	if len(g.NodesOfKind(domain.KindOutput)) > 0 {
		return nil
	}
	return []domain.Issue{{
		Severity: domain.SeverityError,
		Rule:     domain.RuleTerminal,
		Message:  "flow must have at least one Output node",
	}}
}

func checkDecisions(g *domain.Graph) []domain.Issue {
	var issues []domain.Issue
	for _, n := range g.NodesOfKind(domain.KindDecision) {
		count := map[domain.Branch]int{}
		var dangling []domain.Issue
		for _, e := range g.Outgoing(n.ID) {
			if e.Branch != domain.BranchYes && e.Branch != domain.BranchNo {
				continue
			}
			count[e.Branch]++
			if !g.HasNode(e.To) {
				dangling = append(dangling, danglingBranch(n, e))
			}
		}

		hasYes, hasNo := count[domain.BranchYes] > 0, count[domain.BranchNo] > 0
		if !hasYes || !hasNo {
			issues = append(issues, domain.Issue{
				Severity: domain.SeverityError,
				Rule:     domain.RuleDecisionBranches,
				Message:  fmt.Sprintf("decision %q is missing %s branch", n.Question(), missing(hasYes, hasNo)),
				NodeID:   n.ID,
			})
		}
		for _, b := range []domain.Branch{domain.BranchYes, domain.BranchNo} {
			if count[b] > 1 {
				issues = append(issues, domain.Issue{
					Severity: domain.SeverityError,
					Rule:     domain.RuleDecisionBranches,
					Message:  fmt.Sprintf("decision %q has %d %s branches, want exactly one", n.Question(), count[b], b.Keyword()),
					NodeID:   n.ID,
				})
			}
		}
		issues = append(issues, dangling...)
	}
	return issues
}

func missing(hasYes, hasNo bool) string {
	switch {
	case !hasYes && !hasNo:
		return "its YES and NO"
	case !hasYes:
		return "its YES"
	default:
		return "its NO"
	}
}

func danglingBranch(n domain.Node, e domain.Edge) domain.Issue {
	return domain.Issue{
		Severity: domain.SeverityError,
		Rule:     domain.RuleDecisionBranches,
		Message:  fmt.Sprintf("decision %q %s branch leads to %q, a node that does not exist", n.Question(), e.Branch.Keyword(), e.To),
		NodeID:   n.ID,
	}
}

func checkIsolated(g *domain.Graph) []domain.Issue {
	connected := make(map[string]bool, len(g.Nodes))
	for _, e := range g.Edges {
		connected[e.From] = true
		connected[e.To] = true
	}

	var issues []domain.Issue
	for _, n := range g.Nodes {
		if connected[n.ID] {
			continue
		}
		issues = append(issues, domain.Issue{
			Severity: domain.SeverityWarning,
			Rule:     domain.RuleIsolated,
			Message:  fmt.Sprintf("node %q is isolated (no connections)", label(n)),
			NodeID:   n.ID,
		})
	}
	return issues
}

func checkDeadEnds(g *domain.Graph) []domain.Issue {
	hasOutgoing := make(map[string]bool, len(g.Nodes))
	for _, e := range g.Edges {
		hasOutgoing[e.From] = true
	}

	var issues []domain.Issue
	for _, n := range g.Nodes {
		if n.Kind == domain.KindOutput || n.Kind == domain.KindEnd || hasOutgoing[n.ID] {
			continue
		}
		issues = append(issues, domain.Issue{
			Severity: domain.SeverityWarning,
			Rule:     domain.RuleDeadEnd,
			Message:  fmt.Sprintf("node %q has no outgoing connections", label(n)),
			NodeID:   n.ID,
		})
	}
	return issues
}

func checkEntry(g *domain.Graph) []domain.Issue {
	if len(g.NodesOfKind(domain.KindInput)) > 0 {
		return nil
	}
	return []domain.Issue{{
		Severity: domain.SeverityWarning,
		Rule:     domain.RuleEntry,
		Message:  "flow has no Input nodes",
	}}
}

func label(n domain.Node) string {
	if n.Title == "" {
		return n.ID
	}
	return n.Title
}

// Unreachable returns, in declaration order, the ids of nodes a forward
// breadth-first walk from g.StartNodes never visits.
func Unreachable(g *domain.Graph) []string {
	adj := adjacency(g)
	visited := make(map[string]bool, len(g.Nodes))
	queue := g.StartNodes()

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		for _, next := range adj[current] {
			if !visited[next] {
				queue = append(queue, next)
			}
		}
	}

	var ids []string
	for _, n := range g.Nodes {
		if !visited[n.ID] {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// HasCycle reports whether a cycle is reachable from g.StartNodes.
// The walk is iterative and keeps an explicit recursion stack, so self
// loops and long chains are handled without growing the goroutine stack.
func HasCycle(g *domain.Graph) bool {
	adj := adjacency(g)

	const (
		unvisited = iota
		onStack
		done
	)
	state := make(map[string]int, len(g.Nodes))

	type frame struct {
		id   string
		next int
	}

	for _, root := range g.StartNodes() {
		if state[root] != unvisited {
			continue
		}
		state[root] = onStack
		stack := []frame{{id: root}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := adj[top.id]
			if top.next >= len(children) {
				state[top.id] = done
				stack = stack[:len(stack)-1]
				continue
			}

			child := children[top.next]
			top.next++
			switch state[child] {
			case onStack:
				return true
			case unvisited:
				state[child] = onStack
				stack = append(stack, frame{id: child})
			}
		}
	}
	return false
}

// Complexity is an advisory score: nodes + 2*decisions + edges/2, rounded.
func Complexity(g *domain.Graph) int {
	score := float64(len(g.Nodes)) +
		2*float64(len(g.NodesOfKind(domain.KindDecision))) +
		0.5*float64(len(g.Edges))
	return int(math.Round(score))
}

// adjacency maps node ids to their targets in edge declaration order.
func adjacency(g *domain.Graph) map[string][]string {
	adj := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		adj[e.From] = append(adj[e.From], e.To)
	}
	return adj
}
