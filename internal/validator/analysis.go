package validator

import (
	"fmt"

	"github.com/aretw0/logicflow/pkg/domain"
)

// Analyze runs Validate plus the deeper utilities. Unreachable nodes become
// warnings and a cycle an error, all in Deep.
func Analyze(g *domain.Graph) domain.Analysis {
	a := domain.Analysis{
		Report:      Validate(g),
		Deep:        []domain.Issue{},
		Unreachable: Unreachable(g),
		HasCycle:    HasCycle(g),
		Complexity:  Complexity(g),
		Inputs:      titles(g.NodesOfKind(domain.KindInput)),
		Decisions:   titles(g.NodesOfKind(domain.KindDecision)),
		Outputs:     titles(g.NodesOfKind(domain.KindOutput)),
	}
	if a.Unreachable == nil {
		a.Unreachable = []string{}
	}

	for _, id := range a.Unreachable {
		n, _ := g.Node(id)
		a.Deep = append(a.Deep, domain.Issue{
			Severity: domain.SeverityWarning,
			Rule:     domain.RuleUnreachable,
			Message:  fmt.Sprintf("node %q cannot be reached from the entry", label(n)),
			NodeID:   id,
		})
	}
	if a.HasCycle {
		a.Deep = append(a.Deep, domain.Issue{
			Severity: domain.SeverityError,
			Rule:     domain.RuleCycle,
			Message:  "flow contains a loop",
		})
	}
	return a
}

func titles(nodes []domain.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Title)
	}
	return out
}
