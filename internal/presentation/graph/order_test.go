package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/logicflow/internal/compiler"
	"github.com/aretw0/logicflow/internal/presentation/graph"
	"github.com/aretw0/logicflow/pkg/domain"
)

func titles(g *domain.Graph) []string {
	var out []string
	for _, n := range graph.OrderedNodes(g) {
		out = append(out, n.Title)
	}
	return out
}

func TestOrder_Login(t *testing.T) {
	assert.Equal(t, []string{
		"Login-Daten",
		"Benutzer suchen",
		"Benutzer existiert?",
		"Passwort prüfen",
		"Passwort korrekt?",
		"Erfolg",
		"Falsches Passwort",
		"Nicht gefunden",
	}, titles(parse(loginFlow)))
}

func TestOrder_YesBeforeNoRegardlessOfDeclaration(t *testing.T) {
	g := parse("DECISION: Q\n  NO -> Bad\n  YES -> Good\nOUTPUT: Bad\nOUTPUT: Good")
	assert.Equal(t, []string{"Q", "Good", "Bad"}, titles(g))
}

func TestOrder_EntryIsFirstInput(t *testing.T) {
	g := parse("PROCESS: Setup\nOUTPUT: Done\nINPUT: Request\nPROCESS: Handle")
	assert.Equal(t, []string{"Request", "Handle", "Setup", "Done"}, titles(g))
}

func TestOrder_UnlabelledEdgesAfterBranches(t *testing.T) {
	g := &domain.Graph{
		Nodes: []domain.Node{
			{ID: "q", Kind: domain.KindDecision, Title: "Q"},
			{ID: "x", Kind: domain.KindProcess, Title: "X"},
			{ID: "n", Kind: domain.KindOutput, Title: "N"},
			{ID: "y", Kind: domain.KindOutput, Title: "Y"},
		},
		Edges: []domain.Edge{
			{From: "q", To: "x"},
			{From: "q", To: "n", Branch: domain.BranchNo},
			{From: "q", To: "y", Branch: domain.BranchYes},
		},
	}
	assert.Equal(t, []string{"Q", "Y", "N", "X"}, titles(g))
}

func TestOrder_Termination(t *testing.T) {
	selfLoop := &domain.Graph{
		Nodes: []domain.Node{{ID: "a", Kind: domain.KindInput, Title: "A"}},
		Edges: []domain.Edge{{From: "a", To: "a"}},
	}
	assert.Equal(t, []string{"a"}, graph.Order(selfLoop))

	cycle := &domain.Graph{
		Nodes: []domain.Node{
			{ID: "a", Kind: domain.KindInput, Title: "A"},
			{ID: "b", Kind: domain.KindProcess, Title: "B"},
			{ID: "c", Kind: domain.KindProcess, Title: "C"},
		},
		Edges: []domain.Edge{{From: "a", To: "b"}, {From: "b", To: "c"}, {From: "c", To: "a"}},
	}
	assert.Equal(t, []string{"a", "b", "c"}, graph.Order(cycle))
}

func TestOrder_Completeness(t *testing.T) {
	g := &domain.Graph{
		Nodes: []domain.Node{
			{ID: "lonely", Kind: domain.KindProcess, Title: "Lonely"},
			{ID: "in", Kind: domain.KindInput, Title: "In"},
			{ID: "q", Kind: domain.KindDecision, Title: "Q"},
			{ID: "orphan", Kind: domain.KindOutput, Title: "Orphan"},
		},
		Edges: []domain.Edge{
			{From: "in", To: "q"},
			{From: "q", To: "ghost", Branch: domain.BranchYes},
		},
	}
	assert.Equal(t, []string{"in", "q", "lonely", "orphan"}, graph.Order(g))
}

func TestOrder_AnchorsExcluded(t *testing.T) {
	g := compiler.Parse("PROCESS: A\nPROCESS: B", compiler.Mode{SynthesizeAnchors: true}).Graph
	assert.Equal(t, []string{"A", "B"}, titles(g))
}

func TestOrder_Empty(t *testing.T) {
	assert.Empty(t, graph.Order(&domain.Graph{}))
}
