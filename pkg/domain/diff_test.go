package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func loginGraph() *Graph {
	return &Graph{
		Nodes: []Node{
			{ID: "n1", Kind: KindInput, Title: "Credentials"},
			{ID: "n2", Kind: KindDecision, Title: "Valid?"},
			{ID: "n3", Kind: KindOutput, Title: "Welcome"},
			{ID: "n4", Kind: KindOutput, Title: "Denied"},
		},
		Edges: []Edge{
			{From: "n1", To: "n2"},
			{From: "n2", To: "n3", Branch: BranchYes},
			{From: "n2", To: "n4", Branch: BranchNo},
		},
	}
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name string
		old  *Graph
		new  func() *Graph
		want *GraphDiff
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new:  loginGraph,
			want: &GraphDiff{Added: []string{"Credentials", "Valid?", "Welcome", "Denied"}},
		},
		{
			name: "No Changes",
			old:  loginGraph(),
			new:  loginGraph,
			want: nil,
		},
		{
			name: "Fresh Ids Are Ignored",
			old:  loginGraph(),
			new: func() *Graph {
				g := loginGraph()
				for i := range g.Nodes {
					g.Nodes[i].ID = "x" + g.Nodes[i].ID
				}
				for i := range g.Edges {
					g.Edges[i].From = "x" + g.Edges[i].From
					g.Edges[i].To = "x" + g.Edges[i].To
				}
				return g
			},
			want: nil,
		},
		{
			name: "Node Added And Removed",
			old:  loginGraph(),
			new: func() *Graph {
				g := loginGraph()
				g.Nodes[3].Title = "Locked"
				g.Nodes = append(g.Nodes, Node{ID: "n5", Kind: KindProcess, Title: "Audit"})
				return g
			},
			want: &GraphDiff{
				Added:   []string{"Locked", "Audit"},
				Removed: []string{"Denied"},
				Changed: []string{"Valid?"},
			},
		},
		{
			name: "Description Change",
			old:  loginGraph(),
			new: func() *Graph {
				g := loginGraph()
				g.Nodes[0].Description = "Email and password"
				return g
			},
			want: &GraphDiff{Changed: []string{"Credentials"}},
		},
		{
			name: "Branches Swapped",
			old:  loginGraph(),
			new: func() *Graph {
				g := loginGraph()
				g.Edges[1].Branch, g.Edges[2].Branch = BranchNo, BranchYes
				return g
			},
			want: &GraphDiff{Changed: []string{"Valid?"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Diff(tt.old, tt.new()))
		})
	}
}

func TestDiff_NilNew(t *testing.T) {
	assert.Nil(t, Diff(loginGraph(), nil))
}
