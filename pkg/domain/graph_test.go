package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_Lookups(t *testing.T) {
	g := loginGraph()

	n, ok := g.Node("n2")
	require.True(t, ok)
	assert.Equal(t, "Valid?", n.Title)
	assert.False(t, g.HasNode("missing"))

	assert.Len(t, g.Outgoing("n2"), 2)
	assert.Empty(t, g.Outgoing("n3"))

	yes, ok := g.BranchEdge("n2", BranchYes)
	require.True(t, ok)
	assert.Equal(t, "n3", yes.To)

	assert.Len(t, g.NodesOfKind(KindOutput), 2)
}

func TestGraph_EntryNode(t *testing.T) {
	t.Run("First Input", func(t *testing.T) {
		g := &Graph{Nodes: []Node{
			{ID: "a", Kind: KindProcess, Title: "A"},
			{ID: "b", Kind: KindInput, Title: "B"},
			{ID: "c", Kind: KindInput, Title: "C"},
		}}
		n, ok := g.EntryNode()
		require.True(t, ok)
		assert.Equal(t, "b", n.ID)
		assert.Equal(t, []string{"b", "c"}, g.StartNodes())
	})

	t.Run("Fallback To First Node", func(t *testing.T) {
		g := &Graph{Nodes: []Node{
			{ID: "a", Kind: KindProcess, Title: "A"},
			{ID: "b", Kind: KindOutput, Title: "B"},
		}}
		n, ok := g.EntryNode()
		require.True(t, ok)
		assert.Equal(t, "a", n.ID)
		assert.Equal(t, []string{"a"}, g.StartNodes())
	})

	t.Run("Empty Graph", func(t *testing.T) {
		g := &Graph{}
		_, ok := g.EntryNode()
		assert.False(t, ok)
		assert.Empty(t, g.StartNodes())
	})
}

func TestGraph_Clone(t *testing.T) {
	g := loginGraph()
	c := g.Clone()
	c.Nodes[0].Title = "Changed"
	c.Edges[0].To = "n4"

	assert.Equal(t, "Credentials", g.Nodes[0].Title)
	assert.Equal(t, "n2", g.Edges[0].To)
}

func TestSignature(t *testing.T) {
	g := loginGraph()
	g.Nodes[0].Description = "Credentials" // same as title, not distinct

	sig := Signature(g)
	require.Len(t, sig, 4)
	assert.Equal(t, NodeSignature{Kind: KindInput, Title: "Credentials"}, sig[0])
	assert.Equal(t, NodeSignature{Kind: KindDecision, Title: "Valid?", Yes: "Welcome", No: "Denied"}, sig[1])
}

func TestNodeKind(t *testing.T) {
	k, err := ParseNodeKind(" Decision ")
	require.NoError(t, err)
	assert.Equal(t, KindDecision, k)
	assert.Equal(t, "DECISION", k.Keyword())
	assert.Equal(t, "Decision", k.Label())
	assert.False(t, k.IsAnchor())
	assert.True(t, KindStart.IsAnchor())

	_, err = ParseNodeKind("loop")
	assert.Error(t, err)
}

func TestBranch(t *testing.T) {
	b, err := ParseBranch("YES")
	require.NoError(t, err)
	assert.Equal(t, BranchYes, b)
	assert.Equal(t, "NO", BranchNo.Keyword())

	b, err = ParseBranch("")
	require.NoError(t, err)
	assert.Equal(t, BranchNone, b)

	_, err = ParseBranch("maybe")
	assert.Error(t, err)
}

func TestNode_Display(t *testing.T) {
	n := Node{Kind: KindDecision, Title: "Paid?"}
	assert.Equal(t, "Paid?", n.DisplayDescription())
	assert.Equal(t, "Paid?", n.Question())
	assert.False(t, n.HasDistinctDescription())

	n.Description = "Checks the ledger"
	n.Condition = "Is the invoice settled?"
	assert.Equal(t, "Checks the ledger", n.DisplayDescription())
	assert.Equal(t, "Is the invoice settled?", n.Question())
	assert.True(t, n.HasDistinctDescription())
}

func TestReport(t *testing.T) {
	r := NewReport(nil)
	assert.True(t, r.Valid)
	assert.NotNil(t, r.Issues)

	r = NewReport([]Issue{
		{Severity: SeverityWarning, Rule: RuleEntry, Message: "no input"},
		{Severity: SeverityError, Rule: RuleTerminal, Message: "no output"},
	})
	assert.False(t, r.Valid)
	assert.Len(t, r.Errors(), 1)
	assert.Len(t, r.Warnings(), 1)
}
