package dsl_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/logicflow/internal/compiler"
	"github.com/aretw0/logicflow/pkg/domain"
	"github.com/aretw0/logicflow/pkg/dsl"
)

func TestBuilder_MatchesParser(t *testing.T) {
	b := dsl.New()
	b.Input("Login").Describe("Email and password").Go("Find user")
	b.Process("Find user").Go("User exists?")
	b.Decision("User exists?").Yes("Welcome").No("Unknown user")
	b.Output("Welcome")
	b.Output("Unknown user").Describe("404")

	got, err := b.Build()
	require.NoError(t, err)

	res := compiler.Parse(`INPUT: Login | Email and password
PROCESS: Find user
DECISION: User exists?
  YES -> Welcome
  NO -> Unknown user
OUTPUT: Welcome
OUTPUT: Unknown user | 404`, compiler.Mode{})
	require.Empty(t, res.Diagnostics)

	if diff := cmp.Diff(res.Graph.Nodes, got.Nodes); diff != "" {
		t.Errorf("nodes mismatch (-parser +dsl):\n%s", diff)
	}
	if diff := cmp.Diff(res.Graph.Edges, got.Edges); diff != "" {
		t.Errorf("edges mismatch (-parser +dsl):\n%s", diff)
	}
}

func TestBuilder_SameTitleReturnsExistingNode(t *testing.T) {
	b := dsl.New().Title("Reuse")
	b.Input("Start").Go("End")
	b.Input("Start").Describe("again")
	b.Output("End")

	g, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "Reuse", g.Title)
	require.Len(t, g.Nodes, 2)
	assert.Equal(t, "again", g.Nodes[0].Description)
	assert.Len(t, g.Edges, 1)
}

func TestBuilder_Errors(t *testing.T) {
	b := dsl.New()
	b.Input("Start").Yes("End").Go("Nowhere")
	b.Output("End")

	_, err := b.Build()
	require.Error(t, err)
	assert.ErrorContains(t, err, `unknown target "Nowhere"`)
	assert.ErrorContains(t, err, "YES branch on a input node")
}

func TestNodeBuilder_Terminal(t *testing.T) {
	b := dsl.New()
	n := b.Decision("Paid?").Ask("Has the invoice been paid?").Yes("Done").Terminal()
	b.Output("Done")

	g, err := b.Build()
	require.NoError(t, err)
	assert.Empty(t, g.Edges)
	assert.Equal(t, "Has the invoice been paid?", n.Build().Condition)
	assert.Equal(t, domain.KindDecision, n.Build().Kind)
}
