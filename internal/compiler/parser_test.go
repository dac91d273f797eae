package compiler

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/logicflow/pkg/domain"
)

const loginFlow = `INPUT: Login-Daten | Email und Passwort
PROCESS: Benutzer suchen | DB-Abfrage
DECISION: Benutzer existiert? | Prüfe DB
  YES -> Passwort prüfen
  NO -> Nicht gefunden
PROCESS: Passwort prüfen | Hash-Vergleich
DECISION: Passwort korrekt? | Vergleich
  YES -> Erfolg
  NO -> Falsches Passwort
OUTPUT: Erfolg | Login erfolgreich
OUTPUT: Nicht gefunden | 404
OUTPUT: Falsches Passwort | 401`

func TestParse_Login(t *testing.T) {
	res := Parse(loginFlow, Mode{})
	require.Empty(t, res.Diagnostics)

	g := res.Graph
	require.Len(t, g.Nodes, 8)
	assert.Len(t, g.NodesOfKind(domain.KindInput), 1)
	assert.Len(t, g.NodesOfKind(domain.KindProcess), 2)
	assert.Len(t, g.NodesOfKind(domain.KindDecision), 2)
	assert.Len(t, g.NodesOfKind(domain.KindOutput), 3)

	assert.Equal(t, domain.Node{ID: "node_1", Kind: domain.KindInput, Title: "Login-Daten", Description: "Email und Passwort"}, g.Nodes[0])

	want := []domain.Edge{
		{From: "node_1", To: "node_2"},
		{From: "node_2", To: "node_3"},
		{From: "node_3", To: "node_4", Branch: domain.BranchYes},
		{From: "node_3", To: "node_7", Branch: domain.BranchNo},
		{From: "node_4", To: "node_5"},
		{From: "node_5", To: "node_6", Branch: domain.BranchYes},
		{From: "node_5", To: "node_8", Branch: domain.BranchNo},
	}
	if diff := cmp.Diff(want, g.Edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Empty(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n\t\n"} {
		res := Parse(text, Mode{SynthesizeAnchors: true})
		assert.Empty(t, res.Graph.Nodes)
		assert.Empty(t, res.Graph.Edges)
		assert.NotNil(t, res.Graph.Nodes)
		assert.Empty(t, res.Diagnostics)
	}
}

func TestParse_CaseInsensitiveKeywords(t *testing.T) {
	res := Parse("input: Order\ndecision: In stock?\n yes -> Ship\n No->Refund\noutput: Ship\nOutput: Refund", Mode{})
	require.Empty(t, res.Diagnostics)
	g := res.Graph
	require.Len(t, g.Nodes, 4)

	yes, ok := g.BranchEdge("node_2", domain.BranchYes)
	require.True(t, ok)
	assert.Equal(t, "node_3", yes.To)
	no, ok := g.BranchEdge("node_2", domain.BranchNo)
	require.True(t, ok)
	assert.Equal(t, "node_4", no.To)
}

func TestParse_EveryKindKeyword(t *testing.T) {
	for _, k := range domain.Kinds {
		res := Parse(k.Keyword()+": Step", Mode{})
		require.Len(t, res.Graph.Nodes, 1, k)
		assert.Equal(t, k, res.Graph.Nodes[0].Kind)
	}
}

func TestParse_OutputsAreNeverAutoConnected(t *testing.T) {
	res := Parse("PROCESS: A\nOUTPUT: B\nPROCESS: C\nPROCESS: D", Mode{})
	assert.Equal(t, []domain.Edge{{From: "node_3", To: "node_4"}}, res.Graph.Edges)
}

func TestParse_DecisionDoesNotFallThrough(t *testing.T) {
	res := Parse("DECISION: Ok?\n  YES -> Next\nPROCESS: Next", Mode{})
	assert.Equal(t, []domain.Edge{{From: "node_1", To: "node_2", Branch: domain.BranchYes}}, res.Graph.Edges)
}

func TestParse_Descriptions(t *testing.T) {
	res := Parse("PROCESS: Charge | Charge\nPROCESS: Notify | mail | sms\nPROCESS: Plain", Mode{})
	g := res.Graph
	assert.Equal(t, "", g.Nodes[0].Description)
	assert.Equal(t, "mail | sms", g.Nodes[1].Description)
	assert.Equal(t, "", g.Nodes[2].Description)
}

func TestParse_DanglingBranch(t *testing.T) {
	res := Parse("DECISION: Paid?\n  YES -> Ship\n  NO -> Nowhere\nOUTPUT: Ship", Mode{})

	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, domain.DiagDanglingBranchTarget, d.Kind)
	assert.Equal(t, 3, d.Line)
	assert.Contains(t, d.Message, "Nowhere")

	_, ok := res.Graph.BranchEdge("node_1", domain.BranchNo)
	assert.False(t, ok)
	_, ok = res.Graph.BranchEdge("node_1", domain.BranchYes)
	assert.True(t, ok)
}

func TestParse_BranchTargetsAreCaseSensitive(t *testing.T) {
	res := Parse("DECISION: Paid?\n  YES -> ship\nOUTPUT: Ship", Mode{})
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, domain.DiagDanglingBranchTarget, res.Diagnostics[0].Kind)
}

func TestParse_DuplicateTitle(t *testing.T) {
	res := Parse("DECISION: Retry?\n  YES -> Done\n  NO -> Done\nOUTPUT: Done | first\nOUTPUT: Done | second", Mode{})

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, domain.DiagDuplicateTitle, res.Diagnostics[0].Kind)
	assert.Equal(t, 5, res.Diagnostics[0].Line)

	yes, ok := res.Graph.BranchEdge("node_1", domain.BranchYes)
	require.True(t, ok)
	assert.Equal(t, "node_3", yes.To, "last declaration wins")
}

func TestParse_DuplicateBranch(t *testing.T) {
	res := Parse("DECISION: Ok?\n  YES -> A\n  YES -> B\n  NO -> A\nOUTPUT: A\nOUTPUT: B", Mode{})

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, domain.DiagDuplicateBranch, res.Diagnostics[0].Kind)
	assert.Equal(t, 3, res.Diagnostics[0].Line)

	assert.Len(t, res.Graph.Outgoing("node_1"), 2)
	yes, _ := res.Graph.BranchEdge("node_1", domain.BranchYes)
	assert.Equal(t, "node_3", yes.To)
}

func TestParse_StrictIgnoresUnknownLines(t *testing.T) {
	res := Parse("INPUT: A\nthis is prose\n  YES -> A\nPROCESS: | only description\nPROCESS: B", Mode{})

	require.Len(t, res.Diagnostics, 3)
	for _, d := range res.Diagnostics {
		assert.Equal(t, domain.DiagParseAmbiguity, d.Kind)
	}
	assert.Equal(t, []int{2, 3, 4}, []int{res.Diagnostics[0].Line, res.Diagnostics[1].Line, res.Diagnostics[2].Line})
	assert.Len(t, res.Graph.Nodes, 2)
	assert.Equal(t, []domain.Edge{{From: "node_1", To: "node_2"}}, res.Graph.Edges)
}

func TestParse_FallbackLineAsProcess(t *testing.T) {
	res := Parse("INPUT: Cart\nsum up prices\nDECISION: Coupon?\n  YES -> Done\nmaybe -> later\nOUTPUT: Done", Mode{FallbackLineAsProcess: true})
	require.Empty(t, res.Diagnostics)

	g := res.Graph
	require.Len(t, g.Nodes, 5)
	assert.Equal(t, domain.Node{ID: "node_2", Kind: domain.KindProcess, Title: "sum up prices"}, g.Nodes[1])
	assert.Equal(t, "maybe -> later", g.Nodes[3].Title)

	assert.Equal(t, []domain.Edge{
		{From: "node_1", To: "node_2"},
		{From: "node_2", To: "node_3"},
		{From: "node_3", To: "node_5", Branch: domain.BranchYes},
	}, g.Edges)
}

func TestParse_FallbackClosesDecision(t *testing.T) {
	res := Parse("DECISION: Ok?\nfree text\nYES -> Ok?", Mode{FallbackLineAsProcess: true})
	require.Len(t, res.Graph.Nodes, 3)
	assert.Equal(t, "YES -> Ok?", res.Graph.Nodes[2].Title)
	_, ok := res.Graph.BranchEdge("node_1", domain.BranchYes)
	assert.False(t, ok)
}

func TestParse_FallbackSplitsLabel(t *testing.T) {
	res := Parse("free | text\n| no title", Mode{FallbackLineAsProcess: true})
	require.Len(t, res.Graph.Nodes, 1)
	assert.Equal(t, domain.Node{ID: "node_1", Kind: domain.KindProcess, Title: "free", Description: "text"}, res.Graph.Nodes[0])

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, domain.DiagParseAmbiguity, res.Diagnostics[0].Kind)
	assert.Equal(t, 2, res.Diagnostics[0].Line)
}

func TestParse_UntitledNodeLineClosesDecision(t *testing.T) {
	res := Parse("DECISION: Ok?\nPROCESS: | x\nYES -> Ok?\nNO -> Ok?", Mode{})

	require.Len(t, res.Graph.Nodes, 1)
	assert.Empty(t, res.Graph.Edges)
	require.Len(t, res.Diagnostics, 3)
	for i, d := range res.Diagnostics {
		assert.Equal(t, domain.DiagParseAmbiguity, d.Kind)
		assert.Equal(t, i+2, d.Line)
	}

	t.Run("Permissive", func(t *testing.T) {
		res := Parse("DECISION: Ok?\nPROCESS: | x\nYES -> Ok?", Mode{FallbackLineAsProcess: true})
		require.Len(t, res.Graph.Nodes, 3)
		assert.Equal(t, "PROCESS:", res.Graph.Nodes[1].Title)
		assert.Equal(t, "YES -> Ok?", res.Graph.Nodes[2].Title)
		_, ok := res.Graph.BranchEdge("node_1", domain.BranchYes)
		assert.False(t, ok)
	})
}

func TestParse_SynthesizeAnchors(t *testing.T) {
	res := Parse("INPUT: A\nPROCESS: B", Mode{SynthesizeAnchors: true})
	g := res.Graph

	require.Len(t, g.Nodes, 4)
	assert.Equal(t, domain.Node{ID: "node_1", Kind: domain.KindStart, Title: StartTitle}, g.Nodes[0])
	assert.Equal(t, domain.Node{ID: "node_4", Kind: domain.KindEnd, Title: EndTitle}, g.Nodes[3])
	assert.Equal(t, []domain.Edge{
		{From: "node_1", To: "node_2"},
		{From: "node_2", To: "node_3"},
		{From: "node_3", To: "node_4"},
	}, g.Edges)
}

func TestParse_CustomIDs(t *testing.T) {
	n := 0
	mode := Mode{NewID: func() string {
		n++
		return fmt.Sprintf("id-%02d", n)
	}}
	res := Parse("INPUT: A\nPROCESS: B", mode)
	assert.Equal(t, "id-01", res.Graph.Nodes[0].ID)
	assert.Equal(t, "id-02", res.Graph.Nodes[1].ID)
}

func TestParse_FreshIDsPerParse(t *testing.T) {
	p := NewParser(Mode{})
	first := p.Parse("INPUT: A")
	second := p.Parse("INPUT: A")
	assert.Equal(t, first.Graph.Nodes[0].ID, second.Graph.Nodes[0].ID)
}
