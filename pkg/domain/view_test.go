package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView_RoundTrip(t *testing.T) {
	g := loginGraph()
	layout := Layout{"n1": {X: 10, Y: 20}, "n3": {X: 30, Y: 40}}

	v := ToView(g, layout)
	require.Len(t, v.Nodes, 4)
	require.NotNil(t, v.Nodes[0].Position)
	assert.Equal(t, Position{X: 10, Y: 20}, *v.Nodes[0].Position)
	assert.Nil(t, v.Nodes[1].Position)

	back, backLayout := FromView(v)
	assert.Equal(t, g, back)
	assert.Equal(t, layout, backLayout)
}

func TestDefaultLayout(t *testing.T) {
	layout := DefaultLayout(loginGraph())
	assert.Equal(t, Position{X: 400, Y: 100}, layout["n1"])
	assert.Equal(t, Position{X: 400, Y: 550}, layout["n4"])
}

func TestConversation(t *testing.T) {
	c := NewConversation("s1")
	c.Turns = append(c.Turns,
		Turn{Role: RoleUser, Content: "add a retry"},
		Turn{Role: RoleAssistant, Content: "done", FlowText: "PROCESS: Retry"},
	)

	assert.Equal(t, []Message{
		{Role: RoleUser, Content: "add a retry"},
		{Role: RoleAssistant, Content: "done"},
	}, c.History())

	snap := c.Snapshot()
	snap.Turns[0].Content = "changed"
	assert.Equal(t, "add a retry", c.Turns[0].Content)
}
