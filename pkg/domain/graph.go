package domain

// Graph is the in-memory logic graph.
// Node order is declaration order and is significant: it drives the entry
// fallback, the serializer and the placement of unreachable nodes in prompts.
type Graph struct {
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Nodes       []Node `json:"nodes" yaml:"nodes"`
	Edges       []Edge `json:"edges" yaml:"edges"`
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// HasNode reports whether a node with the given id exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.Node(id)
	return ok
}

// Outgoing returns the edges leaving id, in edge declaration order.
func (g *Graph) Outgoing(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// BranchEdge returns the first edge leaving id with the given branch label.
func (g *Graph) BranchEdge(id string, b Branch) (Edge, bool) {
	for _, e := range g.Edges {
		if e.From == id && e.Branch == b {
			return e, true
		}
	}
	return Edge{}, false
}

// NodesOfKind returns the nodes of the given kind in declaration order.
func (g *Graph) NodesOfKind(kind NodeKind) []Node {
	var nodes []Node
	for _, n := range g.Nodes {
		if n.Kind == kind {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// EntryNode returns the first Input node, or the first node when there is none.
func (g *Graph) EntryNode() (Node, bool) {
	for _, n := range g.Nodes {
		if n.Kind == KindInput {
			return n, true
		}
	}
	if len(g.Nodes) == 0 {
		return Node{}, false
	}
	return g.Nodes[0], true
}

// StartNodes returns the traversal roots: every Start anchor and every Input,
// or the first node when there are neither.
func (g *Graph) StartNodes() []string {
	var ids []string
	for _, n := range g.Nodes {
		if n.Kind == KindInput || n.Kind == KindStart {
			ids = append(ids, n.ID)
		}
	}
	if len(ids) == 0 && len(g.Nodes) > 0 {
		ids = append(ids, g.Nodes[0].ID)
	}
	return ids
}

// Titles maps node ids to titles.
func (g *Graph) Titles() map[string]string {
	titles := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		titles[n.ID] = n.Title
	}
	return titles
}

// Clone returns a deep copy that can be edited without touching the original.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		Title:       g.Title,
		Description: g.Description,
		Nodes:       make([]Node, len(g.Nodes)),
		Edges:       make([]Edge, len(g.Edges)),
	}
	copy(c.Nodes, g.Nodes)
	copy(c.Edges, g.Edges)
	return c
}

// NodeSignature is the id-independent shape of a node.
type NodeSignature struct {
	Kind        NodeKind
	Title       string
	Description string
	Yes         string
	No          string
}

// Signature describes the graph without ids: node kinds, titles and
// descriptions in declaration order plus branch targets by title.
// Two graphs with equal signatures are structurally equivalent.
func Signature(g *Graph) []NodeSignature {
	titles := g.Titles()
	sig := make([]NodeSignature, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		s := NodeSignature{Kind: n.Kind, Title: n.Title}
		if n.HasDistinctDescription() {
			s.Description = n.Description
		}
		if n.Kind == KindDecision {
			if e, ok := g.BranchEdge(n.ID, BranchYes); ok {
				s.Yes = titles[e.To]
			}
			if e, ok := g.BranchEdge(n.ID, BranchNo); ok {
				s.No = titles[e.To]
			}
		}
		sig = append(sig, s)
	}
	return sig
}
