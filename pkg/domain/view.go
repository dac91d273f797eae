package domain

// Position is an editor coordinate. The core never interprets it.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Layout maps node ids to editor positions.
type Layout map[string]Position

// ViewNode is the editor-facing shape of a node.
type ViewNode struct {
	ID          string    `json:"id"`
	Kind        NodeKind  `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Condition   string    `json:"condition,omitempty"`
	Position    *Position `json:"position,omitempty"`
}

// ViewEdge is the editor-facing shape of an edge.
type ViewEdge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Branch Branch `json:"branch,omitempty"`
}

// View is what the canvas editor exchanges with the core.
type View struct {
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Nodes       []ViewNode `json:"nodes"`
	Edges       []ViewEdge `json:"edges"`
}

// ToView projects a graph for the editor. Nodes without a layout entry get no position.
func ToView(g *Graph, layout Layout) View {
	v := View{
		Title:       g.Title,
		Description: g.Description,
		Nodes:       make([]ViewNode, 0, len(g.Nodes)),
		Edges:       make([]ViewEdge, 0, len(g.Edges)),
	}
	for _, n := range g.Nodes {
		vn := ViewNode{
			ID:          n.ID,
			Kind:        n.Kind,
			Title:       n.Title,
			Description: n.Description,
			Condition:   n.Condition,
		}
		if p, ok := layout[n.ID]; ok {
			pos := p
			vn.Position = &pos
		}
		v.Nodes = append(v.Nodes, vn)
	}
	for _, e := range g.Edges {
		v.Edges = append(v.Edges, ViewEdge(e))
	}
	return v
}

// FromView rebuilds a graph from the editor representation, splitting off positions.
func FromView(v View) (*Graph, Layout) {
	g := &Graph{
		Title:       v.Title,
		Description: v.Description,
		Nodes:       make([]Node, 0, len(v.Nodes)),
		Edges:       make([]Edge, 0, len(v.Edges)),
	}
	layout := make(Layout)
	for _, vn := range v.Nodes {
		g.Nodes = append(g.Nodes, Node{
			ID:          vn.ID,
			Kind:        vn.Kind,
			Title:       vn.Title,
			Description: vn.Description,
			Condition:   vn.Condition,
		})
		if vn.Position != nil {
			layout[vn.ID] = *vn.Position
		}
	}
	for _, ve := range v.Edges {
		g.Edges = append(g.Edges, Edge(ve))
	}
	return g, layout
}

// DefaultLayout stacks nodes vertically in declaration order.
func DefaultLayout(g *Graph) Layout {
	const (
		xBase   = 400
		yOffset = 100
		yStep   = 150
	)
	layout := make(Layout, len(g.Nodes))
	for i, n := range g.Nodes {
		layout[n.ID] = Position{X: xBase, Y: float64(yOffset + i*yStep)}
	}
	return layout
}
