package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/logicflow/pkg/domain"
)

// Builder manages the graph construction.
type Builder struct {
	title   string
	order   []*NodeBuilder
	byTitle map[string]*NodeBuilder
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{byTitle: make(map[string]*NodeBuilder)}
}

// Title sets the graph title.
func (b *Builder) Title(title string) *Builder {
	b.title = title
	return b
}

// Input adds an Input node.
func (b *Builder) Input(title string) *NodeBuilder { return b.add(domain.KindInput, title) }

// Process adds a Process node.
func (b *Builder) Process(title string) *NodeBuilder { return b.add(domain.KindProcess, title) }

// Decision adds a Decision node.
func (b *Builder) Decision(title string) *NodeBuilder { return b.add(domain.KindDecision, title) }

// Output adds an Output node.
func (b *Builder) Output(title string) *NodeBuilder { return b.add(domain.KindOutput, title) }

// add creates a node in the graph.
// If a node with that title already exists, it returns the existing builder.
func (b *Builder) add(kind domain.NodeKind, title string) *NodeBuilder {
	if nb, ok := b.byTitle[title]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node:    domain.Node{Kind: kind, Title: title},
		builder: b,
	}
	b.byTitle[title] = nb
	b.order = append(b.order, nb)
	return nb
}

// Build resolves every link by title and returns the graph. Links to
// unknown titles and branches on non-decision nodes are errors.
func (b *Builder) Build() (*domain.Graph, error) {
	ids := make(map[string]string, len(b.order))
	g := &domain.Graph{
		Title: b.title,
		Nodes: make([]domain.Node, 0, len(b.order)),
		Edges: []domain.Edge{},
	}
	for i, nb := range b.order {
		n := nb.node
		n.ID = fmt.Sprintf("node_%d", i+1)
		ids[n.Title] = n.ID
		g.Nodes = append(g.Nodes, n)
	}

	var errs []error
	for _, nb := range b.order {
		from := ids[nb.node.Title]
		for _, l := range nb.links {
			to, ok := ids[l.target]
			if !ok {
				errs = append(errs, fmt.Errorf("node %q: unknown target %q", nb.node.Title, l.target))
				continue
			}
			if l.branch != domain.BranchNone && nb.node.Kind != domain.KindDecision {
				errs = append(errs, fmt.Errorf("node %q: %s branch on a %s node", nb.node.Title, l.branch.Keyword(), nb.node.Kind))
				continue
			}
			g.Edges = append(g.Edges, domain.Edge{From: from, To: to, Branch: l.branch})
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return g, nil
}
