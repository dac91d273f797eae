package dsl

import "github.com/aretw0/logicflow/pkg/domain"

type link struct {
	target string
	branch domain.Branch
}

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	links   []link
	builder *Builder
}

// Describe sets the node description.
func (n *NodeBuilder) Describe(description string) *NodeBuilder {
	n.node.Description = description
	return n
}

// Ask sets the question of a decision when it differs from the title.
func (n *NodeBuilder) Ask(condition string) *NodeBuilder {
	n.node.Condition = condition
	return n
}

// Go adds an unconditional edge to the node titled target.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	n.links = append(n.links, link{target: target})
	return n
}

// Yes adds the YES branch of a decision.
func (n *NodeBuilder) Yes(target string) *NodeBuilder {
	n.links = append(n.links, link{target: target, branch: domain.BranchYes})
	return n
}

// No adds the NO branch of a decision.
func (n *NodeBuilder) No(target string) *NodeBuilder {
	n.links = append(n.links, link{target: target, branch: domain.BranchNo})
	return n
}

// Terminal drops every outgoing link.
func (n *NodeBuilder) Terminal() *NodeBuilder {
	n.links = nil
	return n
}

// Build returns the underlying domain.Node without an id.
func (n *NodeBuilder) Build() domain.Node {
	return n.node
}
