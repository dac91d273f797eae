package domain

import (
	"fmt"
	"strings"
)

// NodeKind classifies a step in the logic graph.
type NodeKind string

const (
	// KindInput is a data intake step (form, payload, parameter).
	KindInput NodeKind = "input"
	// KindProcess transforms or computes something.
	KindProcess NodeKind = "process"
	// KindDecision asks a yes/no question and branches.
	KindDecision NodeKind = "decision"
	// KindOutput is a terminal result (success or error).
	KindOutput NodeKind = "output"

	// KindStart and KindEnd are synthetic anchors produced by the parser when
	// anchor synthesis is enabled. They never appear in rendered text.
	KindStart NodeKind = "start"
	KindEnd   NodeKind = "end"
)

// Kinds lists the user-visible node kinds in notation order.
var Kinds = []NodeKind{KindInput, KindProcess, KindDecision, KindOutput}

// ParseNodeKind resolves a kind name case-insensitively.
// Anchor kinds are accepted so that graphs exported with anchors can be re-imported.
func ParseNodeKind(s string) (NodeKind, error) {
	switch k := NodeKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindInput, KindProcess, KindDecision, KindOutput, KindStart, KindEnd:
		return k, nil
	}
	return "", fmt.Errorf("unknown node kind %q", s)
}

// IsAnchor reports whether the kind is a synthetic Start/End anchor.
func (k NodeKind) IsAnchor() bool {
	return k == KindStart || k == KindEnd
}

// Keyword returns the notation keyword (e.g. "DECISION").
func (k NodeKind) Keyword() string {
	return strings.ToUpper(string(k))
}

// Label returns the capitalized display name (e.g. "Decision").
func (k NodeKind) Label() string {
	if k == "" {
		return ""
	}
	s := string(k)
	return strings.ToUpper(s[:1]) + s[1:]
}

// Node represents a single labeled step in the process graph.
type Node struct {
	ID    string   `json:"id" yaml:"id"`
	Kind  NodeKind `json:"kind" yaml:"kind"`
	Title string   `json:"title" yaml:"title"`

	// Description is optional; empty means absent.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Condition is only meaningful for decisions. Empty falls back to Title.
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// DisplayDescription returns the description, or the title when none was given.
func (n Node) DisplayDescription() string {
	if n.Description == "" {
		return n.Title
	}
	return n.Description
}

// HasDistinctDescription reports whether the description adds anything over the title.
func (n Node) HasDistinctDescription() bool {
	return n.Description != "" && n.Description != n.Title
}

// Question returns the decision condition, falling back to the title.
func (n Node) Question() string {
	if n.Condition == "" {
		return n.Title
	}
	return n.Condition
}
