package domain

import (
	"fmt"
	"strings"
)

// Branch labels an edge leaving a decision.
type Branch string

const (
	// BranchNone marks unconditional sequential flow.
	BranchNone Branch = ""
	BranchYes  Branch = "yes"
	BranchNo   Branch = "no"
)

// ParseBranch resolves "yes"/"no" case-insensitively. Empty input is BranchNone.
func ParseBranch(s string) (Branch, error) {
	switch b := Branch(strings.ToLower(strings.TrimSpace(s))); b {
	case BranchNone, BranchYes, BranchNo:
		return b, nil
	}
	return "", fmt.Errorf("unknown branch %q", s)
}

// Keyword returns "YES", "NO" or "" for unconditional edges.
func (b Branch) Keyword() string {
	return strings.ToUpper(string(b))
}

// Edge is a directed connection between two nodes.
type Edge struct {
	From   string `json:"from" yaml:"from"`
	To     string `json:"to" yaml:"to"`
	Branch Branch `json:"branch,omitempty" yaml:"branch,omitempty"`
}
