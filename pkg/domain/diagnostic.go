package domain

import "fmt"

// DiagnosticKind categorizes non-fatal parser findings.
type DiagnosticKind string

const (
	// DiagParseAmbiguity: a line matched no grammar rule.
	DiagParseAmbiguity DiagnosticKind = "parse_ambiguity"
	// DiagDanglingBranchTarget: a branch names a title that no node declares.
	DiagDanglingBranchTarget DiagnosticKind = "dangling_branch_target"
	// DiagDuplicateTitle: two nodes share a title; branch lookups resolve to the last one.
	DiagDuplicateTitle DiagnosticKind = "duplicate_title"
	// DiagDuplicateBranch: a decision declared the same branch twice; the last one wins.
	DiagDuplicateBranch DiagnosticKind = "duplicate_branch"
)

// Diagnostic is recorded by the parser instead of failing.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind" yaml:"kind"`
	Line    int            `json:"line" yaml:"line"` // 1-based source line, 0 when not tied to a line
	Message string         `json:"message" yaml:"message"`
}

func (d Diagnostic) String() string {
	if d.Line == 0 {
		return fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}
	return fmt.Sprintf("line %d: %s: %s", d.Line, d.Kind, d.Message)
}
