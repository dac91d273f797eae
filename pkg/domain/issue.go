package domain

import "fmt"

// Severity grades a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Rule identifies which structural check produced an issue.
type Rule string

const (
	RuleTerminal         Rule = "terminal"
	RuleDecisionBranches Rule = "decision-branches"
	RuleIsolated         Rule = "isolated"
	RuleDeadEnd          Rule = "dead-end"
	RuleEntry            Rule = "entry"

	// Deep analysis rules, reported separately from the default battery.
	RuleUnreachable Rule = "unreachable"
	RuleCycle       Rule = "cycle"
)

// Issue is a single finding of the structural validator.
type Issue struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Rule     Rule     `json:"rule" yaml:"rule"`
	Message  string   `json:"message" yaml:"message"`
	NodeID   string   `json:"node_id,omitempty" yaml:"node_id,omitempty"`
}

func (i Issue) String() string {
	if i.NodeID == "" {
		return fmt.Sprintf("[%s] %s: %s", i.Severity, i.Rule, i.Message)
	}
	return fmt.Sprintf("[%s] %s: %s (node %s)", i.Severity, i.Rule, i.Message, i.NodeID)
}

// Report is the outcome of a validation run.
type Report struct {
	Valid  bool    `json:"valid" yaml:"valid"`
	Issues []Issue `json:"issues" yaml:"issues"`
}

// Errors returns the error-severity issues.
func (r Report) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the warning-severity issues.
func (r Report) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

func (r Report) filter(s Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == s {
			out = append(out, i)
		}
	}
	return out
}

// NewReport builds a report, deriving Valid from the absence of errors.
func NewReport(issues []Issue) Report {
	if issues == nil {
		issues = []Issue{}
	}
	valid := true
	for _, i := range issues {
		if i.Severity == SeverityError {
			valid = false
			break
		}
	}
	return Report{Valid: valid, Issues: issues}
}

// Analysis is the extended view of a graph: the default report plus
// reachability, cycle and complexity findings. Deep holds the issues of the
// deeper checks so Report stays identical to a plain validation.
type Analysis struct {
	Report      Report   `json:"report" yaml:"report"`
	Deep        []Issue  `json:"deep" yaml:"deep"`
	Unreachable []string `json:"unreachable" yaml:"unreachable"`
	HasCycle    bool     `json:"has_cycle" yaml:"has_cycle"`
	Complexity  int      `json:"complexity" yaml:"complexity"`
	Inputs      []string `json:"inputs" yaml:"inputs"`
	Decisions   []string `json:"decisions" yaml:"decisions"`
	Outputs     []string `json:"outputs" yaml:"outputs"`
}

// Valid reports whether neither the default battery nor the deep checks found errors.
func (a Analysis) Valid() bool {
	if !a.Report.Valid {
		return false
	}
	for _, i := range a.Deep {
		if i.Severity == SeverityError {
			return false
		}
	}
	return true
}
