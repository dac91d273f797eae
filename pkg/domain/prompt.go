package domain

import (
	"fmt"
	"strings"
)

// PromptTarget is what the downstream assistant is asked to produce.
type PromptTarget string

const (
	TargetCode         PromptTarget = "code"
	TargetArchitecture PromptTarget = "architecture"
	TargetRefactor     PromptTarget = "refactor"
	TargetTests        PromptTarget = "tests"
)

// Strictness controls how literally the assistant must follow the flow.
type Strictness string

const (
	StrictnessLow    Strictness = "low"
	StrictnessMedium Strictness = "medium"
	StrictnessHigh   Strictness = "high"
)

// Detail controls the output requirements of a prompt.
type Detail string

const (
	DetailBrief    Detail = "brief"
	DetailNormal   Detail = "normal"
	DetailDetailed Detail = "detailed"
)

// PromptOptions configures prompt generation. Empty fields fall back to
// DefaultPromptOptions.
type PromptOptions struct {
	Target     PromptTarget `json:"target,omitempty" yaml:"target" mapstructure:"target"`
	Strictness Strictness   `json:"strictness,omitempty" yaml:"strictness" mapstructure:"strictness"`
	Detail     Detail       `json:"detail,omitempty" yaml:"detail" mapstructure:"detail"`
	// Diagram appends a Mermaid block of the flow.
	Diagram bool `json:"diagram,omitempty" yaml:"diagram" mapstructure:"diagram"`
	// Force renders the prompt even when the graph has validation errors.
	Force bool `json:"force,omitempty" yaml:"-" mapstructure:"-"`
}

// DefaultPromptOptions asks for strict, normally detailed code.
func DefaultPromptOptions() PromptOptions {
	return PromptOptions{Target: TargetCode, Strictness: StrictnessHigh, Detail: DetailNormal}
}

// WithDefaults fills empty fields from DefaultPromptOptions.
func (o PromptOptions) WithDefaults() PromptOptions {
	d := DefaultPromptOptions()
	if o.Target == "" {
		o.Target = d.Target
	}
	if o.Strictness == "" {
		o.Strictness = d.Strictness
	}
	if o.Detail == "" {
		o.Detail = d.Detail
	}
	return o
}

// Validate rejects unknown values. Empty values are accepted.
func (o PromptOptions) Validate() error {
	if o.Target != "" {
		if _, err := ParsePromptTarget(string(o.Target)); err != nil {
			return err
		}
	}
	if o.Strictness != "" {
		if _, err := ParseStrictness(string(o.Strictness)); err != nil {
			return err
		}
	}
	if o.Detail != "" {
		if _, err := ParseDetail(string(o.Detail)); err != nil {
			return err
		}
	}
	return nil
}

// ParsePromptTarget resolves a target name case-insensitively.
func ParsePromptTarget(s string) (PromptTarget, error) {
	switch t := PromptTarget(strings.ToLower(strings.TrimSpace(s))); t {
	case TargetCode, TargetArchitecture, TargetRefactor, TargetTests:
		return t, nil
	}
	return "", fmt.Errorf("unknown prompt target %q (want code, architecture, refactor or tests)", s)
}

// ParseStrictness resolves a strictness name case-insensitively.
func ParseStrictness(s string) (Strictness, error) {
	switch v := Strictness(strings.ToLower(strings.TrimSpace(s))); v {
	case StrictnessLow, StrictnessMedium, StrictnessHigh:
		return v, nil
	}
	return "", fmt.Errorf("unknown strictness %q (want low, medium or high)", s)
}

// ParseDetail resolves a detail level case-insensitively.
func ParseDetail(s string) (Detail, error) {
	switch v := Detail(strings.ToLower(strings.TrimSpace(s))); v {
	case DetailBrief, DetailNormal, DetailDetailed:
		return v, nil
	}
	return "", fmt.Errorf("unknown detail level %q (want brief, normal or detailed)", s)
}
