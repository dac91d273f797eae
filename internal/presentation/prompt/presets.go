package prompt

import "github.com/aretw0/logicflow/pkg/domain"

var goals = map[domain.PromptTarget]string{
	domain.TargetCode:         "The goal is to implement the described logic as production-ready code.",
	domain.TargetArchitecture: "The goal is to design a clean software architecture for the described logic.",
	domain.TargetRefactor:     "The goal is to refactor existing code so that it matches the described logic.",
	domain.TargetTests:        "The goal is to generate meaningful automated tests for the described logic.",
}

var presets = map[domain.PromptTarget][]string{
	domain.TargetCode: {
		"Generate production-ready code.",
		"Use clear naming and consistent structure.",
		"Do not include explanations outside of code comments.",
	},
	domain.TargetArchitecture: {
		"Describe the system architecture implied by the logic.",
		"Focus on components, responsibilities, and data flow.",
		"Avoid implementation details unless necessary.",
	},
	domain.TargetRefactor: {
		"Refactor existing code to better match the described logic.",
		"Preserve external behavior unless explicitly stated otherwise.",
		"Explain structural changes briefly.",
	},
	domain.TargetTests: {
		"Generate tests that validate the described logic.",
		"Cover happy paths, decision branches, and edge cases.",
		"Use clear, deterministic test cases.",
	},
}

var strictness = map[domain.Strictness]string{
	domain.StrictnessHigh:   "Follow the described logic strictly. Do not add features or assumptions.",
	domain.StrictnessMedium: "Follow the logic carefully. Minor improvements are allowed if explicitly justified.",
	domain.StrictnessLow:    "Use the logic as guidance. You may make reasonable design decisions.",
}

var requirements = map[domain.Detail][]string{
	domain.DetailBrief:  {"Provide only the core implementation."},
	domain.DetailNormal: {"Provide clean, readable code with minimal comments."},
	domain.DetailDetailed: {
		"Provide well-structured code with comments explaining decisions.",
		"Highlight any edge cases or assumptions explicitly.",
	},
}

// constraints closes every prompt, independent of the graph.
var constraints = []string{
	"Do not invent additional logic",
	"Follow the flow exactly as described",
	"Use clear, descriptive naming",
	"Implement error handling where appropriate",
}
