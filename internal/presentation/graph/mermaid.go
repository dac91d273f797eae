package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/logicflow/pkg/domain"
)

// Overlay highlights validation findings on the diagram.
type Overlay struct {
	Issues []domain.Issue
}

// NewOverlay builds an overlay from one or more issue lists.
func NewOverlay(lists ...[]domain.Issue) *Overlay {
	o := &Overlay{}
	for _, l := range lists {
		o.Issues = append(o.Issues, l...)
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of g, in Order(g).
// It applies semantic styling:
// - Input: [/Parallelogram/]
// - Decision: {Diamond}
// - Output: ([Stadium])
// - Process: [Rectangle]
// Anchors and edges touching them are omitted, as are edges to unknown nodes.
// Issues of the overlay, if provided, are highlighted per node.
func GenerateMermaid(g *domain.Graph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ordered := OrderedNodes(g)
	shown := make(map[string]bool, len(ordered))
	for _, n := range ordered {
		shown[n.ID] = true
	}

	for _, n := range ordered {
		opener, closer := shape(n.Kind)
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", sanitizeMermaidID(n.ID), opener, escapeLabel(n.Title), closer))
	}

	for _, n := range ordered {
		for _, e := range g.Outgoing(n.ID) {
			if !shown[e.To] {
				continue
			}
			arrow := "-->"
			if e.Branch != domain.BranchNone {
				arrow = fmt.Sprintf("-- %s -->", e.Branch.Keyword())
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(e.From), arrow, sanitizeMermaidID(e.To)))
		}
	}

	if overlay != nil && len(overlay.Issues) > 0 {
		sb.WriteString("\n    %% Validation Overlay\n")
		// Force black text (color:#000) for contrast regardless of theme
		sb.WriteString("    classDef error fill:#ffebee,stroke:#c62828,stroke-width:3px,color:#000;\n")
		sb.WriteString("    classDef warning fill:#fff8e1,stroke:#f9a825,stroke-width:2px,color:#000;\n")

		severity := make(map[string]domain.Severity)
		var marked []string
		for _, i := range overlay.Issues {
			if i.NodeID == "" || !shown[i.NodeID] {
				continue
			}
			prev, seen := severity[i.NodeID]
			if !seen {
				marked = append(marked, i.NodeID)
			}
			if !seen || prev == domain.SeverityWarning {
				severity[i.NodeID] = i.Severity
			}
		}
		for _, id := range marked {
			sb.WriteString(fmt.Sprintf("    class %s %s;\n", sanitizeMermaidID(id), severity[id]))
		}
	}

	return sb.String()
}

func shape(kind domain.NodeKind) (string, string) {
	switch kind {
	case domain.KindInput:
		return "[/", "/]"
	case domain.KindDecision:
		return "{", "}"
	case domain.KindOutput:
		return "([", "])"
	default:
		return "[", "]"
	}
}

// escapeLabel keeps titles inside a quoted Mermaid label.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
