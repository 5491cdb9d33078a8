package graph

import (
	"fmt"
	"strings"

	"github.com/recoverly/flowedit/pkg/domain"
)

// Overlay highlights nodes on top of the static graph.
type Overlay struct {
	// Changed nodes are drawn with a dashed border (e.g. the last diff).
	Changed []string
	// Selected is the node the operator is working on.
	Selected string
}

// GenerateMermaid produces a Mermaid flowchart of the automation.
// Node shapes follow the family:
// - Trigger (and unknown kinds): ([Stadium])
// - Condition: {Rhombus}
// - Action: [Rectangle]
// Labels come from domain.ResolveDisplay, so the chart reads like the editor canvas.
// Output depends only on the graph order and is stable across calls.
func GenerateMermaid(g domain.Graph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, node := range g.Nodes {
		opener, closer := shape(node.Family())
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(node.ID), opener, nodeLabel(node), closer)
	}

	for _, e := range g.Edges {
		from, to := sanitizeMermaidID(e.Source), sanitizeMermaidID(e.Target)
		if e.SourceAnchor != "" {
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", from, escapeLabel(e.SourceAnchor), to)
			continue
		}
		fmt.Fprintf(&sb, "    %s --> %s\n", from, to)
	}

	if len(g.Nodes) == 0 {
		return sb.String()
	}

	sb.WriteString("\n")
	sb.WriteString("    classDef trigger fill:#fff3e0,stroke:#e65100,color:#000;\n")
	sb.WriteString("    classDef condition fill:#ede7f6,stroke:#4527a0,color:#000;\n")
	sb.WriteString("    classDef action fill:#e8f5e9,stroke:#1b5e20,color:#000;\n")
	for _, node := range g.Nodes {
		fmt.Fprintf(&sb, "    class %s %s;\n", sanitizeMermaidID(node.ID), styleClass(node.Family()))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef changed stroke-dasharray:5 5,stroke-width:2px;\n")
		sb.WriteString("    classDef selected stroke:#fbc02d,stroke-width:4px;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Changed {
			safeID := sanitizeMermaidID(id)
			// Removed nodes may still be listed in a diff.
			if !g.HasNode(id) || seen[safeID] {
				continue
			}
			seen[safeID] = true
			fmt.Fprintf(&sb, "    class %s changed;\n", safeID)
		}
		if overlay.Selected != "" && g.HasNode(overlay.Selected) {
			fmt.Fprintf(&sb, "    class %s selected;\n", sanitizeMermaidID(overlay.Selected))
		}
	}

	return sb.String()
}

func shape(f domain.Family) (string, string) {
	switch f {
	case domain.FamilyCondition:
		return "{", "}"
	case domain.FamilyAction:
		return "[", "]"
	case domain.FamilyTrigger, domain.FamilyUnknown:
		return "([", "])"
	}
	return "([", "])"
}

func styleClass(f domain.Family) string {
	switch f {
	case domain.FamilyCondition:
		return "condition"
	case domain.FamilyAction:
		return "action"
	case domain.FamilyTrigger, domain.FamilyUnknown:
		return "trigger"
	}
	return "trigger"
}

func nodeLabel(n domain.Node) string {
	d := domain.ResolveDisplay(n)
	label := escapeLabel(d.Label)
	if d.ParameterText != "" {
		label += "<br/>" + escapeLabel(d.ParameterText)
	}
	return label
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "#quot;")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
