package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/recoverly/flowedit/pkg/domain"
)

// Summary renders an automation as Markdown: a header, a table of nodes with
// their resolved display, and one line per edge grouped by source node.
func Summary(a *domain.Automation) string {
	var sb strings.Builder

	title := a.Name
	if title == "" {
		title = a.ID
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "- **Automation:** `%s`\n", a.ID)
	if a.TenantID != "" {
		fmt.Fprintf(&sb, "- **Tenant:** `%s`\n", a.TenantID)
	}
	if !a.UpdatedAt.IsZero() {
		fmt.Fprintf(&sb, "- **Updated:** %s\n", a.UpdatedAt.UTC().Format("2006-01-02 15:04 MST"))
	}
	fmt.Fprintf(&sb, "- **Size:** %d nodes, %d edges\n", len(a.Graph.Nodes), len(a.Graph.Edges))

	if len(a.Graph.Nodes) == 0 {
		sb.WriteString("\n_Empty graph._\n")
		return sb.String()
	}

	sb.WriteString("\n## Nodes\n\n")
	sb.WriteString("| ID | Kind | Label | Details |\n")
	sb.WriteString("|----|------|-------|---------|\n")
	for _, n := range a.Graph.Nodes {
		d := domain.ResolveDisplay(n)
		fmt.Fprintf(&sb, "| `%s` | %s | %s | %s |\n", n.ID, n.Kind, cell(d.Label), cell(details(n, d)))
	}

	if len(a.Graph.Edges) > 0 {
		sb.WriteString("\n## Flow\n\n")
		// Grouped by source node, in node order.
		for _, n := range a.Graph.Nodes {
			from := domain.ResolveDisplay(n).Label
			for _, e := range a.Graph.Outgoing(n.ID) {
				to := label(a.Graph, e.Target)
				if e.SourceAnchor != "" {
					fmt.Fprintf(&sb, "- %s **(%s)** → %s\n", from, e.SourceAnchor, to)
					continue
				}
				fmt.Fprintf(&sb, "- %s → %s\n", from, to)
			}
		}
	}
	return sb.String()
}

func label(g domain.Graph, id string) string {
	n, ok := g.Node(id)
	if !ok {
		return "`" + id + "`"
	}
	return domain.ResolveDisplay(n).Label
}

// details lists the parameter line plus any parameter not already shown.
func details(n domain.Node, d domain.Display) string {
	var parts []string
	if d.ParameterText != "" {
		parts = append(parts, d.ParameterText)
	}
	keys := make([]string, 0, len(n.Parameters))
	for k := range n.Parameters {
		if k == domain.ParamDays && d.ParameterText != "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Parameters[k]))
	}
	return strings.Join(parts, ", ")
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
