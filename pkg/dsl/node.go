package dsl

import "github.com/recoverly/flowedit/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

// At sets the editor position.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.node.Position = domain.Position{X: x, Y: y}
	return n
}

// Label overrides the display label.
func (n *NodeBuilder) Label(label string) *NodeBuilder {
	n.node.Label = label
	return n
}

// Param sets a single parameter.
func (n *NodeBuilder) Param(key string, value any) *NodeBuilder {
	if n.node.Parameters == nil {
		n.node.Parameters = make(map[string]any)
	}
	n.node.Parameters[key] = value
	return n
}

// Days sets the day threshold of a trigger.
func (n *NodeBuilder) Days(days int) *NodeBuilder {
	return n.Param(domain.ParamDays, days)
}

// Template sets the message template of an action.
func (n *NodeBuilder) Template(name string) *NodeBuilder {
	return n.Param(domain.ParamTemplate, name)
}

// Delay sets the delay of an action in minutes.
func (n *NodeBuilder) Delay(minutes int) *NodeBuilder {
	return n.Param(domain.ParamDelayMinutes, minutes)
}

// Go connects this node to the target.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	n.builder.edges = append(n.builder.edges, pendingEdge{source: n.node.ID, target: target})
	return n
}

// Branch connects this node to the target through a named source anchor,
// e.g. "yes" or "no" on a condition.
func (n *NodeBuilder) Branch(anchor, target string) *NodeBuilder {
	n.builder.edges = append(n.builder.edges, pendingEdge{source: n.node.ID, target: target, anchor: anchor})
	return n
}

// Build returns the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.Node {
	return n.node
}
