package dsl

import (
	"fmt"

	"github.com/recoverly/flowedit/pkg/domain"
)

// Builder manages the graph construction.
type Builder struct {
	order []string
	nodes map[string]*NodeBuilder
	edges []pendingEdge
}

type pendingEdge struct {
	source, target string
	anchor         string
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add creates a node of the given kind.
// If the node already exists, it returns the existing builder and the kind is ignored.
func (b *Builder) Add(id string, kind domain.Kind) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node: domain.Node{
			ID:   id,
			Kind: kind,
		},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Trigger adds a trigger node for one of the trigger tags.
func (b *Builder) Trigger(id, tag string) *NodeBuilder {
	return b.Add(id, domain.Kind(tag))
}

// Condition adds an expression condition.
func (b *Builder) Condition(id, expression string) *NodeBuilder {
	return b.Add(id, "condition-expression").Param(domain.ParamExpression, expression)
}

// Action adds an action node of kind "action-<name>".
func (b *Builder) Action(id, name string) *NodeBuilder {
	return b.Add(id, domain.Kind("action-"+name))
}

// Build replays the collected nodes and edges through the graph operations,
// so the result satisfies the same checks as an interactively edited graph.
// Edges get sequential ids e1, e2, ... in declaration order.
func (b *Builder) Build() (domain.Graph, error) {
	g := domain.Graph{Nodes: []domain.Node{}, Edges: []domain.Edge{}}
	var err error

	for _, id := range b.order {
		g, err = g.AddNode(b.nodes[id].node)
		if err != nil {
			return domain.Graph{}, fmt.Errorf("failed to add node %q: %w", id, err)
		}
	}
	for i, pe := range b.edges {
		e := domain.Edge{
			ID:           fmt.Sprintf("e%d", i+1),
			Source:       pe.source,
			Target:       pe.target,
			SourceAnchor: pe.anchor,
		}
		g, err = g.AddEdge(e)
		if err != nil {
			return domain.Graph{}, fmt.Errorf("failed to connect %q to %q: %w", pe.source, pe.target, err)
		}
	}
	return g, nil
}

// MustBuild is like Build but panics on error. Intended for package-level
// graphs whose shape is fixed at compile time.
func (b *Builder) MustBuild() domain.Graph {
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return g
}
