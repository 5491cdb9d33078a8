package domain

import (
	"fmt"
	"reflect"

	"github.com/recoverly/flowedit/pkg/schema"
)

// Graph is a set of nodes and edges, both kept in insertion order.
// Mutation methods have value receivers and return a new Graph; the receiver is
// never modified, so a rejected mutation leaves the caller's graph untouched.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes" mapstructure:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges" mapstructure:"edges"`
}

// Clone returns a structural deep copy of the graph.
func (g Graph) Clone() Graph {
	out := Graph{}
	if g.Nodes != nil {
		out.Nodes = make([]Node, len(g.Nodes))
		for i, n := range g.Nodes {
			out.Nodes[i] = n.clone()
		}
	}
	if g.Edges != nil {
		out.Edges = make([]Edge, len(g.Edges))
		copy(out.Edges, g.Edges)
	}
	return out
}

// Node looks up a node by id.
func (g Graph) Node(id string) (Node, bool) {
	if i := g.nodeIndex(id); i >= 0 {
		return g.Nodes[i].clone(), true
	}
	return Node{}, false
}

// Edge looks up an edge by id.
func (g Graph) Edge(id string) (Edge, bool) {
	if i := g.edgeIndex(id); i >= 0 {
		return g.Edges[i], true
	}
	return Edge{}, false
}

// HasNode reports whether a node with the id exists.
func (g Graph) HasNode(id string) bool { return g.nodeIndex(id) >= 0 }

// Outgoing returns the edges leaving a node, in insertion order.
func (g Graph) Outgoing(nodeID string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Source == nodeID {
			out = append(out, e)
		}
	}
	return out
}

func (g Graph) nodeIndex(id string) int {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

func (g Graph) edgeIndex(id string) int {
	for i := range g.Edges {
		if g.Edges[i].ID == id {
			return i
		}
	}
	return -1
}

// AddNode inserts a node. The id must be non-empty and unused.
func (g Graph) AddNode(n Node) (Graph, error) {
	const op = "add-node"
	if n.ID == "" {
		return g, invalid(op, "node id is required")
	}
	if g.HasNode(n.ID) {
		return g, invalid(op, "node %q already exists", n.ID)
	}
	params, err := checkParameters(op, n.Kind, n.Parameters)
	if err != nil {
		return g, err
	}

	out := g.Clone()
	n = n.clone()
	n.Parameters = params
	out.Nodes = append(out.Nodes, n)
	return out, nil
}

// RemoveNode deletes a node together with every edge touching it.
func (g Graph) RemoveNode(id string) (Graph, error) {
	const op = "remove-node"
	if id == "" {
		return g, invalid(op, "node id is required")
	}
	i := g.nodeIndex(id)
	if i < 0 {
		return g, invalid(op, "node %q does not exist", id)
	}

	out := g.Clone()
	out.Nodes = append(out.Nodes[:i], out.Nodes[i+1:]...)
	edges := out.Edges[:0]
	for _, e := range out.Edges {
		if e.Source != id && e.Target != id {
			edges = append(edges, e)
		}
	}
	out.Edges = edges
	return out, nil
}

// MoveNode sets the layout position of a node.
func (g Graph) MoveNode(id string, pos Position) (Graph, error) {
	const op = "move-node"
	i := g.nodeIndex(id)
	if i < 0 {
		return g, invalid(op, "node %q does not exist", id)
	}
	out := g.Clone()
	out.Nodes[i].Position = pos
	return out, nil
}

// UpdateParameters merges params into a node's parameters. A nil value removes
// the key. The merged set is normalised and validated against the node's kind.
func (g Graph) UpdateParameters(id string, params map[string]any) (Graph, error) {
	const op = "update-parameters"
	i := g.nodeIndex(id)
	if i < 0 {
		return g, invalid(op, "node %q does not exist", id)
	}

	merged := cloneMap(g.Nodes[i].Parameters)
	if merged == nil {
		merged = make(map[string]any, len(params))
	}
	for k, v := range params {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = cloneValue(v)
	}
	if len(merged) == 0 {
		merged = nil
	}

	normalized, err := checkParameters(op, g.Nodes[i].Kind, merged)
	if err != nil {
		return g, err
	}

	out := g.Clone()
	out.Nodes[i].Parameters = normalized
	return out, nil
}

// SetLabel sets or clears (empty string) the display override of a node.
func (g Graph) SetLabel(id, label string) (Graph, error) {
	i := g.nodeIndex(id)
	if i < 0 {
		return g, invalid("set-label", "node %q does not exist", id)
	}
	out := g.Clone()
	out.Nodes[i].Label = label
	return out, nil
}

// AddEdge inserts an edge. Both endpoints must already be in the graph.
func (g Graph) AddEdge(e Edge) (Graph, error) {
	const op = "add-edge"
	if e.ID == "" {
		return g, invalid(op, "edge id is required")
	}
	if e.Source == "" || e.Target == "" {
		return g, invalid(op, "edge %q needs a source and a target", e.ID)
	}
	if g.edgeIndex(e.ID) >= 0 {
		return g, invalid(op, "edge %q already exists", e.ID)
	}
	if err := g.checkEndpoints(e); err != nil {
		return g, err
	}

	out := g.Clone()
	out.Edges = append(out.Edges, e)
	return out, nil
}

// RemoveEdge deletes an edge.
func (g Graph) RemoveEdge(id string) (Graph, error) {
	const op = "remove-edge"
	i := g.edgeIndex(id)
	if i < 0 {
		return g, invalid(op, "edge %q does not exist", id)
	}
	out := g.Clone()
	out.Edges = append(out.Edges[:i], out.Edges[i+1:]...)
	return out, nil
}

// RetargetEdge moves one or both ends of an edge. Empty fields in to keep the
// current value. New endpoints must exist in the graph.
func (g Graph) RetargetEdge(id string, to Endpoints) (Graph, error) {
	const op = "retarget-edge"
	i := g.edgeIndex(id)
	if i < 0 {
		return g, invalid(op, "edge %q does not exist", id)
	}

	e := g.Edges[i]
	if to.Source != "" {
		e.Source = to.Source
	}
	if to.Target != "" {
		e.Target = to.Target
	}
	if to.SourceAnchor != "" {
		e.SourceAnchor = to.SourceAnchor
	}
	if to.TargetAnchor != "" {
		e.TargetAnchor = to.TargetAnchor
	}
	if err := g.checkEndpoints(e); err != nil {
		return g, err
	}

	out := g.Clone()
	out.Edges[i] = e
	return out, nil
}

func (g Graph) checkEndpoints(e Edge) error {
	if !g.HasNode(e.Source) {
		return &DanglingReferenceError{EdgeID: e.ID, NodeID: e.Source, End: "source"}
	}
	if !g.HasNode(e.Target) {
		return &DanglingReferenceError{EdgeID: e.ID, NodeID: e.Target, End: "target"}
	}
	return nil
}

// Validate checks the invariants of a graph obtained from outside the editor
// (decoded from storage or a template): non-empty unique ids, valid parameters
// and no dangling edge endpoints.
func (g Graph) Validate() error {
	seen := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			return invalid("graph", "node with empty id")
		}
		if seen[n.ID] {
			return invalid("graph", "duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
		if err := schemaCheck(n); err != nil {
			return err
		}
	}

	edges := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		if e.ID == "" {
			return invalid("graph", "edge with empty id")
		}
		if edges[e.ID] {
			return invalid("graph", "duplicate edge id %q", e.ID)
		}
		edges[e.ID] = true
		if err := g.checkEndpoints(e); err != nil {
			return err
		}
	}
	return nil
}

func schemaCheck(n Node) error {
	if _, err := checkParameters("graph", n.Kind, n.Parameters); err != nil {
		return fmt.Errorf("node %q: %w", n.ID, err)
	}
	return nil
}

// Equal reports value equality of two graphs, ignoring insertion order.
// Nil and empty parameter maps compare equal.
func (g Graph) Equal(other Graph) bool {
	if len(g.Nodes) != len(other.Nodes) || len(g.Edges) != len(other.Edges) {
		return false
	}
	for _, n := range g.Nodes {
		o, ok := other.Node(n.ID)
		if !ok || !nodesEqual(n, o) {
			return false
		}
	}
	for _, e := range g.Edges {
		o, ok := other.Edge(e.ID)
		if !ok || o != e {
			return false
		}
	}
	return true
}

func nodesEqual(a, b Node) bool {
	if a.ID != b.ID || a.Kind != b.Kind || a.Position != b.Position || a.Label != b.Label {
		return false
	}
	if len(a.Parameters) == 0 && len(b.Parameters) == 0 {
		return true
	}
	return reflect.DeepEqual(a.Parameters, b.Parameters)
}

// Normalized returns a copy whose integer parameters are plain ints. Decoders
// produce float64 or json.Number for numbers; stores call this after loading.
func (g Graph) Normalized() Graph {
	out := g.Clone()
	for i, n := range out.Nodes {
		out.Nodes[i].Parameters = schema.Normalize(ParameterSchema(n.Kind), n.Parameters)
	}
	return out
}
