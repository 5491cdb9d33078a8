package domain

// GraphDiff lists the node and edge ids that differ between two snapshots.
// It is serialised to JSON and streamed to clients after every edit, undo or redo
// so they can patch their local copy instead of reloading the graph.
type GraphDiff struct {
	AutomationID string `json:"automation_id,omitempty"`

	AddedNodes   []string `json:"added_nodes,omitempty"`
	RemovedNodes []string `json:"removed_nodes,omitempty"`
	ChangedNodes []string `json:"changed_nodes,omitempty"`

	AddedEdges   []string `json:"added_edges,omitempty"`
	RemovedEdges []string `json:"removed_edges,omitempty"`
	ChangedEdges []string `json:"changed_edges,omitempty"`
}

// Diff calculates the difference between oldGraph and newGraph.
// Ids are reported in the insertion order of the graph they come from.
// Returns nil when the graphs are equal.
func Diff(oldGraph, newGraph Graph) *GraphDiff {
	diff := &GraphDiff{}

	for _, n := range newGraph.Nodes {
		prev, ok := oldGraph.Node(n.ID)
		switch {
		case !ok:
			diff.AddedNodes = append(diff.AddedNodes, n.ID)
		case !nodesEqual(prev, n):
			diff.ChangedNodes = append(diff.ChangedNodes, n.ID)
		}
	}
	for _, n := range oldGraph.Nodes {
		if !newGraph.HasNode(n.ID) {
			diff.RemovedNodes = append(diff.RemovedNodes, n.ID)
		}
	}

	for _, e := range newGraph.Edges {
		prev, ok := oldGraph.Edge(e.ID)
		switch {
		case !ok:
			diff.AddedEdges = append(diff.AddedEdges, e.ID)
		case prev != e:
			diff.ChangedEdges = append(diff.ChangedEdges, e.ID)
		}
	}
	for _, e := range oldGraph.Edges {
		if _, ok := newGraph.Edge(e.ID); !ok {
			diff.RemovedEdges = append(diff.RemovedEdges, e.ID)
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *GraphDiff) IsEmpty() bool {
	return len(d.AddedNodes) == 0 &&
		len(d.RemovedNodes) == 0 &&
		len(d.ChangedNodes) == 0 &&
		len(d.AddedEdges) == 0 &&
		len(d.RemovedEdges) == 0 &&
		len(d.ChangedEdges) == 0
}
