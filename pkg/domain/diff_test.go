package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestDiff(t *testing.T) {
	base := Graph{
		Nodes: []Node{
			{ID: "t1", Kind: "overdue-invoice", Parameters: map[string]any{"days": 5}},
			{ID: "a1", Kind: "action-send-message"},
		},
		Edges: []Edge{{ID: "e1", Source: "t1", Target: "a1"}},
	}

	tests := []struct {
		name     string
		old      Graph
		new      Graph
		wantDiff *GraphDiff
	}{
		{
			name:     "No Changes",
			old:      base,
			new:      base.Clone(),
			wantDiff: nil,
		},
		{
			name: "From Empty",
			old:  Graph{},
			new:  base,
			wantDiff: &GraphDiff{
				AddedNodes: []string{"t1", "a1"},
				AddedEdges: []string{"e1"},
			},
		},
		{
			name: "Removed Node And Edge",
			old:  base,
			new: Graph{
				Nodes: []Node{{ID: "t1", Kind: "overdue-invoice", Parameters: map[string]any{"days": 5}}},
			},
			wantDiff: &GraphDiff{
				RemovedNodes: []string{"a1"},
				RemovedEdges: []string{"e1"},
			},
		},
		{
			name: "Changed Parameters",
			old:  base,
			new: Graph{
				Nodes: []Node{
					{ID: "t1", Kind: "overdue-invoice", Parameters: map[string]any{"days": 7}},
					{ID: "a1", Kind: "action-send-message"},
				},
				Edges: base.Edges,
			},
			wantDiff: &GraphDiff{ChangedNodes: []string{"t1"}},
		},
		{
			name: "Changed Edge Anchor",
			old:  base,
			new: Graph{
				Nodes: base.Nodes,
				Edges: []Edge{{ID: "e1", Source: "t1", Target: "a1", SourceAnchor: "out"}},
			},
			wantDiff: &GraphDiff{ChangedEdges: []string{"e1"}},
		},
		{
			name: "Empty Parameters Equal Nil",
			old: Graph{
				Nodes: []Node{{ID: "a1", Kind: "action-send-message", Parameters: map[string]any{}}},
			},
			new: Graph{
				Nodes: []Node{{ID: "a1", Kind: "action-send-message"}},
			},
			wantDiff: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			if !reflect.DeepEqual(got, tt.wantDiff) {
				t.Errorf("Diff() = %+v, want %+v", got, tt.wantDiff)
			}
		})
	}
}

func TestGraphDiff_JSONOmitsEmptyLists(t *testing.T) {
	d := &GraphDiff{AutomationID: "auto-1", AddedNodes: []string{"n1"}}
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"automation_id":"auto-1","added_nodes":["n1"]}`
	if string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}
}
