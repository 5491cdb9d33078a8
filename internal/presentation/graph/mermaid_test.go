package graph_test

import (
	"testing"

	"github.com/recoverly/flowedit/internal/presentation/graph"
	"github.com/recoverly/flowedit/pkg/domain"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
)

func reminder() domain.Graph {
	return domain.Graph{
		Nodes: []domain.Node{
			{ID: "t1", Kind: "overdue-invoice", Parameters: map[string]any{"days": 5}},
			{ID: "a1", Kind: "action-send-whatsapp", Position: domain.Position{X: 240}},
		},
		Edges: []domain.Edge{{ID: "e1", Source: "t1", Target: "a1"}},
	}
}

func branching() domain.Graph {
	return domain.Graph{
		Nodes: []domain.Node{
			{ID: "no-contact-7", Kind: "no-contact", Label: `Quiet "debtor"`, Parameters: map[string]any{"days": 7}},
			{ID: "check", Kind: "condition-expression", Parameters: map[string]any{"expression": "amount > 100"}},
			{ID: "call", Kind: "action-place-call"},
			{ID: "email", Kind: "action-send-email"},
			{ID: "legacy", Kind: "sms-fallback"},
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "no-contact-7", Target: "check"},
			{ID: "e2", Source: "check", Target: "call", SourceAnchor: "yes"},
			{ID: "e3", Source: "check", Target: "email", SourceAnchor: "no"},
			{ID: "e4", Source: "legacy", Target: "email"},
		},
	}
}

func TestGenerateMermaid_Golden(t *testing.T) {
	tests := []struct {
		name    string
		graph   domain.Graph
		overlay *graph.Overlay
	}{
		{name: "reminder", graph: reminder()},
		{name: "branching", graph: branching()},
		{
			name:    "overlay",
			graph:   reminder(),
			overlay: &graph.Overlay{Changed: []string{"a1", "gone", "a1"}, Selected: "t1"},
		},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g.Assert(t, tt.name, []byte(graph.GenerateMermaid(tt.graph, tt.overlay)))
		})
	}
}

func TestGenerateMermaid_Empty(t *testing.T) {
	assert.Equal(t, "graph LR\n", graph.GenerateMermaid(domain.Graph{}, &graph.Overlay{Selected: "x"}))
}

func TestGenerateMermaid_Deterministic(t *testing.T) {
	g := branching()
	assert.Equal(t, graph.GenerateMermaid(g, nil), graph.GenerateMermaid(g.Clone(), nil))
}
