package graph_test

import (
	"strings"
	"testing"

	"github.com/ostryzhko/flowpath/internal/presentation/graph"
	"github.com/ostryzhko/flowpath/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		nodes    []domain.Node
		edges    []domain.Edge
		overlay  *graph.Overlay
		contains []string
	}{
		{
			name: "Node Shapes",
			nodes: []domain.Node{
				domain.StartNode{ID: 0},
				domain.MessageNode{ID: 1, MessageText: "hi", Status: domain.StatusSent},
				domain.ConditionNode{ID: 2, Rule: "status == 'sent'"},
				domain.EndNode{ID: 3},
			},
			contains: []string{
				"n0((\"start 0\"))",
				"n1[\"message 1: hi (sent)\"]",
				"n2{\"condition 2: status == 'sent'\"}",
				"n3((\"end 3\"))",
			},
		},
		{
			name: "Edge Labels",
			nodes: []domain.Node{
				domain.ConditionNode{ID: 2, Rule: "status == 'sent'"},
				domain.EndNode{ID: 3},
			},
			edges: []domain.Edge{
				domain.SimpleEdge{From: 0, To: 1},
				domain.ConditionEdge{From: 2, To: 3, Condition: domain.ConditionYes},
			},
			contains: []string{
				"n0 --> n1",
				"n2 -- \"Yes\" --> n3",
			},
		},
		{
			name: "Label Escaping",
			nodes: []domain.Node{
				domain.MessageNode{ID: 1, MessageText: `say "hi"`, Status: domain.StatusSent},
			},
			contains: []string{
				"n1[\"message 1: say 'hi' (sent)\"]",
			},
		},
		{
			name: "Path Overlay",
			nodes: []domain.Node{
				domain.StartNode{ID: 0},
				domain.EndNode{ID: 1},
			},
			overlay: &graph.Overlay{PathNodes: []int{0, 1, 0}},
			contains: []string{
				"classDef inpath",
				"class n0 inpath;",
				"class n1 inpath;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := graph.GenerateMermaid(tt.nodes, tt.edges, tt.overlay)
			if !strings.HasPrefix(out, "graph TD\n") {
				t.Fatalf("output missing header: %q", out)
			}
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestGenerateMermaidOverlayDeduplicates(t *testing.T) {
	out := graph.GenerateMermaid(
		[]domain.Node{domain.StartNode{ID: 0}},
		nil,
		&graph.Overlay{PathNodes: []int{0, 0, 0}},
	)
	if strings.Count(out, "class n0 inpath;") != 1 {
		t.Errorf("expected a single overlay class line:\n%s", out)
	}
}
