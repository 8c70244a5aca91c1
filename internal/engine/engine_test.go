package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ostryzhko/flowpath/pkg/domain"
)

// testGraph assembles a validated graph from typed nodes and raw edges.
func testGraph(t *testing.T, nodes []domain.Node, edges []domain.EdgeRef) *domain.Graph {
	t.Helper()
	g := domain.NewGraph()
	for _, n := range nodes {
		g.AddNode(n.NodeID(), n.Attrs())
	}
	for _, e := range edges {
		g.AddEdge(e.From, e.To, e.Attrs)
	}
	_, err := ValidateGraph(g)
	require.NoError(t, err)
	return g
}

func simple(from, to int) domain.EdgeRef {
	return domain.EdgeRef{From: from, To: to, Attrs: domain.Attrs{}}
}

func conditional(from, to int, label domain.Condition) domain.EdgeRef {
	return domain.EdgeRef{From: from, To: to, Attrs: domain.Attrs{"condition": string(label)}}
}

func message(id int, text string, status domain.MessageStatus) domain.MessageNode {
	return domain.MessageNode{ID: id, MessageText: text, Status: status}
}

// linearNodes is the smallest resolvable workflow: start, message, end.
func linearNodes() []domain.Node {
	return []domain.Node{
		domain.StartNode{ID: 0},
		message(1, "hello", domain.StatusSent),
		domain.EndNode{ID: 2},
	}
}

func newPathfinder(t *testing.T, nodes []domain.Node, edges []domain.EdgeRef) *Pathfinder {
	t.Helper()
	p, err := New(testGraph(t, nodes, edges))
	require.NoError(t, err)
	return p
}
