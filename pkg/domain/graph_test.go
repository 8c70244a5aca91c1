package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphNodesAndEdges(t *testing.T) {
	g := NewGraph()
	g.AddNode(2, Attrs{"type": "end"})
	g.AddNode(0, Attrs{"type": "start"})
	g.AddNode(1, Attrs{"type": "message", "message_text": "hi", "status": "sent"})
	g.AddEdge(1, 2, nil)
	g.AddEdge(0, 1, nil)

	assert.Equal(t, []int{0, 1, 2}, g.Nodes())
	assert.Equal(t, 3, g.NodeCount())
	assert.True(t, g.HasEdge(0, 1))
	assert.False(t, g.HasEdge(1, 0))
	assert.Equal(t, 1, g.OutDegree(1))
	assert.Equal(t, 1, g.InDegree(1))

	edges := g.Edges()
	require.Len(t, edges, 2)
	assert.Equal(t, 0, edges[0].From)
	assert.Equal(t, 1, edges[1].From)
}

func TestGraphRemoveNodeCascades(t *testing.T) {
	g := NewGraph()
	for id := 0; id < 3; id++ {
		g.AddNode(id, Attrs{})
	}
	g.AddEdge(0, 1, nil)
	g.AddEdge(1, 2, nil)

	g.RemoveNode(1)

	assert.False(t, g.HasNode(1))
	assert.False(t, g.HasEdge(0, 1))
	assert.False(t, g.HasEdge(1, 2))
	assert.Equal(t, 0, g.OutDegree(0))
	assert.Equal(t, 0, g.InDegree(2))
}

func TestGraphCloneIsolation(t *testing.T) {
	g := NewGraph()
	g.AddNode(0, Attrs{"type": "start"})
	g.AddNode(1, Attrs{"type": "end"})
	g.AddEdge(0, 1, Attrs{})

	clone := g.Clone()
	clone.MergeNodeAttrs(0, Attrs{"type": "message"})
	clone.SetEdgeAttrs(0, 1, Attrs{"condition": "Yes"})
	clone.AddNode(9, Attrs{})

	attrs, _ := g.NodeAttrs(0)
	assert.Equal(t, "start", attrs["type"])
	edgeAttrs, _ := g.EdgeAttrs(0, 1)
	assert.Empty(t, edgeAttrs)
	assert.False(t, g.HasNode(9))
}

func TestGraphOutEdgesSorted(t *testing.T) {
	g := NewGraph()
	for id := 0; id < 4; id++ {
		g.AddNode(id, Attrs{})
	}
	g.AddEdge(0, 3, nil)
	g.AddEdge(0, 1, nil)
	g.AddEdge(0, 2, nil)

	outs := g.OutEdges(0)
	require.Len(t, outs, 3)
	assert.Equal(t, 1, outs[0].To)
	assert.Equal(t, 2, outs[1].To)
	assert.Equal(t, 3, outs[2].To)
}

func TestGraphHasPathTo(t *testing.T) {
	g := NewGraph()
	for id := 0; id < 4; id++ {
		g.AddNode(id, Attrs{})
	}
	g.AddEdge(0, 1, nil)
	g.AddEdge(1, 2, nil)

	assert.True(t, g.HasPathTo(0, map[int]bool{2: true}))
	assert.False(t, g.HasPathTo(0, map[int]bool{3: true}))
	assert.False(t, g.HasPathTo(99, map[int]bool{2: true}))
}

func TestAttrsEqual(t *testing.T) {
	assert.True(t, Attrs{}.Equal(nil))
	assert.True(t, Attrs{"condition": "Yes"}.Equal(Attrs{"condition": "Yes"}))
	assert.False(t, Attrs{"condition": "Yes"}.Equal(Attrs{"condition": "No"}))
	assert.False(t, Attrs{"condition": "Yes"}.Equal(Attrs{}))
}
