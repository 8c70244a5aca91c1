package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostryzhko/flowpath/pkg/domain"
)

// snapshotJSONEq asserts the graph state was not altered by a rejected
// mutation.
func requireUnchanged(t *testing.T, p *Pathfinder, before domain.Snapshot) {
	t.Helper()
	assert.Equal(t, before, p.Snapshot())
}

func TestAddNode(t *testing.T) {
	t.Run("auto id starts at one", func(t *testing.T) {
		p := newPathfinder(t, nil, nil)
		node, err := p.AddNode(domain.StartNode{ID: domain.AutoID})
		require.NoError(t, err)
		assert.Equal(t, 1, node.NodeID())
	})

	t.Run("auto id is max plus one", func(t *testing.T) {
		p := newPathfinder(t, []domain.Node{domain.EndNode{ID: 7}}, nil)
		node, err := p.AddNode(message(domain.AutoID, "hi", domain.StatusPending))
		require.NoError(t, err)
		assert.Equal(t, 8, node.NodeID())
	})

	t.Run("second start rejected", func(t *testing.T) {
		p := newPathfinder(t, linearNodes(), nil)
		before := p.Snapshot()

		_, err := p.AddNode(domain.StartNode{ID: domain.AutoID})
		var nodeErr *domain.NodeValidationError
		require.ErrorAs(t, err, &nodeErr)
		assert.Equal(t, "Start node has already been added", nodeErr.Reason)
		requireUnchanged(t, p, before)
	})

	t.Run("start with incoming edges rejected", func(t *testing.T) {
		p := newPathfinder(t, linearNodes(), []domain.EdgeRef{simple(0, 1), simple(1, 2)})
		require.NoError(t, p.RemoveNode(0))

		// Node 2 still has an incoming edge from the message node.
		_, err := p.AddNode(domain.StartNode{ID: 2})
		var nodeErr *domain.NodeValidationError
		require.ErrorAs(t, err, &nodeErr)
		assert.Equal(t, "Start node cannot have incoming edges.", nodeErr.Reason)
	})
}

func TestNodeLookup(t *testing.T) {
	p := newPathfinder(t, linearNodes(), nil)

	t.Run("typed retrieval", func(t *testing.T) {
		node, err := p.Node(1)
		require.NoError(t, err)
		assert.Equal(t, message(1, "hello", domain.StatusSent), node)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := p.Node(42)
		var notFound *domain.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("ordered listing", func(t *testing.T) {
		nodes, err := p.Nodes()
		require.NoError(t, err)
		require.Len(t, nodes, 3)
		assert.Equal(t, 0, nodes[0].NodeID())
		assert.Equal(t, 2, nodes[2].NodeID())
	})
}

func TestUpdateNode(t *testing.T) {
	p := newPathfinder(t, linearNodes(), nil)

	t.Run("message update", func(t *testing.T) {
		node, err := p.UpdateNode(message(1, "hello", domain.StatusOpened))
		require.NoError(t, err)
		assert.Equal(t, message(1, "hello", domain.StatusOpened), node)
	})

	t.Run("no-op signals not changed", func(t *testing.T) {
		_, err := p.UpdateNode(message(1, "hello", domain.StatusOpened))
		assert.ErrorIs(t, err, domain.ErrNotChanged)
	})

	t.Run("start not updatable", func(t *testing.T) {
		_, err := p.UpdateNode(domain.StartNode{ID: 0})
		var nodeErr *domain.NodeValidationError
		require.ErrorAs(t, err, &nodeErr)
		assert.Equal(t, "This node can't be updated.", nodeErr.Reason)
	})

	t.Run("type change rejected", func(t *testing.T) {
		_, err := p.UpdateNode(domain.EndNode{ID: 1})
		var nodeErr *domain.NodeValidationError
		require.ErrorAs(t, err, &nodeErr)
		assert.Equal(t, "node type cannot be changed", nodeErr.Reason)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := p.UpdateNode(message(42, "x", domain.StatusSent))
		var notFound *domain.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestRemoveNodeCascades(t *testing.T) {
	p := newPathfinder(t, linearNodes(), []domain.EdgeRef{simple(0, 1), simple(1, 2)})

	require.NoError(t, p.RemoveNode(1))

	var notFound *domain.NotFoundError
	_, err := p.Node(1)
	assert.ErrorAs(t, err, &notFound)
	_, err = p.Edge(0, 1)
	assert.ErrorAs(t, err, &notFound)
	_, err = p.Edge(1, 2)
	assert.ErrorAs(t, err, &notFound)

	assert.ErrorAs(t, p.RemoveNode(1), &notFound)
}

func TestEdgeCRUD(t *testing.T) {
	nodes := []domain.Node{
		domain.StartNode{ID: 0},
		message(1, "one", domain.StatusSent),
		domain.ConditionNode{ID: 2, Rule: "status == 'sent'"},
		domain.EndNode{ID: 3},
		domain.EndNode{ID: 4},
	}

	t.Run("add and get", func(t *testing.T) {
		p := newPathfinder(t, nodes, nil)
		edge, err := p.AddEdge(0, 1, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.SimpleEdge{From: 0, To: 1}, edge)

		got, err := p.Edge(0, 1)
		require.NoError(t, err)
		assert.Equal(t, edge, got)
	})

	t.Run("rejected add leaves graph intact", func(t *testing.T) {
		p := newPathfinder(t, nodes, nil)
		before := p.Snapshot()
		_, err := p.AddEdge(2, 3, domain.Attrs{"condition": "Maybe"})
		require.Error(t, err)
		requireUnchanged(t, p, before)
	})

	t.Run("typed listing ordered", func(t *testing.T) {
		p := newPathfinder(t, nodes, []domain.EdgeRef{
			conditional(2, 4, domain.ConditionNo),
			conditional(2, 3, domain.ConditionYes),
			simple(0, 1),
			simple(1, 2),
		})
		edges := p.Edges()
		require.Len(t, edges, 4)
		assert.Equal(t, domain.SimpleEdge{From: 0, To: 1}, edges[0])
		assert.Equal(t, domain.ConditionEdge{From: 2, To: 3, Condition: domain.ConditionYes}, edges[2])
		assert.Equal(t, domain.ConditionEdge{From: 2, To: 4, Condition: domain.ConditionNo}, edges[3])
	})

	t.Run("remove", func(t *testing.T) {
		p := newPathfinder(t, nodes, []domain.EdgeRef{simple(0, 1)})
		require.NoError(t, p.RemoveEdge(0, 1))
		var notFound *domain.NotFoundError
		assert.ErrorAs(t, p.RemoveEdge(0, 1), &notFound)
	})
}

func TestUpdateEdge(t *testing.T) {
	nodes := []domain.Node{
		domain.StartNode{ID: 0},
		message(1, "one", domain.StatusSent),
		domain.ConditionNode{ID: 2, Rule: "status == 'sent'"},
		domain.EndNode{ID: 3},
		message(4, "two", domain.StatusOpened),
		domain.EndNode{ID: 5},
	}

	t.Run("identical attrs not changed", func(t *testing.T) {
		p := newPathfinder(t, nodes, []domain.EdgeRef{simple(0, 1)})
		_, err := p.UpdateEdge(0, 1, domain.Attrs{})
		assert.ErrorIs(t, err, domain.ErrNotChanged)
	})

	t.Run("label swap flips the sibling", func(t *testing.T) {
		p := newPathfinder(t, nodes, []domain.EdgeRef{
			conditional(2, 3, domain.ConditionYes),
			conditional(2, 4, domain.ConditionNo),
		})

		edge, err := p.UpdateEdge(2, 3, domain.Attrs{"condition": "No"})
		require.NoError(t, err)
		assert.Equal(t, domain.ConditionEdge{From: 2, To: 3, Condition: domain.ConditionNo}, edge)

		sibling, err := p.Edge(2, 4)
		require.NoError(t, err)
		assert.Equal(t, domain.ConditionEdge{From: 2, To: 4, Condition: domain.ConditionYes}, sibling)
	})

	t.Run("same label not changed", func(t *testing.T) {
		p := newPathfinder(t, nodes, []domain.EdgeRef{conditional(2, 3, domain.ConditionYes)})
		_, err := p.UpdateEdge(2, 3, domain.Attrs{"condition": "Yes"})
		assert.ErrorIs(t, err, domain.ErrNotChanged)
	})

	t.Run("invalid label rejected", func(t *testing.T) {
		p := newPathfinder(t, nodes, []domain.EdgeRef{conditional(2, 3, domain.ConditionYes)})
		_, err := p.UpdateEdge(2, 3, domain.Attrs{"condition": "Maybe"})
		requireEdgeError(t, err, "Condition node out edges can only have Yes or No values")
	})

	t.Run("attrs on simple edge rejected", func(t *testing.T) {
		p := newPathfinder(t, nodes, []domain.EdgeRef{simple(0, 1)})
		_, err := p.UpdateEdge(0, 1, domain.Attrs{"condition": "Yes"})
		requireEdgeError(t, err, "This edge can't have attributes.")
	})

	t.Run("single out-edge redirect", func(t *testing.T) {
		p := newPathfinder(t, nodes, []domain.EdgeRef{simple(1, 3)})

		edge, err := p.UpdateEdge(1, 5, domain.Attrs{})
		require.NoError(t, err)
		assert.Equal(t, domain.SimpleEdge{From: 1, To: 5}, edge)

		var notFound *domain.NotFoundError
		_, err = p.Edge(1, 3)
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("failed redirect restores the original", func(t *testing.T) {
		p := newPathfinder(t, nodes, []domain.EdgeRef{simple(1, 3)})
		before := p.Snapshot()

		// Redirecting into the start node violates its in-degree rule.
		_, err := p.UpdateEdge(1, 0, domain.Attrs{})
		require.Error(t, err)
		requireUnchanged(t, p, before)

		got, err := p.Edge(1, 3)
		require.NoError(t, err)
		assert.Equal(t, domain.SimpleEdge{From: 1, To: 3}, got)
	})

	t.Run("attrs-equality redirect picks first match", func(t *testing.T) {
		p := newPathfinder(t, nodes, []domain.EdgeRef{
			conditional(2, 3, domain.ConditionYes),
			conditional(2, 4, domain.ConditionNo),
		})

		// Redirect the Yes edge (2->3, the lowest matching target) to 5.
		edge, err := p.UpdateEdge(2, 5, domain.Attrs{"condition": "Yes"})
		require.NoError(t, err)
		assert.Equal(t, domain.ConditionEdge{From: 2, To: 5, Condition: domain.ConditionYes}, edge)

		var notFound *domain.NotFoundError
		_, err = p.Edge(2, 3)
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("ambiguous update rejected", func(t *testing.T) {
		p := newPathfinder(t, nodes, []domain.EdgeRef{
			conditional(2, 3, domain.ConditionYes),
			conditional(2, 4, domain.ConditionNo),
		})
		_, err := p.UpdateEdge(2, 5, domain.Attrs{"condition": "Maybe"})
		requireEdgeError(t, err, "cannot determine which edge to update")
	})

	t.Run("missing source node", func(t *testing.T) {
		p := newPathfinder(t, nodes, nil)
		_, err := p.UpdateEdge(42, 1, nil)
		var notFound *domain.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestStartNodeID(t *testing.T) {
	p := newPathfinder(t, linearNodes(), nil)
	id, ok := p.StartNodeID()
	require.True(t, ok)
	assert.Equal(t, 0, id)

	empty := newPathfinder(t, nil, nil)
	_, ok = empty.StartNodeID()
	assert.False(t, ok)
}
