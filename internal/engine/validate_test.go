package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostryzhko/flowpath/pkg/domain"
)

func requireEdgeError(t *testing.T, err error, reason string) {
	t.Helper()
	var edgeErr *domain.EdgeValidationError
	require.ErrorAs(t, err, &edgeErr)
	assert.Equal(t, reason, edgeErr.Reason)
}

func TestValidateEdge(t *testing.T) {
	nodes := []domain.Node{
		domain.StartNode{ID: 0},
		message(1, "one", domain.StatusSent),
		domain.ConditionNode{ID: 2, Rule: "status == 'sent'"},
		domain.EndNode{ID: 3},
		message(4, "two", domain.StatusOpened),
		domain.EndNode{ID: 5},
	}

	t.Run("missing endpoints", func(t *testing.T) {
		g := testGraph(t, nodes, nil)
		_, err := ValidateEdge(g, 0, 99, nil)
		var notFound *domain.NotFoundError
		assert.ErrorAs(t, err, &notFound)

		_, err = ValidateEdge(g, 99, 0, nil)
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("into start", func(t *testing.T) {
		g := testGraph(t, nodes, nil)
		_, err := ValidateEdge(g, 1, 0, nil)
		requireEdgeError(t, err, "Start node cannot have incoming edges.")
	})

	t.Run("out of end", func(t *testing.T) {
		g := testGraph(t, nodes, nil)
		_, err := ValidateEdge(g, 3, 1, nil)
		requireEdgeError(t, err, "End node cannot have outgoing edges.")
	})

	t.Run("start directly to condition", func(t *testing.T) {
		g := testGraph(t, nodes, nil)
		_, err := ValidateEdge(g, 0, 2, nil)
		requireEdgeError(t, err, "Condition node cannot go directly from the start node.")
	})

	t.Run("second edge out of message", func(t *testing.T) {
		g := testGraph(t, nodes, []domain.EdgeRef{simple(1, 3)})
		_, err := ValidateEdge(g, 1, 5, nil)
		requireEdgeError(t, err, "Node can only have one outgoing edge.")
	})

	t.Run("condition label required", func(t *testing.T) {
		g := testGraph(t, nodes, nil)
		_, err := ValidateEdge(g, 2, 3, nil)
		requireEdgeError(t, err, "Condition node param can only have Yes/No edges.")

		_, err = ValidateEdge(g, 2, 3, domain.Attrs{"condition": "Maybe"})
		requireEdgeError(t, err, "Condition node param can only have Yes/No edges.")
	})

	t.Run("duplicate condition label", func(t *testing.T) {
		g := testGraph(t, nodes, []domain.EdgeRef{conditional(2, 3, domain.ConditionYes)})
		_, err := ValidateEdge(g, 2, 5, domain.Attrs{"condition": "Yes"})
		requireEdgeError(t, err, "Only one Yes path should exist from node 2.")
	})

	t.Run("third edge out of condition", func(t *testing.T) {
		g := testGraph(t, nodes, []domain.EdgeRef{
			conditional(2, 3, domain.ConditionYes),
			conditional(2, 4, domain.ConditionNo),
		})
		_, err := ValidateEdge(g, 2, 5, domain.Attrs{"condition": "No"})
		requireEdgeError(t, err, "Condition node can only have two outgoing edges (Yes/No).")
	})

	t.Run("attributes on simple edge", func(t *testing.T) {
		g := testGraph(t, nodes, nil)
		_, err := ValidateEdge(g, 1, 3, domain.Attrs{"condition": "Yes"})
		requireEdgeError(t, err, "This edge can't have attributes.")
	})

	t.Run("valid edges typed", func(t *testing.T) {
		g := testGraph(t, nodes, nil)

		edge, err := ValidateEdge(g, 0, 1, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.SimpleEdge{From: 0, To: 1}, edge)

		edge, err = ValidateEdge(g, 2, 3, domain.Attrs{"condition": "Yes"})
		require.NoError(t, err)
		assert.Equal(t, domain.ConditionEdge{From: 2, To: 3, Condition: domain.ConditionYes}, edge)
	})
}

func TestValidateGraph(t *testing.T) {
	t.Run("two starts", func(t *testing.T) {
		g := domain.NewGraph()
		g.AddNode(0, domain.StartNode{ID: 0}.Attrs())
		g.AddNode(1, domain.StartNode{ID: 1}.Attrs())
		_, err := ValidateGraph(g)
		var graphErr *domain.GraphValidationError
		require.ErrorAs(t, err, &graphErr)
		assert.Equal(t, "Start must be only one.", graphErr.Reason)
	})

	t.Run("untyped node", func(t *testing.T) {
		g := domain.NewGraph()
		g.AddNode(7, domain.Attrs{})
		_, err := ValidateGraph(g)
		var graphErr *domain.GraphValidationError
		require.ErrorAs(t, err, &graphErr)
		assert.Contains(t, graphErr.Reason, "Node 7 has no type.")
	})

	t.Run("invalid edge caught on reload", func(t *testing.T) {
		g := domain.NewGraph()
		g.AddNode(0, message(0, "a", domain.StatusSent).Attrs())
		g.AddNode(1, domain.EndNode{ID: 1}.Attrs())
		g.AddEdge(0, 1, domain.Attrs{"condition": "Yes"})
		_, err := ValidateGraph(g)
		var graphErr *domain.GraphValidationError
		require.ErrorAs(t, err, &graphErr)
	})

	t.Run("empty graph valid", func(t *testing.T) {
		_, err := ValidateGraph(domain.NewGraph())
		assert.NoError(t, err)
	})

	// Validation never mutates the graph it checks: re-validating an
	// unchanged graph repeats the same verdict, pass or fail.
	t.Run("revalidation repeats the verdict", func(t *testing.T) {
		g := testGraph(t, linearNodes(), []domain.EdgeRef{simple(0, 1), simple(1, 2)})
		validated, err := ValidateGraph(g)
		require.NoError(t, err)
		again, err := ValidateGraph(g)
		require.NoError(t, err)
		assert.Equal(t, validated.Snapshot(), again.Snapshot())

		bad := domain.NewGraph()
		bad.AddNode(0, domain.StartNode{ID: 0}.Attrs())
		bad.AddNode(1, domain.StartNode{ID: 1}.Attrs())
		_, firstErr := ValidateGraph(bad)
		_, secondErr := ValidateGraph(bad)
		require.Error(t, firstErr)
		assert.Equal(t, firstErr, secondErr)
	})
}
