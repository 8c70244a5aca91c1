// Package engine owns a live workflow graph: it validates the structural
// contract, exposes transactional CRUD over nodes and edges, and resolves
// the deterministic execution path from start to end.
package engine

import (
	"fmt"

	"github.com/ostryzhko/flowpath/pkg/domain"
)

// ValidateNode checks a candidate node against its variant's structural
// rules. The node may or may not already be part of the graph; when it is
// not, the check runs against a hypothetical graph with the node inserted,
// so a freshly created node with no adjacency trivially satisfies the
// degree constraints.
func ValidateNode(g *domain.Graph, node domain.Node) (domain.Node, error) {
	work := g
	if !g.HasNode(node.NodeID()) {
		work = g.Clone()
		work.AddNode(node.NodeID(), node.Attrs())
	}

	attrs, _ := work.NodeAttrs(node.NodeID())
	typed, err := domain.NodeFromAttrs(node.NodeID(), attrs)
	if err != nil {
		return nil, err
	}

	id := typed.NodeID()
	switch typed.Type() {
	case domain.NodeTypeCondition:
		if work.OutDegree(id) > 2 {
			return nil, &domain.NodeValidationError{
				NodeID: id,
				Reason: "Condition node can only have two outgoing edges (Yes/No).",
			}
		}
	case domain.NodeTypeEnd:
		if work.OutDegree(id) != 0 {
			return nil, &domain.NodeValidationError{
				NodeID: id,
				Reason: "End node cannot have outgoing edges.",
			}
		}
	case domain.NodeTypeStart:
		if work.InDegree(id) != 0 {
			return nil, &domain.NodeValidationError{
				NodeID: id,
				Reason: "Start node cannot have incoming edges.",
			}
		}
		if work.OutDegree(id) > 1 {
			return nil, &domain.NodeValidationError{
				NodeID: id,
				Reason: "Node can only have one outgoing edge.",
			}
		}
	case domain.NodeTypeMessage:
		if work.OutDegree(id) > 1 {
			return nil, &domain.NodeValidationError{
				NodeID: id,
				Reason: "Node can only have one outgoing edge.",
			}
		}
	}
	return typed, nil
}

// ValidateEdge checks a candidate edge (insert or attribute update) against
// the structural contract and returns the fully-typed edge on success. The
// check runs on a hypothetical graph with the edge applied; the input graph
// is never mutated.
func ValidateEdge(g *domain.Graph, from, to int, attrs domain.Attrs) (domain.Edge, error) {
	if !g.HasNode(from) {
		return nil, domain.NotFoundNode(from)
	}
	if !g.HasNode(to) {
		return nil, domain.NotFoundNode(to)
	}

	work := g.Clone()
	if work.HasEdge(from, to) {
		work.SetEdgeAttrs(from, to, attrs)
	} else {
		work.AddEdge(from, to, attrs.Clone())
	}

	fromType := nodeType(work, from)
	toType := nodeType(work, to)

	// Degree and placement rules. Mirrors a first-match dispatch on the
	// (source type, target type) pair.
	switch {
	case toType == domain.NodeTypeStart:
		return nil, &domain.EdgeValidationError{
			From: from, To: to,
			Reason: "Start node cannot have incoming edges.",
		}
	case fromType == domain.NodeTypeEnd:
		return nil, &domain.EdgeValidationError{
			From: from, To: to,
			Reason: "End node cannot have outgoing edges.",
		}
	case fromType == domain.NodeTypeStart && toType == domain.NodeTypeCondition:
		return nil, &domain.EdgeValidationError{
			From: from, To: to,
			Reason: "Condition node cannot go directly from the start node.",
		}
	case fromType == domain.NodeTypeStart || fromType == domain.NodeTypeMessage:
		if work.OutDegree(from) > 1 {
			return nil, &domain.EdgeValidationError{
				From: from, To: to,
				Reason: "Node can only have one outgoing edge.",
			}
		}
	case fromType == domain.NodeTypeCondition:
		if work.OutDegree(from) > 2 {
			return nil, &domain.EdgeValidationError{
				From: from, To: to,
				Reason: "Condition node can only have two outgoing edges (Yes/No).",
			}
		}
	}

	// Attribute rules per source variant.
	if fromType == domain.NodeTypeCondition {
		label, _ := attrs["condition"].(string)
		cond := domain.Condition(label)
		if !cond.Valid() {
			return nil, &domain.EdgeValidationError{
				From: from, To: to,
				Reason: "Condition node param can only have Yes/No edges.",
			}
		}
		counts := map[domain.Condition]int{}
		for _, e := range work.OutEdges(from) {
			sibling, _ := e.Attrs["condition"].(string)
			siblingCond := domain.Condition(sibling)
			if !siblingCond.Valid() {
				return nil, &domain.EdgeValidationError{
					From: from, To: to,
					Reason: "Condition node can only have Condition edges.",
				}
			}
			counts[siblingCond]++
		}
		for _, c := range []domain.Condition{domain.ConditionYes, domain.ConditionNo} {
			if counts[c] > 1 {
				return nil, &domain.EdgeValidationError{
					From: from, To: to,
					Reason: fmt.Sprintf("Only one %s path should exist from node %d.", c, from),
				}
			}
		}
		return domain.ConditionEdge{From: from, To: to, Condition: cond}, nil
	}

	if len(attrs) != 0 {
		return nil, &domain.EdgeValidationError{
			From: from, To: to,
			Reason: "This edge can't have attributes.",
		}
	}
	return domain.SimpleEdge{From: from, To: to}, nil
}

// ValidateGraph re-validates every node and edge and the single-start
// invariant. The first failure is wrapped as a graph-level error with the
// originating node/edge error preserved as its cause. Validation order is
// deterministic: nodes by id, then edges by (source, target).
func ValidateGraph(g *domain.Graph) (*domain.Graph, error) {
	for _, id := range g.Nodes() {
		attrs, _ := g.NodeAttrs(id)
		node, err := domain.NodeFromAttrs(id, attrs)
		if err != nil {
			return nil, &domain.GraphValidationError{Reason: err.Error(), Cause: err}
		}
		if _, err := ValidateNode(g, node); err != nil {
			return nil, &domain.GraphValidationError{Reason: err.Error(), Cause: err}
		}
	}
	for _, e := range g.Edges() {
		if _, err := ValidateEdge(g, e.From, e.To, e.Attrs); err != nil {
			return nil, &domain.GraphValidationError{Reason: err.Error(), Cause: err}
		}
	}

	starts := 0
	for _, id := range g.Nodes() {
		if nodeType(g, id) == domain.NodeTypeStart {
			starts++
		}
	}
	if starts > 1 {
		return nil, &domain.GraphValidationError{Reason: "Start must be only one."}
	}
	return g, nil
}

func nodeType(g *domain.Graph, id int) domain.NodeType {
	attrs, ok := g.NodeAttrs(id)
	if !ok {
		return ""
	}
	typ, _ := attrs["type"].(string)
	return domain.NodeType(typ)
}
