// Package flowpath models a decision workflow as a directed graph of typed
// nodes, validates the structural contract on every mutation, and computes
// the deterministic execution path from the start node to an end node.
//
// The Engine is the high-level entry point: it wraps the internal engine
// and owns one validated graph for the duration of a session.
package flowpath

import (
	"log/slog"

	"github.com/ostryzhko/flowpath/internal/engine"
	"github.com/ostryzhko/flowpath/pkg/domain"
)

// Engine owns a live workflow graph and exposes validated CRUD over nodes
// and edges plus path resolution. All operations are synchronous and
// transactional: a rejected mutation leaves the graph unchanged.
type Engine struct {
	pf *engine.Pathfinder
}

// Option defines a functional option for configuring the Engine.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Load constructs an Engine around a graph snapshot. The whole graph is
// validated up front; construction fails fast on the first violated
// invariant.
func Load(snapshot domain.Snapshot, opts ...Option) (*Engine, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	graph, err := domain.FromSnapshot(snapshot)
	if err != nil {
		return nil, err
	}
	var engineOpts []engine.Option
	if o.logger != nil {
		engineOpts = append(engineOpts, engine.WithLogger(o.logger))
	}
	pf, err := engine.New(graph, engineOpts...)
	if err != nil {
		return nil, err
	}
	return &Engine{pf: pf}, nil
}

// LoadJSON constructs an Engine from a JSON node-link document.
func LoadJSON(data []byte, opts ...Option) (*Engine, error) {
	snapshot, err := domain.ParseSnapshot(data)
	if err != nil {
		return nil, err
	}
	return Load(snapshot, opts...)
}

// ValidateSnapshot validates a node-link snapshot without keeping an engine
// around, returning the normalized snapshot on success. Used for
// import-time checks.
func ValidateSnapshot(snapshot domain.Snapshot) (domain.Snapshot, error) {
	graph, err := domain.FromSnapshot(snapshot)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if _, err := engine.ValidateGraph(graph); err != nil {
		return domain.Snapshot{}, err
	}
	return graph.Snapshot(), nil
}

// Snapshot serializes the engine's current graph in node-link form.
func (e *Engine) Snapshot() domain.Snapshot { return e.pf.Snapshot() }

// StartNodeID returns the id of the start node, if one exists.
func (e *Engine) StartNodeID() (int, bool) { return e.pf.StartNodeID() }

// AddNode inserts a node. A node carrying domain.AutoID gets the next free
// identifier assigned (max existing id + 1, minimum 1).
func (e *Engine) AddNode(node domain.Node) (domain.Node, error) { return e.pf.AddNode(node) }

// Node retrieves a node by id.
func (e *Engine) Node(id int) (domain.Node, error) { return e.pf.Node(id) }

// Nodes lists every node, ordered by id.
func (e *Engine) Nodes() ([]domain.Node, error) { return e.pf.Nodes() }

// UpdateNode replaces the attributes of an existing node; id and type are
// immutable.
func (e *Engine) UpdateNode(node domain.Node) (domain.Node, error) { return e.pf.UpdateNode(node) }

// RemoveNode deletes a node and all its incident edges.
func (e *Engine) RemoveNode(id int) error { return e.pf.RemoveNode(id) }

// AddEdge inserts a validated edge. Condition-node sources take a
// "condition" attribute of Yes or No; other sources take no attributes.
func (e *Engine) AddEdge(from, to int, attrs domain.Attrs) (domain.Edge, error) {
	return e.pf.AddEdge(from, to, attrs)
}

// Edge retrieves the typed edge for an ordered pair.
func (e *Engine) Edge(from, to int) (domain.Edge, error) { return e.pf.Edge(from, to) }

// Edges lists every edge, ordered by (source, target).
func (e *Engine) Edges() []domain.Edge { return e.pf.Edges() }

// UpdateEdge updates the attributes or the target of an existing edge.
// See the engine documentation for the exact case analysis.
func (e *Engine) UpdateEdge(from, to int, attrs domain.Attrs) (domain.Edge, error) {
	return e.pf.UpdateEdge(from, to, attrs)
}

// RemoveEdge deletes an existing edge.
func (e *Engine) RemoveEdge(from, to int) error { return e.pf.RemoveEdge(from, to) }

// Path resolves the execution path from the start node to an end node as
// an ordered sequence of node ids.
func (e *Engine) Path() ([]int, error) { return e.pf.ResolvePath() }

// PathNodes resolves the execution path and returns the typed nodes along
// it, in order.
func (e *Engine) PathNodes() ([]domain.Node, error) {
	ids, err := e.pf.ResolvePath()
	if err != nil {
		return nil, err
	}
	nodes := make([]domain.Node, 0, len(ids))
	for _, id := range ids {
		node, err := e.pf.Node(id)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
