package engine

import (
	"io"
	"log/slog"

	"github.com/ostryzhko/flowpath/pkg/domain"
)

// Pathfinder owns one in-memory workflow graph for the duration of a
// session. Every mutation is transactional: the change is applied to a
// clone, validated there, and only then swapped in, so a rejected mutation
// leaves the live graph untouched.
type Pathfinder struct {
	graph  *domain.Graph
	logger *slog.Logger
}

// Option configures a Pathfinder.
type Option func(*Pathfinder)

// WithLogger sets a structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pathfinder) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New wraps a graph after full validation. Construction fails fast on the
// first violated invariant.
func New(g *domain.Graph, opts ...Option) (*Pathfinder, error) {
	if _, err := ValidateGraph(g); err != nil {
		return nil, err
	}
	p := &Pathfinder{
		graph:  g,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Snapshot serializes the current graph in node-link form.
func (p *Pathfinder) Snapshot() domain.Snapshot {
	return p.graph.Snapshot()
}

// StartNodeID returns the id of the start node, if one exists.
func (p *Pathfinder) StartNodeID() (int, bool) {
	for _, id := range p.graph.Nodes() {
		if nodeType(p.graph, id) == domain.NodeTypeStart {
			return id, true
		}
	}
	return 0, false
}

// --- Node CRUD ---

// AddNode inserts a node, assigning an id when the node carries
// domain.AutoID. Returns the committed node, with its final id.
func (p *Pathfinder) AddNode(node domain.Node) (domain.Node, error) {
	if node.NodeID() == domain.AutoID {
		reassigned, err := domain.NewNode(node.Type(), p.nextID(), node.Attrs())
		if err != nil {
			return nil, err
		}
		node = reassigned
	}
	id := node.NodeID()

	switch node.Type() {
	case domain.NodeTypeStart:
		if existing, ok := p.StartNodeID(); ok && existing != id {
			return nil, &domain.NodeValidationError{
				NodeID: id,
				Reason: "Start node has already been added",
			}
		}
		if p.graph.InDegree(id) > 0 {
			return nil, &domain.NodeValidationError{
				NodeID: id,
				Reason: "Start node cannot have incoming edges.",
			}
		}
	case domain.NodeTypeEnd:
		if p.graph.OutDegree(id) > 0 {
			return nil, &domain.NodeValidationError{
				NodeID: id,
				Reason: "End node cannot have outgoing edges.",
			}
		}
	}

	work := p.graph.Clone()
	work.AddNode(id, node.Attrs())
	typed, err := ValidateNode(work, node)
	if err != nil {
		return nil, err
	}
	p.graph = work
	p.logger.Debug("node added", "node", id, "type", string(node.Type()))
	return typed, nil
}

// Node retrieves the typed node by id.
func (p *Pathfinder) Node(id int) (domain.Node, error) {
	attrs, ok := p.graph.NodeAttrs(id)
	if !ok {
		return nil, domain.NotFoundNode(id)
	}
	return domain.NodeFromAttrs(id, attrs)
}

// Nodes returns every node, ordered by id.
func (p *Pathfinder) Nodes() ([]domain.Node, error) {
	ids := p.graph.Nodes()
	nodes := make([]domain.Node, 0, len(ids))
	for _, id := range ids {
		node, err := p.Node(id)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// UpdateNode replaces the attributes of an existing node. Identifier and
// type are immutable; start and end nodes carry no updatable attributes and
// are rejected outright.
func (p *Pathfinder) UpdateNode(node domain.Node) (domain.Node, error) {
	id := node.NodeID()
	old, err := p.Node(id)
	if err != nil {
		return nil, err
	}
	if old.Type() != node.Type() {
		return nil, &domain.NodeValidationError{
			NodeID: id,
			Reason: "node type cannot be changed",
		}
	}
	if old.Type() == domain.NodeTypeStart || old.Type() == domain.NodeTypeEnd {
		return nil, &domain.NodeValidationError{
			NodeID: id,
			Reason: "This node can't be updated.",
		}
	}
	if old.Attrs().Equal(node.Attrs()) {
		return nil, domain.ErrNotChanged
	}

	work := p.graph.Clone()
	work.MergeNodeAttrs(id, node.Attrs())
	typed, err := ValidateNode(work, node)
	if err != nil {
		return nil, err
	}
	p.graph = work
	p.logger.Debug("node updated", "node", id)
	return typed, nil
}

// RemoveNode deletes the node together with all of its incident edges.
func (p *Pathfinder) RemoveNode(id int) error {
	if !p.graph.HasNode(id) {
		return domain.NotFoundNode(id)
	}
	work := p.graph.Clone()
	work.RemoveNode(id)
	p.graph = work
	p.logger.Debug("node removed", "node", id)
	return nil
}

// --- Edge CRUD ---

// AddEdge inserts a validated edge between two existing nodes.
func (p *Pathfinder) AddEdge(from, to int, attrs domain.Attrs) (domain.Edge, error) {
	edge, err := ValidateEdge(p.graph, from, to, attrs)
	if err != nil {
		return nil, err
	}
	work := p.graph.Clone()
	work.AddEdge(from, to, edge.Attrs())
	p.graph = work
	p.logger.Debug("edge added", "from", from, "to", to)
	return edge, nil
}

// Edge retrieves the typed edge for an ordered pair. The lookup re-derives
// the variant from the stored attributes; it is a type projection, not a
// re-check of global invariants.
func (p *Pathfinder) Edge(from, to int) (domain.Edge, error) {
	attrs, ok := p.graph.EdgeAttrs(from, to)
	if !ok {
		return nil, domain.NotFoundEdge(from, to)
	}
	return ValidateEdge(p.graph, from, to, attrs)
}

// Edges returns every edge as its typed variant, ordered by (source, target).
func (p *Pathfinder) Edges() []domain.Edge {
	refs := p.graph.Edges()
	edges := make([]domain.Edge, 0, len(refs))
	for _, ref := range refs {
		if label, ok := ref.Attrs["condition"].(string); ok {
			edges = append(edges, domain.ConditionEdge{
				From: ref.From, To: ref.To, Condition: domain.Condition(label),
			})
		} else {
			edges = append(edges, domain.SimpleEdge{From: ref.From, To: ref.To})
		}
	}
	return edges
}

// RemoveEdge deletes an existing edge.
func (p *Pathfinder) RemoveEdge(from, to int) error {
	if !p.graph.HasEdge(from, to) {
		return domain.NotFoundEdge(from, to)
	}
	work := p.graph.Clone()
	work.RemoveEdge(from, to)
	p.graph = work
	p.logger.Debug("edge removed", "from", from, "to", to)
	return nil
}

// UpdateEdge updates the attributes or the target of an existing edge.
//
// Cases, in order:
//  1. (from, to) is an edge: identical attributes signal ErrNotChanged;
//     a different Yes/No label on a condition source swaps the labels of
//     all its outgoing edges; non-condition sources reject any attributes.
//  2. The source has exactly one outgoing edge pointing elsewhere: the
//     update redirects that edge to the new target, re-validated, with the
//     original restored on failure.
//  3. Several outgoing edges and exactly the first one matching the given
//     attributes by value is redirected the same way (lowest target id
//     first; best-effort guess preserved from the original behavior).
//  4. Anything else is rejected rather than guessed.
func (p *Pathfinder) UpdateEdge(from, to int, attrs domain.Attrs) (domain.Edge, error) {
	fromNode, err := p.Node(from)
	if err != nil {
		return nil, err
	}

	if p.graph.HasEdge(from, to) {
		return p.updateEdgeInPlace(fromNode, from, to, attrs)
	}

	outs := p.graph.OutEdges(from)
	if len(outs) == 1 {
		return p.redirectEdge(outs[0], from, to, attrs)
	}
	if attrs != nil {
		for _, candidate := range outs {
			if candidate.Attrs.Equal(attrs) {
				return p.redirectEdge(candidate, from, to, attrs)
			}
		}
	}
	return nil, &domain.EdgeValidationError{
		From: from, To: to,
		Reason: "cannot determine which edge to update",
	}
}

func (p *Pathfinder) updateEdgeInPlace(fromNode domain.Node, from, to int, attrs domain.Attrs) (domain.Edge, error) {
	current, _ := p.graph.EdgeAttrs(from, to)
	if current.Equal(attrs) {
		return nil, domain.ErrNotChanged
	}

	if fromNode.Type() == domain.NodeTypeCondition {
		label, _ := attrs["condition"].(string)
		requested := domain.Condition(label)
		if !requested.Valid() {
			return nil, &domain.EdgeValidationError{
				From: from, To: to,
				Reason: "Condition node out edges can only have Yes or No values",
			}
		}
		currentLabel, _ := current["condition"].(string)
		if domain.Condition(currentLabel) == requested {
			return nil, domain.ErrNotChanged
		}

		// Swap Yes and No across every outgoing edge of the source: with
		// only two labels, relabeling the target edge forces the flip on
		// its sibling.
		work := p.graph.Clone()
		for _, e := range work.OutEdges(from) {
			flipped := domain.ConditionYes
			if e.Attrs["condition"] == string(domain.ConditionYes) {
				flipped = domain.ConditionNo
			}
			work.SetEdgeAttrs(e.From, e.To, domain.Attrs{"condition": string(flipped)})
		}
		swapped, _ := work.EdgeAttrs(from, to)
		swappedLabel, _ := swapped["condition"].(string)
		if domain.Condition(swappedLabel) != requested {
			return nil, &domain.EdgeValidationError{
				From: from, To: to,
				Reason: "condition swap did not converge",
			}
		}
		p.graph = work
		p.logger.Debug("edge labels swapped", "from", from, "to", to)
		return domain.ConditionEdge{From: from, To: to, Condition: requested}, nil
	}

	if len(attrs) != 0 {
		return nil, &domain.EdgeValidationError{
			From: from, To: to,
			Reason: "This edge can't have attributes.",
		}
	}
	work := p.graph.Clone()
	work.SetEdgeAttrs(from, to, attrs)
	p.graph = work
	return domain.SimpleEdge{From: from, To: to}, nil
}

// redirectEdge removes the old edge on a clone, validates the replacement
// there, and swaps only on success, so failure leaves the original intact.
func (p *Pathfinder) redirectEdge(old domain.EdgeRef, from, to int, attrs domain.Attrs) (domain.Edge, error) {
	work := p.graph.Clone()
	work.RemoveEdge(old.From, old.To)
	edge, err := ValidateEdge(work, from, to, attrs)
	if err != nil {
		return nil, err
	}
	work.AddEdge(from, to, edge.Attrs())
	p.graph = work
	p.logger.Debug("edge redirected", "from", from, "old_to", old.To, "to", to)
	return edge, nil
}

// nextID assigns the id for a node created without one.
func (p *Pathfinder) nextID() int {
	next := 1
	for _, id := range p.graph.Nodes() {
		if id+1 > next {
			next = id + 1
		}
	}
	return next
}
