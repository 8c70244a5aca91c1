package dsl

import (
	"fmt"

	"github.com/ostryzhko/flowpath"
	"github.com/ostryzhko/flowpath/pkg/domain"
)

// Builder assembles a workflow graph node by node and edge by edge. The
// first error sticks; Build reports it instead of a partial graph.
type Builder struct {
	snapshot domain.Snapshot
	seen     map[int]bool
	err      error
}

// New creates an empty workflow builder.
func New() *Builder {
	return &Builder{
		snapshot: domain.EmptySnapshot(),
		seen:     make(map[int]bool),
	}
}

// Start adds the start node.
func (b *Builder) Start(id int) *Builder {
	return b.node(domain.StartNode{ID: id})
}

// End adds an end node.
func (b *Builder) End(id int) *Builder {
	return b.node(domain.EndNode{ID: id})
}

// Message adds a message node carrying the text and status read by
// condition rules.
func (b *Builder) Message(id int, text string, status domain.MessageStatus) *Builder {
	return b.node(domain.MessageNode{ID: id, MessageText: text, Status: status})
}

// Condition adds a condition node with the given rule expression.
func (b *Builder) Condition(id int, rule string) *Builder {
	return b.node(domain.ConditionNode{ID: id, Rule: rule})
}

// Go adds an unlabeled edge between two nodes.
func (b *Builder) Go(from, to int) *Builder {
	return b.edge(from, to, nil)
}

// Yes adds the Yes branch out of a condition node.
func (b *Builder) Yes(from, to int) *Builder {
	return b.edge(from, to, domain.Attrs{"condition": string(domain.ConditionYes)})
}

// No adds the No branch out of a condition node.
func (b *Builder) No(from, to int) *Builder {
	return b.edge(from, to, domain.Attrs{"condition": string(domain.ConditionNo)})
}

// Build validates the assembled graph and returns its normalized snapshot.
func (b *Builder) Build() (domain.Snapshot, error) {
	if b.err != nil {
		return domain.Snapshot{}, b.err
	}
	return flowpath.ValidateSnapshot(b.snapshot)
}

// Load validates the assembled graph and wraps it in a live engine.
func (b *Builder) Load(opts ...flowpath.Option) (*flowpath.Engine, error) {
	snapshot, err := b.Build()
	if err != nil {
		return nil, err
	}
	return flowpath.Load(snapshot, opts...)
}

func (b *Builder) node(n domain.Node) *Builder {
	if b.err != nil {
		return b
	}
	if b.seen[n.NodeID()] {
		b.err = fmt.Errorf("node %d declared twice", n.NodeID())
		return b
	}
	b.seen[n.NodeID()] = true

	record := map[string]any(n.Attrs().Clone())
	record["id"] = n.NodeID()
	b.snapshot.Nodes = append(b.snapshot.Nodes, record)
	return b
}

func (b *Builder) edge(from, to int, attrs domain.Attrs) *Builder {
	if b.err != nil {
		return b
	}
	if !b.seen[from] || !b.seen[to] {
		b.err = fmt.Errorf("edge %d->%d references an undeclared node", from, to)
		return b
	}
	record := map[string]any{"source": from, "target": to}
	for k, v := range attrs {
		record[k] = v
	}
	b.snapshot.Links = append(b.snapshot.Links, record)
	return b
}
