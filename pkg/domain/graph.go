package domain

import (
	"reflect"
	"sort"
)

// Attrs is a free-form attribute map attached to a node or an edge.
type Attrs map[string]any

// Clone returns a shallow copy of the attribute map. Values are the JSON
// scalar kinds, so a shallow copy is a full copy in practice.
func (a Attrs) Clone() Attrs {
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Equal compares two attribute maps by value.
func (a Attrs) Equal(other Attrs) bool {
	if len(a) != len(other) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return reflect.DeepEqual(map[string]any(a), map[string]any(other))
}

// EdgeRef is one directed edge with its attributes, as yielded by
// adjacency queries.
type EdgeRef struct {
	From  int
	To    int
	Attrs Attrs
}

// Graph is a simple directed graph with attribute maps on nodes and edges.
// It is the in-memory shape behind the node-link snapshot: node attributes
// carry the "type" discriminator plus variant fields, edge attributes carry
// the "condition" label for conditional edges.
//
// All iteration orders are deterministic: node ids ascending, out-edges by
// target id ascending.
type Graph struct {
	nodes map[int]Attrs
	succ  map[int]map[int]Attrs
	pred  map[int]map[int]Attrs
}

// NewGraph returns an empty directed graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[int]Attrs),
		succ:  make(map[int]map[int]Attrs),
		pred:  make(map[int]map[int]Attrs),
	}
}

// Clone deep-copies the graph, including all attribute maps.
func (g *Graph) Clone() *Graph {
	out := NewGraph()
	for id, attrs := range g.nodes {
		out.nodes[id] = attrs.Clone()
	}
	for u, targets := range g.succ {
		for v, attrs := range targets {
			out.setEdge(u, v, attrs.Clone())
		}
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// HasNode reports whether the id is present.
func (g *Graph) HasNode(id int) bool {
	_, ok := g.nodes[id]
	return ok
}

// NodeAttrs returns the attribute map of a node.
func (g *Graph) NodeAttrs(id int) (Attrs, bool) {
	attrs, ok := g.nodes[id]
	return attrs, ok
}

// Nodes returns all node ids in ascending order.
func (g *Graph) Nodes() []int {
	ids := make([]int, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// AddNode inserts or replaces a node with the given attributes.
func (g *Graph) AddNode(id int, attrs Attrs) {
	if attrs == nil {
		attrs = Attrs{}
	}
	g.nodes[id] = attrs
	if g.succ[id] == nil {
		g.succ[id] = make(map[int]Attrs)
	}
	if g.pred[id] == nil {
		g.pred[id] = make(map[int]Attrs)
	}
}

// MergeNodeAttrs overlays the given keys onto an existing node's attributes.
func (g *Graph) MergeNodeAttrs(id int, attrs Attrs) {
	existing, ok := g.nodes[id]
	if !ok {
		return
	}
	for k, v := range attrs {
		existing[k] = v
	}
}

// RemoveNode deletes the node and every edge incident to it.
func (g *Graph) RemoveNode(id int) {
	if !g.HasNode(id) {
		return
	}
	for v := range g.succ[id] {
		delete(g.pred[v], id)
	}
	for u := range g.pred[id] {
		delete(g.succ[u], id)
	}
	delete(g.succ, id)
	delete(g.pred, id)
	delete(g.nodes, id)
}

// HasEdge reports whether the ordered pair is an edge.
func (g *Graph) HasEdge(u, v int) bool {
	_, ok := g.succ[u][v]
	return ok
}

// EdgeAttrs returns the attribute map of an edge.
func (g *Graph) EdgeAttrs(u, v int) (Attrs, bool) {
	attrs, ok := g.succ[u][v]
	return attrs, ok
}

// AddEdge inserts the edge, or replaces its attributes if the pair already
// exists. The graph stays simple: no parallel edges.
func (g *Graph) AddEdge(u, v int, attrs Attrs) {
	if attrs == nil {
		attrs = Attrs{}
	}
	g.setEdge(u, v, attrs)
}

func (g *Graph) setEdge(u, v int, attrs Attrs) {
	if g.succ[u] == nil {
		g.succ[u] = make(map[int]Attrs)
	}
	if g.pred[v] == nil {
		g.pred[v] = make(map[int]Attrs)
	}
	g.succ[u][v] = attrs
	g.pred[v][u] = attrs
}

// SetEdgeAttrs overlays the given keys onto an existing edge's attributes.
func (g *Graph) SetEdgeAttrs(u, v int, attrs Attrs) {
	existing, ok := g.succ[u][v]
	if !ok {
		return
	}
	for k, val := range attrs {
		existing[k] = val
	}
}

// RemoveEdge deletes the edge if present.
func (g *Graph) RemoveEdge(u, v int) {
	delete(g.succ[u], v)
	delete(g.pred[v], u)
}

// OutEdges returns the outgoing edges of a node, ordered by target id.
func (g *Graph) OutEdges(id int) []EdgeRef {
	targets := g.succ[id]
	out := make([]EdgeRef, 0, len(targets))
	for v, attrs := range targets {
		out = append(out, EdgeRef{From: id, To: v, Attrs: attrs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].To < out[j].To })
	return out
}

// Edges returns every edge, ordered by (source, target).
func (g *Graph) Edges() []EdgeRef {
	var out []EdgeRef
	for _, u := range g.Nodes() {
		out = append(out, g.OutEdges(u)...)
	}
	return out
}

// OutDegree returns the number of outgoing edges.
func (g *Graph) OutDegree(id int) int { return len(g.succ[id]) }

// InDegree returns the number of incoming edges.
func (g *Graph) InDegree(id int) int { return len(g.pred[id]) }

// HasPathTo reports whether any of the target ids is reachable from the
// given source, ignoring edge attributes (pure structural reachability).
func (g *Graph) HasPathTo(from int, targets map[int]bool) bool {
	if !g.HasNode(from) {
		return false
	}
	visited := map[int]bool{from: true}
	queue := []int{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if targets[cur] {
			return true
		}
		for v := range g.succ[cur] {
			if !visited[v] {
				visited[v] = true
				queue = append(queue, v)
			}
		}
	}
	return false
}
