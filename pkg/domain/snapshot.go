package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// Snapshot is the node-link interchange form of a graph: the sole persisted
// representation. It round-trips losslessly through FromSnapshot/Snapshot.
type Snapshot struct {
	Directed   bool             `json:"directed"`
	Multigraph bool             `json:"multigraph"`
	Graph      map[string]any   `json:"graph"`
	Nodes      []map[string]any `json:"nodes"`
	Links      []map[string]any `json:"links"`
}

// snapshotAlias avoids UnmarshalJSON recursion.
type snapshotAlias Snapshot

// UnmarshalJSON applies the node-link defaults for absent flags:
// directed graphs are the norm, multigraphs are not.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	alias := snapshotAlias{Directed: true, Multigraph: false}
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*s = Snapshot(alias)
	return nil
}

// EmptySnapshot returns the snapshot of a graph with no nodes.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Directed:   true,
		Multigraph: false,
		Graph:      map[string]any{},
		Nodes:      []map[string]any{},
		Links:      []map[string]any{},
	}
}

// Snapshot serializes the graph in node-link form. Nodes are ordered by id
// and links by (source, target) so equal graphs produce equal snapshots.
func (g *Graph) Snapshot() Snapshot {
	s := EmptySnapshot()
	for _, id := range g.Nodes() {
		attrs, _ := g.NodeAttrs(id)
		record := make(map[string]any, len(attrs)+1)
		for k, v := range attrs {
			record[k] = v
		}
		record["id"] = id
		s.Nodes = append(s.Nodes, record)
	}
	for _, e := range g.Edges() {
		record := make(map[string]any, len(e.Attrs)+2)
		for k, v := range e.Attrs {
			record[k] = v
		}
		record["source"] = e.From
		record["target"] = e.To
		s.Links = append(s.Links, record)
	}
	return s
}

// FromSnapshot reconstructs a graph from its node-link form. It enforces
// the structural flags (the graph must be directed and not a multigraph)
// and coerces numeric ids; all other validation is the validator's job.
// Link endpoints that name unknown nodes become attribute-less nodes, which
// full validation then rejects as untyped.
func FromSnapshot(s Snapshot) (*Graph, error) {
	if !s.Directed {
		return nil, &GraphValidationError{Reason: "The graph is not a DiGraph"}
	}
	if s.Multigraph {
		return nil, &GraphValidationError{Reason: "The graph is multigraph."}
	}

	g := NewGraph()
	for _, record := range s.Nodes {
		raw, ok := record["id"]
		if !ok {
			return nil, &GraphValidationError{Reason: "Invalid graph data", Cause: fmt.Errorf("node record without id")}
		}
		id, err := asInt(raw)
		if err != nil {
			return nil, &GraphValidationError{Reason: "Invalid graph data", Cause: fmt.Errorf("node id: %w", err)}
		}
		attrs := make(Attrs, len(record)-1)
		for k, v := range record {
			if k == "id" {
				continue
			}
			attrs[k] = v
		}
		g.AddNode(id, attrs)
	}

	for _, record := range s.Links {
		source, err := linkEndpoint(record, "source")
		if err != nil {
			return nil, err
		}
		target, err := linkEndpoint(record, "target")
		if err != nil {
			return nil, err
		}
		attrs := make(Attrs, len(record)-2)
		for k, v := range record {
			if k == "source" || k == "target" {
				continue
			}
			attrs[k] = v
		}
		for _, id := range []int{source, target} {
			if !g.HasNode(id) {
				g.AddNode(id, Attrs{})
			}
		}
		g.AddEdge(source, target, attrs)
	}

	return g, nil
}

// ParseSnapshot decodes a JSON node-link document.
func ParseSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, &GraphValidationError{Reason: "Invalid graph data", Cause: err}
	}
	return s, nil
}

func linkEndpoint(record map[string]any, key string) (int, error) {
	raw, ok := record[key]
	if !ok {
		return 0, &GraphValidationError{Reason: "Invalid graph data", Cause: fmt.Errorf("link record without %s", key)}
	}
	id, err := asInt(raw)
	if err != nil {
		return 0, &GraphValidationError{Reason: "Invalid graph data", Cause: fmt.Errorf("link %s: %w", key, err)}
	}
	return id, nil
}

// asInt accepts the integer encodings JSON decoding produces.
func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("expected integer id, got %v", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("expected integer id, got %v", n)
		}
		return int(i), nil
	default:
		return 0, fmt.Errorf("expected integer id, got %T", v)
	}
}
