package domain

import (
	"errors"
	"fmt"
)

// ErrNotChanged signals an update with no effective difference from the
// current state. Callers use it to short-circuit persistence (HTTP 304).
var ErrNotChanged = errors.New("not changed")

// ErrLoop signals that path resolution revisited an identical
// (node, context) state: the workflow as configured can run forever.
var ErrLoop = errors.New("There is a loop in the workflow.")

// ErrNoPath signals that no end node is reachable from the start node,
// either structurally or under the current branch outcomes.
var ErrNoPath = errors.New("No path found")

// NodeValidationError reports a single node violating its structural rule.
type NodeValidationError struct {
	NodeID int
	Reason string
}

func (e *NodeValidationError) Error() string { return e.Reason }

// EdgeValidationError reports a single edge violating its structural rule.
type EdgeValidationError struct {
	From   int
	To     int
	Reason string
}

func (e *EdgeValidationError) Error() string { return e.Reason }

// GraphValidationError reports a whole-graph invariant violation. When the
// failure originated in a node or edge check, Cause carries the original
// error for diagnostics.
type GraphValidationError struct {
	Reason string
	Cause  error
}

func (e *GraphValidationError) Error() string { return e.Reason }
func (e *GraphValidationError) Unwrap() error { return e.Cause }

// NotFoundError reports a lookup miss, distinct from validation failures.
type NotFoundError struct {
	Kind string // "node", "edge" or "workflow"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s does not exist", e.Kind, e.Key)
}

// NotFoundNode builds the lookup-miss error for a node id.
func NotFoundNode(id int) *NotFoundError {
	return &NotFoundError{Kind: "node", Key: fmt.Sprintf("%d", id)}
}

// NotFoundEdge builds the lookup-miss error for an edge pair.
func NotFoundEdge(from, to int) *NotFoundError {
	return &NotFoundError{Kind: "edge", Key: fmt.Sprintf("(%d, %d)", from, to)}
}
