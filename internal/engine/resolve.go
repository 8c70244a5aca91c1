package engine

import (
	"fmt"

	"github.com/ostryzhko/flowpath/pkg/domain"
	"github.com/ostryzhko/flowpath/pkg/rule"
)

// searchContext is the ephemeral state threaded through one resolution:
// the most recently traversed message node, read by condition rules.
// It does not persist across ResolvePath calls.
type searchContext struct {
	lastMessage *domain.MessageNode
}

// key serializes the context for the visited-state set. Two visits count
// as the same state only when both the position and the context repeat.
func (c searchContext) key(nodeID int) string {
	if c.lastMessage == nil {
		return fmt.Sprintf("%d|", nodeID)
	}
	m := c.lastMessage
	return fmt.Sprintf("%d|%d\x00%s\x00%s", nodeID, m.ID, m.MessageText, m.Status)
}

// ResolvePath computes the unique node-id sequence from the start node to
// an end node, branching on condition rules evaluated against the last
// traversed message. It fails with domain.ErrNoPath when no end node is
// structurally reachable or the walk dead-ends, and with domain.ErrLoop
// when an identical (node, context) state repeats.
func (p *Pathfinder) ResolvePath() ([]int, error) {
	startID, ok := p.StartNodeID()
	if !ok {
		return nil, domain.ErrNoPath
	}

	// Structural precondition: condition evaluation cannot manufacture
	// connectivity that does not exist, so bail out early when no end
	// node is reachable at all.
	ends := make(map[int]bool)
	for _, id := range p.graph.Nodes() {
		if nodeType(p.graph, id) == domain.NodeTypeEnd {
			ends[id] = true
		}
	}
	if len(ends) == 0 || !p.graph.HasPathTo(startID, ends) {
		return nil, domain.ErrNoPath
	}

	ctx := searchContext{}
	visited := map[string]bool{ctx.key(startID): true}
	path := []int{startID}
	current := startID

	for {
		node, err := p.Node(current)
		if err != nil {
			return nil, err
		}

		var next int
		var found bool
		switch n := node.(type) {
		case domain.EndNode:
			return path, nil
		case domain.StartNode:
			next, found = p.singleSuccessor(current)
		case domain.MessageNode:
			next, found = p.singleSuccessor(current)
			ctx.lastMessage = &n
		case domain.ConditionNode:
			outcome, err := p.evalCondition(n, ctx.lastMessage)
			if err != nil {
				return nil, err
			}
			next, found = p.conditionSuccessor(current, outcome)
		}
		if !found {
			// Dead end: the structural path exists elsewhere, but the
			// walk cannot continue from here.
			return nil, domain.ErrNoPath
		}

		state := ctx.key(next)
		if visited[state] {
			p.logger.Debug("loop detected", "node", next)
			return nil, domain.ErrLoop
		}
		visited[state] = true
		path = append(path, next)
		current = next
	}
}

// singleSuccessor returns the target of the sole outgoing edge, if any.
func (p *Pathfinder) singleSuccessor(id int) (int, bool) {
	outs := p.graph.OutEdges(id)
	if len(outs) == 0 {
		return 0, false
	}
	return outs[0].To, true
}

// conditionSuccessor returns the target of the outgoing edge labeled with
// the given outcome, if present.
func (p *Pathfinder) conditionSuccessor(id int, outcome domain.Condition) (int, bool) {
	for _, e := range p.graph.OutEdges(id) {
		if label, _ := e.Attrs["condition"].(string); label == string(outcome) {
			return e.To, true
		}
	}
	return 0, false
}

// evalCondition runs the node's rule against the last traversed message.
func (p *Pathfinder) evalCondition(node domain.ConditionNode, lastMessage *domain.MessageNode) (domain.Condition, error) {
	if lastMessage == nil {
		return "", &domain.NodeValidationError{
			NodeID: node.ID,
			Reason: fmt.Sprintf("condition node %d evaluated before any message", node.ID),
		}
	}
	r, err := rule.Parse(node.Rule)
	if err != nil {
		return "", &domain.NodeValidationError{
			NodeID: node.ID,
			Reason: fmt.Sprintf("invalid rule %q: %v", node.Rule, err),
		}
	}
	matched, err := r.Matches(lastMessage.RuleEnv())
	if err != nil {
		return "", &domain.NodeValidationError{
			NodeID: node.ID,
			Reason: fmt.Sprintf("rule %q: %v", node.Rule, err),
		}
	}
	if matched {
		return domain.ConditionYes, nil
	}
	return domain.ConditionNo, nil
}
