// Package graph renders workflow graphs as Mermaid flowcharts.
package graph

import (
	"fmt"
	"strings"

	"github.com/ostryzhko/flowpath/pkg/domain"
)

// Overlay contains resolved-path state to visualize on the diagram.
type Overlay struct {
	PathNodes []int
}

// GenerateMermaid produces Mermaid flowchart syntax for a workflow graph.
// Node shapes follow the variant:
//   - Start/End: ((Circle))
//   - Condition: {Rhombus}
//   - Message: [Rectangle]
//
// Conditional edges carry their Yes/No label; an overlay highlights the
// nodes of a resolved path.
func GenerateMermaid(nodes []domain.Node, edges []domain.Edge, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range nodes {
		opener, closer := "[", "]"
		switch node.Type() {
		case domain.NodeTypeStart, domain.NodeTypeEnd:
			opener, closer = "((", "))"
		case domain.NodeTypeCondition:
			opener, closer = "{", "}"
		}
		sb.WriteString(fmt.Sprintf("    n%d%s\"%s\"%s\n", node.NodeID(), opener, nodeLabel(node), closer))
	}

	for _, edge := range edges {
		from, to := edge.Endpoints()
		arrow := "-->"
		if ce, ok := edge.(domain.ConditionEdge); ok {
			arrow = fmt.Sprintf("-- \"%s\" -->", ce.Condition)
		}
		sb.WriteString(fmt.Sprintf("    n%d %s n%d\n", from, arrow, to))
	}

	if overlay != nil && len(overlay.PathNodes) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef inpath fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		seen := make(map[int]bool)
		for _, id := range overlay.PathNodes {
			if !seen[id] {
				seen[id] = true
				sb.WriteString(fmt.Sprintf("    class n%d inpath;\n", id))
			}
		}
	}

	return sb.String()
}

// nodeLabel is the human-readable text inside the node shape. Double quotes
// would terminate the Mermaid label, so they become single quotes.
func nodeLabel(node domain.Node) string {
	var label string
	switch n := node.(type) {
	case domain.MessageNode:
		label = fmt.Sprintf("message %d: %s (%s)", n.ID, n.MessageText, n.Status)
	case domain.ConditionNode:
		label = fmt.Sprintf("condition %d: %s", n.ID, n.Rule)
	default:
		label = fmt.Sprintf("%s %d", node.Type(), node.NodeID())
	}
	return strings.ReplaceAll(label, "\"", "'")
}
