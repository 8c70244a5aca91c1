package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// NodeType discriminates the closed set of node variants.
type NodeType string

const (
	NodeTypeStart     NodeType = "start"
	NodeTypeEnd       NodeType = "end"
	NodeTypeMessage   NodeType = "message"
	NodeTypeCondition NodeType = "condition"
)

// MessageStatus is the delivery state carried by a message node.
type MessageStatus string

const (
	StatusPending MessageStatus = "pending"
	StatusSent    MessageStatus = "sent"
	StatusOpened  MessageStatus = "opened"
)

// AutoID marks a node whose identifier should be assigned by the engine
// (max existing id + 1, minimum 1).
const AutoID = -1

// Node is the closed tagged variant over the four workflow node kinds.
// Every consumption site switches exhaustively on Type().
type Node interface {
	fmt.Stringer

	NodeID() int
	Type() NodeType

	// Attrs returns the variant attributes flattened for graph storage,
	// including the "type" discriminator but excluding the id.
	Attrs() Attrs

	// Color is the display color associated with the node kind.
	Color() string

	isNode()
}

// StartNode is the unique entry point of a workflow. No incoming edges,
// at most one outgoing edge.
type StartNode struct {
	ID int
}

func (n StartNode) NodeID() int    { return n.ID }
func (n StartNode) Type() NodeType { return NodeTypeStart }
func (n StartNode) Color() string  { return "green" }
func (n StartNode) Attrs() Attrs   { return Attrs{"type": string(NodeTypeStart)} }
func (StartNode) isNode()          {}

// EndNode is an exit point. Any number of incoming edges, no outgoing edges.
type EndNode struct {
	ID int
}

func (n EndNode) NodeID() int    { return n.ID }
func (n EndNode) Type() NodeType { return NodeTypeEnd }
func (n EndNode) Color() string  { return "yellow" }
func (n EndNode) Attrs() Attrs   { return Attrs{"type": string(NodeTypeEnd)} }
func (EndNode) isNode()          {}

// MessageNode carries the message text and status read by condition rules.
// At most one outgoing edge.
type MessageNode struct {
	ID          int
	MessageText string
	Status      MessageStatus
}

func (n MessageNode) NodeID() int    { return n.ID }
func (n MessageNode) Type() NodeType { return NodeTypeMessage }
func (n MessageNode) Color() string  { return "blue" }
func (n MessageNode) Attrs() Attrs {
	return Attrs{
		"type":         string(NodeTypeMessage),
		"message_text": n.MessageText,
		"status":       string(n.Status),
	}
}
func (MessageNode) isNode() {}

// RuleEnv returns the attribute map a condition rule is evaluated against.
func (n MessageNode) RuleEnv() map[string]any {
	return map[string]any{
		"id":           n.ID,
		"type":         string(NodeTypeMessage),
		"message_text": n.MessageText,
		"status":       string(n.Status),
	}
}

// ConditionNode branches on a boolean rule over the last traversed message.
// At most two outgoing edges, labeled Yes and No.
type ConditionNode struct {
	ID   int
	Rule string
}

func (n ConditionNode) NodeID() int    { return n.ID }
func (n ConditionNode) Type() NodeType { return NodeTypeCondition }
func (n ConditionNode) Color() string  { return "red" }
func (n ConditionNode) Attrs() Attrs {
	return Attrs{
		"type": string(NodeTypeCondition),
		"rule": n.Rule,
	}
}
func (ConditionNode) isNode() {}

// messageBody and conditionBody are the strict decode targets for payload
// attribute maps. Unknown keys are ignored; the discriminator is read first.
type messageBody struct {
	MessageText *string `mapstructure:"message_text"`
	Status      *string `mapstructure:"status"`
}

type conditionBody struct {
	Rule *string `mapstructure:"rule"`
}

func decodeBody(attrs map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(attrs)
}

// NewNode builds the typed variant for the given discriminator from a raw
// attribute map. It rejects payloads lacking a recognized type rather than
// guessing the variant from attribute presence.
func NewNode(typ NodeType, id int, attrs map[string]any) (Node, error) {
	switch typ {
	case NodeTypeStart:
		return StartNode{ID: id}, nil
	case NodeTypeEnd:
		return EndNode{ID: id}, nil
	case NodeTypeMessage:
		var body messageBody
		if err := decodeBody(attrs, &body); err != nil {
			return nil, &NodeValidationError{NodeID: id, Reason: err.Error()}
		}
		if body.MessageText == nil || body.Status == nil {
			return nil, &NodeValidationError{NodeID: id, Reason: "Invalid configuration of node message."}
		}
		status := MessageStatus(*body.Status)
		switch status {
		case StatusPending, StatusSent, StatusOpened:
		default:
			return nil, &NodeValidationError{
				NodeID: id,
				Reason: fmt.Sprintf("invalid message status: %q", *body.Status),
			}
		}
		return MessageNode{ID: id, MessageText: *body.MessageText, Status: status}, nil
	case NodeTypeCondition:
		var body conditionBody
		if err := decodeBody(attrs, &body); err != nil {
			return nil, &NodeValidationError{NodeID: id, Reason: err.Error()}
		}
		if body.Rule == nil {
			return nil, &NodeValidationError{NodeID: id, Reason: "Invalid configuration of node condition."}
		}
		return ConditionNode{ID: id, Rule: *body.Rule}, nil
	default:
		return nil, &NodeValidationError{
			NodeID: id,
			Reason: fmt.Sprintf("Invalid node type: %s", typ),
		}
	}
}

func (n StartNode) String() string { return fmt.Sprintf("StartNode(id=%d)", n.ID) }
func (n EndNode) String() string   { return fmt.Sprintf("EndNode(id=%d)", n.ID) }

func (n MessageNode) String() string {
	return fmt.Sprintf("MessageNode(id=%d, message_text=%q, status=%s)", n.ID, n.MessageText, n.Status)
}

func (n ConditionNode) String() string {
	return fmt.Sprintf("ConditionNode(id=%d, rule=%q)", n.ID, n.Rule)
}

// NodeFromAttrs rebuilds the typed variant from graph-stored attributes,
// reading the "type" discriminator first.
func NodeFromAttrs(id int, attrs Attrs) (Node, error) {
	raw, ok := attrs["type"]
	if !ok {
		return nil, &NodeValidationError{NodeID: id, Reason: fmt.Sprintf("Node %d has no type.", id)}
	}
	typ, ok := raw.(string)
	if !ok {
		return nil, &NodeValidationError{NodeID: id, Reason: fmt.Sprintf("Node %d has no type.", id)}
	}
	return NewNode(NodeType(typ), id, attrs)
}
