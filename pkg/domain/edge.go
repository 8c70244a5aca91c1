package domain

// Condition is the label carried by a conditional edge.
type Condition string

const (
	ConditionYes Condition = "Yes"
	ConditionNo  Condition = "No"
)

// Valid reports whether the label is one of the two allowed values.
func (c Condition) Valid() bool {
	return c == ConditionYes || c == ConditionNo
}

// Edge is the closed variant over the two edge kinds: a plain connection
// or a Yes/No labeled branch out of a condition node.
type Edge interface {
	Endpoints() (from, to int)

	// Attrs returns the edge attributes for graph storage
	// (empty for simple edges).
	Attrs() Attrs

	isEdge()
}

// SimpleEdge is an unlabeled connection; the only edge kind allowed out of
// non-condition nodes.
type SimpleEdge struct {
	From int
	To   int
}

func (e SimpleEdge) Endpoints() (int, int) { return e.From, e.To }
func (e SimpleEdge) Attrs() Attrs          { return Attrs{} }
func (SimpleEdge) isEdge()                 {}

// ConditionEdge is a labeled branch out of a condition node. A condition
// node carries at most one Yes and one No edge.
type ConditionEdge struct {
	From      int
	To        int
	Condition Condition
}

func (e ConditionEdge) Endpoints() (int, int) { return e.From, e.To }
func (e ConditionEdge) Attrs() Attrs {
	return Attrs{"condition": string(e.Condition)}
}
func (ConditionEdge) isEdge() {}
