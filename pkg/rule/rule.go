// Package rule implements the constrained boolean expression language used
// by condition nodes. A rule is a predicate over the attributes of the last
// traversed message, e.g.:
//
//	message_text == 'Example Text' or status == 'opened'
//	message_text =~ '.*BlockedPath$'
//
// Supported forms: string/number/boolean literals, attribute identifiers,
// the comparison operators == != =~ (regex) !~, and the boolean connectives
// and/or/not with parentheses. Precedence, loosest first: or, and, not,
// comparison.
package rule

import (
	"fmt"
	"regexp"
	"strconv"
)

// SyntaxError reports a malformed rule expression.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("rule syntax error at offset %d: %s", e.Pos, e.Msg)
}

// EvalError reports a rule that parsed but could not be evaluated against
// the given attribute set.
type EvalError struct {
	Msg string
}

func (e *EvalError) Error() string { return e.Msg }

// Rule is a parsed, reusable rule expression.
type Rule struct {
	src  string
	expr expr
}

// Parse compiles a rule expression.
func Parse(src string) (*Rule, error) {
	toks, err := scan(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		t := p.peek()
		return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
	}
	return &Rule{src: src, expr: e}, nil
}

// String returns the original expression text.
func (r *Rule) String() string { return r.src }

// Matches evaluates the rule against an attribute map and reports the
// truthiness of the result. Unknown identifiers are evaluation errors.
func (r *Rule) Matches(env map[string]any) (bool, error) {
	v, err := r.expr.eval(env)
	if err != nil {
		return false, err
	}
	return truthy(v), nil
}

// --- AST ---

type expr interface {
	eval(env map[string]any) (any, error)
}

type binaryExpr struct {
	op          tokenKind // tokAnd, tokOr, tokEq, tokNotEq, tokMatch, tokNMatch
	left, right expr
}

type notExpr struct {
	operand expr
}

type literalExpr struct {
	value any
}

type identExpr struct {
	name string
}

func (e *literalExpr) eval(map[string]any) (any, error) { return e.value, nil }

func (e *identExpr) eval(env map[string]any) (any, error) {
	v, ok := env[e.name]
	if !ok {
		return nil, &EvalError{Msg: fmt.Sprintf("unknown attribute %q", e.name)}
	}
	return v, nil
}

func (e *notExpr) eval(env map[string]any) (any, error) {
	v, err := e.operand.eval(env)
	if err != nil {
		return nil, err
	}
	return !truthy(v), nil
}

func (e *binaryExpr) eval(env map[string]any) (any, error) {
	left, err := e.left.eval(env)
	if err != nil {
		return nil, err
	}

	// Boolean connectives short-circuit.
	switch e.op {
	case tokAnd:
		if !truthy(left) {
			return false, nil
		}
		right, err := e.right.eval(env)
		if err != nil {
			return nil, err
		}
		return truthy(right), nil
	case tokOr:
		if truthy(left) {
			return true, nil
		}
		right, err := e.right.eval(env)
		if err != nil {
			return nil, err
		}
		return truthy(right), nil
	}

	right, err := e.right.eval(env)
	if err != nil {
		return nil, err
	}

	switch e.op {
	case tokEq:
		return looseEqual(left, right), nil
	case tokNotEq:
		return !looseEqual(left, right), nil
	case tokMatch, tokNMatch:
		subject, ok := left.(string)
		if !ok {
			return nil, &EvalError{Msg: fmt.Sprintf("regex match needs a string subject, got %T", left)}
		}
		pattern, ok := right.(string)
		if !ok {
			return nil, &EvalError{Msg: fmt.Sprintf("regex match needs a string pattern, got %T", right)}
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, &EvalError{Msg: fmt.Sprintf("invalid regex %q: %v", pattern, err)}
		}
		matched := re.MatchString(subject)
		if e.op == tokNMatch {
			matched = !matched
		}
		return matched, nil
	}
	return nil, &EvalError{Msg: "unsupported operator"}
}

// --- Parser ---

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) parseOr() (expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: tokOr, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: tokAnd, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (expr, error) {
	if p.peek().kind == tokNot {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &notExpr{operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (expr, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	switch op := p.peek().kind; op {
	case tokEq, tokNotEq, tokMatch, tokNMatch:
		p.next()
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return &binaryExpr{op: op, left: left, right: right}, nil
	}
	return left, nil
}

func (p *parser) parseOperand() (expr, error) {
	t := p.next()
	switch t.kind {
	case tokString:
		return &literalExpr{value: t.text}, nil
	case tokNumber:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("invalid number %q", t.text)}
		}
		return &literalExpr{value: f}, nil
	case tokBool:
		return &literalExpr{value: t.text == "true"}, nil
	case tokIdent:
		return &identExpr{name: t.text}, nil
	case tokLParen:
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, &SyntaxError{Pos: closing.pos, Msg: "missing closing parenthesis"}
		}
		return e, nil
	case tokEOF:
		return nil, &SyntaxError{Pos: t.pos, Msg: "unexpected end of expression"}
	default:
		return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
	}
}

// --- Value helpers ---

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0
	case int:
		return x != 0
	default:
		return true
	}
}

func looseEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
		return false
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}
