package rule

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokBool
	tokAnd
	tokOr
	tokNot
	tokEq     // ==
	tokNotEq  // !=
	tokMatch  // =~
	tokNMatch // !~
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// scan tokenizes a rule expression. Keywords are case-sensitive except for
// the boolean literals, which accept both Python-style and lowercase forms.
func scan(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case c == '=' || c == '!':
			if i+1 >= len(src) {
				return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected %q", string(c))}
			}
			op := src[i : i+2]
			switch op {
			case "==":
				toks = append(toks, token{tokEq, op, i})
			case "!=":
				toks = append(toks, token{tokNotEq, op, i})
			case "=~":
				toks = append(toks, token{tokMatch, op, i})
			case "!~":
				toks = append(toks, token{tokNMatch, op, i})
			default:
				return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected %q", op)}
			}
			i += 2
		case c == '\'' || c == '"':
			quote := c
			j := i + 1
			var sb strings.Builder
			for j < len(src) && src[j] != quote {
				if src[j] == '\\' && j+1 < len(src) {
					j++
				}
				sb.WriteByte(src[j])
				j++
			}
			if j >= len(src) {
				return nil, &SyntaxError{Pos: i, Msg: "unterminated string literal"}
			}
			toks = append(toks, token{tokString, sb.String(), i})
			i = j + 1
		case c >= '0' && c <= '9':
			j := i
			for j < len(src) && (src[j] >= '0' && src[j] <= '9' || src[j] == '.') {
				j++
			}
			toks = append(toks, token{tokNumber, src[i:j], i})
			i = j
		case isIdentStart(rune(c)):
			j := i
			for j < len(src) && isIdentPart(rune(src[j])) {
				j++
			}
			word := src[i:j]
			switch word {
			case "and":
				toks = append(toks, token{tokAnd, word, i})
			case "or":
				toks = append(toks, token{tokOr, word, i})
			case "not":
				toks = append(toks, token{tokNot, word, i})
			case "true", "True":
				toks = append(toks, token{tokBool, "true", i})
			case "false", "False":
				toks = append(toks, token{tokBool, "false", i})
			default:
				toks = append(toks, token{tokIdent, word, i})
			}
			i = j
		default:
			return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", string(c))}
		}
	}
	toks = append(toks, token{tokEOF, "", len(src)})
	return toks, nil
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
