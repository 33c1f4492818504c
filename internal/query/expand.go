// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query expands boolean search expressions into atomic query strings.
// Implements: query expansion (AND/OR/NOT, parentheses, *phrase* terms).
//
// An expression such as `(graphene OR graphyne) AND *band gap*` becomes
// ["graphene band gap", "graphyne band gap"]: every OR-group is split into
// independent alternatives, and AND takes the Cartesian product of its
// operands. Each result can be sent to a search backend as-is or scored
// against document text by the relevance package.
package query

import (
	"fmt"
	"regexp"
	"strings"
)

// tokenPattern recognizes, in priority order: *phrase* tokens, parentheses,
// and word runs. Operators are word runs that equal AND/OR/NOT.
var tokenPattern = regexp.MustCompile(`\*[^*]+\*|\(|\)|[\p{L}\p{N}_]+`)

// precedence orders the binary operators. NOT binds tightest.
var precedence = map[string]int{
	"OR":  1,
	"AND": 2,
	"NOT": 3,
}

// ParseError reports a malformed query. Construct names the offending
// piece of syntax: "(", ")", "AND", "OR", "NOT", "*", or "query".
type ParseError struct {
	Construct string
	Msg       string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid query: %s", e.Msg)
}

// token is a lexed piece of the query.
type token struct {
	text   string
	phrase bool
}

// Expand parses q and returns the flat list of atomic query strings, in
// operand order. It fails with a *ParseError on unbalanced parentheses,
// an operator missing an operand, unmatched phrase markers, or an empty
// query.
func Expand(q string) ([]string, error) {
	if strings.TrimSpace(q) == "" {
		return nil, &ParseError{Construct: "query", Msg: "query is empty"}
	}

	tokens, err := tokenize(q)
	if err != nil {
		return nil, err
	}

	var (
		values [][]string
		ops    []string
	)

	for _, tok := range tokens {
		op := strings.ToUpper(tok.text)
		switch {
		case tok.phrase:
			values = append(values, []string{cleanTerm(tok)})

		case tok.text == "(":
			ops = append(ops, "(")

		case tok.text == ")":
			for len(ops) > 0 && ops[len(ops)-1] != "(" {
				if values, err = apply(ops[len(ops)-1], values); err != nil {
					return nil, err
				}
				ops = ops[:len(ops)-1]
			}
			if len(ops) == 0 {
				return nil, &ParseError{Construct: ")", Msg: "unbalanced parentheses: ')' without matching '('"}
			}
			ops = ops[:len(ops)-1]

		case precedence[op] > 0:
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				if top == "(" || precedence[top] < precedence[op] {
					break
				}
				if values, err = apply(top, values); err != nil {
					return nil, err
				}
				ops = ops[:len(ops)-1]
			}
			ops = append(ops, op)

		default:
			values = append(values, []string{cleanTerm(tok)})
		}
	}

	for len(ops) > 0 {
		top := ops[len(ops)-1]
		if top == "(" {
			return nil, &ParseError{Construct: "(", Msg: "unbalanced parentheses: '(' is never closed"}
		}
		if values, err = apply(top, values); err != nil {
			return nil, err
		}
		ops = ops[:len(ops)-1]
	}

	if len(values) != 1 {
		return nil, &ParseError{Construct: "query", Msg: "invalid expression: terms must be joined by AND, OR or NOT"}
	}
	return values[0], nil
}

// tokenize splits q into tokens. Text between matches may only be
// whitespace or punctuation; a stray '*' means a phrase marker has no
// partner.
func tokenize(q string) ([]token, error) {
	var tokens []token
	last := 0
	for _, loc := range tokenPattern.FindAllStringIndex(q, -1) {
		if err := checkGap(q[last:loc[0]]); err != nil {
			return nil, err
		}
		text := q[loc[0]:loc[1]]
		tok := token{text: text, phrase: strings.HasPrefix(text, "*")}
		if tok.phrase && strings.TrimSpace(strings.Trim(text, "*")) == "" {
			return nil, &ParseError{Construct: "*", Msg: "empty phrase between '*' markers"}
		}
		tokens = append(tokens, tok)
		last = loc[1]
	}
	if err := checkGap(q[last:]); err != nil {
		return nil, err
	}
	return tokens, nil
}

func checkGap(gap string) error {
	if strings.Contains(gap, "*") {
		return &ParseError{Construct: "*", Msg: "unmatched '*' phrase marker"}
	}
	return nil
}

// cleanTerm strips phrase markers and lowercases. Spacing inside a phrase
// is kept so the phrase stays one unit.
func cleanTerm(tok token) string {
	if tok.phrase {
		return strings.ToLower(strings.TrimSpace(tok.text[1 : len(tok.text)-1]))
	}
	return strings.ToLower(tok.text)
}

// apply pops the operands of op from values and pushes the result.
func apply(op string, values [][]string) ([][]string, error) {
	switch op {
	case "NOT":
		// NOT is only honoured downstream, where scorers split an atomic
		// expression on " NOT ". Here it consumes its operand.
		if len(values) < 1 {
			return nil, &ParseError{Construct: "NOT", Msg: "NOT is missing the term it excludes"}
		}
		return values[:len(values)-1], nil

	case "OR", "AND":
		if len(values) < 2 {
			return nil, &ParseError{Construct: op, Msg: fmt.Sprintf("%s needs an operand on both sides", op)}
		}
		left, right := values[len(values)-2], values[len(values)-1]
		values = values[:len(values)-2]

		if op == "OR" {
			combined := make([]string, 0, len(left)+len(right))
			combined = append(combined, left...)
			combined = append(combined, right...)
			return append(values, combined), nil
		}

		combined := make([]string, 0, len(left)*len(right))
		for _, l := range left {
			for _, r := range right {
				combined = append(combined, l+" "+r)
			}
		}
		return append(values, combined), nil
	}
	return nil, &ParseError{Construct: op, Msg: fmt.Sprintf("unknown operator %q", op)}
}
