// Copyright 2025 The Zen Watcher Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package filter

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokSymbol
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lex splits an expression into tokens. Keywords stay identifiers.
func lex(src string) ([]token, error) {
	var toks []token
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '"' || c == '\'':
			s, n, err := lexString(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{tokString, s, i})
			i = n
		case unicode.IsDigit(rune(c)) || (c == '-' && i+1 < len(src) && unicode.IsDigit(rune(src[i+1]))):
			start := i
			i++
			for i < len(src) && (unicode.IsDigit(rune(src[i])) || src[i] == '.') {
				i++
			}
			toks = append(toks, token{tokNumber, src[start:i], start})
		case isIdentChar(c):
			start := i
			for i < len(src) && (isIdentChar(src[i]) || src[i] == '.') {
				i++
			}
			toks = append(toks, token{tokIdent, src[start:i], start})
		case c == '!' || c == '>' || c == '<':
			if i+1 < len(src) && src[i+1] == '=' {
				toks = append(toks, token{tokSymbol, src[i : i+2], i})
				i += 2
				continue
			}
			if c == '!' {
				return nil, fmt.Errorf("unexpected '!' at position %d", i)
			}
			toks = append(toks, token{tokSymbol, string(c), i})
			i++
		case strings.IndexByte("=()[],", c) >= 0:
			toks = append(toks, token{tokSymbol, string(c), i})
			i++
		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", c, i)
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(src)}), nil
}

func lexString(src string, start int) (string, int, error) {
	quote := src[start]
	var sb strings.Builder
	for i := start + 1; i < len(src); i++ {
		c := src[i]
		switch {
		case c == quote:
			return sb.String(), i + 1, nil
		case c == '\\' && i+1 < len(src):
			i++
			switch src[i] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte(src[i])
			}
		default:
			sb.WriteByte(c)
		}
	}
	return "", 0, fmt.Errorf("unterminated string literal at position %d", start)
}

func isIdentChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// parser is a recursive descent parser; OR binds loosest, then AND, then NOT.
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

func (p *parser) keyword(words ...string) bool {
	for i, w := range words {
		if p.pos+i >= len(p.toks) {
			return false
		}
		t := p.toks[p.pos+i]
		if t.kind != tokIdent || !strings.EqualFold(t.text, w) {
			return false
		}
	}
	return true
}

func (p *parser) symbol(s string) bool {
	t := p.peek()
	return t.kind == tokSymbol && t.text == s
}

func (p *parser) expect(s string) error {
	if !p.symbol(s) {
		return fmt.Errorf("expected '%s' at position %d", s, p.peek().pos)
	}
	p.next()
	return nil
}

func (p *parser) parse() (*node, error) {
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, fmt.Errorf("unexpected token %q at position %d", t.text, t.pos)
	}
	return n, nil
}

func (p *parser) parseOr() (*node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.keyword("OR") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &node{kind: nodeLogical, op: "OR", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (*node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.keyword("AND") {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &node{kind: nodeLogical, op: "AND", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (*node, error) {
	if p.keyword("NOT") {
		p.next()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &node{kind: nodeLogical, op: "NOT", left: operand}, nil
	}
	return p.parseComparison()
}

var binaryOps = []string{">=", "<=", "!=", "=", ">", "<"}

func (p *parser) parseComparison() (*node, error) {
	if p.symbol("(") {
		p.next()
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return n, nil
	}

	if t := p.peek(); t.kind == tokIdent && strings.HasPrefix(strings.ToLower(t.text), "is_") {
		p.next()
		name := strings.ToLower(t.text)
		if _, ok := macros[name]; !ok {
			return nil, fmt.Errorf("unknown macro %q at position %d", t.text, t.pos)
		}
		return &node{kind: nodeMacro, field: name}, nil
	}

	left, err := p.parseOperand(false)
	if err != nil {
		return nil, err
	}

	var op string
	switch {
	case p.keyword("NOT", "EXISTS"):
		p.next()
		p.next()
		return &node{kind: nodeComparison, op: "NOT EXISTS", left: left}, nil
	case p.keyword("EXISTS"):
		p.next()
		return &node{kind: nodeComparison, op: "EXISTS", left: left}, nil
	case p.keyword("NOT", "IN"):
		p.next()
		p.next()
		op = "NOT IN"
	case p.keyword("IN"), p.keyword("CONTAINS"), p.keyword("STARTS_WITH"), p.keyword("ENDS_WITH"):
		op = strings.ToUpper(p.next().text)
	default:
		for _, candidate := range binaryOps {
			if p.symbol(candidate) {
				op = p.next().text
				break
			}
		}
	}
	if op == "" {
		if left.kind == nodeLiteral {
			if _, ok := left.value.(bool); ok {
				return left, nil
			}
		}
		return nil, fmt.Errorf("expected an operator at position %d", p.peek().pos)
	}

	right, err := p.parseOperand(true)
	if err != nil {
		return nil, err
	}
	if (op == "IN" || op == "NOT IN") && right.kind != nodeList {
		return nil, fmt.Errorf("%s requires a list", op)
	}
	return &node{kind: nodeComparison, op: op, left: left, right: right}, nil
}

// parseOperand parses a literal, list or field. On the right of an operator a
// bare word that names no field is a string.
func (p *parser) parseOperand(rhs bool) (*node, error) {
	t := p.peek()
	switch {
	case t.kind == tokSymbol && t.text == "[":
		return p.parseList()
	case t.kind == tokString:
		p.next()
		return &node{kind: nodeLiteral, value: t.text}, nil
	case t.kind == tokNumber:
		p.next()
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q at position %d", t.text, t.pos)
		}
		return &node{kind: nodeLiteral, value: f}, nil
	case t.kind == tokIdent && (strings.EqualFold(t.text, "true") || strings.EqualFold(t.text, "false")):
		p.next()
		return &node{kind: nodeLiteral, value: strings.EqualFold(t.text, "true")}, nil
	case t.kind == tokIdent:
		p.next()
		name, ok := resolveField(t.text)
		if !ok && rhs {
			return &node{kind: nodeLiteral, value: t.text}, nil
		}
		if !ok {
			return nil, fmt.Errorf("unknown field %q at position %d", t.text, t.pos)
		}
		return &node{kind: nodeField, field: name}, nil
	case t.kind == tokEOF:
		return nil, fmt.Errorf("unexpected end of expression")
	default:
		return nil, fmt.Errorf("unexpected token %q at position %d", t.text, t.pos)
	}
}

// parseList parses [a, "b", 3]; bare identifiers are taken as strings
func (p *parser) parseList() (*node, error) {
	p.next()
	var items []interface{}
	for !p.symbol("]") {
		t := p.next()
		switch t.kind {
		case tokString, tokIdent:
			items = append(items, t.text)
		case tokNumber:
			f, err := strconv.ParseFloat(t.text, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q at position %d", t.text, t.pos)
			}
			items = append(items, f)
		default:
			return nil, fmt.Errorf("expected a list item at position %d", t.pos)
		}
		if p.symbol(",") {
			p.next()
			continue
		}
		if !p.symbol("]") {
			return nil, fmt.Errorf("expected ',' or ']' at position %d", p.peek().pos)
		}
	}
	p.next()
	return &node{kind: nodeList, value: items}, nil
}
