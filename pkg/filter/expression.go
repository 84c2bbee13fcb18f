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

// Package filter evaluates event filter expressions such as
//
//	severityLevel >= high AND threatType IN [sql_injection, xss]
//	is_open AND sourceIp STARTS_WITH "10."
//
// Field names are the event's wire names, matched case-insensitively.
// String comparisons ignore case; severityLevel compares by rank.
package filter

import (
	"fmt"
	"strconv"
	"strings"

	zerrors "github.com/kube-zen/zen-triage/pkg/errors"
	"github.com/kube-zen/zen-triage/pkg/models"
)

type nodeKind int

const (
	nodeLiteral nodeKind = iota
	nodeList
	nodeField
	nodeComparison
	nodeLogical
	nodeMacro
)

type node struct {
	kind  nodeKind
	op    string
	left  *node
	right *node
	value interface{}
	field string
}

// Expression is a compiled filter
type Expression struct {
	source string
	root   *node
}

// Compile parses src. An empty or blank source yields a nil Expression,
// which matches every event.
func Compile(src string) (*Expression, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, nil
	}
	toks, err := lex(src)
	if err != nil {
		return nil, zerrors.NewValidationError("filter.compile", err.Error(), err)
	}
	root, err := (&parser{toks: toks}).parse()
	if err != nil {
		return nil, zerrors.NewValidationError("filter.compile", err.Error(), err)
	}
	return &Expression{source: src, root: root}, nil
}

// String returns the source expression
func (x *Expression) String() string {
	if x == nil {
		return ""
	}
	return x.source
}

// Match reports whether e satisfies the expression
func (x *Expression) Match(e models.EventRecord) bool {
	if x == nil || x.root == nil {
		return true
	}
	return truthy(eval(x.root, &e))
}

type fieldFunc func(*models.EventRecord) string

var fields = map[string]fieldFunc{
	"id":            func(e *models.EventRecord) string { return e.ID },
	"eventId":       func(e *models.EventRecord) string { return e.EventID },
	"sourceIp":      func(e *models.EventRecord) string { return e.SourceIP },
	"targetUrl":     func(e *models.EventRecord) string { return e.TargetURL },
	"httpMethod":    func(e *models.EventRecord) string { return e.HTTPMethod },
	"userAgent":     func(e *models.EventRecord) string { return e.UserAgent },
	"threatType":    func(e *models.EventRecord) string { return string(e.ThreatType) },
	"severityLevel": func(e *models.EventRecord) string { return string(e.SeverityLevel) },
	"status":        func(e *models.EventRecord) string { return string(e.Status) },
	"attackPayload": func(e *models.EventRecord) string { return e.AttackPayload },
	"aiAnalysis":    func(e *models.EventRecord) string { return e.AIAnalysis },
	"detectionTime": func(e *models.EventRecord) string { return timestamp(e.DetectionTime) },
	"createdAt":     func(e *models.EventRecord) string { return timestamp(e.CreatedAt) },
}

var aliases = map[string]string{
	"severity": "severityLevel",
	"ip":       "sourceIp",
	"url":      "targetUrl",
	"method":   "httpMethod",
	"type":     "threatType",
}

func resolveField(name string) (string, bool) {
	lower := strings.ToLower(name)
	if canonical, ok := aliases[lower]; ok {
		return canonical, true
	}
	for canonical := range fields {
		if strings.ToLower(canonical) == lower {
			return canonical, true
		}
	}
	return "", false
}

// Fields lists the field names an expression may reference
func Fields() []string {
	out := make([]string, 0, len(fields))
	for name := range fields {
		out = append(out, name)
	}
	return out
}

var macros = map[string]func(*models.EventRecord) bool{
	"is_critical": func(e *models.EventRecord) bool { return e.SeverityLevel == models.SeverityCritical },
	"is_high":     func(e *models.EventRecord) bool { return e.SeverityLevel.Rank() >= models.SeverityHigh.Rank() },
	"is_pending":  func(e *models.EventRecord) bool { return e.Status == models.StatusPending },
	"is_open":     func(e *models.EventRecord) bool { return !e.Status.IsTerminal() },
}

func timestamp(ts models.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format("2006-01-02T15:04:05Z")
}

func eval(n *node, e *models.EventRecord) interface{} {
	switch n.kind {
	case nodeLiteral, nodeList:
		return n.value
	case nodeField:
		return fields[n.field](e)
	case nodeMacro:
		return macros[n.field](e)
	case nodeLogical:
		switch n.op {
		case "AND":
			return truthy(eval(n.left, e)) && truthy(eval(n.right, e))
		case "OR":
			return truthy(eval(n.left, e)) || truthy(eval(n.right, e))
		default:
			return !truthy(eval(n.left, e))
		}
	case nodeComparison:
		return compare(n, e)
	}
	return false
}

func compare(n *node, e *models.EventRecord) bool {
	left := eval(n.left, e)
	switch n.op {
	case "EXISTS":
		return present(left)
	case "NOT EXISTS":
		return !present(left)
	}

	right := eval(n.right, e)
	severity := n.left.kind == nodeField && n.left.field == "severityLevel"
	switch n.op {
	case "=":
		return equal(left, right)
	case "!=":
		return !equal(left, right)
	case ">":
		return order(left, right, severity) > 0
	case ">=":
		return order(left, right, severity) >= 0
	case "<":
		return order(left, right, severity) < 0
	case "<=":
		return order(left, right, severity) <= 0
	case "IN", "NOT IN":
		found := false
		items, _ := right.([]interface{})
		for _, item := range items {
			if equal(left, item) {
				found = true
				break
			}
		}
		return found == (n.op == "IN")
	case "CONTAINS":
		return strings.Contains(lower(left), lower(right))
	case "STARTS_WITH":
		return strings.HasPrefix(lower(left), lower(right))
	case "ENDS_WITH":
		return strings.HasSuffix(lower(left), lower(right))
	}
	return false
}

func present(v interface{}) bool {
	s, ok := v.(string)
	return !ok || s != ""
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	}
	return false
}

func lower(v interface{}) string { return strings.ToLower(fmt.Sprint(v)) }

func equal(a, b interface{}) bool {
	if x, ok := number(a); ok {
		if y, ok := number(b); ok {
			return x == y
		}
	}
	return strings.EqualFold(fmt.Sprint(a), fmt.Sprint(b))
}

// order compares by severity rank, then numerically, then as lowercased strings
func order(a, b interface{}, severity bool) int {
	if severity {
		ra := models.SeverityLevel(lower(a)).Rank()
		rb := models.SeverityLevel(lower(b)).Rank()
		return ra - rb
	}
	if x, ok := number(a); ok {
		if y, ok := number(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(lower(a), lower(b))
}

func number(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return 0, false
}
