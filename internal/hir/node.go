package hir

import (
	"lispc/internal/source"
)

// Kind identifies the concrete type of a target AST node.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindProgram
	KindExpressionStatement
	KindCallExpression
	KindIdentifier
	KindNumberLiteral
	KindStringLiteral
)

var kindNames = [...]string{
	KindInvalid:             "Invalid",
	KindProgram:             "Program",
	KindExpressionStatement: "ExpressionStatement",
	KindCallExpression:      "CallExpression",
	KindIdentifier:          "Identifier",
	KindNumberLiteral:       "NumberLiteral",
	KindStringLiteral:       "StringLiteral",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Node is a target AST node. The set of implementations is closed.
type Node interface {
	Kind() Kind
	Span() source.Span
	node()
}

// Program is the root of the target tree.
type Program struct {
	Body []Node
	Sp   source.Span
}

// ExpressionStatement wraps a top-level call.
type ExpressionStatement struct {
	Expression Node
	Sp         source.Span
}

// CallExpression is `Callee(Arguments...)`.
type CallExpression struct {
	Callee    *Identifier
	Arguments []Node
	Sp        source.Span
}

type Identifier struct {
	Name string
	Sp   source.Span
}

type NumberLiteral struct {
	Value string
	Sp    source.Span
}

type StringLiteral struct {
	Value string
	Sp    source.Span
}

func (*Program) Kind() Kind             { return KindProgram }
func (*ExpressionStatement) Kind() Kind { return KindExpressionStatement }
func (*CallExpression) Kind() Kind      { return KindCallExpression }
func (*Identifier) Kind() Kind          { return KindIdentifier }
func (*NumberLiteral) Kind() Kind       { return KindNumberLiteral }
func (*StringLiteral) Kind() Kind       { return KindStringLiteral }

func (n *Program) Span() source.Span             { return n.Sp }
func (n *ExpressionStatement) Span() source.Span { return n.Sp }
func (n *CallExpression) Span() source.Span      { return n.Sp }
func (n *Identifier) Span() source.Span          { return n.Sp }
func (n *NumberLiteral) Span() source.Span       { return n.Sp }
func (n *StringLiteral) Span() source.Span       { return n.Sp }

func (*Program) node()             {}
func (*ExpressionStatement) node() {}
func (*CallExpression) node()      {}
func (*Identifier) node()          {}
func (*NumberLiteral) node()       {}
func (*StringLiteral) node()       {}

// Stats summarises the call structure of a target tree.
type Stats struct {
	Calls      int
	MaxDepth   int
	Statements int
}

// Measure counts calls, statements and the deepest call nesting under n.
func Measure(n Node) Stats {
	var st Stats
	measure(n, 0, &st)
	return st
}

func measure(n Node, depth int, st *Stats) {
	switch n := n.(type) {
	case *Program:
		for _, c := range n.Body {
			measure(c, depth, st)
		}
	case *ExpressionStatement:
		st.Statements++
		measure(n.Expression, depth, st)
	case *CallExpression:
		depth++
		st.Calls++
		st.MaxDepth = max(st.MaxDepth, depth)
		for _, c := range n.Arguments {
			measure(c, depth, st)
		}
	}
}
