package ast

import (
	"lispc/internal/source"
)

// Kind identifies the concrete type of a source AST node.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindProgram
	KindNumberLiteral
	KindStringLiteral
	KindCallExpression
)

var kindNames = [...]string{
	KindInvalid:        "Invalid",
	KindProgram:        "Program",
	KindNumberLiteral:  "NumberLiteral",
	KindStringLiteral:  "StringLiteral",
	KindCallExpression: "CallExpression",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Node is a source AST node. The set of implementations is closed.
type Node interface {
	Kind() Kind
	Span() source.Span
	node()
}

// Program is the root; exactly one per compilation.
type Program struct {
	Body []Node
	Sp   source.Span
}

// NumberLiteral keeps the digit text verbatim.
type NumberLiteral struct {
	Value string
	Sp    source.Span
}

// StringLiteral keeps the text between the quotes verbatim.
type StringLiteral struct {
	Value string
	Sp    source.Span
}

// CallExpression is `(Name Params...)`.
type CallExpression struct {
	Name   string
	NameSp source.Span
	Params []Node
	Sp     source.Span
}

func (*Program) Kind() Kind        { return KindProgram }
func (*NumberLiteral) Kind() Kind  { return KindNumberLiteral }
func (*StringLiteral) Kind() Kind  { return KindStringLiteral }
func (*CallExpression) Kind() Kind { return KindCallExpression }

func (n *Program) Span() source.Span        { return n.Sp }
func (n *NumberLiteral) Span() source.Span  { return n.Sp }
func (n *StringLiteral) Span() source.Span  { return n.Sp }
func (n *CallExpression) Span() source.Span { return n.Sp }

func (*Program) node()        {}
func (*NumberLiteral) node()  {}
func (*StringLiteral) node()  {}
func (*CallExpression) node() {}

// Children returns the direct children of n in source order; leaves have none.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Program:
		return n.Body
	case *CallExpression:
		return n.Params
	default:
		return nil
	}
}

// Stats summarises the call structure of a tree.
type Stats struct {
	Calls    int
	MaxDepth int
}

// Measure counts calls and the deepest call nesting under n.
func Measure(n Node) Stats {
	var st Stats
	measure(n, 0, &st)
	return st
}

func measure(n Node, depth int, st *Stats) {
	if _, ok := n.(*CallExpression); ok {
		depth++
		st.Calls++
		if depth > st.MaxDepth {
			st.MaxDepth = depth
		}
	}
	for _, c := range Children(n) {
		measure(c, depth, st)
	}
}
