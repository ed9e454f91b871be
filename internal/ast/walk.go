package ast

import (
	"fmt"

	"lispc/internal/diag"
	"lispc/internal/source"
)

// Methods holds the callbacks for one node kind. Either may be nil.
//
// Enter runs before the node's children and returns the context they receive.
// Exit runs after the children with the context the node itself was given.
type Methods[C any] struct {
	Enter func(n, parent Node, ctx C) (C, error)
	Exit  func(n, parent Node, ctx C) error
}

// Visitor maps node kinds to callbacks. Kinds without an entry are walked
// through silently.
type Visitor[C any] map[Kind]Methods[C]

// UnknownNodeError reports a node the walker does not know how to descend into.
type UnknownNodeError struct {
	Node Node
}

func (e *UnknownNodeError) Error() string {
	if e.Node == nil {
		return "traverse: nil node"
	}
	return fmt.Sprintf("traverse: unknown node kind %s (%T)", e.Node.Kind(), e.Node)
}

func (e *UnknownNodeError) Diagnostic() diag.Diagnostic {
	var sp source.Span
	if e.Node != nil {
		sp = e.Node.Span()
	}
	return diag.NewError(diag.IntUnknownNode, sp, e.Error())
}

// Traverse walks root depth-first, parents before children, children in
// order. The root's parent is nil. The tree is never modified. The first
// callback error stops the walk and is returned unchanged.
func Traverse[C any](root Node, v Visitor[C], ctx C) error {
	return traverseNode(root, nil, v, ctx)
}

func traverseNode[C any](n, parent Node, v Visitor[C], ctx C) error {
	var children []Node
	switch n := n.(type) {
	case *Program:
		children = n.Body
	case *CallExpression:
		children = n.Params
	case *NumberLiteral, *StringLiteral:
	default:
		return &UnknownNodeError{Node: n}
	}

	m := v[n.Kind()]
	childCtx := ctx
	if m.Enter != nil {
		var err error
		if childCtx, err = m.Enter(n, parent, ctx); err != nil {
			return err
		}
	}

	for _, child := range children {
		if err := traverseNode(child, n, v, childCtx); err != nil {
			return err
		}
	}

	if m.Exit != nil {
		return m.Exit(n, parent, ctx)
	}
	return nil
}
