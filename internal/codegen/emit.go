package codegen

import (
	"fmt"
	"strings"

	"lispc/internal/diag"
	"lispc/internal/hir"
	"lispc/internal/source"
)

// UnknownNodeError reports a node kind the emitter cannot render. It means an
// earlier stage produced a malformed tree.
type UnknownNodeError struct {
	Node hir.Node
}

func (e *UnknownNodeError) Error() string {
	if e.Node == nil {
		return "codegen: nil node"
	}
	return fmt.Sprintf("codegen: unknown node kind %s (%T)", e.Node.Kind(), e.Node)
}

func (e *UnknownNodeError) Diagnostic() diag.Diagnostic {
	var sp source.Span
	if e.Node != nil {
		sp = e.Node.Span()
	}
	return diag.NewError(diag.IntUnknownNode, sp, e.Error())
}

type Emitter struct {
	buf strings.Builder
}

// Generate renders n as C-like call syntax. A Program yields one line per
// body element, joined by '\n' with no trailing newline.
func Generate(n hir.Node) (string, error) {
	e := &Emitter{}
	if err := e.emitNode(n); err != nil {
		return "", err
	}
	return e.buf.String(), nil
}

func (e *Emitter) emitNode(n hir.Node) error {
	switch n := n.(type) {
	case *hir.Program:
		for i, item := range n.Body {
			if i > 0 {
				e.buf.WriteByte('\n')
			}
			if err := e.emitNode(item); err != nil {
				return err
			}
		}
	case *hir.ExpressionStatement:
		if err := e.emitNode(n.Expression); err != nil {
			return err
		}
		e.buf.WriteByte(';')
	case *hir.CallExpression:
		return e.emitCall(n)
	case *hir.Identifier:
		e.buf.WriteString(n.Name)
	case *hir.NumberLiteral:
		e.buf.WriteString(n.Value)
	case *hir.StringLiteral:
		e.buf.WriteByte('"')
		e.buf.WriteString(n.Value)
		e.buf.WriteByte('"')
	default:
		return &UnknownNodeError{Node: n}
	}
	return nil
}

func (e *Emitter) emitCall(c *hir.CallExpression) error {
	if c.Callee == nil {
		return &UnknownNodeError{Node: c}
	}
	if err := e.emitNode(c.Callee); err != nil {
		return err
	}
	e.buf.WriteByte('(')
	for i, arg := range c.Arguments {
		if i > 0 {
			e.buf.WriteString(", ")
		}
		if err := e.emitNode(arg); err != nil {
			return err
		}
	}
	e.buf.WriteByte(')')
	return nil
}
