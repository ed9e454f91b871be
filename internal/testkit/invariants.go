// Package testkit holds structural checks shared by tests and fuzz harnesses.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"lispc/internal/ast"
	"lispc/internal/hir"
	"lispc/internal/source"
)

// CheckSpanInvariants verifies the spans of a parsed program against its file:
// 1) every span points at sf and lies within its content
// 2) every node other than an empty program has a non-empty span
// 3) children lie inside their parent and do not overlap in source order
func CheckSpanInvariants(prog *ast.Program, sf *source.File) error {
	if prog == nil || sf == nil {
		return fmt.Errorf("nil program or file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if len(prog.Body) == 0 {
		if !prog.Sp.Empty() {
			return fmt.Errorf("empty program has span %v", prog.Sp)
		}
		return checkBounds(prog.Sp, sf.ID, lenContent)
	}
	return checkNode(prog, sf.ID, lenContent)
}

func checkNode(n ast.Node, file source.FileID, lenContent uint32) error {
	sp := n.Span()
	if err := checkBounds(sp, file, lenContent); err != nil {
		return fmt.Errorf("%s: %w", n.Kind(), err)
	}
	if sp.Empty() {
		return fmt.Errorf("%s has empty span %v", n.Kind(), sp)
	}
	if call, ok := n.(*ast.CallExpression); ok && !sp.Contains(call.NameSp) {
		return fmt.Errorf("call %s: name span %v outside %v", call.Name, call.NameSp, sp)
	}

	var prev source.Span
	for i, c := range ast.Children(n) {
		csp := c.Span()
		if !sp.Contains(csp) {
			return fmt.Errorf("%s child %d span %v outside parent %v", n.Kind(), i, csp, sp)
		}
		if i > 0 && csp.Start < prev.End {
			return fmt.Errorf("%s child %d span %v overlaps previous %v", n.Kind(), i, csp, prev)
		}
		if err := checkNode(c, file, lenContent); err != nil {
			return err
		}
		prev = csp
	}
	return nil
}

func checkBounds(sp source.Span, file source.FileID, lenContent uint32) error {
	if sp.File != file {
		return fmt.Errorf("span points to different file id: got=%d want=%d", sp.File, file)
	}
	if sp.Start > sp.End || sp.End > lenContent {
		return fmt.Errorf("span %v beyond content length %d", sp, lenContent)
	}
	return nil
}

// CheckLoweredShape verifies that a target tree mirrors the source tree it was
// lowered from: top-level calls are wrapped in statements, nothing else is,
// and every node keeps the span of its source node.
func CheckLoweredShape(src *ast.Program, dst *hir.Program) error {
	if src == nil || dst == nil {
		return fmt.Errorf("nil program")
	}
	if src.Sp != dst.Sp {
		return fmt.Errorf("program span %v, want %v", dst.Sp, src.Sp)
	}
	if len(src.Body) != len(dst.Body) {
		return fmt.Errorf("program has %d elements, want %d", len(dst.Body), len(src.Body))
	}
	for i, s := range src.Body {
		d := dst.Body[i]
		if _, isCall := s.(*ast.CallExpression); isCall {
			stmt, ok := d.(*hir.ExpressionStatement)
			if !ok {
				return fmt.Errorf("top-level element %d is %s, want ExpressionStatement", i, d.Kind())
			}
			d = stmt.Expression
		}
		if err := sameShape(s, d); err != nil {
			return fmt.Errorf("top-level element %d: %w", i, err)
		}
	}
	return nil
}

func sameShape(s ast.Node, d hir.Node) error {
	if s.Span() != d.Span() {
		return fmt.Errorf("%s span %v, want %v", d.Kind(), d.Span(), s.Span())
	}
	switch s := s.(type) {
	case *ast.NumberLiteral:
		if n, ok := d.(*hir.NumberLiteral); !ok || n.Value != s.Value {
			return fmt.Errorf("got %s, want NumberLiteral %s", d.Kind(), s.Value)
		}
	case *ast.StringLiteral:
		if n, ok := d.(*hir.StringLiteral); !ok || n.Value != s.Value {
			return fmt.Errorf("got %s, want StringLiteral %q", d.Kind(), s.Value)
		}
	case *ast.CallExpression:
		c, ok := d.(*hir.CallExpression)
		if !ok {
			return fmt.Errorf("got %s, want CallExpression %s", d.Kind(), s.Name)
		}
		if c.Callee == nil || c.Callee.Name != s.Name {
			return fmt.Errorf("callee mismatch for %s", s.Name)
		}
		if len(c.Arguments) != len(s.Params) {
			return fmt.Errorf("%s has %d arguments, want %d", s.Name, len(c.Arguments), len(s.Params))
		}
		for i, p := range s.Params {
			if _, wrapped := c.Arguments[i].(*hir.ExpressionStatement); wrapped {
				return fmt.Errorf("%s argument %d is wrapped in a statement", s.Name, i)
			}
			if err := sameShape(p, c.Arguments[i]); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unexpected source node %s", s.Kind())
	}
	return nil
}
