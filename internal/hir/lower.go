package hir

import (
	"lispc/internal/ast"
)

// cursor is the slice the next produced node is appended to. It is threaded
// through the traversal as the per-level context.
type cursor = *[]Node

// Lower transforms a source AST into the target AST:
//   - calls become Callee/Arguments pairs with an Identifier callee
//   - calls directly under the program are wrapped in ExpressionStatement
//
// Literal values and nesting are preserved as is. The source tree is not
// modified.
func Lower(prog *ast.Program) (*Program, error) {
	if prog == nil {
		return nil, &ast.UnknownNodeError{}
	}
	out := &Program{Body: make([]Node, 0, len(prog.Body)), Sp: prog.Sp}
	if err := ast.Traverse(ast.Node(prog), lowerVisitor, cursor(&out.Body)); err != nil {
		return nil, err
	}
	return out, nil
}

var lowerVisitor = ast.Visitor[cursor]{
	ast.KindNumberLiteral:  {Enter: lowerNumber},
	ast.KindStringLiteral:  {Enter: lowerString},
	ast.KindCallExpression: {Enter: lowerCall},
}

func lowerNumber(n, _ ast.Node, out cursor) (cursor, error) {
	lit := n.(*ast.NumberLiteral)
	*out = append(*out, &NumberLiteral{Value: lit.Value, Sp: lit.Sp})
	return out, nil
}

func lowerString(n, _ ast.Node, out cursor) (cursor, error) {
	lit := n.(*ast.StringLiteral)
	*out = append(*out, &StringLiteral{Value: lit.Value, Sp: lit.Sp})
	return out, nil
}

func lowerCall(n, parent ast.Node, out cursor) (cursor, error) {
	src := n.(*ast.CallExpression)
	call := &CallExpression{
		Callee:    &Identifier{Name: src.Name, Sp: src.NameSp},
		Arguments: make([]Node, 0, len(src.Params)),
		Sp:        src.Sp,
	}
	if _, nested := parent.(*ast.CallExpression); nested {
		*out = append(*out, call)
	} else {
		*out = append(*out, &ExpressionStatement{Expression: call, Sp: src.Sp})
	}
	return &call.Arguments, nil
}
