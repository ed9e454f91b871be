package testkit

import (
	"strings"
	"testing"

	"lispc/internal/ast"
	"lispc/internal/hir"
	"lispc/internal/parser"
	"lispc/internal/source"
)

func parse(t *testing.T, src string) (*ast.Program, *source.File) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("t.lisp", []byte(src)))
	prog, err := parser.ParseFile(file, parser.Options{})
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return prog, file
}

func TestInvariantsHoldForParsedPrograms(t *testing.T) {
	for _, src := range []string{
		"",
		"   \n",
		"(add 2 (subtract 4 2))",
		"1 \"s\" (f)",
		"(a (b (c (d 1 2) \"x\")))\n(e)",
	} {
		prog, file := parse(t, src)
		if err := CheckSpanInvariants(prog, file); err != nil {
			t.Errorf("%q: %v", src, err)
		}
		low, err := hir.Lower(prog)
		if err != nil {
			t.Fatal(err)
		}
		if err := CheckLoweredShape(prog, low); err != nil {
			t.Errorf("%q lowered: %v", src, err)
		}
	}
}

func TestSpanViolations(t *testing.T) {
	prog, file := parse(t, "(f 1 2)")
	call := prog.Body[0].(*ast.CallExpression)

	call.Params[1].(*ast.NumberLiteral).Sp.Start = 1
	err := CheckSpanInvariants(prog, file)
	if err == nil || !strings.Contains(err.Error(), "overlaps") {
		t.Errorf("overlap not detected: %v", err)
	}

	prog, file = parse(t, "(f 1)")
	prog.Body[0].(*ast.CallExpression).Params[0].(*ast.NumberLiteral).Sp.End = 40
	if err := CheckSpanInvariants(prog, file); err == nil {
		t.Error("out-of-bounds span not detected")
	}

	if err := CheckSpanInvariants(nil, file); err == nil {
		t.Error("nil program accepted")
	}
}

func TestLoweredShapeViolations(t *testing.T) {
	prog, _ := parse(t, "(f 1)")
	low, err := hir.Lower(prog)
	if err != nil {
		t.Fatal(err)
	}
	stmt := low.Body[0].(*hir.ExpressionStatement)
	stmt.Expression.(*hir.CallExpression).Callee.Name = "g"
	if err := CheckLoweredShape(prog, low); err == nil {
		t.Error("callee rename not detected")
	}

	low.Body = append(low.Body, &hir.NumberLiteral{Value: "1"})
	if err := CheckLoweredShape(prog, low); err == nil {
		t.Error("extra element not detected")
	}
}
