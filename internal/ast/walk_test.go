package ast

import (
	"errors"
	"strings"
	"testing"

	"lispc/internal/diag"
	"lispc/internal/source"
)

// (add 2 (subtract 4 "x"))
func sampleTree() *Program {
	inner := &CallExpression{
		Name:   "subtract",
		Params: []Node{&NumberLiteral{Value: "4"}, &StringLiteral{Value: "x"}},
	}
	outer := &CallExpression{
		Name:   "add",
		Params: []Node{&NumberLiteral{Value: "2"}, inner},
	}
	return &Program{Body: []Node{outer}}
}

func label(n Node) string {
	switch n := n.(type) {
	case *Program:
		return "Program"
	case *CallExpression:
		return n.Name
	case *NumberLiteral:
		return n.Value
	case *StringLiteral:
		return `"` + n.Value + `"`
	case nil:
		return "nil"
	default:
		return "?"
	}
}

func TestTraverseOrder(t *testing.T) {
	var events []string
	rec := Methods[int]{
		Enter: func(n, parent Node, depth int) (int, error) {
			events = append(events, "enter "+label(n)+" <"+label(parent)+">")
			return depth + 1, nil
		},
		Exit: func(n, parent Node, depth int) error {
			events = append(events, "exit "+label(n))
			return nil
		},
	}
	v := Visitor[int]{
		KindProgram:        rec,
		KindCallExpression: rec,
		KindNumberLiteral:  rec,
		KindStringLiteral:  rec,
	}
	if err := Traverse(Node(sampleTree()), v, 0); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"enter Program <nil>",
		"enter add <Program>",
		"enter 2 <add>",
		"exit 2",
		"enter subtract <add>",
		"enter 4 <subtract>",
		"exit 4",
		`enter "x" <subtract>`,
		`exit "x"`,
		"exit subtract",
		"exit add",
		"exit Program",
	}
	if strings.Join(events, "\n") != strings.Join(want, "\n") {
		t.Errorf("events:\n%s\nwant:\n%s", strings.Join(events, "\n"), strings.Join(want, "\n"))
	}
}

func TestTraverseContextPerLevel(t *testing.T) {
	depths := map[string]int{}
	v := Visitor[int]{
		KindCallExpression: {
			Enter: func(n, _ Node, depth int) (int, error) {
				depths[label(n)] = depth
				return depth + 1, nil
			},
			Exit: func(n, _ Node, depth int) error {
				if depths[label(n)] != depth {
					t.Errorf("exit %s got ctx %d, enter had %d", label(n), depth, depths[label(n)])
				}
				return nil
			},
		},
		KindNumberLiteral: {
			Enter: func(n, _ Node, depth int) (int, error) {
				depths[label(n)] = depth
				return depth, nil
			},
		},
	}
	if err := Traverse(Node(sampleTree()), v, 0); err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"add": 0, "2": 1, "subtract": 1, "4": 2}
	for k, d := range want {
		if depths[k] != d {
			t.Errorf("%s depth = %d, want %d", k, depths[k], d)
		}
	}
}

func TestTraverseEmptyVisitor(t *testing.T) {
	if err := Traverse(Node(sampleTree()), Visitor[struct{}]{}, struct{}{}); err != nil {
		t.Fatalf("empty visitor: %v", err)
	}
}

func TestTraverseStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	var seen []string
	v := Visitor[struct{}]{
		KindNumberLiteral: {
			Enter: func(n, _ Node, ctx struct{}) (struct{}, error) {
				seen = append(seen, label(n))
				return ctx, boom
			},
		},
	}
	err := Traverse(Node(sampleTree()), v, struct{}{})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if len(seen) != 1 || seen[0] != "2" {
		t.Errorf("walk continued after error: %v", seen)
	}
}

func TestTraverseDoesNotMutate(t *testing.T) {
	tree := sampleTree()
	before := Measure(tree)
	v := Visitor[int]{
		KindCallExpression: {Enter: func(_, _ Node, c int) (int, error) { return c + 1, nil }},
	}
	for range 2 {
		if err := Traverse(Node(tree), v, 0); err != nil {
			t.Fatal(err)
		}
	}
	if after := Measure(tree); after != before {
		t.Errorf("tree changed: %+v -> %+v", before, after)
	}
	if tree.Body[0].(*CallExpression).Params[1].(*CallExpression).Name != "subtract" {
		t.Error("inner call changed")
	}
}

type bogusNode struct{ Node }

func (bogusNode) Kind() Kind        { return Kind(200) }
func (bogusNode) Span() source.Span { return source.Span{Start: 3, End: 4} }

func TestTraverseUnknownNode(t *testing.T) {
	tests := []struct {
		name string
		tree Node
	}{
		{"nil root", nil},
		{"nil child", &Program{Body: []Node{nil}}},
		{"foreign kind", &Program{Body: []Node{bogusNode{}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Traverse(tt.tree, Visitor[int]{}, 0)
			var unk *UnknownNodeError
			if !errors.As(err, &unk) {
				t.Fatalf("err = %v, want *UnknownNodeError", err)
			}
			if d := unk.Diagnostic(); d.Code != diag.IntUnknownNode {
				t.Errorf("code = %v", d.Code)
			}
			if unk.Error() == "" {
				t.Error("empty message")
			}
		})
	}
}

func TestMeasure(t *testing.T) {
	tests := []struct {
		name string
		tree Node
		want Stats
	}{
		{"empty program", &Program{}, Stats{}},
		{"nested", sampleTree(), Stats{Calls: 2, MaxDepth: 2}},
		{"siblings", &Program{Body: []Node{
			&CallExpression{Name: "a"},
			&CallExpression{Name: "b", Params: []Node{&CallExpression{Name: "c"}}},
			&NumberLiteral{Value: "1"},
		}}, Stats{Calls: 3, MaxDepth: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Measure(tt.tree); got != tt.want {
				t.Errorf("Measure = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	if KindCallExpression.String() != "CallExpression" {
		t.Errorf("got %q", KindCallExpression.String())
	}
	if Kind(99).String() != "Unknown" {
		t.Errorf("got %q", Kind(99).String())
	}
}
