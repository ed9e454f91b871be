package diagfmt

import (
	"fmt"
	"io"
	"strconv"

	"lispc/internal/ast"
	"lispc/internal/hir"
	"lispc/internal/source"
)

// ASTNodeOutput is the JSON form of a node of either tree.
type ASTNodeOutput struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	Span     SpanOutput      `json:"span"`
	Children []ASTNodeOutput `json:"children,omitempty"`
}

// SpanOutput is a byte range.
type SpanOutput struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

type treeNode struct {
	kind     string
	text     string
	span     source.Span
	children []*treeNode
}

func astTree(n ast.Node) *treeNode {
	node := &treeNode{kind: n.Kind().String(), span: n.Span()}
	switch n := n.(type) {
	case *ast.NumberLiteral:
		node.text = n.Value
	case *ast.StringLiteral:
		node.text = strconv.Quote(n.Value)
	case *ast.CallExpression:
		node.text = n.Name
	}
	for _, c := range ast.Children(n) {
		node.children = append(node.children, astTree(c))
	}
	return node
}

func hirTree(n hir.Node) *treeNode {
	node := &treeNode{kind: n.Kind().String(), span: n.Span()}
	switch n := n.(type) {
	case *hir.Program:
		for _, c := range n.Body {
			node.children = append(node.children, hirTree(c))
		}
	case *hir.ExpressionStatement:
		node.children = append(node.children, hirTree(n.Expression))
	case *hir.CallExpression:
		if n.Callee != nil {
			node.children = append(node.children, hirTree(n.Callee))
		}
		for _, c := range n.Arguments {
			node.children = append(node.children, hirTree(c))
		}
	case *hir.Identifier:
		node.text = n.Name
	case *hir.NumberLiteral:
		node.text = n.Value
	case *hir.StringLiteral:
		node.text = strconv.Quote(n.Value)
	}
	return node
}

// FormatASTPretty prints the source tree with box-drawing connectors and the
// position of every node. fs may be nil, spans are then shown as byte offsets.
func FormatASTPretty(w io.Writer, prog *ast.Program, fs *source.FileSet) error {
	if prog == nil {
		return fmt.Errorf("no program")
	}
	return printTree(w, astTree(prog), fs)
}

// FormatHIRPretty prints the target tree like FormatASTPretty.
func FormatHIRPretty(w io.Writer, prog *hir.Program, fs *source.FileSet) error {
	if prog == nil {
		return fmt.Errorf("no program")
	}
	return printTree(w, hirTree(prog), fs)
}

// FormatASTJSON writes the source tree as nested JSON objects.
func FormatASTJSON(w io.Writer, prog *ast.Program) error {
	if prog == nil {
		return fmt.Errorf("no program")
	}
	return writeJSON(w, treeJSON(astTree(prog)))
}

// FormatHIRJSON writes the target tree as nested JSON objects.
func FormatHIRJSON(w io.Writer, prog *hir.Program) error {
	if prog == nil {
		return fmt.Errorf("no program")
	}
	return writeJSON(w, treeJSON(hirTree(prog)))
}

func treeJSON(n *treeNode) ASTNodeOutput {
	out := ASTNodeOutput{
		Type: n.kind,
		Text: n.text,
		Span: SpanOutput{Start: n.span.Start, End: n.span.End},
	}
	for _, c := range n.children {
		out.Children = append(out.Children, treeJSON(c))
	}
	return out
}

func printTree(w io.Writer, root *treeNode, fs *source.FileSet) error {
	if _, err := fmt.Fprintln(w, nodeLabel(root, fs)); err != nil {
		return err
	}
	return printChildren(w, root, fs, "")
}

func printChildren(w io.Writer, n *treeNode, fs *source.FileSet, prefix string) error {
	for i, c := range n.children {
		branch, next := "├─ ", "│  "
		if i == len(n.children)-1 {
			branch, next = "└─ ", "   "
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", prefix, branch, nodeLabel(c, fs)); err != nil {
			return err
		}
		if err := printChildren(w, c, fs, prefix+next); err != nil {
			return err
		}
	}
	return nil
}

func nodeLabel(n *treeNode, fs *source.FileSet) string {
	label := n.kind
	if n.text != "" {
		label += " " + n.text
	}
	return fmt.Sprintf("%s (span: %s)", label, formatSpan(n.span, fs))
}

func formatSpan(span source.Span, fs *source.FileSet) string {
	if fs == nil {
		return fmt.Sprintf("%d..%d", span.Start, span.End)
	}
	start, end := fs.Resolve(span)
	return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
}
