package parser

import (
	"fmt"

	"lispc/internal/ast"
	"lispc/internal/diag"
	"lispc/internal/token"
)

// parseExpr parses one expression: number, string or call.
func (p *Parser) parseExpr() (ast.Node, error) {
	tok := p.peek()
	switch {
	case tok.IsLiteral():
		p.advance()
		if tok.Kind == token.Number {
			return &ast.NumberLiteral{Value: tok.Text, Sp: tok.Span}, nil
		}
		return &ast.StringLiteral{Value: tok.Text, Sp: tok.Span}, nil
	case tok.IsOpen():
		return p.parseCall()
	default:
		return nil, p.fail(diag.SynUnexpectedToken, tok.Span,
			fmt.Sprintf("expected expression, found %s", tok.Describe()))
	}
}

// parseCall parses `( name expr* )`; the current token is '('.
func (p *Parser) parseCall() (ast.Node, error) {
	open := p.advance()

	p.depth++
	defer func() { p.depth-- }()
	if p.opts.MaxDepth > 0 && p.depth > p.opts.MaxDepth {
		return nil, p.fail(diag.SynNestingTooDeep, open.Span,
			fmt.Sprintf("call nesting exceeds the limit of %d", p.opts.MaxDepth))
	}

	nameTok := p.peek()
	if nameTok.Kind != token.Name {
		if p.atEnd() {
			return nil, p.failUnclosed(open)
		}
		return nil, p.fail(diag.SynExpectName, nameTok.Span,
			fmt.Sprintf("expected function name after '(', found %s", nameTok.Describe()))
	}
	p.advance()

	call := &ast.CallExpression{Name: nameTok.Text, NameSp: nameTok.Span, Params: make([]ast.Node, 0, 2)}
	for !p.peek().IsClose() {
		if p.atEnd() {
			return nil, p.failUnclosed(open)
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		call.Params = append(call.Params, arg)
	}
	closeTok := p.advance()
	call.Sp = open.Span.Cover(closeTok.Span)
	return call, nil
}

func (p *Parser) failUnclosed(open token.Token) error {
	return p.fail(diag.SynUnclosedParen, open.Span, "unclosed '(': reached end of input",
		diag.Note{Span: p.endSpan(), Msg: "input ends here"})
}
