package parser

import (
	"lispc/internal/ast"
	"lispc/internal/diag"
	"lispc/internal/lexer"
	"lispc/internal/source"
	"lispc/internal/token"
)

type Options struct {
	// Reporter receives the diagnostic of the first syntax error; may be nil.
	Reporter diag.Reporter
	// MaxDepth bounds call nesting; 0 means unbounded.
	MaxDepth int
}

// Parser is the state for one token sequence.
type Parser struct {
	toks     []token.Token
	pos      int
	depth    int
	opts     Options
	lastSpan source.Span // span of the last consumed token, for end-of-input diagnostics
}

// Parse builds the source AST from toks. It stops at the first error.
func Parse(toks []token.Token, opts Options) (*ast.Program, error) {
	p := &Parser{toks: toks, opts: opts}
	return p.parseProgram()
}

// ParseFile lexes file and parses the result. Lexer failures are returned
// as *lexer.Error.
func ParseFile(file *source.File, opts Options) (*ast.Program, error) {
	toks, err := lexer.Tokenize(file, lexer.Options{Reporter: opts.Reporter})
	if err != nil {
		return nil, err
	}
	prog, err := Parse(toks, opts)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		prog.Sp = source.Span{File: file.ID}
	}
	return prog, nil
}

// parseProgram collects top-level expressions until the tokens run out.
func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{Body: make([]ast.Node, 0, 4)}
	for !p.atEnd() {
		n, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		prog.Body = append(prog.Body, n)
	}
	if len(p.toks) > 0 {
		prog.Sp = p.toks[0].Span.Cover(p.toks[len(p.toks)-1].Span)
	}
	return prog, nil
}

func (p *Parser) parseTopLevel() (ast.Node, error) {
	if p.peek().IsClose() {
		tok := p.peek()
		return nil, p.fail(diag.SynUnbalancedParen, tok.Span, "unexpected ')' with no matching '('")
	}
	return p.parseExpr()
}
