package parser

import (
	"lispc/internal/source"
	"lispc/internal/token"
)

func (p *Parser) atEnd() bool {
	return p.pos >= len(p.toks)
}

// peek returns the current token, or a synthetic EOF past the end.
func (p *Parser) peek() token.Token {
	if p.atEnd() {
		return token.Token{Kind: token.EOF, Span: p.endSpan()}
	}
	return p.toks[p.pos]
}

// advance consumes the current token and updates lastSpan.
func (p *Parser) advance() token.Token {
	tok := p.peek()
	if !p.atEnd() {
		p.pos++
		p.lastSpan = tok.Span
	}
	return tok
}

// endSpan is a zero-width span right after the last consumed token.
func (p *Parser) endSpan() source.Span {
	return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
}
