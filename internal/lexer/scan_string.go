package lexer

import (
	"lispc/internal/diag"
	"lispc/internal/token"
)

// scanString reads "..." verbatim. There are no escapes, so a literal can
// never contain a quote; newlines are allowed.
func (lx *Lexer) scanString() (token.Token, error) {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '"'
	bodyStart := lx.cursor.Off
	for !lx.cursor.EOF() {
		bodyEnd := lx.cursor.Off
		if lx.cursor.Eat('"') {
			sp := lx.cursor.SpanFrom(start)
			return token.Token{
				Kind: token.String,
				Span: sp,
				Text: string(lx.file.Content[bodyStart:bodyEnd]),
			}, nil
		}
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.Invalid, Span: sp},
		lx.fail(diag.LexUnterminatedString, sp, 0, "unterminated string literal")
}
