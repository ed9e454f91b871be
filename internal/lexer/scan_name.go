package lexer

import (
	"fmt"
	"unicode/utf8"

	"lispc/internal/diag"
	"lispc/internal/token"
)

// scanNumber reads a run of ASCII digits. No sign, fraction or exponent.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	for isDigit(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.Number, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

// scanName reads a run of ASCII letters; case is preserved.
func (lx *Lexer) scanName() token.Token {
	start := lx.cursor.Mark()
	for isLetter(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.Name, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

func (lx *Lexer) unknownChar() (token.Token, error) {
	start := lx.cursor.Mark()
	r, size := utf8.DecodeRune(lx.file.Content[lx.cursor.Off:lx.cursor.Limit])
	for range size {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	msg := fmt.Sprintf("unrecognized character %q at offset %d", r, sp.Start)
	return token.Token{Kind: token.Invalid, Span: sp}, lx.fail(diag.LexUnknownChar, sp, r, msg)
}
