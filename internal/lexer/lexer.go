package lexer

import (
	"lispc/internal/source"
	"lispc/internal/token"
)

type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	err    *Error // sticky: once set, Next keeps returning it
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
	}
}

// Tokenize lexes the whole file and returns every token in source order.
// The result never contains EOF or Invalid tokens. On the first malformed
// character it returns nil and the *Error.
func Tokenize(file *source.File, opts Options) ([]token.Token, error) {
	lx := New(file, opts)
	tokens := make([]token.Token, 0, len(file.Content)/2)
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind.IsEOF() {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

// Next returns the next significant token. After EOF it keeps returning EOF;
// after an error it keeps returning the same error with an Invalid token.
func (lx *Lexer) Next() (token.Token, error) {
	if lx.err != nil {
		return token.Token{Kind: token.Invalid, Span: lx.err.Span}, lx.err
	}

	lx.skipWhitespace()

	if lx.cursor.EOF() {
		return token.Token{
			Kind: token.EOF,
			Span: lx.EmptySpan(),
		}, nil
	}

	ch := lx.cursor.Peek()
	switch {
	case ch == '(' || ch == ')':
		start := lx.cursor.Mark()
		lx.cursor.Bump()
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: token.Paren, Span: sp, Text: string(ch)}, nil

	case isDigit(ch):
		return lx.scanNumber(), nil

	case ch == '"':
		return lx.scanString()

	case isLetter(ch):
		return lx.scanName(), nil

	default:
		return lx.unknownChar()
	}
}

// EmptySpan is a zero-width span at the current position.
func (lx *Lexer) EmptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) skipWhitespace() {
	for !lx.cursor.EOF() && isSpace(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
}
