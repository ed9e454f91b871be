package parser

import (
	"fmt"

	"lispc/internal/diag"
	"lispc/internal/source"
	"lispc/internal/token"
)

// Error is a fatal syntax error. The parser never recovers from one.
type Error struct {
	Code diag.Code
	Span source.Span
	// Token is the token the parser was looking at; EOF at end of input.
	Token token.Token
	Msg   string
	Notes []diag.Note
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Span.Start, e.Msg)
}

// Diagnostic converts the error into a diag record.
func (e *Error) Diagnostic() diag.Diagnostic {
	d := diag.NewError(e.Code, e.Span, e.Msg)
	for _, n := range e.Notes {
		d = d.WithNote(n.Span, n.Msg)
	}
	return d
}

func (p *Parser) fail(code diag.Code, sp source.Span, msg string, notes ...diag.Note) *Error {
	err := &Error{Code: code, Span: sp, Token: p.peek(), Msg: msg, Notes: notes}
	err.Diagnostic().Emit(p.opts.Reporter)
	return err
}
