package lexer

import (
	"fmt"

	"lispc/internal/diag"
	"lispc/internal/source"
)

// Error is a fatal lexical error. The lexer never recovers from one.
type Error struct {
	Code diag.Code
	Span source.Span
	Pos  source.LineCol
	// Char is the offending character for LexUnknownChar, zero otherwise.
	Char rune
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("lex error at %d:%d: %s", e.Pos.Line, e.Pos.Col, e.Msg)
}

// Diagnostic converts the error into a diag record.
func (e *Error) Diagnostic() diag.Diagnostic {
	return diag.NewError(e.Code, e.Span, e.Msg)
}

func (lx *Lexer) fail(code diag.Code, sp source.Span, ch rune, msg string) *Error {
	err := &Error{Code: code, Span: sp, Pos: lx.file.Position(sp.Start), Char: ch, Msg: msg}
	lx.err = err
	err.Diagnostic().Emit(lx.opts.Reporter)
	return err
}
