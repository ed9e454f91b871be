package token

import (
	"lispc/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsOpen reports whether the token is an opening paren.
func (t Token) IsOpen() bool { return t.Kind == Paren && t.Text == "(" }

// IsClose reports whether the token is a closing paren.
func (t Token) IsClose() bool { return t.Kind == Paren && t.Text == ")" }

// IsLiteral reports whether the token is a number or string literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case Number, String:
		return true
	default:
		return false
	}
}

// Describe returns a short human-readable form used in diagnostics.
func (t Token) Describe() string {
	switch t.Kind {
	case EOF:
		return "end of input"
	case String:
		return "string \"" + t.Text + "\""
	case Paren:
		return "'" + t.Text + "'"
	default:
		return t.Kind.String() + " '" + t.Text + "'"
	}
}
