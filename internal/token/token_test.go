package token_test

import (
	"testing"

	"lispc/internal/source"
	"lispc/internal/token"
)

func tok(k token.Kind, text string) token.Token {
	return token.Token{Kind: k, Span: source.Span{}, Text: text}
}

func TestParenDirection(t *testing.T) {
	open, closing := tok(token.Paren, "("), tok(token.Paren, ")")
	if !open.IsOpen() || open.IsClose() {
		t.Fatalf("'(' misclassified")
	}
	if !closing.IsClose() || closing.IsOpen() {
		t.Fatalf("')' misclassified")
	}
	if tok(token.Name, "(").IsOpen() {
		t.Fatalf("only paren tokens can open a call")
	}
}

func TestIsLiteral(t *testing.T) {
	for _, k := range []token.Kind{token.Number, token.String} {
		if !tok(k, "x").IsLiteral() {
			t.Errorf("%v should be literal", k)
		}
	}
	for _, k := range []token.Kind{token.Name, token.Paren, token.EOF, token.Invalid} {
		if tok(k, "x").IsLiteral() {
			t.Errorf("%v must NOT be literal", k)
		}
	}
}

func TestKindString(t *testing.T) {
	cases := map[token.Kind]string{
		token.Paren:    "paren",
		token.Number:   "number",
		token.String:   "string",
		token.Name:     "name",
		token.EOF:      "eof",
		token.Kind(99): "unknown",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		tok  token.Token
		want string
	}{
		{tok(token.EOF, ""), "end of input"},
		{tok(token.Paren, ")"), "')'"},
		{tok(token.Number, "42"), "number '42'"},
		{tok(token.String, "hi"), "string \"hi\""},
		{tok(token.Name, "add"), "name 'add'"},
	}
	for _, c := range cases {
		if got := c.tok.Describe(); got != c.want {
			t.Errorf("Describe(%v) = %q, want %q", c.tok.Kind, got, c.want)
		}
	}
}
