package fuzztests

import (
	"errors"
	"testing"

	"lispc/internal/diag"
	"lispc/internal/lexer"
	"lispc/internal/source"
	"lispc/internal/token"
)

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampSeed(input)

		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.lisp", input))

		bag := diag.NewBag(4)
		toks, err := lexer.Tokenize(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
		if err != nil {
			var lerr *lexer.Error
			if !errors.As(err, &lerr) {
				t.Fatalf("error %v is not a *lexer.Error", err)
			}
			if toks != nil || bag.Len() != 1 {
				t.Fatalf("failed tokenize returned %d tokens and %d diagnostics", len(toks), bag.Len())
			}
			return
		}
		if bag.Len() != 0 {
			t.Fatalf("successful tokenize reported %d diagnostics", bag.Len())
		}

		var prevEnd uint32
		for i, tok := range toks {
			if tok.Kind == token.EOF || tok.Kind == token.Invalid {
				t.Fatalf("token %d has kind %s", i, tok.Kind)
			}
			if tok.Span.Start < prevEnd || tok.Span.End <= tok.Span.Start || int(tok.Span.End) > len(file.Content) {
				t.Fatalf("token %d span %v out of order (prev end %d)", i, tok.Span, prevEnd)
			}
			prevEnd = tok.Span.End
		}
	})
}
