package diagfmt

import (
	"fmt"
	"io"

	"lispc/internal/source"
	"lispc/internal/token"
)

// TokenOutput is the JSON form of a token.
type TokenOutput struct {
	Kind  string `json:"kind"`
	Text  string `json:"text"`
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
	Line  uint32 `json:"line"`
	Col   uint32 `json:"col"`
}

// FormatTokensPretty prints one token per line with its position.
func FormatTokensPretty(w io.Writer, tokens []token.Token, fs *source.FileSet) error {
	for i, tok := range tokens {
		startPos, endPos := fs.Resolve(tok.Span)
		if _, err := fmt.Fprintf(w, "%3d: %-8s %-12q at %d:%d-%d:%d\n",
			i+1, tok.Kind, tok.Text,
			startPos.Line, startPos.Col,
			endPos.Line, endPos.Col); err != nil {
			return err
		}
	}
	return nil
}

// FormatTokensJSON writes the tokens as a JSON array.
func FormatTokensJSON(w io.Writer, tokens []token.Token, fs *source.FileSet) error {
	output := make([]TokenOutput, 0, len(tokens))
	for _, tok := range tokens {
		pos, _ := fs.Resolve(tok.Span)
		output = append(output, TokenOutput{
			Kind:  tok.Kind.String(),
			Text:  tok.Text,
			Start: tok.Span.Start,
			End:   tok.Span.End,
			Line:  pos.Line,
			Col:   pos.Col,
		})
	}
	return writeJSON(w, output)
}
