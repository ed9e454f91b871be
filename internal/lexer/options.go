package lexer

import (
	"lispc/internal/diag"
)

type Options struct {
	// Reporter receives the diagnostic of the first lexical error; may be nil.
	Reporter diag.Reporter
}
