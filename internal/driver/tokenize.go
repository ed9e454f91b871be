package driver

import (
	"context"
	"fmt"

	"lispc/internal/diag"
	"lispc/internal/observ"
	"lispc/internal/source"
	"lispc/internal/token"
	"lispc/internal/trace"
)

type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Bag     *diag.Bag
	Timer   *observ.Timer
}

// Tokenize loads path and lexes it. A lexical error is returned wrapped and
// recorded in Bag; Tokens is then nil.
func Tokenize(ctx context.Context, path string, opts Options) (*TokenizeResult, error) {
	fs := newFileSet(opts)
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, &PhaseError{Phase: PhaseLoad, Err: fmt.Errorf("%s: %w", path, err)}
	}
	file := fs.Get(fileID)

	res := &CompileResult{FileSet: fs, File: file, Bag: diag.NewBag(opts.MaxDiagnostics), Timer: observ.NewTimer()}
	tracer := trace.FromContext(ctx)
	root := trace.BeginFile(tracer, trace.ScopeDriver, "tokenize", file.Path, trace.CurrentSpan(ctx))
	defer root.End("")

	r := &runner{res: res, tracer: tracer, parent: root.Context(), observer: opts.Observer}
	err = r.lex()

	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  res.Tokens,
		Bag:     res.Bag,
		Timer:   res.Timer,
	}, err
}
