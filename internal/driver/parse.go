package driver

import (
	"context"
	"fmt"

	"lispc/internal/ast"
	"lispc/internal/diag"
	"lispc/internal/hir"
	"lispc/internal/observ"
	"lispc/internal/source"
	"lispc/internal/trace"
)

type ParseResult struct {
	FileSet *source.FileSet
	File    *source.File
	AST     *ast.Program
	// HIR is set only when lowering was requested.
	HIR   *hir.Program
	Bag   *diag.Bag
	Timer *observ.Timer
}

// Parse loads path, lexes and parses it, and lowers the tree when lower is
// set. It stops at the first failing stage.
func Parse(ctx context.Context, path string, lower bool, opts Options) (*ParseResult, error) {
	fs := newFileSet(opts)
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, &PhaseError{Phase: PhaseLoad, Err: fmt.Errorf("%s: %w", path, err)}
	}
	file := fs.Get(fileID)

	res := &CompileResult{FileSet: fs, File: file, Bag: diag.NewBag(opts.MaxDiagnostics), Timer: observ.NewTimer()}
	tracer := trace.FromContext(ctx)
	root := trace.BeginFile(tracer, trace.ScopeDriver, "parse", file.Path, trace.CurrentSpan(ctx))
	defer root.End("")

	r := &runner{res: res, tracer: tracer, parent: root.Context(), observer: opts.Observer}
	err = r.lex()
	if err == nil {
		err = r.parse(opts.MaxDepth)
	}
	if err == nil && lower {
		err = r.lower()
	}

	return &ParseResult{
		FileSet: fs,
		File:    file,
		AST:     res.AST,
		HIR:     res.HIR,
		Bag:     res.Bag,
		Timer:   res.Timer,
	}, err
}
