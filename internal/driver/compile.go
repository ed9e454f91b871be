package driver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"lispc/internal/ast"
	"lispc/internal/codegen"
	"lispc/internal/diag"
	"lispc/internal/hir"
	"lispc/internal/lexer"
	"lispc/internal/observ"
	"lispc/internal/parser"
	"lispc/internal/source"
	"lispc/internal/token"
	"lispc/internal/trace"
)

// Options configure one run of the pipeline.
type Options struct {
	// MaxDiagnostics caps the result bag; <= 0 means unlimited.
	MaxDiagnostics int
	// MaxDepth bounds call nesting in the parser; 0 means unbounded.
	MaxDepth int
	// Cache, when set, short-circuits compilations of already seen sources.
	Cache *DiskCache
	// Observer receives stage boundaries; may be nil.
	Observer PhaseObserver
	// BaseDir is used to print paths relative to it.
	BaseDir string
}

// CompileResult is everything a caller may want to report about a compilation.
// On failure Output is empty and Bag holds exactly one error.
type CompileResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	AST     *ast.Program
	HIR     *hir.Program
	Output  string
	Bag     *diag.Bag
	Timer   *observ.Timer
	// Cached is true when Output came from the disk cache; the trees and
	// tokens are then nil.
	Cached bool
}

// diagnosable is implemented by every stage error.
type diagnosable interface {
	error
	Diagnostic() diag.Diagnostic
}

// Compile loads path and runs the whole pipeline on it. The returned error is
// non-nil for I/O failures (result is nil) and for stage failures (result
// holds the diagnostic).
func Compile(ctx context.Context, path string, opts Options) (*CompileResult, error) {
	fs := newFileSet(opts)
	timer := observ.NewTimer()
	idx := timer.Begin(PhaseLoad)
	id, err := fs.Load(path)
	timer.End(idx, "")
	if err != nil {
		return nil, &PhaseError{Phase: PhaseLoad, Err: fmt.Errorf("%s: %w", path, err)}
	}
	return compileFile(ctx, fs, fs.Get(id), timer, opts)
}

// CompileSource runs the pipeline on an in-memory source such as stdin.
func CompileSource(ctx context.Context, name string, content []byte, opts Options) (*CompileResult, error) {
	fs := newFileSet(opts)
	id := fs.AddVirtual(name, content)
	return compileFile(ctx, fs, fs.Get(id), observ.NewTimer(), opts)
}

func newFileSet(opts Options) *source.FileSet {
	if opts.BaseDir != "" {
		return source.NewFileSetWithBase(opts.BaseDir)
	}
	return source.NewFileSet()
}

func compileFile(ctx context.Context, fs *source.FileSet, file *source.File, timer *observ.Timer, opts Options) (*CompileResult, error) {
	res := &CompileResult{
		FileSet: fs,
		File:    file,
		Bag:     diag.NewBag(opts.MaxDiagnostics),
		Timer:   timer,
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	tracer := trace.FromContext(ctx)
	root := trace.BeginFile(tracer, trace.ScopeDriver, "compile", file.Path, trace.CurrentSpan(ctx))
	status := "ok"
	defer func() { root.End(status) }()

	var key CacheKey
	if opts.Cache != nil {
		key = MakeCacheKey(file.Content, opts.MaxDepth)
		var payload DiskPayload
		hit, err := opts.Cache.Get(key, &payload)
		if err == nil && hit {
			res.Output = payload.Output
			res.Cached = true
			status = "cached"
			return res, nil
		}
		// an unreadable entry is recompiled and overwritten
	}

	r := &runner{res: res, tracer: tracer, parent: root.Context(), observer: opts.Observer}

	err := r.lex()
	if err == nil {
		err = r.parse(opts.MaxDepth)
	}
	if err == nil {
		err = r.lower()
	}
	if err == nil {
		err = r.emit()
	}
	if err != nil {
		status = "error"
		return res, err
	}

	if opts.Cache != nil {
		st := ast.Measure(res.AST)
		payload := &DiskPayload{Path: file.Path, Output: res.Output, Calls: st.Calls, Depth: st.MaxDepth}
		if err := opts.Cache.Put(key, payload); err != nil {
			trace.Point(tracer, trace.ScopePass, "cache", "put failed: "+err.Error(), root.Context())
		}
	}
	return res, nil
}

// runner times one stage, traces it, notifies the observer and turns a stage
// error into a diagnostic in the result bag.
type runner struct {
	res      *CompileResult
	tracer   trace.Tracer
	parent   trace.SpanContext
	observer PhaseObserver
}

func (r *runner) phase(name string, fn func(sc trace.SpanContext) (string, error)) error {
	if r.observer != nil {
		r.observer(PhaseEvent{Name: name, Status: PhaseStart})
	}
	span := trace.Begin(r.tracer, trace.ScopePass, name, r.parent)
	idx := r.res.Timer.Begin(name)
	start := time.Now()

	note, err := fn(span.Context())

	r.res.Timer.End(idx, note)
	span.End(note)
	if r.observer != nil {
		r.observer(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: time.Since(start)})
	}
	if err == nil {
		return nil
	}
	var d diagnosable
	if errors.As(err, &d) {
		r.res.Bag.Add(d.Diagnostic())
	}
	return &PhaseError{Phase: name, Err: err}
}

func (r *runner) lex() error {
	return r.phase(PhaseLex, func(trace.SpanContext) (string, error) {
		toks, err := lexer.Tokenize(r.res.File, lexer.Options{})
		r.res.Tokens = toks
		return strconv.Itoa(len(toks)) + " tokens", err
	})
}

func (r *runner) parse(maxDepth int) error {
	return r.phase(PhaseParse, func(trace.SpanContext) (string, error) {
		prog, err := parser.Parse(r.res.Tokens, parser.Options{MaxDepth: maxDepth})
		if err != nil {
			return "", err
		}
		if len(r.res.Tokens) == 0 {
			prog.Sp = source.Span{File: r.res.File.ID}
		}
		r.res.AST = prog
		return strconv.Itoa(ast.Measure(prog).Calls) + " calls", nil
	})
}

func (r *runner) lower() error {
	return r.phase(PhaseLower, func(sc trace.SpanContext) (string, error) {
		out, err := hir.Lower(r.res.AST)
		r.res.HIR = out
		if err != nil {
			return "", err
		}
		if r.tracer.Level().ShouldEmit(trace.ScopeNode) {
			for _, n := range out.Body {
				start, _ := r.res.FileSet.Resolve(n.Span())
				trace.Point(r.tracer, trace.ScopeNode, n.Kind().String(), fmt.Sprintf("%d:%d", start.Line, start.Col), sc)
			}
		}
		return strconv.Itoa(len(out.Body)) + " statements", nil
	})
}

func (r *runner) emit() error {
	return r.phase(PhaseEmit, func(trace.SpanContext) (string, error) {
		out, err := codegen.Generate(r.res.HIR)
		r.res.Output = out
		return strconv.Itoa(len(out)) + " bytes", err
	})
}
