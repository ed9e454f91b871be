package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"lispc/internal/diag"
	"lispc/internal/lexer"
	"lispc/internal/parser"
	"lispc/internal/trace"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCompileSource(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"(add 2 (subtract 4 2))", "add(2, subtract(4, 2));"},
		{"(a 1)(b 2)", "a(1);\nb(2);"},
		{"(noop)", "noop();"},
		{`(print "hi")`, `print("hi");`},
		{"(p \"a\r\nb\")", "p(\"a\r\nb\");"},
		{"(a 1)\r\n(b 2)\r\n", "a(1);\nb(2);"},
		{"", ""},
	}
	for _, tt := range tests {
		res, err := CompileSource(context.Background(), "stdin", []byte(tt.src), Options{})
		if err != nil {
			t.Fatalf("CompileSource(%q): %v", tt.src, err)
		}
		if res.Output != tt.want {
			t.Errorf("CompileSource(%q) = %q, want %q", tt.src, res.Output, tt.want)
		}
		if res.Bag.Len() != 0 {
			t.Errorf("unexpected diagnostics: %v", res.Bag.Items())
		}
	}
}

func TestCompileStageErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		code   diag.Code
		target any
	}{
		{"lex", "{add 2}", diag.LexUnknownChar, new(*lexer.Error)},
		{"unterminated", `(p "x`, diag.LexUnterminatedString, new(*lexer.Error)},
		{"unclosed", "(add 2", diag.SynUnclosedParen, new(*parser.Error)},
		{"no name", "(1 2)", diag.SynExpectName, new(*parser.Error)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := CompileSource(context.Background(), "stdin", []byte(tt.src), Options{})
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.As(err, tt.target) {
				t.Errorf("err %v does not unwrap to %T", err, tt.target)
			}
			if res == nil || res.Output != "" {
				t.Fatalf("result = %+v", res)
			}
			if res.Bag.Len() != 1 || res.Bag.Items()[0].Code != tt.code {
				t.Errorf("bag = %v, want one %s", res.Bag.Items(), tt.code.ID())
			}
		})
	}
}

func TestCompileMaxDepth(t *testing.T) {
	_, err := CompileSource(context.Background(), "x", []byte("(a (b (c)))"), Options{MaxDepth: 2})
	var perr *parser.Error
	if !errors.As(err, &perr) || perr.Code != diag.SynNestingTooDeep {
		t.Fatalf("err = %v", err)
	}
}

func TestCompileTimerAndObserver(t *testing.T) {
	var events []string
	opts := Options{Observer: func(ev PhaseEvent) {
		if ev.Status == PhaseEnd {
			events = append(events, ev.Name)
		}
	}}
	res, err := CompileSource(context.Background(), "x", []byte("(f 1)"), opts)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{PhaseLex, PhaseParse, PhaseLower, PhaseEmit}
	if strings.Join(events, ",") != strings.Join(want, ",") {
		t.Errorf("observer saw %v, want %v", events, want)
	}
	if n := len(res.Timer.Report().Phases); n != 4 {
		t.Errorf("timer has %d phases", n)
	}
}

func TestCompileTraceSpans(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelPhase)
	ctx := trace.WithTracer(context.Background(), ring)
	if _, err := CompileSource(ctx, "x", []byte("(f 1)"), Options{}); err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanBegin {
			names = append(names, ev.Name)
		}
	}
	want := "compile,lex,parse,lower,emit"
	if strings.Join(names, ",") != want {
		t.Errorf("spans = %v, want %s", names, want)
	}
}

func TestCompileTraceNodesAtDebug(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	if _, err := CompileSource(ctx, "x.lisp", []byte("(f 1)\n 7"), Options{}); err != nil {
		t.Fatal(err)
	}
	var nodes []string
	for _, ev := range ring.Snapshot() {
		if ev.File != "x.lisp" {
			t.Errorf("event %s has file %q", ev.Name, ev.File)
		}
		if ev.Scope == trace.ScopeNode {
			nodes = append(nodes, ev.Name+"@"+ev.Detail)
		}
	}
	want := "ExpressionStatement@1:1,NumberLiteral@2:2"
	if strings.Join(nodes, ",") != want {
		t.Errorf("node events = %v, want %s", nodes, want)
	}
}

func TestCompileLoadError(t *testing.T) {
	res, err := Compile(context.Background(), filepath.Join(t.TempDir(), "missing.lisp"), Options{})
	if err == nil || res != nil {
		t.Fatalf("Compile(missing) = %v, %v", res, err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
	var perr *PhaseError
	if !errors.As(err, &perr) || perr.Phase != PhaseLoad {
		t.Errorf("err = %v, want a %s phase error", err, PhaseLoad)
	}
}

func TestCompileStageErrorPhase(t *testing.T) {
	tests := []struct {
		src   string
		phase string
	}{
		{"{x}", PhaseLex},
		{"(x", PhaseParse},
	}
	for _, tt := range tests {
		_, err := CompileSource(context.Background(), "x", []byte(tt.src), Options{})
		var perr *PhaseError
		if !errors.As(err, &perr) || perr.Phase != tt.phase {
			t.Errorf("CompileSource(%q) err = %v, want phase %s", tt.src, err, tt.phase)
		}
	}
}

func TestCompileCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := CompileSource(ctx, "x", []byte("(f)"), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}

func TestCompileCache(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	src := []byte("(add 2 (subtract 4 2))")
	opts := Options{Cache: cache}

	cold, err := CompileSource(context.Background(), "a", src, opts)
	if err != nil {
		t.Fatal(err)
	}
	if cold.Cached {
		t.Fatal("first compile should not be cached")
	}
	warm, err := CompileSource(context.Background(), "b", src, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !warm.Cached || warm.Output != cold.Output {
		t.Errorf("warm = %+v, cold output %q", warm, cold.Output)
	}

	// a different depth limit is a different key
	other, err := CompileSource(context.Background(), "c", src, Options{Cache: cache, MaxDepth: 5})
	if err != nil {
		t.Fatal(err)
	}
	if other.Cached {
		t.Error("max depth must be part of the cache key")
	}

	// failures are never cached
	for range 2 {
		res, err := CompileSource(context.Background(), "d", []byte("(x"), opts)
		if err == nil || res.Cached {
			t.Fatalf("broken source: %+v, %v", res, err)
		}
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := MakeCacheKey([]byte("(f)"), 0)
	var got DiskPayload
	if hit, err := cache.Get(key, &got); hit || err != nil {
		t.Fatalf("empty cache: %v %v", hit, err)
	}
	if err := cache.Put(key, &DiskPayload{Path: "f.lisp", Output: "f();", Calls: 1, Depth: 1}); err != nil {
		t.Fatal(err)
	}
	hit, err := cache.Get(key, &got)
	if !hit || err != nil {
		t.Fatalf("Get = %v, %v", hit, err)
	}
	if got.Output != "f();" || got.Calls != 1 || got.Schema != diskCacheSchemaVersion {
		t.Errorf("payload = %+v", got)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	if hit, _ := cache.Get(key, &got); hit {
		t.Error("entry survived DropAll")
	}
	if err := cache.Put(key, &DiskPayload{Output: "again"}); err != nil {
		t.Errorf("Put after DropAll: %v", err)
	}
}

func TestNilDiskCache(t *testing.T) {
	var c *DiskCache
	if err := c.Put(CacheKey{}, &DiskPayload{}); err != nil {
		t.Error(err)
	}
	if hit, err := c.Get(CacheKey{}, &DiskPayload{}); hit || err != nil {
		t.Error("nil cache should miss")
	}
}

func TestCacheKeyInputs(t *testing.T) {
	a := MakeCacheKey([]byte("(f)"), 0)
	if a != MakeCacheKey([]byte("(f)"), 0) {
		t.Error("key not deterministic")
	}
	if a == MakeCacheKey([]byte("(g)"), 0) || a == MakeCacheKey([]byte("(f)"), 1) {
		t.Error("key ignores an input")
	}
}

func TestCompileFilesOrderAndIsolation(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := range 12 {
		src := fmt.Sprintf("(f%s %d)", strings.Repeat("x", i), i)
		if i == 5 {
			src = "(broken"
		}
		paths = append(paths, writeFile(t, dir, fmt.Sprintf("m%02d.lisp", i), src))
	}

	for _, jobs := range []int{1, 3, 0} {
		results, err := CompileFiles(context.Background(), paths, jobs, Options{}, nil)
		if err != nil {
			t.Fatal(err)
		}
		for i, r := range results {
			if r.Path != paths[i] {
				t.Fatalf("jobs=%d: result %d is %s", jobs, i, r.Path)
			}
			if i == 5 {
				if r.Err == nil {
					t.Errorf("jobs=%d: broken file compiled", jobs)
				}
				continue
			}
			want := fmt.Sprintf("f%s(%d);", strings.Repeat("x", i), i)
			if r.Err != nil || r.Result.Output != want {
				t.Errorf("jobs=%d file %d: %q, %v; want %q", jobs, i, r.Result.Output, r.Err, want)
			}
		}
	}
}

func TestCompileFilesObserver(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.lisp", "(a)"),
		writeFile(t, dir, "b.lisp", "(b)"),
	}
	var mu sync.Mutex
	ends := map[int]int{}
	_, err := CompileFiles(context.Background(), paths, 2, Options{}, func(i int, _ string, ev PhaseEvent) {
		if ev.Status == PhaseEnd {
			mu.Lock()
			ends[i]++
			mu.Unlock()
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if ends[0] != 4 || ends[1] != 4 {
		t.Errorf("phase ends per file = %v", ends)
	}
}

func TestCompileFilesCancelled(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.lisp", "(a)"),
		writeFile(t, dir, "b.lisp", "(b)"),
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	results, err := CompileFiles(ctx, paths, 1, Options{}, func(i int, _ string, ev PhaseEvent) {
		if i == 0 && ev.Status == PhaseStart && ev.Name == PhaseLex {
			cancel()
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(results) != 2 || results[1].Result != nil {
		t.Errorf("second file ran after cancellation: %+v", results[1])
	}
}

func TestListSources(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.lisp", "")
	writeFile(t, dir, "a.lisp", "")
	writeFile(t, dir, "sub/c.lisp", "")
	writeFile(t, dir, "notes.txt", "")
	files, err := ListSources(dir, ".lisp")
	if err != nil {
		t.Fatal(err)
	}
	var rel []string
	for _, f := range files {
		r, _ := filepath.Rel(dir, f)
		rel = append(rel, filepath.ToSlash(r))
	}
	if strings.Join(rel, ",") != "a.lisp,b.lisp,sub/c.lisp" {
		t.Errorf("files = %v", rel)
	}
}

func TestTokenizeAndParse(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "g.lisp", "(f 1 \"s\")")
	bad := writeFile(t, dir, "b.lisp", "(f 1")

	tr, err := Tokenize(context.Background(), good, Options{})
	if err != nil || len(tr.Tokens) != 5 {
		t.Fatalf("Tokenize = %+v, %v", tr, err)
	}

	pr, err := Parse(context.Background(), good, true, Options{})
	if err != nil || pr.AST == nil || pr.HIR == nil {
		t.Fatalf("Parse = %+v, %v", pr, err)
	}
	pr, err = Parse(context.Background(), good, false, Options{})
	if err != nil || pr.HIR != nil {
		t.Fatalf("Parse without lowering = %+v, %v", pr, err)
	}

	pr, err = Parse(context.Background(), bad, false, Options{})
	if err == nil || pr.AST != nil || pr.Bag.Len() != 1 {
		t.Fatalf("Parse(bad) = %+v, %v", pr, err)
	}
}

func TestGoldenFiles(t *testing.T) {
	dir := filepath.Join("..", "..", "testdata", "golden")
	sources, err := ListSources(dir, ".lisp")
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) == 0 {
		t.Fatal("no golden sources")
	}
	for _, src := range sources {
		t.Run(filepath.Base(src), func(t *testing.T) {
			res, err := Compile(context.Background(), src, Options{})
			if err != nil {
				t.Fatal(err)
			}
			want, err := os.ReadFile(strings.TrimSuffix(src, ".lisp") + ".c")
			if err != nil {
				t.Fatal(err)
			}
			if got := res.Output + "\n"; got != string(want) {
				t.Errorf("output mismatch\ngot:\n%s\nwant:\n%s", got, want)
			}
		})
	}
}
