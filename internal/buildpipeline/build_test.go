package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"lispc/internal/driver"
	"lispc/internal/trace"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func (s *recordingSink) byFile() map[string][]Event {
	out := map[string][]Event{}
	for _, ev := range s.events {
		out[ev.File] = append(out[ev.File], ev)
	}
	return out
}

func TestBuildWritesOutputs(t *testing.T) {
	src := writeTree(t, map[string]string{
		"main.lisp":      "(add 2 (subtract 4 2))",
		"lib/print.lisp": `(print "hi") (exit 0)`,
		"lib/README.txt": "not a source",
		"lib/empty.lisp": "",
	})
	out := filepath.Join(t.TempDir(), "build")

	for _, jobs := range []int{1, 4} {
		res, err := Build(context.Background(), &BuildRequest{SrcDir: src, OutDir: out, Jobs: jobs})
		if err != nil {
			t.Fatalf("jobs=%d: %v", jobs, err)
		}
		want := []string{"lib/empty.lisp", "lib/print.lisp", "main.lisp"}
		if diff := cmp.Diff(want, res.Names()); diff != "" {
			t.Fatalf("jobs=%d names (-want +got):\n%s", jobs, diff)
		}
		if res.Failed != 0 {
			t.Errorf("failed = %d", res.Failed)
		}
		if got := readFile(t, filepath.Join(out, "main.c")); got != "add(2, subtract(4, 2));\n" {
			t.Errorf("main.c = %q", got)
		}
		if got := readFile(t, filepath.Join(out, "lib", "print.c")); got != "print(\"hi\");\nexit(0);\n" {
			t.Errorf("print.c = %q", got)
		}
		if got := readFile(t, filepath.Join(out, "lib", "empty.c")); got != "" {
			t.Errorf("empty.c = %q", got)
		}
	}
}

func TestBuildMatchesSingleFileCompile(t *testing.T) {
	files := map[string]string{
		"a.lisp": "(f 1 (g 2 \"x\"))",
		"b.lisp": "(h)\n(k 3)",
	}
	src := writeTree(t, files)
	out := t.TempDir()
	res, err := Build(context.Background(), &BuildRequest{SrcDir: src, OutDir: out, OutExt: ".out"})
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range res.Files {
		single, err := driver.CompileSource(context.Background(), f.Name, []byte(files[f.Name]), driver.Options{})
		if err != nil {
			t.Fatal(err)
		}
		if filepath.Ext(f.OutPath) != ".out" {
			t.Errorf("out path %s", f.OutPath)
		}
		if got := readFile(t, f.OutPath); got != single.Output+"\n" {
			t.Errorf("%s: build wrote %q, compile gives %q", f.Name, got, single.Output)
		}
	}
}

func TestBuildIsolatesFailures(t *testing.T) {
	src := writeTree(t, map[string]string{
		"bad.lisp":  "(f 1",
		"good.lisp": "(f 1)",
		"lex.lisp":  "(f #)",
	})
	out := t.TempDir()
	sink := &recordingSink{}
	res, err := Build(context.Background(), &BuildRequest{SrcDir: src, OutDir: out, Progress: sink})
	if !errors.Is(err, ErrBuildFailed) {
		t.Fatalf("err = %v", err)
	}
	if res.Failed != 2 || len(res.Files) != 3 {
		t.Fatalf("failed=%d files=%d", res.Failed, len(res.Files))
	}
	if res.Files[1].Err != nil || res.Files[1].OutPath == "" {
		t.Errorf("good file: %+v", res.Files[1])
	}
	if _, statErr := os.Stat(filepath.Join(out, "bad.c")); !os.IsNotExist(statErr) {
		t.Errorf("failed file produced output: %v", statErr)
	}
	if bag := res.Files[0].Result.Bag; bag.Len() != 1 {
		t.Errorf("bad file diagnostics = %v", bag.Items())
	}

	events := sink.byFile()
	last := func(name string) Event {
		evs := events[name]
		return evs[len(evs)-1]
	}
	if ev := last("bad.lisp"); ev.Status != StatusError || ev.Stage != StageParse || ev.Err == nil {
		t.Errorf("bad.lisp final event = %+v", ev)
	}
	if ev := last("lex.lisp"); ev.Status != StatusError || ev.Stage != StageLex {
		t.Errorf("lex.lisp final event = %+v", ev)
	}
	if ev := last("good.lisp"); ev.Status != StatusDone || ev.Stage != StageWrite {
		t.Errorf("good.lisp final event = %+v", ev)
	}
}

func TestBuildLoadAndWriteFailures(t *testing.T) {
	src := writeTree(t, map[string]string{"ok.lisp": "(ok)"})
	if err := os.Symlink(filepath.Join(src, "gone.lisp"), filepath.Join(src, "dangling.lisp")); err != nil {
		t.Skipf("symlink: %v", err)
	}
	sink := &recordingSink{}
	res, err := Build(context.Background(), &BuildRequest{SrcDir: src, OutDir: t.TempDir(), Progress: sink})
	if !errors.Is(err, ErrBuildFailed) || res.Failed != 1 {
		t.Fatalf("failed=%d err=%v", res.Failed, err)
	}
	evs := sink.byFile()["dangling.lisp"]
	if ev := evs[len(evs)-1]; ev.Status != StatusError || ev.Stage != StageLoad {
		t.Errorf("dangling.lisp final event = %+v", ev)
	}

	// an output root that is a regular file cannot hold generated files
	blocked := filepath.Join(t.TempDir(), "out")
	if err := os.WriteFile(blocked, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	src = writeTree(t, map[string]string{"sub/a.lisp": "(a)"})
	sink = &recordingSink{}
	res, err = Build(context.Background(), &BuildRequest{SrcDir: src, OutDir: blocked, Progress: sink})
	if !errors.Is(err, ErrBuildFailed) {
		t.Fatalf("err = %v", err)
	}
	var werr *WriteError
	if !errors.As(res.Files[0].Err, &werr) {
		t.Errorf("err = %v, want *WriteError", res.Files[0].Err)
	}
	evs = sink.byFile()["sub/a.lisp"]
	if ev := evs[len(evs)-1]; ev.Status != StatusError || ev.Stage != StageWrite {
		t.Errorf("sub/a.lisp final event = %+v", ev)
	}
}

func TestFailedStage(t *testing.T) {
	tests := []struct {
		err  error
		want Stage
	}{
		{&driver.PhaseError{Phase: driver.PhaseLoad, Err: os.ErrNotExist}, StageLoad},
		{&driver.PhaseError{Phase: driver.PhaseLex, Err: errors.New("bad char")}, StageLex},
		{fmt.Errorf("wrapped: %w", &driver.PhaseError{Phase: driver.PhaseEmit, Err: errors.New("x")}), StageEmit},
		{&WriteError{Path: "out/a.c", Err: os.ErrPermission}, StageWrite},
		// message text alone no longer decides the stage
		{errors.New("parse: looks like a phase"), StageLoad},
	}
	for _, tt := range tests {
		if got := failedStage(tt.err); got != tt.want {
			t.Errorf("failedStage(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestBuildProgressSequence(t *testing.T) {
	src := writeTree(t, map[string]string{"m.lisp": "(m)"})
	sink := &recordingSink{}
	if _, err := Build(context.Background(), &BuildRequest{SrcDir: src, OutDir: t.TempDir(), Progress: sink}); err != nil {
		t.Fatal(err)
	}
	type step struct {
		Stage  Stage
		Status Status
	}
	var got []step
	for _, ev := range sink.events {
		got = append(got, step{ev.Stage, ev.Status})
	}
	want := []step{
		{StageLoad, StatusQueued},
		{StageLex, StatusWorking},
		{StageParse, StatusWorking},
		{StageLower, StatusWorking},
		{StageEmit, StatusWorking},
		{StageWrite, StatusWorking},
		{StageWrite, StatusDone},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestBuildUsesCache(t *testing.T) {
	src := writeTree(t, map[string]string{"a.lisp": "(a 1)", "b.lisp": "(b 2)"})
	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	req := &BuildRequest{SrcDir: src, OutDir: t.TempDir(), Cache: cache}
	cold, err := Build(context.Background(), req)
	if err != nil || cold.Cached != 0 {
		t.Fatalf("cold build: cached=%d err=%v", cold.Cached, err)
	}
	warm, err := Build(context.Background(), req)
	if err != nil || warm.Cached != 2 {
		t.Fatalf("warm build: cached=%d err=%v", warm.Cached, err)
	}
	if got := readFile(t, warm.Files[0].OutPath); got != "a(1);\n" {
		t.Errorf("cached output = %q", got)
	}
}

func TestBuildNoSources(t *testing.T) {
	src := writeTree(t, map[string]string{"x.txt": ""})
	_, err := Build(context.Background(), &BuildRequest{SrcDir: src, OutDir: t.TempDir()})
	if !errors.Is(err, ErrNoSources) {
		t.Errorf("err = %v", err)
	}
	if _, err := Build(context.Background(), nil); err == nil {
		t.Error("nil request accepted")
	}
}

func TestBuildTimings(t *testing.T) {
	src := writeTree(t, map[string]string{"a.lisp": "(a)", "b.lisp": "(b)"})
	res, err := Build(context.Background(), &BuildRequest{SrcDir: src, OutDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	for _, st := range []Stage{StageLoad, StageLex, StageParse, StageLower, StageEmit, StageWrite} {
		if !res.Timings.Has(st) {
			t.Errorf("no timing for %s", st)
		}
	}
	var names []string
	for _, p := range res.Timer.Phases() {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	want := []string{driver.PhaseEmit, driver.PhaseLex, driver.PhaseLoad, driver.PhaseLower, driver.PhaseParse}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("merged phases (-want +got):\n%s", diff)
	}
}

func TestChannelSink(t *testing.T) {
	ch := make(chan Event, 1)
	ChannelSink{Ch: ch}.OnEvent(Event{File: "a", Status: StatusDone})
	if ev := <-ch; ev.File != "a" {
		t.Errorf("got %+v", ev)
	}
	ChannelSink{}.OnEvent(Event{})

	var n int
	SinkFunc(func(Event) { n++ }).OnEvent(Event{})
	if n != 1 {
		t.Error("SinkFunc not called")
	}
}

func TestOutputPath(t *testing.T) {
	got := outputPath("out", "sub/a.lisp", ".c")
	if want := filepath.Join("out", "sub", "a.c"); got != want {
		t.Errorf("outputPath = %s, want %s", got, want)
	}
}

func TestBuildTraceSpans(t *testing.T) {
	src := writeTree(t, map[string]string{"a.lisp": "(f 1)", "b.lisp": "(g"})
	ring := trace.NewRingTracer(256, trace.LevelDetail)
	ctx := trace.WithTracer(context.Background(), ring)

	if _, err := Build(ctx, &BuildRequest{SrcDir: src, OutDir: t.TempDir(), Jobs: 2}); !errors.Is(err, ErrBuildFailed) {
		t.Fatalf("err = %v", err)
	}

	events := ring.Snapshot()
	if len(events) == 0 || events[0].Name != "build" || events[0].Depth != 0 {
		t.Fatalf("first event = %+v", events)
	}
	last := events[len(events)-1]
	if last.Name != "build" || last.Detail != "1 failed, 0 cached" || last.Extra["files"] != "2" {
		t.Errorf("build end = %+v", last)
	}
	files := map[string]bool{}
	for _, ev := range events {
		if ev.Scope == trace.ScopeFile && ev.Kind == trace.KindSpanBegin {
			if ev.Depth != 1 {
				t.Errorf("file span depth = %d", ev.Depth)
			}
			files[filepath.Base(ev.File)] = true
		}
	}
	if !files["a.lisp"] || !files["b.lisp"] {
		t.Errorf("file spans = %v", files)
	}
}
