package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"lispc/internal/trace"
)

// FileResult is the outcome of compiling one file of a batch.
type FileResult struct {
	Path    string
	Result  *CompileResult // nil when the file could not be loaded
	Err     error
	Elapsed time.Duration
}

// FileObserver receives stage boundaries for the file at index i.
type FileObserver func(i int, path string, ev PhaseEvent)

// ListSources returns every file under dir whose name ends in ext, sorted.
func ListSources(dir, ext string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ext) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	// sorted for a deterministic output order
	sort.Strings(files)
	return files, nil
}

// CompileFiles compiles every path independently with at most jobs files in
// flight (jobs <= 0 means GOMAXPROCS). Results are indexed like paths, so
// the order never depends on scheduling. A failing file does not stop the
// others. Cancelling ctx stops the batch: files not yet started are skipped
// and the context error is returned.
func CompileFiles(ctx context.Context, paths []string, jobs int, opts Options, observe FileObserver) ([]FileResult, error) {
	results := make([]FileResult, len(paths))
	if len(paths) == 0 {
		return results, nil
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			span := trace.BeginFile(tracer, trace.ScopeFile, "file", path, parent)
			fileCtx := trace.WithSpanContext(gctx, span.Context())

			fileOpts := opts
			if observe != nil {
				fileOpts.Observer = func(ev PhaseEvent) { observe(i, path, ev) }
			}

			start := time.Now()
			res, err := Compile(fileCtx, path, fileOpts)
			// index i is owned by this goroutine, no lock needed
			results[i] = FileResult{Path: path, Result: res, Err: err, Elapsed: time.Since(start)}

			detail := "ok"
			if err != nil {
				detail = "error"
			}
			span.End(detail)
			// a file finished while the batch was cancelled is not a result
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
