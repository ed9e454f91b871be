// Package buildpipeline compiles a source tree into an output tree and reports
// per-file progress.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"lispc/internal/driver"
	"lispc/internal/observ"
	"lispc/internal/project"
	"lispc/internal/trace"
)

var (
	// ErrNoSources is returned when the source directory holds no files.
	ErrNoSources = errors.New("no source files found")
	// ErrBuildFailed is wrapped by Build when at least one file failed.
	ErrBuildFailed = errors.New("build failed")
)

// BuildRequest configures a directory build.
type BuildRequest struct {
	// SrcDir is scanned recursively for files ending in SourceExt.
	SrcDir string
	// OutDir receives one generated file per source, mirroring SrcDir.
	OutDir string
	// SourceExt defaults to project.SourceExt.
	SourceExt string
	// OutExt defaults to project.DefaultOutExt.
	OutExt string
	// Jobs bounds concurrent compilations; <= 0 means GOMAXPROCS.
	Jobs           int
	MaxDepth       int
	MaxDiagnostics int
	Cache          *driver.DiskCache
	Progress       ProgressSink
	// BaseDir makes diagnostic paths relative to it.
	BaseDir string
}

// FileOutcome is the result of building one source file.
type FileOutcome struct {
	// Name is the source path relative to SrcDir, slash separated. Progress
	// events use the same name.
	Name string
	// Path is the source path on disk.
	Path string
	// OutPath is the written file; empty when the file failed.
	OutPath string
	Result  *driver.CompileResult
	Err     error
	Elapsed time.Duration
}

// BuildResult captures build artefacts and timings.
type BuildResult struct {
	Files   []FileOutcome
	Failed  int
	Cached  int
	Timings Timings
	// Timer merges the per-file phase timers.
	Timer *observ.Timer
}

// Names returns the display names of the files in build order.
func (r BuildResult) Names() []string {
	names := make([]string, len(r.Files))
	for i, f := range r.Files {
		names[i] = f.Name
	}
	return names
}

// Discover lists the sources a request would build, as display names and
// paths on disk.
func Discover(req *BuildRequest) (names, paths []string, err error) {
	ext := req.SourceExt
	if ext == "" {
		ext = project.SourceExt
	}
	paths, err = driver.ListSources(req.SrcDir, ext)
	if err != nil {
		return nil, nil, err
	}
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", req.SrcDir, ErrNoSources)
	}
	names = make([]string, len(paths))
	for i, p := range paths {
		names[i] = displayName(req.SrcDir, p)
	}
	return names, paths, nil
}

// Build compiles every source under req.SrcDir and writes the generated files.
// A failing file does not stop the others; Build then returns a result with
// all outcomes together with an error wrapping ErrBuildFailed.
func Build(ctx context.Context, req *BuildRequest) (BuildResult, error) {
	result := BuildResult{Timer: observ.NewTimer()}
	if req == nil {
		return result, fmt.Errorf("missing build request")
	}

	names, paths, err := Discover(req)
	if err != nil {
		return result, err
	}
	emitQueued(req.Progress, names)

	ctx, span := trace.Start(ctx, trace.ScopeDriver, "build")
	span.WithExtra("files", strconv.Itoa(len(paths)))
	defer func() { span.End(fmt.Sprintf("%d failed, %d cached", result.Failed, result.Cached)) }()

	opts := driver.Options{
		MaxDiagnostics: req.MaxDiagnostics,
		MaxDepth:       req.MaxDepth,
		Cache:          req.Cache,
		BaseDir:        req.BaseDir,
	}
	observe := func(i int, _ string, ev driver.PhaseEvent) {
		stage, ok := stageForPhase(ev.Name)
		if !ok || ev.Status != driver.PhaseStart {
			return
		}
		emit(req.Progress, names[i], stage, StatusWorking, nil, 0)
	}

	results, err := driver.CompileFiles(ctx, paths, req.Jobs, opts, observe)
	if err != nil {
		return result, err
	}

	outExt := req.OutExt
	if outExt == "" {
		outExt = project.DefaultOutExt
	}

	result.Files = make([]FileOutcome, len(results))
	for i, fr := range results {
		out := FileOutcome{
			Name:    names[i],
			Path:    fr.Path,
			Result:  fr.Result,
			Err:     fr.Err,
			Elapsed: fr.Elapsed,
		}
		if fr.Result != nil {
			result.Timer.Merge(fr.Result.Timer)
			for _, ph := range fr.Result.Timer.Phases() {
				if stage, ok := stageForPhase(ph.Name); ok {
					result.Timings.Add(stage, ph.Dur)
				}
			}
			if fr.Result.Cached {
				result.Cached++
			}
		}

		if out.Err == nil {
			emit(req.Progress, out.Name, StageWrite, StatusWorking, nil, 0)
			start := time.Now()
			out.OutPath = outputPath(req.OutDir, out.Name, outExt)
			out.Err = writeOutput(out.OutPath, fr.Result.Output)
			result.Timings.Add(StageWrite, time.Since(start))
			if out.Err != nil {
				out.OutPath = ""
			}
		}

		if out.Err != nil {
			result.Failed++
			emit(req.Progress, out.Name, failedStage(out.Err), StatusError, out.Err, out.Elapsed)
		} else {
			emit(req.Progress, out.Name, StageWrite, StatusDone, nil, out.Elapsed)
		}
		result.Files[i] = out
	}

	if result.Failed > 0 {
		return result, fmt.Errorf("%w: %d of %d files", ErrBuildFailed, result.Failed, len(result.Files))
	}
	return result, nil
}

func displayName(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// outputPath maps a source name like "sub/a.lisp" to OutDir/sub/a<ext>.
func outputPath(outDir, name, ext string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return filepath.Join(outDir, filepath.FromSlash(base)+ext)
}

// WriteError reports a generated file that could not be stored.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return "write " + e.Path + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// writeOutput stores code followed by a newline, like the compile command
// prints it.
func writeOutput(path, code string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	data := code
	if data != "" {
		data += "\n"
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// failedStage returns the stage that produced err. Errors that carry no
// stage are charged to loading, the first thing done with a file.
func failedStage(err error) Stage {
	var werr *WriteError
	if errors.As(err, &werr) {
		return StageWrite
	}
	var perr *driver.PhaseError
	if errors.As(err, &perr) {
		if stage, ok := stageForPhase(perr.Phase); ok {
			return stage
		}
	}
	return StageLoad
}
