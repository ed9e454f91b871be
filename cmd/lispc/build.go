package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"lispc/internal/buildpipeline"
	"lispc/internal/driver"
	"lispc/internal/project"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [flags] [dir]",
		Short: "Compile every source file of a project",
		Long: `Build finds lispc.toml in dir (or above it), compiles every file under
the configured source directory and writes one output file per source into
the output directory, keeping the directory layout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBuild,
	}
	cmd.Flags().String("out", "", "output directory (overrides [build].out)")
	cmd.Flags().IntP("jobs", "j", -1, "files compiled in parallel (0 means GOMAXPROCS; default from manifest)")
	cmd.Flags().Int("max-depth", -1, "maximum call nesting (0 means unbounded; default from manifest)")
	cmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	cmd.Flags().Bool("no-cache", false, "do not read or write the build cache")
	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	start := time.Now()
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	manifest, ok, err := project.Load(dir)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no %s found in %s or any parent directory; run `lispc init`", project.ManifestName, dir)
	}

	req, err := buildRequest(cmd, manifest)
	if err != nil {
		return err
	}
	modeStr, _ := cmd.Flags().GetString("ui")
	mode, err := readUIMode(modeStr)
	if err != nil {
		return err
	}

	var result buildpipeline.BuildResult
	if shouldUseTUI(cmd, mode) {
		names, _, discoverErr := buildpipeline.Discover(&req)
		if discoverErr != nil {
			return discoverErr
		}
		title := "building " + manifest.Config.Package.Name
		result, err = runBuildWithUI(cmd.Context(), cmd.OutOrStdout(), title, names, req)
	} else {
		result, err = buildpipeline.Build(cmd.Context(), &req)
	}

	for _, f := range result.Files {
		if f.Err == nil {
			continue
		}
		if f.Result != nil && f.Result.Bag.Len() > 0 {
			if perr := printDiagnostics(cmd, f.Result.Bag, f.Result.FileSet); perr != nil {
				return perr
			}
			continue
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", f.Name, f.Err)
	}

	if show, _ := cmd.Root().PersistentFlags().GetBool("timings"); show {
		printStageTimings(cmd.ErrOrStderr(), result.Timings)
	}
	if !quiet(cmd) && len(result.Files) > 0 {
		printBuildSummary(cmd.ErrOrStderr(), req.OutDir, result, time.Since(start))
	}

	if errors.Is(err, buildpipeline.ErrBuildFailed) {
		return errReported
	}
	return err
}

func buildRequest(cmd *cobra.Command, manifest *project.Manifest) (buildpipeline.BuildRequest, error) {
	cfg := manifest.Config.Build
	req := buildpipeline.BuildRequest{
		SrcDir:         manifest.SrcDir(),
		OutDir:         manifest.OutDir(),
		OutExt:         cfg.OutExt,
		Jobs:           cfg.Jobs,
		MaxDepth:       cfg.MaxDepth,
		MaxDiagnostics: maxDiagnostics(cmd),
		BaseDir:        manifest.Root,
	}

	flags := cmd.Flags()
	if out, _ := flags.GetString("out"); out != "" {
		abs, err := filepath.Abs(out)
		if err != nil {
			return req, err
		}
		req.OutDir = abs
	}
	if jobs, _ := flags.GetInt("jobs"); jobs >= 0 {
		req.Jobs = jobs
	}
	if depth, _ := flags.GetInt("max-depth"); depth >= 0 {
		req.MaxDepth = depth
	}
	if noCache, _ := flags.GetBool("no-cache"); !noCache {
		cache, err := driver.OpenDiskCache("lispc")
		if err != nil {
			return req, fmt.Errorf("open cache: %w", err)
		}
		req.Cache = cache
	}
	return req, nil
}

func printBuildSummary(out io.Writer, outDir string, result buildpipeline.BuildResult, elapsed time.Duration) {
	rel := outDir
	if wd, err := os.Getwd(); err == nil {
		if r, relErr := filepath.Rel(wd, outDir); relErr == nil {
			rel = r
		}
	}
	built := len(result.Files) - result.Failed
	fmt.Fprintf(out, "built %d of %d files (%d cached) into %s in %.1f ms\n",
		built, len(result.Files), result.Cached, rel, toMillis(elapsed))
	if result.Failed > 0 {
		fmt.Fprintf(out, "%d files failed\n", result.Failed)
	}
}
