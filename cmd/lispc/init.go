package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"lispc/internal/project"
)

const defaultMainSource = `(print "hello, world")
(print (add 2 (subtract 4 2)))
`

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path|name]",
		Short: "Initialize a new lispc project",
		Long: `Initialize a new project by creating a manifest (lispc.toml) and a
hello-world source (src/main.lisp). If [path|name] is omitted, initializes the
current directory. A missing directory is created.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
}

// runInit writes lispc.toml and src/main.lisp into the target directory. It
// refuses to overwrite an existing manifest and keeps an existing main file.
func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	target, err := filepath.Abs(target)
	if err != nil {
		return err
	}

	if st, statErr := os.Stat(target); statErr != nil {
		if !errors.Is(statErr, os.ErrNotExist) {
			return statErr
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	name := strings.TrimSpace(filepath.Base(target))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "lispc-project"
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}

	cfg := project.Default(name)
	var buf bytes.Buffer
	if err := project.Encode(&buf, cfg); err != nil {
		return err
	}
	if err := os.WriteFile(manifestPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	srcDir := filepath.Join(target, filepath.FromSlash(cfg.Build.Src))
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", srcDir, err)
	}
	mainPath := filepath.Join(srcDir, "main"+project.SourceExt)
	createdMain := false
	if _, err := os.Stat(mainPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(mainPath, []byte(defaultMainSource), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", mainPath, err)
		}
		createdMain = true
	}

	if quiet(cmd) {
		return nil
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initialized lispc project %q in %s\n", name, target)
	fmt.Fprintf(out, "  - %s\n", project.ManifestName)
	mainRel := filepath.ToSlash(filepath.Join(cfg.Build.Src, "main"+project.SourceExt))
	if createdMain {
		fmt.Fprintf(out, "  - %s\n", mainRel)
	} else {
		fmt.Fprintf(out, "  - %s (existing)\n", mainRel)
	}
	return nil
}
